// Package ai provides the subtask generation collaborator backed by the
// Gemini REST API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
)

// SubtaskGenerator breaks a task down into actionable subtask titles.
type SubtaskGenerator interface {
	GenerateSubtasks(ctx context.Context, task *models.Task, max int) ([]string, error)
}

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *logrus.Logger
}

// NewGeminiClient creates a Gemini-backed SubtaskGenerator.
func NewGeminiClient(apiKey, model string, logger *logrus.Logger) *GeminiClient {
	return &GeminiClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerateSubtasks implements SubtaskGenerator.
func (c *GeminiClient) GenerateSubtasks(ctx context.Context, task *models.Task, max int) ([]string, error) {
	prompt := fmt.Sprintf(
		"Break the following task into at most %d short, actionable subtasks. "+
			"Reply with one subtask per line and no numbering.\n\nTask: %s",
		max, task.Title)
	if task.Description != "" {
		prompt += "\nDetails: " + task.Description
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	titles := splitSubtaskLines(parsed.Candidates[0].Content.Parts[0].Text, max)
	if len(titles) == 0 {
		return nil, fmt.Errorf("gemini returned no usable subtasks")
	}

	c.logger.WithField("count", len(titles)).Debug("Parsed generated subtasks")
	return titles, nil
}

// splitSubtaskLines turns the model's plain-text reply into clean titles,
// stripping list markers the model sometimes adds despite instructions.
func splitSubtaskLines(text string, max int) []string {
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) ")
		if line == "" {
			continue
		}
		titles = append(titles, line)
		if len(titles) == max {
			break
		}
	}
	return titles
}
