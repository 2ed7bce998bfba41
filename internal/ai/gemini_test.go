package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSplitSubtaskLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{
			name: "plain lines",
			text: "Pack boxes\nLabel boxes\nBook a van",
			max:  8,
			want: []string{"Pack boxes", "Label boxes", "Book a van"},
		},
		{
			name: "strips list markers",
			text: "1. Pack boxes\n- Label boxes\n* Book a van",
			max:  8,
			want: []string{"Pack boxes", "Label boxes", "Book a van"},
		},
		{
			name: "drops blank lines and caps at max",
			text: "one\n\ntwo\nthree\nfour",
			max:  2,
			want: []string{"one", "two"},
		},
		{
			name: "empty reply",
			text: "\n\n",
			max:  8,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSubtaskLines(tt.text, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSubtaskLines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeminiClientGenerateSubtasks(t *testing.T) {
	task := &models.Task{Title: "Plan the move", Description: "New flat in May"}

	t.Run("parses the candidate text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-goog-api-key") != "test-key" {
				t.Errorf("missing api key header")
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Pack boxes\nBook a van"}]}}]}`))
		}))
		defer srv.Close()

		client := NewGeminiClient("test-key", "test-model", testLogger())
		client.endpoint = srv.URL

		got, err := client.GenerateSubtasks(context.Background(), task, 8)
		if err != nil {
			t.Fatalf("GenerateSubtasks() error = %v", err)
		}
		want := []string{"Pack boxes", "Book a van"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("GenerateSubtasks() = %v, want %v", got, want)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewGeminiClient("test-key", "test-model", testLogger())
		client.endpoint = srv.URL

		if _, err := client.GenerateSubtasks(context.Background(), task, 8); err == nil {
			t.Fatal("GenerateSubtasks() = nil error, want failure")
		}
	})

	t.Run("empty candidates is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		client := NewGeminiClient("test-key", "test-model", testLogger())
		client.endpoint = srv.URL

		if _, err := client.GenerateSubtasks(context.Background(), task, 8); err == nil {
			t.Fatal("GenerateSubtasks() = nil error, want failure")
		}
	})
}
