package service

import (
	"context"
	"time"

	"github.com/tigerhq/tiger/internal/recurrence"
)

// rebuildOccurrences deletes a parent's existing occurrences and, when rule is
// non-nil, materializes a fresh window. It must run against tx-bound
// collaborators: the delete and the inserts are one logical mutation.
//
// Any completed flags on discarded future occurrences are lost. Once the
// parent's schedule moves, the old occurrence instants no longer exist, so
// completion tied to them carries no meaning.
func rebuildOccurrences[T recurrence.Occurrent[T]](ctx context.Context, entity string, parent T, rule *recurrence.Rule, lookahead int,
	deleteChildren func(context.Context) error,
	createBatch func(context.Context, []T) error,
) error {
	if err := deleteChildren(ctx); err != nil {
		return err
	}
	if rule == nil {
		return nil
	}
	children, err := recurrence.Generate(parent, *rule, recurrence.Options{MaxCount: lookahead})
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return nil
	}
	if err := createBatch(ctx, children); err != nil {
		return err
	}
	occurrencesGenerated.WithLabelValues(entity).Add(float64(len(children)))
	return nil
}

// extendOccurrences tops up a recurring parent whose window of future
// occurrences has been consumed by the passage of time. Unlike
// rebuildOccurrences it never touches existing children: it only appends
// future occurrences beyond the latest known anchor, so per-occurrence
// completion state survives.
func extendOccurrences[T recurrence.Occurrent[T]](ctx context.Context, entity string, parent T, rule recurrence.Rule, lookahead int,
	existing []T,
	createBatch func(context.Context, []T) error,
) (int, error) {
	now := time.Now()
	latest := parent.AnchorTime()
	future := 0
	for _, child := range existing {
		anchor := child.AnchorTime()
		if anchor.After(latest) {
			latest = anchor
		}
		if anchor.After(now) {
			future++
		}
	}

	missing := lookahead - future
	if missing <= 0 {
		return 0, nil
	}

	// Generate after the later of the latest anchor and now: the former
	// prevents duplicates, the latter keeps a long-idle parent from filling
	// the window with already-elapsed instants.
	after := latest
	if now.After(after) {
		after = now
	}
	fresh, err := recurrence.Generate(parent, rule, recurrence.Options{MaxCount: missing, After: after})
	if err != nil {
		return 0, err
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := createBatch(ctx, fresh); err != nil {
		return 0, err
	}
	occurrencesGenerated.WithLabelValues(entity).Add(float64(len(fresh)))
	return len(fresh), nil
}

func (s *Service) lookahead() int {
	if s.opts.Lookahead > 0 {
		return s.opts.Lookahead
	}
	return recurrence.DefaultLookahead
}
