// Package recurrence computes future occurrences of repeating items.
//
// A recurring parent record (task, appointment, meeting) carries a Rule; the
// engine materializes a bounded window of child occurrences from the parent's
// anchor time. Children are plain copies of the parent's content with their own
// anchor and never carry recurrence state themselves.
package recurrence

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Pattern is the unit of repetition.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
	PatternYearly  Pattern = "yearly"
)

// Valid reports whether p is one of the four supported patterns.
func (p Pattern) Valid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly, PatternYearly:
		return true
	}
	return false
}

// DefaultLookahead is how many occurrences are materialized ahead of time when
// the caller does not say otherwise. Recurrence has no natural upper bound, so
// a fixed window keeps storage bounded while the UI always has near-term
// occurrences to show. This is a policy constant, not a derived one.
const DefaultLookahead = 10

// maxGenerateScan bounds the walk through candidate occurrences when the
// caller asks for occurrences far beyond the anchor (e.g. topping up a daily
// rule anchored years in the past).
const maxGenerateScan = 10000

// Rule describes how a parent repeats.
type Rule struct {
	Pattern  Pattern
	Interval int
	EndDate  *time.Time
}

// ValidationError reports an invalid recurrence configuration. It wraps a
// multierror so every bad field is reported at once.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid recurrence rule: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the rule against the invariants for a recurring parent
// anchored at anchor. It returns a *ValidationError listing every violation,
// or nil.
func (r Rule) Validate(anchor time.Time) error {
	var merr *multierror.Error

	if !r.Pattern.Valid() {
		merr = multierror.Append(merr, fmt.Errorf("pattern %q is not one of daily, weekly, monthly, yearly", r.Pattern))
	}
	if r.Interval < 1 {
		merr = multierror.Append(merr, fmt.Errorf("interval %d must be at least 1", r.Interval))
	}
	if r.EndDate != nil && r.EndDate.Before(anchor) {
		merr = multierror.Append(merr, fmt.Errorf("end date %s is before the anchor %s",
			r.EndDate.Format(time.RFC3339), anchor.Format(time.RFC3339)))
	}

	if merr != nil {
		return &ValidationError{Err: merr}
	}
	return nil
}

// Advance returns the n-th occurrence instant for a rule anchored at anchor.
// Occurrences are always computed from the original anchor, never from a
// previously clamped occurrence: a monthly rule anchored on Jan 31 yields
// Feb 29 (leap) and then Mar 31, not Mar 29.
func Advance(anchor time.Time, rule Rule, n int) time.Time {
	step := rule.Interval * n
	switch rule.Pattern {
	case PatternDaily:
		return anchor.AddDate(0, 0, step)
	case PatternWeekly:
		return anchor.AddDate(0, 0, 7*step)
	case PatternMonthly:
		return addMonths(anchor, step)
	case PatternYearly:
		return addMonths(anchor, 12*step)
	}
	return anchor
}

// addMonths adds months to t with calendar-correct clamping: when the source
// day does not exist in the target month, the last day of that month is used.
// time.AddDate would overflow into the following month instead.
func addMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	first = first.AddDate(0, months, 0)

	day := t.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Occurrent is the adapter a schedulable entity kind implements so one engine
// serves tasks, appointments and meetings alike.
type Occurrent[T any] interface {
	// AnchorTime is the instant recurrence advances from. For entities with a
	// start/end pair this is the start.
	AnchorTime() time.Time
	// SpawnOccurrence returns a new child record anchored at anchor: content
	// fields copied from the parent, completion cleared, parent reference set,
	// and no recurrence state of its own.
	SpawnOccurrence(anchor time.Time) T
}

// Options controls a single Generate call.
type Options struct {
	// MaxCount caps how many occurrences are emitted. Zero or negative means
	// DefaultLookahead.
	MaxCount int
	// After, when non-zero, makes Generate emit only occurrences strictly
	// after this instant. The zero value emits from the parent's anchor, which
	// is the initial-generation case.
	After time.Time
}

// Generate materializes up to MaxCount future occurrences of parent under
// rule. Emitted anchors strictly increase and never exceed rule.EndDate. The
// rule is re-validated defensively; callers are expected to have validated the
// mutation already.
func Generate[T Occurrent[T]](parent T, rule Rule, opts Options) ([]T, error) {
	anchor := parent.AnchorTime()
	if err := rule.Validate(anchor); err != nil {
		return nil, err
	}

	maxCount := opts.MaxCount
	if maxCount <= 0 {
		maxCount = DefaultLookahead
	}
	after := opts.After
	if after.IsZero() {
		after = anchor
	}

	var out []T
	for n := 1; len(out) < maxCount && n <= maxGenerateScan; n++ {
		next := Advance(anchor, rule, n)
		if rule.EndDate != nil && next.After(*rule.EndDate) {
			break
		}
		if !next.After(after) {
			continue
		}
		out = append(out, parent.SpawnOccurrence(next))
	}
	return out, nil
}
