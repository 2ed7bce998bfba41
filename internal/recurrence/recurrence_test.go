package recurrence

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// stamp is a minimal Occurrent for exercising the engine without dragging in
// a real entity type.
type stamp struct {
	label  string
	anchor time.Time
	parent bool
}

func (s stamp) AnchorTime() time.Time { return s.anchor }

func (s stamp) SpawnOccurrence(anchor time.Time) stamp {
	return stamp{label: s.label, anchor: anchor}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func TestRuleValidate(t *testing.T) {
	anchor := date(2024, time.March, 1)

	t.Run("valid rule", func(t *testing.T) {
		end := date(2024, time.June, 1)
		rule := Rule{Pattern: PatternWeekly, Interval: 2, EndDate: &end}
		if err := rule.Validate(anchor); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("reports every violation at once", func(t *testing.T) {
		end := date(2024, time.January, 1)
		rule := Rule{Pattern: "fortnightly", Interval: 0, EndDate: &end}

		err := rule.Validate(anchor)
		if err == nil {
			t.Fatal("Validate() = nil, want error")
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate() = %T, want *ValidationError", err)
		}
		for _, want := range []string{"fortnightly", "interval 0", "end date"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("Validate() error %q does not mention %q", err.Error(), want)
			}
		}
	})

	t.Run("end date equal to anchor is allowed", func(t *testing.T) {
		rule := Rule{Pattern: PatternDaily, Interval: 1, EndDate: &anchor}
		if err := rule.Validate(anchor); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})
}

func TestAdvanceComputesFromOriginalAnchor(t *testing.T) {
	// A monthly rule anchored on Jan 31 must clamp per occurrence, not
	// accumulate the clamp: Feb 29 (leap year), then Mar 31 again.
	anchor := date(2024, time.January, 31)
	rule := Rule{Pattern: PatternMonthly, Interval: 1}

	want := []time.Time{
		date(2024, time.February, 29),
		date(2024, time.March, 31),
		date(2024, time.April, 30),
		date(2024, time.May, 31),
	}
	for n, w := range want {
		if got := Advance(anchor, rule, n+1); !got.Equal(w) {
			t.Errorf("Advance(n=%d) = %s, want %s", n+1, got, w)
		}
	}
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		rule   Rule
		n      int
		want   time.Time
	}{
		{"daily", date(2024, time.March, 1), Rule{Pattern: PatternDaily, Interval: 1}, 3, date(2024, time.March, 4)},
		{"every third day", date(2024, time.March, 1), Rule{Pattern: PatternDaily, Interval: 3}, 2, date(2024, time.March, 7)},
		{"weekly", date(2024, time.March, 4), Rule{Pattern: PatternWeekly, Interval: 1}, 1, date(2024, time.March, 11)},
		{"biweekly", date(2024, time.March, 4), Rule{Pattern: PatternWeekly, Interval: 2}, 2, date(2024, time.April, 1)},
		{"monthly across year end", date(2024, time.November, 15), Rule{Pattern: PatternMonthly, Interval: 1}, 2, date(2025, time.January, 15)},
		{"yearly", date(2024, time.June, 10), Rule{Pattern: PatternYearly, Interval: 1}, 2, date(2026, time.June, 10)},
		{"yearly from leap day clamps", date(2024, time.February, 29), Rule{Pattern: PatternYearly, Interval: 1}, 1, date(2025, time.February, 28)},
		{"yearly leap to leap keeps day", date(2024, time.February, 29), Rule{Pattern: PatternYearly, Interval: 4}, 1, date(2028, time.February, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Advance(tt.anchor, tt.rule, tt.n); !got.Equal(tt.want) {
				t.Errorf("Advance() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAdvancePreservesTimeOfDay(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 14, 30, 0, 0, time.UTC)
	rule := Rule{Pattern: PatternMonthly, Interval: 1}

	got := Advance(anchor, rule, 1)
	if got.Hour() != 14 || got.Minute() != 30 {
		t.Errorf("Advance() = %s, want time of day 14:30 preserved", got)
	}
	if got.Day() != 29 {
		t.Errorf("Advance() = %s, want day clamped to 29", got)
	}
}

func TestGenerate(t *testing.T) {
	t.Run("emits the default lookahead without an end date", func(t *testing.T) {
		parent := stamp{label: "standup", anchor: date(2024, time.March, 1), parent: true}
		rule := Rule{Pattern: PatternDaily, Interval: 1}

		got, err := Generate(parent, rule, Options{})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(got) != DefaultLookahead {
			t.Fatalf("Generate() emitted %d occurrences, want %d", len(got), DefaultLookahead)
		}
	})

	t.Run("end date truncates the window", func(t *testing.T) {
		// Biweekly from a Monday with the end 5 weeks out: only weeks 2 and
		// 4 fit, so exactly two occurrences.
		anchor := date(2024, time.March, 4) // a Monday
		end := anchor.AddDate(0, 0, 35)
		parent := stamp{label: "review", anchor: anchor, parent: true}
		rule := Rule{Pattern: PatternWeekly, Interval: 2, EndDate: &end}

		got, err := Generate(parent, rule, Options{MaxCount: 10})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Generate() emitted %d occurrences, want 2", len(got))
		}
		if want := anchor.AddDate(0, 0, 14); !got[0].anchor.Equal(want) {
			t.Errorf("first occurrence at %s, want %s", got[0].anchor, want)
		}
		if want := anchor.AddDate(0, 0, 28); !got[1].anchor.Equal(want) {
			t.Errorf("second occurrence at %s, want %s", got[1].anchor, want)
		}
	})

	t.Run("anchors strictly increase and follow the parent", func(t *testing.T) {
		parent := stamp{label: "rent", anchor: date(2024, time.January, 31), parent: true}
		rule := Rule{Pattern: PatternMonthly, Interval: 1}

		got, err := Generate(parent, rule, Options{MaxCount: 12})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		prev := parent.anchor
		for i, child := range got {
			if !child.anchor.After(prev) {
				t.Fatalf("occurrence %d at %s is not after %s", i, child.anchor, prev)
			}
			prev = child.anchor
		}
	})

	t.Run("children carry the parent content but not parenthood", func(t *testing.T) {
		parent := stamp{label: "water plants", anchor: date(2024, time.May, 1), parent: true}
		rule := Rule{Pattern: PatternWeekly, Interval: 1}

		got, err := Generate(parent, rule, Options{MaxCount: 3})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		for i, child := range got {
			if child.label != parent.label {
				t.Errorf("occurrence %d label = %q, want %q", i, child.label, parent.label)
			}
			if child.parent {
				t.Errorf("occurrence %d flagged as parent", i)
			}
		}
	})

	t.Run("after emits only later occurrences", func(t *testing.T) {
		anchor := date(2024, time.March, 1)
		parent := stamp{label: "daily", anchor: anchor, parent: true}
		rule := Rule{Pattern: PatternDaily, Interval: 1}
		after := anchor.AddDate(0, 0, 5)

		got, err := Generate(parent, rule, Options{MaxCount: 3, After: after})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Generate() emitted %d occurrences, want 3", len(got))
		}
		if want := anchor.AddDate(0, 0, 6); !got[0].anchor.Equal(want) {
			t.Errorf("first occurrence at %s, want %s", got[0].anchor, want)
		}
	})

	t.Run("invalid rule is rejected", func(t *testing.T) {
		parent := stamp{label: "x", anchor: date(2024, time.March, 1), parent: true}
		rule := Rule{Pattern: PatternDaily, Interval: 0}

		_, err := Generate(parent, rule, Options{})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Generate() error = %v, want *ValidationError", err)
		}
	})

	t.Run("scan is bounded when after is far beyond the window", func(t *testing.T) {
		parent := stamp{label: "x", anchor: date(2024, time.January, 1), parent: true}
		rule := Rule{Pattern: PatternDaily, Interval: 1}
		after := parent.anchor.AddDate(100, 0, 0)

		got, err := Generate(parent, rule, Options{MaxCount: 5, After: after})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("Generate() emitted %d occurrences, want 0", len(got))
		}
	})
}
