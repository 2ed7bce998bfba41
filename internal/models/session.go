package models

import "time"

// PomodoroKind distinguishes focus intervals from breaks.
type PomodoroKind string

const (
	PomodoroFocus      PomodoroKind = "focus"
	PomodoroShortBreak PomodoroKind = "short_break"
	PomodoroLongBreak  PomodoroKind = "long_break"
)

// PomodoroSession is one timer interval, completed or abandoned.
type PomodoroSession struct {
	ID        int64         `json:"id" db:"id"`
	UserID    int64         `json:"user_id" db:"user_id"`
	Kind      PomodoroKind  `json:"kind" db:"kind"`
	StartedAt time.Time     `json:"started_at" db:"started_at"`
	Duration  time.Duration `json:"duration" db:"duration_seconds"`
	Completed bool          `json:"completed" db:"completed"`
}

// PomodoroStats aggregates one day of pomodoro activity.
type PomodoroStats struct {
	Day            string `json:"day"`
	CompletedFocus int    `json:"completed_focus"`
	FocusedMinutes int    `json:"focused_minutes"`
}

// StudySession is a logged block of study time.
type StudySession struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Subject   string     `json:"subject" db:"subject"`
	Notes     string     `json:"notes" db:"notes"`
	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at" db:"ended_at"`
	Minutes   int        `json:"minutes" db:"minutes"`
}

// SubjectTotal is the aggregate study time for one subject.
type SubjectTotal struct {
	Subject string `json:"subject"`
	Minutes int    `json:"minutes"`
}
