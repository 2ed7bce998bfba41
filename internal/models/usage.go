package models

import "time"

// UsageRecord counts metered feature use (AI subtask generation) for one user
// in one calendar-month period.
type UsageRecord struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Period    string    `json:"period" db:"period"` // YYYY-MM
	Count     int       `json:"count" db:"count"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UsagePeriod formats t as the metering period key.
func UsagePeriod(t time.Time) string {
	return t.UTC().Format("2006-01")
}
