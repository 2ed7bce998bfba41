package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tigerhq/tiger/internal/models"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need. Every
// repository can be rebound to a transaction via its WithTx method.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner executes fn inside a single transaction: none of fn's writes are
// visible unless all of them commit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetPlan(ctx context.Context, id int64, plan models.Plan) error
	Delete(ctx context.Context, id int64) error
}

// ContentPatch carries the non-anchor fields of a parent edit that may be
// propagated to existing occurrences. Anchor times and completion state are
// never part of it.
type ContentPatch struct {
	Title       string
	Description string
	Priority    models.TaskPriority // tasks only
	Location    string              // appointments only
	Attendees   string              // meetings only
}

// TaskFilters represents filters for querying tasks
type TaskFilters struct {
	Completed   *bool
	Priority    *models.TaskPriority
	DueFrom     *time.Time
	DueTo       *time.Time
	ParentsOnly bool
	Limit       int
	Offset      int
}

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	CreateBatch(ctx context.Context, tasks []*models.Task) error
	GetByID(ctx context.Context, id, userID int64) (*models.Task, error)
	ListByUser(ctx context.Context, userID int64, filters TaskFilters) ([]*models.Task, error)
	ListChildren(ctx context.Context, parentID int64) ([]*models.Task, error)
	ListRecurringParents(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	UpdateChildrenContent(ctx context.Context, parentID int64, patch ContentPatch) error
	SetCompleted(ctx context.Context, id, userID int64, completed bool) error
	DeleteChildren(ctx context.Context, parentID int64) error
	Delete(ctx context.Context, id, userID int64) error
	WithTx(tx *sql.Tx) TaskRepository
}

// SubtaskRepository defines the interface for subtask data operations
type SubtaskRepository interface {
	Create(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error)
	CreateBatch(ctx context.Context, subtasks []*models.Subtask) error
	ListByTask(ctx context.Context, taskID int64) ([]models.Subtask, error)
	SetDone(ctx context.Context, id int64, done bool) error
	Delete(ctx context.Context, id int64) error
	WithTx(tx *sql.Tx) SubtaskRepository
}

// NoteRepository defines the interface for note data operations
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Note, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Note, error)
	Update(ctx context.Context, note *models.Note) (*models.Note, error)
	SetPinned(ctx context.Context, id, userID int64, pinned bool) error
	Reorder(ctx context.Context, userID int64, orderedIDs []int64) error
	Delete(ctx context.Context, id, userID int64) error
}

// EventFilters represents filters for querying appointments and meetings
type EventFilters struct {
	From        *time.Time
	To          *time.Time
	ParentsOnly bool
	Limit       int
}

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	CreateBatch(ctx context.Context, appts []*models.Appointment) error
	GetByID(ctx context.Context, id, userID int64) (*models.Appointment, error)
	ListByUser(ctx context.Context, userID int64, filters EventFilters) ([]*models.Appointment, error)
	ListChildren(ctx context.Context, parentID int64) ([]*models.Appointment, error)
	ListRecurringParents(ctx context.Context) ([]*models.Appointment, error)
	Update(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	UpdateChildrenContent(ctx context.Context, parentID int64, patch ContentPatch) error
	DeleteChildren(ctx context.Context, parentID int64) error
	Delete(ctx context.Context, id, userID int64) error
	WithTx(tx *sql.Tx) AppointmentRepository
}

// MeetingRepository defines the interface for meeting data operations
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error)
	CreateBatch(ctx context.Context, meetings []*models.Meeting) error
	GetByID(ctx context.Context, id, userID int64) (*models.Meeting, error)
	ListByUser(ctx context.Context, userID int64, filters EventFilters) ([]*models.Meeting, error)
	ListChildren(ctx context.Context, parentID int64) ([]*models.Meeting, error)
	ListRecurringParents(ctx context.Context) ([]*models.Meeting, error)
	Update(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error)
	UpdateChildrenContent(ctx context.Context, parentID int64, patch ContentPatch) error
	DeleteChildren(ctx context.Context, parentID int64) error
	Delete(ctx context.Context, id, userID int64) error
	WithTx(tx *sql.Tx) MeetingRepository
}

// PomodoroRepository defines the interface for pomodoro session operations
type PomodoroRepository interface {
	Create(ctx context.Context, session *models.PomodoroSession) (*models.PomodoroSession, error)
	ListByUserAndDay(ctx context.Context, userID int64, day time.Time) ([]*models.PomodoroSession, error)
	Complete(ctx context.Context, id, userID int64) error
	StatsForDay(ctx context.Context, userID int64, day time.Time) (*models.PomodoroStats, error)
}

// StudyRepository defines the interface for study session operations
type StudyRepository interface {
	Create(ctx context.Context, session *models.StudySession) (*models.StudySession, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.StudySession, error)
	SubjectTotals(ctx context.Context, userID int64) ([]models.SubjectTotal, error)
}

// UsageRepository defines the interface for AI usage metering
type UsageRepository interface {
	// Increment adds one use for the period and returns the new count.
	Increment(ctx context.Context, userID int64, period string) (int, error)
	Get(ctx context.Context, userID int64, period string) (int, error)
	DeleteBefore(ctx context.Context, period string) (int64, error)
	WithTx(tx *sql.Tx) UsageRepository
}
