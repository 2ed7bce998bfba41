package service

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

// fakeRunner satisfies repository.TxRunner without a database; the fakes are
// plain maps, so "transactions" just run the function.
type fakeRunner struct{}

func (fakeRunner) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// ---------------------------------------------------------------------------
// Task repository fake
// ---------------------------------------------------------------------------

type fakeTaskRepo struct {
	nextID int64
	tasks  map[int64]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]*models.Task)}
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	f.nextID++
	task.ID = f.nextID
	cp := *task
	f.tasks[task.ID] = &cp
	return task, nil
}

func (f *fakeTaskRepo) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	for _, task := range tasks {
		if _, err := f.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id, userID int64) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (f *fakeTaskRepo) ListByUser(ctx context.Context, userID int64, filters repository.TaskFilters) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range f.tasks {
		if task.UserID != userID {
			continue
		}
		if filters.Completed != nil && task.Completed != *filters.Completed {
			continue
		}
		if filters.ParentsOnly && task.ParentID != nil {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskRepo) ListChildren(ctx context.Context, parentID int64) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range f.tasks {
		if task.ParentID != nil && *task.ParentID == parentID {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskRepo) ListRecurringParents(ctx context.Context) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range f.tasks {
		if task.IsRecurring && task.ParentID == nil {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	if _, ok := f.tasks[task.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return task, nil
}

func (f *fakeTaskRepo) UpdateChildrenContent(ctx context.Context, parentID int64, patch repository.ContentPatch) error {
	for _, task := range f.tasks {
		if task.ParentID != nil && *task.ParentID == parentID {
			task.Title = patch.Title
			task.Description = patch.Description
			task.Priority = patch.Priority
		}
	}
	return nil
}

func (f *fakeTaskRepo) SetCompleted(ctx context.Context, id, userID int64, completed bool) error {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return models.ErrNotFound
	}
	task.Completed = completed
	return nil
}

func (f *fakeTaskRepo) DeleteChildren(ctx context.Context, parentID int64) error {
	for id, task := range f.tasks {
		if task.ParentID != nil && *task.ParentID == parentID {
			delete(f.tasks, id)
		}
	}
	return nil
}

func (f *fakeTaskRepo) Delete(ctx context.Context, id, userID int64) error {
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return models.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) WithTx(tx *sql.Tx) repository.TaskRepository { return f }

// ---------------------------------------------------------------------------
// Subtask repository fake
// ---------------------------------------------------------------------------

type fakeSubtaskRepo struct {
	nextID   int64
	subtasks map[int64]*models.Subtask
}

func newFakeSubtaskRepo() *fakeSubtaskRepo {
	return &fakeSubtaskRepo{subtasks: make(map[int64]*models.Subtask)}
}

func (f *fakeSubtaskRepo) Create(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error) {
	f.nextID++
	subtask.ID = f.nextID
	cp := *subtask
	f.subtasks[subtask.ID] = &cp
	return subtask, nil
}

func (f *fakeSubtaskRepo) CreateBatch(ctx context.Context, subtasks []*models.Subtask) error {
	for _, st := range subtasks {
		if _, err := f.Create(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSubtaskRepo) ListByTask(ctx context.Context, taskID int64) ([]models.Subtask, error) {
	var out []models.Subtask
	for _, st := range f.subtasks {
		if st.TaskID == taskID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeSubtaskRepo) SetDone(ctx context.Context, id int64, done bool) error {
	st, ok := f.subtasks[id]
	if !ok {
		return models.ErrNotFound
	}
	st.Done = done
	return nil
}

func (f *fakeSubtaskRepo) Delete(ctx context.Context, id int64) error {
	delete(f.subtasks, id)
	return nil
}

func (f *fakeSubtaskRepo) WithTx(tx *sql.Tx) repository.SubtaskRepository { return f }

// ---------------------------------------------------------------------------
// User repository fake
// ---------------------------------------------------------------------------

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.nextID++
	user.ID = f.nextID
	cp := *user
	f.users[user.ID] = &cp
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error) {
	for _, user := range f.users {
		if user.TelegramChatID != nil && *user.TelegramChatID == chatID {
			cp := *user
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return user, nil
}

func (f *fakeUserRepo) SetPlan(ctx context.Context, id int64, plan models.Plan) error {
	user, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	user.Plan = plan
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Usage repository fake
// ---------------------------------------------------------------------------

type fakeUsageRepo struct {
	counts map[int64]map[string]int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: make(map[int64]map[string]int)}
}

func (f *fakeUsageRepo) Increment(ctx context.Context, userID int64, period string) (int, error) {
	if f.counts[userID] == nil {
		f.counts[userID] = make(map[string]int)
	}
	f.counts[userID][period]++
	return f.counts[userID][period], nil
}

func (f *fakeUsageRepo) Get(ctx context.Context, userID int64, period string) (int, error) {
	return f.counts[userID][period], nil
}

func (f *fakeUsageRepo) DeleteBefore(ctx context.Context, period string) (int64, error) {
	var n int64
	for _, periods := range f.counts {
		for p := range periods {
			if p < period {
				delete(periods, p)
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeUsageRepo) WithTx(tx *sql.Tx) repository.UsageRepository { return f }

// ---------------------------------------------------------------------------
// Appointment and meeting repository fakes
// ---------------------------------------------------------------------------

type fakeAppointmentRepo struct {
	nextID int64
	appts  map[int64]*models.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: make(map[int64]*models.Appointment)}
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	f.nextID++
	appt.ID = f.nextID
	cp := *appt
	f.appts[appt.ID] = &cp
	return appt, nil
}

func (f *fakeAppointmentRepo) CreateBatch(ctx context.Context, appts []*models.Appointment) error {
	for _, appt := range appts {
		if _, err := f.Create(ctx, appt); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id, userID int64) (*models.Appointment, error) {
	appt, ok := f.appts[id]
	if !ok || appt.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (f *fakeAppointmentRepo) ListByUser(ctx context.Context, userID int64, filters repository.EventFilters) ([]*models.Appointment, error) {
	var out []*models.Appointment
	for _, appt := range f.appts {
		if appt.UserID == userID {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAppointmentRepo) ListChildren(ctx context.Context, parentID int64) ([]*models.Appointment, error) {
	var out []*models.Appointment
	for _, appt := range f.appts {
		if appt.ParentID != nil && *appt.ParentID == parentID {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAppointmentRepo) ListRecurringParents(ctx context.Context) ([]*models.Appointment, error) {
	var out []*models.Appointment
	for _, appt := range f.appts {
		if appt.IsRecurring && appt.ParentID == nil {
			cp := *appt
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	if _, ok := f.appts[appt.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *appt
	f.appts[appt.ID] = &cp
	return appt, nil
}

func (f *fakeAppointmentRepo) UpdateChildrenContent(ctx context.Context, parentID int64, patch repository.ContentPatch) error {
	for _, appt := range f.appts {
		if appt.ParentID != nil && *appt.ParentID == parentID {
			appt.Title = patch.Title
			appt.Description = patch.Description
			appt.Location = patch.Location
		}
	}
	return nil
}

func (f *fakeAppointmentRepo) DeleteChildren(ctx context.Context, parentID int64) error {
	for id, appt := range f.appts {
		if appt.ParentID != nil && *appt.ParentID == parentID {
			delete(f.appts, id)
		}
	}
	return nil
}

func (f *fakeAppointmentRepo) Delete(ctx context.Context, id, userID int64) error {
	appt, ok := f.appts[id]
	if !ok || appt.UserID != userID {
		return models.ErrNotFound
	}
	delete(f.appts, id)
	return nil
}

func (f *fakeAppointmentRepo) WithTx(tx *sql.Tx) repository.AppointmentRepository { return f }

type fakeMeetingRepo struct {
	nextID   int64
	meetings map[int64]*models.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[int64]*models.Meeting)}
}

func (f *fakeMeetingRepo) Create(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	f.nextID++
	meeting.ID = f.nextID
	cp := *meeting
	f.meetings[meeting.ID] = &cp
	return meeting, nil
}

func (f *fakeMeetingRepo) CreateBatch(ctx context.Context, meetings []*models.Meeting) error {
	for _, meeting := range meetings {
		if _, err := f.Create(ctx, meeting); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMeetingRepo) GetByID(ctx context.Context, id, userID int64) (*models.Meeting, error) {
	meeting, ok := f.meetings[id]
	if !ok || meeting.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *meeting
	return &cp, nil
}

func (f *fakeMeetingRepo) ListByUser(ctx context.Context, userID int64, filters repository.EventFilters) ([]*models.Meeting, error) {
	var out []*models.Meeting
	for _, meeting := range f.meetings {
		if meeting.UserID == userID {
			cp := *meeting
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMeetingRepo) ListChildren(ctx context.Context, parentID int64) ([]*models.Meeting, error) {
	var out []*models.Meeting
	for _, meeting := range f.meetings {
		if meeting.ParentID != nil && *meeting.ParentID == parentID {
			cp := *meeting
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMeetingRepo) ListRecurringParents(ctx context.Context) ([]*models.Meeting, error) {
	var out []*models.Meeting
	for _, meeting := range f.meetings {
		if meeting.IsRecurring && meeting.ParentID == nil {
			cp := *meeting
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMeetingRepo) Update(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	if _, ok := f.meetings[meeting.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *meeting
	f.meetings[meeting.ID] = &cp
	return meeting, nil
}

func (f *fakeMeetingRepo) UpdateChildrenContent(ctx context.Context, parentID int64, patch repository.ContentPatch) error {
	for _, meeting := range f.meetings {
		if meeting.ParentID != nil && *meeting.ParentID == parentID {
			meeting.Title = patch.Title
			meeting.Description = patch.Description
			meeting.Attendees = patch.Attendees
		}
	}
	return nil
}

func (f *fakeMeetingRepo) DeleteChildren(ctx context.Context, parentID int64) error {
	for id, meeting := range f.meetings {
		if meeting.ParentID != nil && *meeting.ParentID == parentID {
			delete(f.meetings, id)
		}
	}
	return nil
}

func (f *fakeMeetingRepo) Delete(ctx context.Context, id, userID int64) error {
	meeting, ok := f.meetings[id]
	if !ok || meeting.UserID != userID {
		return models.ErrNotFound
	}
	delete(f.meetings, id)
	return nil
}

func (f *fakeMeetingRepo) WithTx(tx *sql.Tx) repository.MeetingRepository { return f }

// ---------------------------------------------------------------------------
// Generator stub and test service wiring
// ---------------------------------------------------------------------------

type stubGenerator struct {
	titles []string
	err    error
	calls  int
}

func (g *stubGenerator) GenerateSubtasks(ctx context.Context, task *models.Task, max int) ([]string, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.titles, nil
}

type testEnv struct {
	svc      *Service
	tasks    *fakeTaskRepo
	subtasks *fakeSubtaskRepo
	users    *fakeUserRepo
	usage    *fakeUsageRepo
	appts    *fakeAppointmentRepo
	meetings *fakeMeetingRepo
	gen      *stubGenerator
}

func newTestEnv(opts Options) *testEnv {
	env := &testEnv{
		tasks:    newFakeTaskRepo(),
		subtasks: newFakeSubtaskRepo(),
		users:    newFakeUserRepo(),
		usage:    newFakeUsageRepo(),
		appts:    newFakeAppointmentRepo(),
		meetings: newFakeMeetingRepo(),
		gen:      &stubGenerator{titles: []string{"step one", "step two"}},
	}
	env.svc = New(fakeRunner{}, testLogger(), opts, env.gen,
		env.users, env.tasks, env.subtasks, nil,
		env.appts, env.meetings, nil, nil, env.usage,
	)
	return env
}

func (e *testEnv) addUser(plan models.Plan) *models.User {
	user, _ := e.users.Create(context.Background(), &models.User{
		Name: "Riley", Plan: plan, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	return user
}
