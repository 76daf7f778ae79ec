package service

import (
	"context"
	"sort"
	"sync"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// mockTxManager runs fn directly; failures are tested at the repository level.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockApplicationRepo struct {
	mu     sync.Mutex
	nextID int64
	apps   map[int64]*entity.LoanApplication
	err    error
}

func newMockApplicationRepo(apps ...*entity.LoanApplication) *mockApplicationRepo {
	m := &mockApplicationRepo{apps: make(map[int64]*entity.LoanApplication)}
	for _, a := range apps {
		m.apps[a.ID] = a
		if a.ID > m.nextID {
			m.nextID = a.ID
		}
	}
	return m
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *entity.LoanApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	app.ID = m.nextID
	c := *app
	m.apps[app.ID] = &c
	return nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id int64) (*entity.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *mockApplicationRepo) List(ctx context.Context, limit, offset int) ([]*entity.LoanApplication, error) {
	all, _ := m.ListAll(ctx)
	if offset >= len(all) {
		return []*entity.LoanApplication{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockApplicationRepo) ListAll(ctx context.Context) ([]*entity.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.LoanApplication, 0, len(m.apps))
	for _, a := range m.apps {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return port.ErrNotFound
	}
	a.Status = status
	return nil
}

type mockWorkflowRepo struct {
	mu     sync.Mutex
	states map[int64]workflow.WorkflowState
	// beforeUpdate runs inside Update before the guard check, so tests can
	// simulate a concurrent writer.
	beforeUpdate func()
}

func newMockWorkflowRepo() *mockWorkflowRepo {
	return &mockWorkflowRepo{states: make(map[int64]workflow.WorkflowState)}
}

func (m *mockWorkflowRepo) Create(ctx context.Context, state *workflow.WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.states[state.ApplicationID]; ok {
		return port.ErrConflict
	}
	m.states[state.ApplicationID] = state.Clone()
	return nil
}

func (m *mockWorkflowRepo) GetByApplicationID(ctx context.Context, applicationID int64) (*workflow.WorkflowState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[applicationID]
	if !ok {
		return nil, port.ErrNotFound
	}
	c := s.Clone()
	return &c, nil
}

func (m *mockWorkflowRepo) Update(ctx context.Context, next *workflow.WorkflowState, expectedVersion int64, expectedStage workflow.Role) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.states[next.ApplicationID]
	if !ok || cur.Version != expectedVersion || cur.CurrentStage != expectedStage {
		return port.ErrConflict
	}
	m.states[next.ApplicationID] = next.Clone()
	return nil
}

func (m *mockWorkflowRepo) put(s workflow.WorkflowState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[s.ApplicationID] = s.Clone()
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.WorkflowHistory
}

func (m *mockHistoryRepo) Create(ctx context.Context, h *entity.WorkflowHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, h)
	return nil
}

func (m *mockHistoryRepo) GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.WorkflowHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.WorkflowHistory
	for _, h := range m.entries {
		if h.ApplicationID == applicationID {
			out = append(out, h)
		}
	}
	return out, nil
}

type mockStaffRepo struct {
	staff []*entity.StaffMember
	err   error
}

func (m *mockStaffRepo) Upsert(ctx context.Context, s *entity.StaffMember) error {
	m.staff = append(m.staff, s)
	return nil
}

func (m *mockStaffRepo) GetByID(ctx context.Context, id string) (*entity.StaffMember, error) {
	for _, s := range m.staff {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *mockStaffRepo) ListActiveByRole(ctx context.Context, role workflow.Role) ([]*entity.StaffMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.StaffMember
	for _, s := range m.staff {
		if s.Active && s.Role == string(role) {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockNotificationRepo struct {
	mu    sync.Mutex
	items []*entity.Notification
	err   error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	n.ID = int64(len(m.items) + 1)
	m.items = append(m.items, n)
	return nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) ListPendingDelivery(ctx context.Context, limit int) ([]*entity.Notification, error) {
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id int64) error {
	n, err := m.GetByID(ctx, id)
	if err != nil {
		return err
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationRepo) UpdateDelivery(ctx context.Context, id int64, status, errorMsg string) error {
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (p *recordingPublisher) DispatchAsync(ctx context.Context, evt *event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
