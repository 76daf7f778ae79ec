package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

type workflowFixture struct {
	apps      *mockApplicationRepo
	workflows *mockWorkflowRepo
	history   *mockHistoryRepo
	tx        *mockTxManager
	publisher *recordingPublisher
	svc       WorkflowService
}

func newWorkflowFixture(t *testing.T, opts ...WorkflowOption) *workflowFixture {
	t.Helper()

	f := &workflowFixture{
		apps: newMockApplicationRepo(&entity.LoanApplication{
			ID:               1,
			ClientName:       "John Mukasa",
			LoanAmount:       decimal.NewFromInt(50000000),
			MonthlyIncome:    decimal.NewFromInt(2000000),
			EmploymentStatus: "employed",
			Status:           "pending_manager",
			CreatedBy:        "fo-1",
		}),
		workflows: newMockWorkflowRepo(),
		history:   &mockHistoryRepo{},
		tx:        &mockTxManager{},
		publisher: &recordingPublisher{},
	}
	f.workflows.put(workflow.NewWorkflowState(1))

	opts = append([]WorkflowOption{WithPublisher(f.publisher)}, opts...)
	f.svc = NewWorkflowService(f.apps, f.workflows, f.history, f.tx, nopLogger{}, opts...)
	return f
}

func (f *workflowFixture) decide(role workflow.Role, d workflow.Decision, notes string) (*DecisionResult, error) {
	return f.svc.RecordDecision(context.Background(), DecisionCommand{
		ApplicationID: 1,
		Role:          role,
		Decision:      d,
		Notes:         notes,
		ActorID:       "staff-" + string(role),
	})
}

func TestRecordDecision_ApproveAdvances(t *testing.T) {
	f := newWorkflowFixture(t)

	res, err := f.decide(workflow.RoleManager, workflow.DecisionApprove, "documents complete")
	require.NoError(t, err)

	assert.Equal(t, workflow.RoleDirector, res.State.CurrentStage)
	assert.Equal(t, int64(2), res.State.Version)
	assert.Equal(t, "pending_director", res.Status)
	assert.False(t, res.NotesGenerated)

	stored, err := f.workflows.GetByApplicationID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, res.State, *stored)

	app, _ := f.apps.GetByID(context.Background(), 1)
	assert.Equal(t, "pending_director", app.Status)

	require.Len(t, f.history.entries, 1)
	h := f.history.entries[0]
	assert.Equal(t, "manager", h.Role)
	assert.Equal(t, "approve", h.Decision)
	assert.Equal(t, "manager", h.FromStage)
	assert.Equal(t, "director", h.ToStage)
	assert.Equal(t, "staff-manager", h.ActorID)

	assert.Equal(t, []event.Type{event.TypeStageAdvanced}, f.publisher.types())
	assert.Equal(t, 1, f.tx.calls)
}

func TestRecordDecision_RejectWithoutNotesDraftsReason(t *testing.T) {
	f := newWorkflowFixture(t)

	res, err := f.decide(workflow.RoleManager, workflow.DecisionReject, "   ")
	require.NoError(t, err)

	assert.True(t, res.NotesGenerated)
	assert.Contains(t, res.State.Decision(workflow.RoleManager).Notes, "208.3%")
	assert.Equal(t, workflow.ResultFailed, res.State.FinalResult)
	assert.Equal(t, "rejected", res.Status)
	assert.Equal(t, "failed", f.history.entries[0].ToStage)
	assert.Equal(t, []event.Type{event.TypeApplicationRejected}, f.publisher.types())
}

func TestRecordDecision_RejectFallsBackToBoilerplate(t *testing.T) {
	f := newWorkflowFixture(t)
	f.apps.apps[1].MonthlyIncome = decimal.Zero

	res, err := f.decide(workflow.RoleManager, workflow.DecisionReject, "")
	require.NoError(t, err)
	assert.True(t, res.NotesGenerated)
	assert.Contains(t, res.State.Decision(workflow.RoleManager).Notes, "documentation")
}

func TestRecordDecision_ForbiddenLeavesNoTrace(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.decide(workflow.RoleCEO, workflow.DecisionApprove, "")
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	stored, _ := f.workflows.GetByApplicationID(context.Background(), 1)
	assert.Equal(t, workflow.NewWorkflowState(1), *stored)
	assert.Empty(t, f.history.entries)
	assert.Empty(t, f.publisher.types())
	assert.Equal(t, 0, f.tx.calls)
}

func TestRecordDecision_ApplicationNotFound(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.RecordDecision(context.Background(), DecisionCommand{
		ApplicationID: 99,
		Role:          workflow.RoleManager,
		Decision:      workflow.DecisionApprove,
	})
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestRecordDecision_LazyCreatesMissingWorkflow(t *testing.T) {
	f := newWorkflowFixture(t)
	delete(f.workflows.states, 1)

	res, err := f.decide(workflow.RoleManager, workflow.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.State.Version)

	stored, err := f.workflows.GetByApplicationID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, workflow.RoleDirector, stored.CurrentStage)
}

func TestRecordDecision_LazyCreateDisabled(t *testing.T) {
	f := newWorkflowFixture(t, WithLazyCreate(false))
	delete(f.workflows.states, 1)

	_, err := f.decide(workflow.RoleManager, workflow.DecisionApprove, "")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestRecordDecision_StaleWriteConflicts(t *testing.T) {
	f := newWorkflowFixture(t)

	// Another manager's approval lands between our read and our write.
	f.workflows.beforeUpdate = func() {
		f.workflows.beforeUpdate = nil
		other, _, err := workflow.RecordDecision(workflow.NewWorkflowState(1), workflow.RoleManager, workflow.DecisionReject, "racing")
		require.NoError(t, err)
		other.Version = 2
		f.workflows.put(other)
	}

	_, err := f.decide(workflow.RoleManager, workflow.DecisionApprove, "")
	assert.ErrorIs(t, err, port.ErrConflict)
	assert.Empty(t, f.publisher.types())

	stored, _ := f.workflows.GetByApplicationID(context.Background(), 1)
	assert.Equal(t, workflow.ResultFailed, stored.FinalResult)
}

func TestRecordDecision_FullChain(t *testing.T) {
	f := newWorkflowFixture(t)

	for _, role := range []workflow.Role{workflow.RoleManager, workflow.RoleDirector, workflow.RoleChairperson, workflow.RoleCEO} {
		_, err := f.decide(role, workflow.DecisionApprove, "ok")
		require.NoError(t, err, role)
	}

	state, err := f.svc.GetWorkflow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, workflow.ResultSuccessful, state.FinalResult)
	assert.Equal(t, workflow.RoleCEO, state.CurrentStage)
	assert.Equal(t, int64(5), state.Version)

	history, err := f.svc.History(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, history, 4)

	assert.Equal(t, []event.Type{
		event.TypeStageAdvanced,
		event.TypeStageAdvanced,
		event.TypeStageAdvanced,
		event.TypeApplicationApproved,
	}, f.publisher.types())

	_, err = f.decide(workflow.RoleCEO, workflow.DecisionApprove, "again")
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestGetWorkflow_UnknownApplication(t *testing.T) {
	f := newWorkflowFixture(t)
	_, err := f.svc.GetWorkflow(context.Background(), 42)
	assert.ErrorIs(t, err, port.ErrNotFound)
}
