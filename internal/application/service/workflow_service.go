package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/reason"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
	"github.com/2caleb/gold-charp-investments-sub003/pkg/utils"
)

// DecisionCommand is a role's verdict on an application.
type DecisionCommand struct {
	ApplicationID int64
	Role          workflow.Role
	Decision      workflow.Decision
	Notes         string
	ActorID       string
}

// DecisionResult is the persisted outcome of a decision.
type DecisionResult struct {
	State          workflow.WorkflowState `json:"workflow"`
	Event          workflow.Event         `json:"event"`
	Status         string                 `json:"status"`
	NotesGenerated bool                   `json:"notes_generated"`
}

// WorkflowService records decisions against loan applications
type WorkflowService interface {
	RecordDecision(ctx context.Context, cmd DecisionCommand) (*DecisionResult, error)
	GetWorkflow(ctx context.Context, applicationID int64) (*workflow.WorkflowState, error)
	History(ctx context.Context, applicationID int64) ([]*entity.WorkflowHistory, error)
}

type workflowServiceImpl struct {
	appRepo      port.ApplicationRepository
	workflowRepo port.WorkflowRepository
	historyRepo  port.HistoryRepository
	txManager    port.TransactionManager
	publisher    EventPublisher
	logger       Logger
	lazyCreate   bool
}

// WorkflowOption configures the workflow service
type WorkflowOption func(*workflowServiceImpl)

// WithPublisher sets where workflow events are sent after a decision commits
func WithPublisher(p EventPublisher) WorkflowOption {
	return func(s *workflowServiceImpl) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLazyCreate controls whether a missing workflow is created on first
// decision instead of failing with port.ErrNotFound. Enabled by default.
func WithLazyCreate(enabled bool) WorkflowOption {
	return func(s *workflowServiceImpl) {
		s.lazyCreate = enabled
	}
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	appRepo port.ApplicationRepository,
	workflowRepo port.WorkflowRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	logger Logger,
	opts ...WorkflowOption,
) WorkflowService {
	s := &workflowServiceImpl{
		appRepo:      appRepo,
		workflowRepo: workflowRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		publisher:    nopPublisher{},
		logger:       logger,
		lazyCreate:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *workflowServiceImpl) RecordDecision(ctx context.Context, cmd DecisionCommand) (*DecisionResult, error) {
	app, err := s.appRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("load application %d: %w", cmd.ApplicationID, err)
	}

	current, created, err := s.load(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	notes := utils.SanitizeString(cmd.Notes)
	generated := false
	if cmd.Decision == workflow.DecisionReject && notes == "" {
		notes = s.draftRejection(cmd.Role, app)
		generated = true
	}

	next, ev, err := workflow.RecordDecision(*current, cmd.Role, cmd.Decision, notes)
	if err != nil {
		s.logger.Info("Decision refused",
			"application_id", app.ID,
			"role", cmd.Role,
			"stage", current.CurrentStage,
			"error", err,
		)
		return nil, err
	}
	next.Version = current.Version + 1
	status := workflow.StatusFor(next)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if created {
			if err := s.workflowRepo.Create(txCtx, current); err != nil {
				return fmt.Errorf("create workflow: %w", err)
			}
		}
		if err := s.workflowRepo.Update(txCtx, &next, current.Version, current.CurrentStage); err != nil {
			return fmt.Errorf("update workflow: %w", err)
		}
		if err := s.appRepo.UpdateStatus(txCtx, app.ID, status); err != nil {
			return fmt.Errorf("update application status: %w", err)
		}

		history := &entity.WorkflowHistory{
			ApplicationID: app.ID,
			Role:          string(cmd.Role),
			Decision:      string(cmd.Decision),
			FromStage:     string(current.CurrentStage),
			ToStage:       historyTarget(next),
			Notes:         notes,
			ActorID:       cmd.ActorID,
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record decision", "error", err, "application_id", app.ID, "role", cmd.Role)
		return nil, err
	}

	s.logger.Info("Decision recorded",
		"application_id", app.ID,
		"role", cmd.Role,
		"decision", cmd.Decision,
		"event", ev.Kind,
		"version", next.Version,
	)
	s.publisher.DispatchAsync(ctx, event.FromWorkflow(ev, uuid.NewString()))

	return &DecisionResult{
		State:          next,
		Event:          ev,
		Status:         status,
		NotesGenerated: generated,
	}, nil
}

func (s *workflowServiceImpl) GetWorkflow(ctx context.Context, applicationID int64) (*workflow.WorkflowState, error) {
	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		return nil, fmt.Errorf("load application %d: %w", applicationID, err)
	}
	state, _, err := s.load(ctx, applicationID)
	return state, err
}

func (s *workflowServiceImpl) History(ctx context.Context, applicationID int64) ([]*entity.WorkflowHistory, error) {
	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		return nil, fmt.Errorf("load application %d: %w", applicationID, err)
	}
	return s.historyRepo.GetByApplicationID(ctx, applicationID)
}

// load returns the stored workflow, or a fresh unsaved one when lazy
// creation is enabled and none exists. created reports the latter.
func (s *workflowServiceImpl) load(ctx context.Context, applicationID int64) (*workflow.WorkflowState, bool, error) {
	state, err := s.workflowRepo.GetByApplicationID(ctx, applicationID)
	if err == nil {
		return state, false, nil
	}
	if !errors.Is(err, port.ErrNotFound) || !s.lazyCreate {
		return nil, false, fmt.Errorf("load workflow %d: %w", applicationID, err)
	}

	s.logger.Info("Workflow missing, creating default", "application_id", applicationID)
	fresh := workflow.NewWorkflowState(applicationID)
	return &fresh, true, nil
}

func (s *workflowServiceImpl) draftRejection(role workflow.Role, app *entity.LoanApplication) string {
	msg, err := reason.GenerateRejectionReason(role, app.EmploymentStatus, app.LoanAmount.String(), app.MonthlyIncome.String())
	if err != nil {
		s.logger.Info("Falling back to standard rejection note", "application_id", app.ID, "error", err)
		return reason.RoleBoilerplate(role)
	}
	return msg
}

func historyTarget(next workflow.WorkflowState) string {
	if next.IsTerminal() {
		return string(next.FinalResult)
	}
	return string(next.CurrentStage)
}
