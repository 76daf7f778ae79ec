package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

// LoanService manages loan applications
type LoanService interface {
	// Submit stores a new application together with its initial workflow
	Submit(ctx context.Context, app *entity.LoanApplication) (*entity.LoanApplication, error)
	Get(ctx context.Context, id int64) (*entity.LoanApplication, error)
	List(ctx context.Context, limit, offset int) ([]*entity.LoanApplication, error)
}

type loanServiceImpl struct {
	appRepo      port.ApplicationRepository
	workflowRepo port.WorkflowRepository
	historyRepo  port.HistoryRepository
	txManager    port.TransactionManager
	publisher    EventPublisher
	logger       Logger
}

// NewLoanService creates a new LoanService. publisher may be nil.
func NewLoanService(
	appRepo port.ApplicationRepository,
	workflowRepo port.WorkflowRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	publisher EventPublisher,
	logger Logger,
) LoanService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &loanServiceImpl{
		appRepo:      appRepo,
		workflowRepo: workflowRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *loanServiceImpl) Submit(ctx context.Context, app *entity.LoanApplication) (*entity.LoanApplication, error) {
	if err := validateApplication(app); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	app.Status = workflow.StatusFor(workflow.NewWorkflowState(0))
	app.CreatedAt = now
	app.UpdatedAt = now

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.appRepo.Create(txCtx, app); err != nil {
			return fmt.Errorf("create application: %w", err)
		}

		state := workflow.NewWorkflowState(app.ID)
		if err := s.workflowRepo.Create(txCtx, &state); err != nil {
			return fmt.Errorf("create workflow: %w", err)
		}

		history := &entity.WorkflowHistory{
			ApplicationID: app.ID,
			Role:          string(workflow.RoleFieldOfficer),
			Decision:      string(workflow.DecisionApprove),
			FromStage:     string(workflow.RoleFieldOfficer),
			ToStage:       string(state.CurrentStage),
			Notes:         workflow.ImplicitApprovalNote,
			ActorID:       app.CreatedBy,
			CreatedAt:     now,
		}
		if err := s.historyRepo.Create(txCtx, history); err != nil {
			return fmt.Errorf("create history: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit application", "error", err, "client_name", app.ClientName)
		return nil, err
	}

	s.logger.Info("Application submitted", "application_id", app.ID, "loan_amount", app.LoanAmount.String())
	s.publisher.DispatchAsync(ctx, event.Submitted(app.ID, uuid.NewString()))
	return app, nil
}

func (s *loanServiceImpl) Get(ctx context.Context, id int64) (*entity.LoanApplication, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get application", "error", err, "application_id", id)
		return nil, err
	}
	return app, nil
}

func (s *loanServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.LoanApplication, error) {
	limit, offset = clampPage(limit, offset)
	apps, err := s.appRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list applications", "error", err)
		return nil, err
	}
	return apps, nil
}

func validateApplication(app *entity.LoanApplication) error {
	app.ClientName = strings.TrimSpace(app.ClientName)
	if app.ClientName == "" {
		return &money.ValidationError{Field: "client name", Reason: "required"}
	}
	if !app.LoanAmount.IsPositive() {
		return &money.ValidationError{Field: "loan amount", Value: app.LoanAmount.String(), Reason: "must be greater than zero"}
	}
	if app.MonthlyIncome.IsNegative() {
		return &money.ValidationError{Field: "monthly income", Value: app.MonthlyIncome.String(), Reason: "must not be negative"}
	}
	return nil
}

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
