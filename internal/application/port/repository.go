package port

import (
	"context"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

// ApplicationRepository defines persistence operations for LoanApplication
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.LoanApplication) error
	GetByID(ctx context.Context, id int64) (*entity.LoanApplication, error)
	List(ctx context.Context, limit, offset int) ([]*entity.LoanApplication, error)
	ListAll(ctx context.Context) ([]*entity.LoanApplication, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// ClientRepository defines persistence operations for Client
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Client, error)
	ListAll(ctx context.Context) ([]*entity.Client, error)
}

// WorkflowRepository defines persistence operations for WorkflowState
type WorkflowRepository interface {
	// Create stores the first state of an application's workflow.
	// Returns ErrConflict if one already exists.
	Create(ctx context.Context, state *workflow.WorkflowState) error

	GetByApplicationID(ctx context.Context, applicationID int64) (*workflow.WorkflowState, error)

	// Update replaces the stored state with next only while the stored row
	// still has expectedVersion and expectedStage. Returns ErrConflict otherwise.
	Update(ctx context.Context, next *workflow.WorkflowState, expectedVersion int64, expectedStage workflow.Role) error
}

// HistoryRepository defines persistence operations for WorkflowHistory
type HistoryRepository interface {
	Create(ctx context.Context, h *entity.WorkflowHistory) error
	GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.WorkflowHistory, error)
}

// StaffRepository defines persistence operations for StaffMember
type StaffRepository interface {
	Upsert(ctx context.Context, staff *entity.StaffMember) error
	GetByID(ctx context.Context, id string) (*entity.StaffMember, error)
	ListActiveByRole(ctx context.Context, role workflow.Role) ([]*entity.StaffMember, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id int64) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error)
	ListPendingDelivery(ctx context.Context, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	UpdateDelivery(ctx context.Context, id int64, status, errorMsg string) error
}

// TransactionManager runs a function inside a database transaction. The
// transaction travels in ctx so repositories called from fn join it.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
