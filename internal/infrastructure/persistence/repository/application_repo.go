package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/sqlite"
)

const applicationColumns = `
	id, client_name, phone_number, id_number, loan_amount, loan_type,
	employment_status, monthly_income, status, created_by, created_at, updated_at`

// ApplicationRepository implements port.ApplicationRepository
type ApplicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new loan application repository
func NewApplicationRepository(db *sql.DB, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a loan application and sets its ID
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			client_name, phone_number, id_number, loan_amount, loan_type,
			employment_status, monthly_income, status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		app.ClientName,
		app.PhoneNumber,
		app.IDNumber,
		app.LoanAmount,
		app.LoanType,
		app.EmploymentStatus,
		app.MonthlyIncome,
		app.Status,
		app.CreatedBy,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.String("client_name", app.ClientName), zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	app.ID = id
	return nil
}

// GetByID retrieves a loan application, or port.ErrNotFound
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*entity.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = ?`

	app, err := scanApplication(sqlite.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("application %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// List retrieves applications newest first
func (r *ApplicationRepository) List(ctx context.Context, limit, offset int) ([]*entity.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications ORDER BY id DESC LIMIT ? OFFSET ?`
	return r.query(ctx, query, limit, offset)
}

// ListAll retrieves every application in insertion order
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]*entity.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications ORDER BY id ASC`
	return r.query(ctx, query)
}

// UpdateStatus sets the mirrored workflow status
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE loan_applications SET status = ?, updated_at = ? WHERE id = ?`

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update status", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("application %d: %w", id, port.ErrNotFound)
	}
	return nil
}

func (r *ApplicationRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.LoanApplication, error) {
	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []*entity.LoanApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*entity.LoanApplication, error) {
	var app entity.LoanApplication
	err := row.Scan(
		&app.ID,
		&app.ClientName,
		&app.PhoneNumber,
		&app.IDNumber,
		&app.LoanAmount,
		&app.LoanType,
		&app.EmploymentStatus,
		&app.MonthlyIncome,
		&app.Status,
		&app.CreatedBy,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
