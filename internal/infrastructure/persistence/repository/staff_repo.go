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
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/sqlite"
)

// StaffRepository implements port.StaffRepository
type StaffRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB, logger *zap.Logger) *StaffRepository {
	return &StaffRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts a staff member or replaces the mutable fields of an existing one
func (r *StaffRepository) Upsert(ctx context.Context, staff *entity.StaffMember) error {
	query := `
		INSERT INTO staff (id, full_name, role, lark_open_id, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			role = excluded.role,
			lark_open_id = excluded.lark_open_id,
			active = excluded.active
	`

	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now().UTC()
	}

	_, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		staff.ID,
		staff.FullName,
		staff.Role,
		staff.LarkOpenID,
		staff.Active,
		staff.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert staff", zap.String("id", staff.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert staff: %w", err)
	}
	return nil
}

// GetByID retrieves a staff member, or port.ErrNotFound
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*entity.StaffMember, error) {
	query := `
		SELECT id, full_name, role, lark_open_id, active, created_at
		FROM staff
		WHERE id = ?
	`

	var s entity.StaffMember
	err := sqlite.Conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.FullName, &s.Role, &s.LarkOpenID, &s.Active, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("staff %q: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get staff", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &s, nil
}

// ListActiveByRole retrieves the active staff holding role
func (r *StaffRepository) ListActiveByRole(ctx context.Context, role workflow.Role) ([]*entity.StaffMember, error) {
	query := `
		SELECT id, full_name, role, lark_open_id, active, created_at
		FROM staff
		WHERE role = ? AND active = 1
		ORDER BY id ASC
	`

	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, query, string(role))
	if err != nil {
		r.logger.Error("Failed to list staff by role", zap.String("role", string(role)), zap.Error(err))
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	members := []*entity.StaffMember{}
	for rows.Next() {
		var s entity.StaffMember
		if err := rows.Scan(&s.ID, &s.FullName, &s.Role, &s.LarkOpenID, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		members = append(members, &s)
	}
	return members, rows.Err()
}

var _ port.StaffRepository = (*StaffRepository)(nil)
