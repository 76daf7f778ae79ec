package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a history record
func (r *HistoryRepository) Create(ctx context.Context, h *entity.WorkflowHistory) error {
	query := `
		INSERT INTO workflow_history (
			application_id, role, decision, from_stage, to_stage, notes, actor_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		h.ApplicationID,
		h.Role,
		h.Decision,
		h.FromStage,
		h.ToStage,
		h.Notes,
		h.ActorID,
		h.CreatedAt,
	)
	if err != nil {
		if mapped := classify(err); mapped != nil {
			return fmt.Errorf("history for application %d: %w", h.ApplicationID, mapped)
		}
		r.logger.Error("Failed to create history record", zap.Int64("application_id", h.ApplicationID), zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	h.ID = id
	return nil
}

// GetByApplicationID retrieves all history records for an application, oldest first
func (r *HistoryRepository) GetByApplicationID(ctx context.Context, applicationID int64) ([]*entity.WorkflowHistory, error) {
	query := `
		SELECT id, application_id, role, decision, from_stage, to_stage, notes, actor_id, created_at
		FROM workflow_history
		WHERE application_id = ?
		ORDER BY id ASC
	`

	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to get history by application ID", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	records := []*entity.WorkflowHistory{}
	for rows.Next() {
		var record entity.WorkflowHistory
		err := rows.Scan(
			&record.ID,
			&record.ApplicationID,
			&record.Role,
			&record.Decision,
			&record.FromStage,
			&record.ToStage,
			&record.Notes,
			&record.ActorID,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return records, nil
}

var _ port.HistoryRepository = (*HistoryRepository)(nil)
