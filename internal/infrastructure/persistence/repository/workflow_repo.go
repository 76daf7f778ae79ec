package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/sqlite"
)

// WorkflowRepository implements port.WorkflowRepository. Decisions are kept
// as a JSON object keyed by role.
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) *WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores the first state of an application's workflow
func (r *WorkflowRepository) Create(ctx context.Context, state *workflow.WorkflowState) error {
	query := `
		INSERT INTO workflows (
			application_id, current_stage, final_result, decisions, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	decisions, err := json.Marshal(state.Decisions)
	if err != nil {
		return fmt.Errorf("failed to encode decisions: %w", err)
	}

	now := time.Now().UTC()
	_, err = sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		state.ApplicationID,
		string(state.CurrentStage),
		string(state.FinalResult),
		string(decisions),
		state.Version,
		now,
		now,
	)
	if err != nil {
		if mapped := classify(err); mapped != nil {
			return fmt.Errorf("workflow for application %d: %w", state.ApplicationID, mapped)
		}
		r.logger.Error("Failed to create workflow", zap.Int64("application_id", state.ApplicationID), zap.Error(err))
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

// GetByApplicationID retrieves the workflow of an application, or port.ErrNotFound
func (r *WorkflowRepository) GetByApplicationID(ctx context.Context, applicationID int64) (*workflow.WorkflowState, error) {
	query := `
		SELECT application_id, current_stage, final_result, decisions, version
		FROM workflows
		WHERE application_id = ?
	`

	var (
		state     workflow.WorkflowState
		stage     string
		result    string
		decisions string
	)
	err := sqlite.Conn(ctx, r.db).QueryRowContext(ctx, query, applicationID).Scan(
		&state.ApplicationID,
		&stage,
		&result,
		&decisions,
		&state.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workflow for application %d: %w", applicationID, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get workflow", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	state.CurrentStage = workflow.Role(stage)
	state.FinalResult = workflow.FinalResult(result)
	if err := json.Unmarshal([]byte(decisions), &state.Decisions); err != nil {
		r.logger.Error("Corrupt workflow decisions", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to decode decisions: %w", err)
	}
	return &state, nil
}

// Update writes next only if the stored row still matches expectedVersion
// and expectedStage. A concurrent writer makes this return port.ErrConflict.
func (r *WorkflowRepository) Update(ctx context.Context, next *workflow.WorkflowState, expectedVersion int64, expectedStage workflow.Role) error {
	query := `
		UPDATE workflows
		SET current_stage = ?, final_result = ?, decisions = ?, version = ?, updated_at = ?
		WHERE application_id = ? AND version = ? AND current_stage = ?
	`

	decisions, err := json.Marshal(next.Decisions)
	if err != nil {
		return fmt.Errorf("failed to encode decisions: %w", err)
	}

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		string(next.CurrentStage),
		string(next.FinalResult),
		string(decisions),
		next.Version,
		time.Now().UTC(),
		next.ApplicationID,
		expectedVersion,
		string(expectedStage),
	)
	if err != nil {
		r.logger.Error("Failed to update workflow", zap.Int64("application_id", next.ApplicationID), zap.Error(err))
		return fmt.Errorf("failed to update workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.Warn("Workflow changed concurrently",
			zap.Int64("application_id", next.ApplicationID),
			zap.Int64("expected_version", expectedVersion),
			zap.String("expected_stage", string(expectedStage)))
		return fmt.Errorf("workflow for application %d: %w", next.ApplicationID, port.ErrConflict)
	}
	return nil
}

var _ port.WorkflowRepository = (*WorkflowRepository)(nil)
