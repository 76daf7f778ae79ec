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

const notificationColumns = `
	id, user_id, message, related_entity_type, related_entity_id,
	is_read, delivery_status, error_message, sent_at, created_at`

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new notification record
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			user_id, message, related_entity_type, related_entity_id,
			is_read, delivery_status, error_message, sent_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.DeliveryStatus == "" {
		n.DeliveryStatus = entity.DeliveryPending
	}

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		n.UserID,
		n.Message,
		n.RelatedEntityType,
		n.RelatedEntityID,
		n.IsRead,
		n.DeliveryStatus,
		n.ErrorMessage,
		n.SentAt,
		n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("user_id", n.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// GetByID retrieves a notification, or port.ErrNotFound
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

	n, err := scanNotification(sqlite.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get notification", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByUser retrieves a user's notifications newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	return r.query(ctx, query, userID, limit, offset)
}

// ListPendingDelivery retrieves notifications still waiting to be pushed, oldest first
func (r *NotificationRepository) ListPendingDelivery(ctx context.Context, limit int) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE delivery_status = ?
		ORDER BY id ASC
		LIMIT ?`
	return r.query(ctx, query, entity.DeliveryPending, limit)
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("notification %d: %w", id, port.ErrNotFound)
	}
	return nil
}

// UpdateDelivery records the outcome of a push attempt. sent_at is set only
// when status is SENT.
func (r *NotificationRepository) UpdateDelivery(ctx context.Context, id int64, status, errorMsg string) error {
	query := `
		UPDATE notifications
		SET delivery_status = ?, error_message = ?, sent_at = ?
		WHERE id = ?
	`

	var sentAt *time.Time
	if status == entity.DeliverySent {
		now := time.Now().UTC()
		sentAt = &now
	}

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query, status, errorMsg, sentAt, id)
	if err != nil {
		r.logger.Error("Failed to update delivery status",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update delivery status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("notification %d: %w", id, port.ErrNotFound)
	}
	return nil
}

func (r *NotificationRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.Notification, error) {
	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*entity.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var (
		n      entity.Notification
		sentAt sql.NullTime
	)
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Message,
		&n.RelatedEntityType,
		&n.RelatedEntityID,
		&n.IsRead,
		&n.DeliveryStatus,
		&n.ErrorMessage,
		&sentAt,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}
	return &n, nil
}

var _ port.NotificationRepository = (*NotificationRepository)(nil)
