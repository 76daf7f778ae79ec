package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

// NotificationService turns workflow events into in-app notifications
type NotificationService interface {
	port.Notifier

	// HandleWorkflowEvent notifies the audience of a workflow event. It is
	// meant to be subscribed to the dispatcher.
	HandleWorkflowEvent(ctx context.Context, evt *event.Event) error

	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	staffRepo        port.StaffRepository
	appRepo          port.ApplicationRepository
	notifier         port.Notifier
	logger           Logger
	pushEnabled      bool
}

// NotificationOption configures the notification service
type NotificationOption func(*notificationServiceImpl)

// WithNotifier replaces the default notifier, which stores notification rows
func WithNotifier(n port.Notifier) NotificationOption {
	return func(s *notificationServiceImpl) {
		s.notifier = n
	}
}

// WithPushDelivery marks new notifications for delivery to Lark. When
// disabled they are stored as SKIPPED.
func WithPushDelivery(enabled bool) NotificationOption {
	return func(s *notificationServiceImpl) {
		s.pushEnabled = enabled
	}
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	staffRepo port.StaffRepository,
	appRepo port.ApplicationRepository,
	logger Logger,
	opts ...NotificationOption,
) NotificationService {
	s := &notificationServiceImpl{
		notificationRepo: notificationRepo,
		staffRepo:        staffRepo,
		appRepo:          appRepo,
		logger:           logger,
	}
	s.notifier = s
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify stores a notification for userID
func (s *notificationServiceImpl) Notify(ctx context.Context, userID, message, relatedEntityType string, relatedEntityID int64) error {
	status := entity.DeliverySkipped
	if s.pushEnabled {
		status = entity.DeliveryPending
	}

	n := &entity.Notification{
		UserID:            userID,
		Message:           message,
		RelatedEntityType: relatedEntityType,
		RelatedEntityID:   relatedEntityID,
		DeliveryStatus:    status,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification for %s: %w", userID, err)
	}
	return nil
}

func (s *notificationServiceImpl) HandleWorkflowEvent(ctx context.Context, evt *event.Event) error {
	wev, err := evt.Workflow()
	if err != nil {
		return err
	}

	notice, ok := workflow.NotificationFor(wev)
	if !ok {
		return nil
	}

	recipients, err := s.recipients(ctx, notice, wev.ApplicationID)
	if err != nil {
		s.logger.Error("Failed to resolve notification recipients",
			"error", err,
			"application_id", wev.ApplicationID,
			"event_id", evt.ID,
		)
		return err
	}
	if len(recipients) == 0 {
		s.logger.Info("No recipients for notification",
			"application_id", wev.ApplicationID,
			"audience", notice.Audience,
			"role", notice.Role,
		)
		return nil
	}

	var errs []error
	for _, userID := range recipients {
		if err := s.notifier.Notify(ctx, userID, notice.Message, entity.EntityLoanApplication, wev.ApplicationID); err != nil {
			s.logger.Error("Failed to notify user", "error", err, "user_id", userID, "application_id", wev.ApplicationID)
			errs = append(errs, err)
		}
	}

	s.logger.Info("Workflow notification sent",
		"application_id", wev.ApplicationID,
		"event", wev.Kind,
		"recipients", len(recipients),
		"failed", len(errs),
	)
	return errors.Join(errs...)
}

func (s *notificationServiceImpl) recipients(ctx context.Context, notice workflow.Notice, applicationID int64) ([]string, error) {
	switch notice.Audience {
	case workflow.AudienceRole:
		staff, err := s.staffRepo.ListActiveByRole(ctx, notice.Role)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(staff))
		for _, m := range staff {
			ids = append(ids, m.ID)
		}
		return ids, nil
	case workflow.AudienceCreator:
		app, err := s.appRepo.GetByID(ctx, applicationID)
		if err != nil {
			return nil, err
		}
		if app.CreatedBy == "" {
			return nil, nil
		}
		return []string{app.CreatedBy}, nil
	}
	return nil, fmt.Errorf("unknown audience %q", notice.Audience)
}

func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, error) {
	limit, offset = clampPage(limit, offset)
	return s.notificationRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id int64) error {
	return s.notificationRepo.MarkRead(ctx, id)
}
