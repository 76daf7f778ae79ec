package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
)

// DeliveryConfig holds configuration for the delivery worker
type DeliveryConfig struct {
	PollInterval time.Duration
	BatchSize    int
	SendTimeout  time.Duration
}

// DefaultDeliveryConfig returns default configuration
func DefaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		PollInterval: 10 * time.Second,
		BatchSize:    20,
		SendTimeout:  15 * time.Second,
	}
}

// DeliveryStats is a snapshot of the worker's counters
type DeliveryStats struct {
	Sent      int       `json:"sent"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// DeliveryWorker pushes PENDING notifications to their recipients on Lark.
// Recipients without a Lark open id are marked SKIPPED.
type DeliveryWorker struct {
	config           DeliveryConfig
	notificationRepo port.NotificationRepository
	staffRepo        port.StaffRepository
	sender           port.MessageSender
	logger           *zap.Logger

	mu        sync.RWMutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
	stats     DeliveryStats
}

// NewDeliveryWorker creates a new delivery worker
func NewDeliveryWorker(
	config DeliveryConfig,
	notificationRepo port.NotificationRepository,
	staffRepo port.StaffRepository,
	sender port.MessageSender,
	logger *zap.Logger,
) *DeliveryWorker {
	defaults := DefaultDeliveryConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaults.SendTimeout
	}
	return &DeliveryWorker{
		config:           config,
		notificationRepo: notificationRepo,
		staffRepo:        staffRepo,
		sender:           sender,
		logger:           logger,
	}
}

// Start begins the polling loop
func (w *DeliveryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		return fmt.Errorf("delivery worker already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("DeliveryWorker started",
		zap.Duration("poll_interval", w.config.PollInterval),
		zap.Int("batch_size", w.config.BatchSize))

	go w.pollLoop(loopCtx, w.done)
	return nil
}

// Stop cancels the loop and waits for the current batch to finish
func (w *DeliveryWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	stats := w.Stats()
	w.logger.Info("DeliveryWorker stopped",
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped))
	return nil
}

// Name returns the worker name for identification
func (w *DeliveryWorker) Name() string {
	return "DeliveryWorker"
}

// Stats returns a copy of the worker's counters
func (w *DeliveryWorker) Stats() DeliveryStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *DeliveryWorker) pollLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("Failed to process pending notifications", zap.Error(err))
			}
		}
	}
}

// ProcessPending delivers one batch of pending notifications and returns how
// many were handled. A failed send marks that notification FAILED and moves on.
func (w *DeliveryWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.notificationRepo.ListPendingDelivery(ctx, w.config.BatchSize)
	if err != nil {
		w.recordError(err)
		return 0, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	for _, n := range pending {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		status, errMsg := w.deliver(ctx, n)
		if err := w.notificationRepo.UpdateDelivery(ctx, n.ID, status, errMsg); err != nil {
			w.logger.Error("Failed to record delivery",
				zap.Int64("notification_id", n.ID),
				zap.String("status", status),
				zap.Error(err))
			continue
		}
		w.count(status)
	}

	w.mu.Lock()
	w.stats.LastRun = time.Now()
	w.mu.Unlock()
	return len(pending), nil
}

func (w *DeliveryWorker) deliver(ctx context.Context, n *entity.Notification) (string, string) {
	staff, err := w.staffRepo.GetByID(ctx, n.UserID)
	if errors.Is(err, port.ErrNotFound) || (err == nil && staff.LarkOpenID == "") {
		return entity.DeliverySkipped, ""
	}
	if err != nil {
		return entity.DeliveryFailed, err.Error()
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.config.SendTimeout)
	defer cancel()

	if err := w.sender.SendMessage(sendCtx, staff.LarkOpenID, n.Message); err != nil {
		w.logger.Warn("Failed to push notification",
			zap.Int64("notification_id", n.ID),
			zap.String("user_id", n.UserID),
			zap.Error(err))
		return entity.DeliveryFailed, err.Error()
	}
	return entity.DeliverySent, ""
}

func (w *DeliveryWorker) count(status string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch status {
	case entity.DeliverySent:
		w.stats.Sent++
	case entity.DeliveryFailed:
		w.stats.Failed++
	case entity.DeliverySkipped:
		w.stats.Skipped++
	}
}

func (w *DeliveryWorker) recordError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastError = err.Error()
}
