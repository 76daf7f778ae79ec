// Package container wires the application's components together and owns
// their lifecycle.
package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/dispatcher"
	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/application/service"
	"github.com/2caleb/gold-charp-investments-sub003/internal/config"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/sqlite"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/worker"
	"github.com/2caleb/gold-charp-investments-sub003/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	startWorkers bool

	db           *database.DB
	tx           *sqlite.DB
	repositories *RepositoryBundle
	lark         *LarkBundle
	archive      port.FileStorage
	dispatcher   dispatcher.Dispatcher
	services     *ServiceBundle
	workers      *worker.Manager

	mu     sync.Mutex
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Applications  port.ApplicationRepository
	Clients       port.ClientRepository
	Workflows     port.WorkflowRepository
	History       port.HistoryRepository
	Staff         port.StaffRepository
	Notifications port.NotificationRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Loans         service.LoanService
	Workflow      service.WorkflowService
	Clients       service.ClientService
	Matches       service.MatchService
	Notifications service.NotificationService
	Transfer      service.TransferService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Option configures a Container
type Option func(*Container)

// WithoutWorkers skips starting background workers, for one-shot CLI commands.
func WithoutWorkers() Option {
	return func(c *Container) {
		c.startWorkers = false
	}
}

// New creates a container from configuration. Call Start to initialize it.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Container{
		config:       cfg,
		logger:       logger,
		startWorkers: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start initializes all components in dependency order:
// database, Lark, storage, dispatcher, services, workers.
// On failure everything already opened is closed again.
func (c *Container) Start(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	defer func() {
		if err != nil {
			c.teardown()
		}
	}()

	c.logger.Info("Starting container initialization")

	dbBundle, err := ProvideDatabase(c.config.Database, c.logger.Named("database"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = dbBundle.DB
	c.tx = dbBundle.TransactionMgr

	if c.repositories, err = ProvideRepositories(c.db.DB, c.logger.Named("repository")); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if c.lark, err = ProvideLark(c.config.Lark, c.logger.Named("lark")); err != nil {
		return fmt.Errorf("failed to initialize lark: %w", err)
	}

	c.archive = ProvideStorage(c.config.Storage, c.logger.Named("storage"))
	c.dispatcher = ProvideDispatcher(c.config.Notification, c.logger)

	c.services, err = ProvideServices(&ServiceDeps{
		Repos:       c.repositories,
		TxManager:   c.tx,
		Dispatcher:  c.dispatcher,
		Archive:     c.archive,
		LazyCreate:  c.config.Workflow.LazyCreate,
		PushEnabled: c.lark != nil,
		Logger:      c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	c.workers = ProvideWorkers(c.config.Notification, c.repositories, c.messenger(), c.logger)
	if c.startWorkers {
		workerCtx, cancel := context.WithCancel(ctx)
		c.cancel = cancel
		if err := c.workers.StartAll(workerCtx); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
	}

	c.ready.Store(true)
	c.logger.Info("Container started",
		zap.Bool("lark", c.lark != nil),
		zap.Int("workers", c.workers.Count()))
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}
	c.logger.Info("Closing container")

	err := c.teardown()
	c.closed.Store(true)
	c.ready.Store(false)

	if err != nil {
		c.logger.Error("Container closed with errors", zap.Error(err))
		return err
	}
	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) teardown() error {
	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	// Waits for in-flight notification handlers, which still need the database.
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil && !errors.Is(err, dispatcher.ErrClosed) {
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		c.db = nil
	}

	return errors.Join(errs...)
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, healthy bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: msg}
		if !healthy {
			status.Overall = false
		}
	}

	if c.db == nil {
		set("database", false, "not initialized")
	} else if err := c.db.PingContext(ctx); err != nil {
		set("database", false, fmt.Sprintf("ping failed: %v", err))
	} else {
		set("database", true, "")
	}

	set("dispatcher", c.dispatcher != nil, "")

	switch {
	case c.workers == nil:
		set("workers", false, "not initialized")
	case c.workers.Count() == 0:
		set("workers", true, "no workers registered")
	case !c.startWorkers:
		set("workers", true, "disabled")
	default:
		set("workers", c.workers.IsRunning(), fmt.Sprintf("worker count: %d", c.workers.Count()))
	}

	if c.lark == nil {
		status.Components["lark"] = ComponentHealth{Healthy: true, Message: "disabled"}
	} else {
		status.Components["lark"] = ComponentHealth{Healthy: true}
	}

	return status
}

func (c *Container) messenger() port.MessageSender {
	if c.lark == nil {
		return nil
	}
	return c.lark.Messenger
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Workers returns the worker manager.
func (c *Container) Workers() *worker.Manager {
	return c.workers
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// NewLoggerAdapter wraps logger for packages that take a key/value Logger.
func NewLoggerAdapter(logger *zap.Logger) service.Logger {
	return &zapLoggerAdapter{logger: logger}
}

// zapLoggerAdapter adapts zap.Logger to the service and dispatcher Logger interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
