package container

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/dispatcher"
	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/application/service"
	"github.com/2caleb/gold-charp-investments-sub003/internal/config"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/event"
	infraLark "github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/external/lark"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/repository"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/sqlite"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/spreadsheet"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/storage"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/worker"
	"github.com/2caleb/gold-charp-investments-sub003/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// LarkBundle holds the Lark client and the sender built on it.
type LarkBundle struct {
	Client    *infraLark.SDKClient
	Messenger port.MessageSender
}

// ProvideDatabase opens the database, applying migrations first when
// cfg.AutoMigrate is set.
func ProvideDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.Path, logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &RepositoryBundle{
		Applications:  repository.NewApplicationRepository(sqlDB, logger),
		Clients:       repository.NewClientRepository(sqlDB, logger),
		Workflows:     repository.NewWorkflowRepository(sqlDB, logger),
		History:       repository.NewHistoryRepository(sqlDB, logger),
		Staff:         repository.NewStaffRepository(sqlDB, logger),
		Notifications: repository.NewNotificationRepository(sqlDB, logger),
	}, nil
}

// ProvideLark creates the Lark client and messenger. It returns nil when no
// credentials are configured.
func ProvideLark(cfg config.LarkConfig, logger *zap.Logger) (*LarkBundle, error) {
	if !cfg.Enabled() {
		logger.Info("Lark credentials not configured, push delivery disabled")
		return nil, nil
	}

	client, err := infraLark.NewSDKClient(infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		BaseURL:   cfg.BaseURL,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &LarkBundle{
		Client:    client,
		Messenger: infraLark.NewMessenger(client, logger),
	}, nil
}

// ProvideStorage creates the archive for uploaded workbooks.
func ProvideStorage(cfg config.StorageConfig, logger *zap.Logger) port.FileStorage {
	if cfg.ImportDir == "" {
		return nil
	}
	return storage.NewLocalFileStorage(cfg.ImportDir, logger)
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(cfg config.NotificationConfig, logger *zap.Logger) dispatcher.Dispatcher {
	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(&zapLoggerAdapter{logger: logger.Named("dispatcher")}),
		dispatcher.WithAsyncTimeout(cfg.AsyncTimeout),
	)
}

// ServiceDeps holds what the application services are built from.
type ServiceDeps struct {
	Repos       *RepositoryBundle
	TxManager   port.TransactionManager
	Dispatcher  dispatcher.Dispatcher
	Archive     port.FileStorage
	LazyCreate  bool
	PushEnabled bool
	Logger      *zap.Logger
}

// ProvideServices creates the application services and subscribes the
// notification service to workflow events.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.TxManager == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("repositories, transaction manager and dispatcher are required")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger.Named("service")}
	repos := deps.Repos

	loans := service.NewLoanService(
		repos.Applications, repos.Workflows, repos.History, deps.TxManager, deps.Dispatcher, logger,
	)
	workflows := service.NewWorkflowService(
		repos.Applications, repos.Workflows, repos.History, deps.TxManager, logger,
		service.WithPublisher(deps.Dispatcher),
		service.WithLazyCreate(deps.LazyCreate),
	)
	clients := service.NewClientService(repos.Clients, logger)
	notifications := service.NewNotificationService(
		repos.Notifications, repos.Staff, repos.Applications, logger,
		service.WithPushDelivery(deps.PushEnabled),
	)

	deps.Dispatcher.Subscribe("notifications", notifications.HandleWorkflowEvent, event.WorkflowTypes...)

	return &ServiceBundle{
		Loans:         loans,
		Workflow:      workflows,
		Clients:       clients,
		Matches:       service.NewMatchService(repos.Clients, repos.Applications, logger),
		Notifications: notifications,
		Transfer: service.NewTransferService(
			spreadsheet.NewExcelCodec(deps.Logger.Named("spreadsheet")),
			repos.Applications, repos.Clients, loans, clients, deps.Archive, logger,
		),
	}, nil
}

// ProvideWorkers creates the worker manager. The delivery worker is
// registered only when a message sender is available.
func ProvideWorkers(cfg config.NotificationConfig, repos *RepositoryBundle, sender port.MessageSender, logger *zap.Logger) *worker.Manager {
	manager := worker.NewManager(logger.Named("worker"))
	if sender == nil {
		return manager
	}

	manager.Register(worker.NewDeliveryWorker(worker.DeliveryConfig{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		SendTimeout:  cfg.SendTimeout,
	}, repos.Notifications, repos.Staff, sender, logger.Named("delivery")))
	return manager
}
