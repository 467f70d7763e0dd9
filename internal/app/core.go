package app

import (
	"context"
	"fmt"
	"log/slog"

	"go-parish-admin/internal/catalog"
	"go-parish-admin/internal/config"
	"go-parish-admin/internal/database"
	"go-parish-admin/internal/event"
	"go-parish-admin/internal/repository"
	"go-parish-admin/internal/service"
	"go-parish-admin/internal/storage"
)

// Core holds the services shared by the HTTP server and the operator CLI.
type Core struct {
	Config   *config.Config
	DB       *database.DB
	Registry *catalog.Registry
	Bus      *event.InMemoryBus
	Objects  storage.ObjectStore
	// Local is set when Objects is the filesystem store, so the server can serve it.
	Local *storage.LocalStore

	Records     *service.RecordService
	Lifecycle   *service.LifecycleService
	Audit       *service.AuditService
	Pending     *service.PendingService
	Attachments *service.AttachmentService

	closers []func()
}

func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	core := &Core{Config: cfg, Registry: catalog.Default(), Bus: event.NewBus()}

	if err := core.openObjectStore(ctx); err != nil {
		return nil, err
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	core.DB = db
	core.closers = append(core.closers, db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		core.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	slog.Info("database ready")

	auditService := service.NewAuditService(repository.NewAuditRepository(db.Pool))
	pendingRepo := repository.NewPendingRepository(db.Pool)
	deps := service.LifecycleDeps{
		Registry:    core.Registry,
		Records:     repository.NewRecordStore(db.SQL(), core.Registry),
		Trash:       repository.NewTrashRepository(db.Pool),
		Audit:       auditService,
		Objects:     core.Objects,
		Pending:     pendingRepo,
		Bus:         core.Bus,
		StepTimeout: cfg.LifecycleStepTimeout,
	}

	core.Audit = auditService
	core.Records = service.NewRecordService(deps)
	core.Lifecycle = service.NewLifecycleService(deps)
	core.Pending = service.NewPendingService(pendingRepo)
	core.Attachments = service.NewAttachmentService(core.Registry, core.Objects, cfg.MaxUploadSize)

	return core, nil
}

func (c *Core) openObjectStore(ctx context.Context) error {
	switch c.Config.ObjectStoreDriver {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, c.Config.GCSCredentialsFile, c.Config.ObjectStorePublicURL)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		c.Objects = gcs
		c.closers = append(c.closers, func() { _ = gcs.Close() })
	default:
		local, err := storage.NewLocalStore(c.Config.ObjectStoreRoot, c.Config.ObjectStorePublicURL)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		c.Objects = local
		c.Local = local
	}

	slog.Info("object storage ready", "driver", c.Config.ObjectStoreDriver)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (c *Core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
