package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-parish-admin/internal/config"
	"go-parish-admin/internal/handler"
	"go-parish-admin/internal/logger"
	"go-parish-admin/internal/middleware"
	"go-parish-admin/internal/router"
	"go-parish-admin/internal/tracing"
	"go-parish-admin/internal/websocket"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	ctx := context.Background()
	shutdownTracing, err := tracing.Setup(ctx, cfg.OTelEndpoint, cfg.OTelServiceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	core, err := NewCore(ctx, cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	verifier, err := middleware.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		core.Close()
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(core.Bus)
	go hub.Run(hubCtx)

	handlers := router.Handlers{
		Records:     handler.NewRecordHandler(core.Records, core.Lifecycle),
		Trash:       handler.NewTrashHandler(core.Lifecycle),
		Audit:       handler.NewAuditHandler(core.Audit),
		Pending:     handler.NewPendingHandler(core.Pending),
		Attachments: handler.NewAttachmentHandler(core.Attachments),
		WS:          handler.NewWSHandler(hub, cfg.CORSOrigins),
		Health:      handler.NewHealthHandler(core.DB.Pool),
	}
	if core.Local != nil {
		handlers.Files = handler.NewFilesHandler(core.Local)
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.New(cfg, authMiddleware, handlers),
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			hubCancel,
			core.Close,
			func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(flushCtx); err != nil {
					slog.Warn("tracing shutdown failed", "error", err)
				}
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
