package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-parish-admin/internal/config"
	"go-parish-admin/internal/handler"
	"go-parish-admin/internal/middleware"
)

var mutatingRoles = []string{"admin", "staff"}

type Handlers struct {
	Records     *handler.RecordHandler
	Trash       *handler.TrashHandler
	Audit       *handler.AuditHandler
	Pending     *handler.PendingHandler
	Attachments *handler.AttachmentHandler
	WS          *handler.WSHandler
	Health      *handler.HealthHandler
	// Files is nil unless objects live on the local filesystem.
	Files *handler.FilesHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	if h.Files != nil {
		r.Get("/files/{bucket}/*", h.Files.Serve)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(authMiddleware.RequireAuth)

		// Upgraded connections outlive any request timeout.
		api.Get("/ws", h.WS.Connect)

		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(cfg.RequestTimeout))
			mutate := api.With(authMiddleware.RequireRoles(mutatingRoles...))

			api.Get("/records/{table}", h.Records.List)
			api.Get("/records/{table}/{id}", h.Records.Get)
			mutate.Post("/records/{table}", h.Records.Create)
			mutate.Patch("/records/{table}/{id}", h.Records.Update)
			mutate.Delete("/records/{table}/{id}", h.Records.Delete)

			api.Get("/trash", h.Trash.List)
			api.Get("/trash/{id}", h.Trash.Get)
			mutate.Post("/trash/{id}/restore", h.Trash.Restore)
			mutate.Delete("/trash/{id}", h.Trash.Purge)

			api.Get("/audit", h.Audit.List)

			api.Get("/pending", h.Pending.List)
			mutate.Post("/pending/{id}/resolve", h.Pending.Resolve)

			mutate.Post("/attachments", h.Attachments.Upload)
		})
	})

	return r
}
