package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmaeye/pharmaeye-backend/api/controllers"
	"github.com/pharmaeye/pharmaeye-backend/api/middleware"
	"github.com/pharmaeye/pharmaeye-backend/internal/auth"
	"github.com/pharmaeye/pharmaeye-backend/internal/backup"
	"github.com/pharmaeye/pharmaeye-backend/internal/drugs"
	"github.com/pharmaeye/pharmaeye-backend/internal/importer"
	"github.com/pharmaeye/pharmaeye-backend/internal/notifications"
	"github.com/pharmaeye/pharmaeye-backend/internal/ocr"
	"github.com/pharmaeye/pharmaeye-backend/internal/users"
	"github.com/pharmaeye/pharmaeye-backend/pkg/config"
	"github.com/pharmaeye/pharmaeye-backend/pkg/logger"
	"github.com/pharmaeye/pharmaeye-backend/pkg/metrics"
)

// Dependencies carries everything the HTTP surface needs.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	Gateway       controllers.Pinger
	HTTPMetrics   *metrics.HTTPMetrics
	Registry      *prometheus.Registry
	Auth          auth.Service
	Drugs         drugs.Service
	Users         users.Service
	Notifications notifications.Service
	Backup        backup.Service
	Importer      *importer.Service
	OCR           *ocr.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Gateway, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(deps.Auth, logg))
		r.Post("/biometric", controllers.BiometricLogin(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/drugs", func(r chi.Router) {
			r.Get("/", controllers.ListDrugs(deps.Drugs, logg))
			r.Post("/", controllers.CreateDrug(deps.Drugs, logg))
			r.Post("/batch", controllers.CreateDrugBatch(deps.Drugs, logg))
			r.Patch("/{drugId}", controllers.UpdateDrug(deps.Drugs, logg))
			r.Delete("/{drugId}", controllers.DeleteDrug(deps.Drugs, logg))
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/preview", controllers.ImportPreview(deps.Importer, cfg.Import, logg))
			r.Post("/commit", controllers.ImportCommit(deps.Importer, logg))
		})

		r.Post("/ocr/extract", controllers.OCRExtract(deps.OCR, cfg.Import, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Get("/export", controllers.ExportBackup(deps.Backup, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Get("/", controllers.ListUsers(deps.Users, logg))
			r.Post("/", controllers.CreateUser(deps.Users, logg))
			r.Patch("/{userId}", controllers.UpdateUser(deps.Users, logg))
			r.Delete("/{userId}", controllers.DeleteUser(deps.Users, logg))
			r.Post("/{userId}/biometric", controllers.RegisterBiometric(deps.Users, logg))
		})
	})

	return r
}
