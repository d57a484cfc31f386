package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medscanhq/medscan-api/config"
	"github.com/medscanhq/medscan-api/internal/handler"
	adminhandler "github.com/medscanhq/medscan-api/internal/handler/admin"
	appointmenthandler "github.com/medscanhq/medscan-api/internal/handler/appointment"
	patienthandler "github.com/medscanhq/medscan-api/internal/handler/patient"
	recordhandler "github.com/medscanhq/medscan-api/internal/handler/record"
	"github.com/medscanhq/medscan-api/internal/middleware"
	"github.com/medscanhq/medscan-api/pkg/auth"
	"github.com/medscanhq/medscan-api/pkg/logger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health      *handler.HealthHandler
	Patient     *patienthandler.Handler
	Record      *recordhandler.Handler
	Appointment *appointmenthandler.Handler
	Admin       *adminhandler.Handler
}

// New builds the HTTP surface: public API under /api/v1, the admin
// surface behind JWT auth under /api/v1/admin, plus health and metrics.
func New(cfg *config.Config, log *logger.Logger, tokens *auth.TokenManager, h Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.CORS(),
	)
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		patients := v1.Group("/patients")
		{
			patients.POST("", h.Patient.Create)
			patients.GET("/search", h.Patient.Search)
			patients.GET("/:id", h.Patient.Get)
			patients.PUT("/:id", h.Patient.Update)
			patients.DELETE("/:id", h.Patient.Delete)
			patients.GET("/:id/statistics", h.Patient.Statistics)
			patients.GET("/:id/summary", h.Patient.Summary)
			patients.GET("/:id/conditions/:condition", h.Patient.ConditionHistory)

			patients.POST("/:id/records", h.Record.Add)
			patients.GET("/:id/records", h.Record.History)
			patients.GET("/:id/records/summary", h.Record.Summary)
			patients.GET("/:id/records/timeline", h.Record.Timeline)
			patients.GET("/:id/records/modality/:modality", h.Record.ByModality)

			patients.GET("/:id/appointments", h.Appointment.List)
		}

		records := v1.Group("/records")
		{
			records.GET("/:id", h.Record.Get)
			records.PUT("/:id", h.Record.Update)
			records.DELETE("/:id", h.Record.Delete)
			records.GET("/:id/image", h.Record.Image)
		}

		appointments := v1.Group("/appointments")
		{
			appointments.POST("", h.Appointment.Book)
			appointments.GET("/:id", h.Appointment.Get)
			appointments.POST("/:id/cancel", h.Appointment.Cancel)
		}

		v1.POST("/flags", h.Admin.FlagContent)

		admin := v1.Group("/admin")
		{
			admin.POST("/login", h.Admin.Login)

			authed := admin.Group("")
			authed.Use(middleware.AdminAuth(tokens))
			{
				authed.POST("/users", h.Admin.CreateAdminUser)
				authed.GET("/dashboard", h.Admin.Dashboard)
				authed.GET("/analytics", h.Admin.Analytics)
				authed.GET("/health", h.Admin.SystemHealth)
				authed.GET("/activities", h.Admin.RecentActivities)
				authed.GET("/logs", h.Admin.RecentLogs)
				authed.GET("/flags/pending", h.Admin.PendingFlags)
				authed.POST("/flags/:id/moderate", h.Admin.Moderate)
			}
		}
	}

	return r
}
