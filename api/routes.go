package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rankforge/seoportal/api/handlers"
	"github.com/rankforge/seoportal/api/middleware"
	"github.com/rankforge/seoportal/config"
	"github.com/rankforge/seoportal/internal/metrics"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, cfg *config.Config, s *services.Services) {
	if s == nil {
		panic("Services cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))
	r.Use(metrics.Middleware())

	apiHandlers := handlers.InitHandlers(s)

	// Health and metrics endpoints (no auth, no custom context)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The publish sweep sits outside /v1 and authenticates the scheduler,
	// not a portal user. GET is kept for cron services that cannot POST.
	cronAuth := middleware.CronAuthMiddleware(middleware.NewCronAuthChecker(cfg.CronAuthConfig))
	r.POST("/publish", cronAuth, apiHandlers.Publish.RunSweep())
	r.GET("/publish", cronAuth, apiHandlers.Publish.RunSweep())

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-API-KEY",
		ValidAPIKey: cfg.AppConfig.APIKey,
	})

	v1 := r.Group("/v1")
	v1.Use(apiKeyMiddleware)
	v1.Use(middleware.IdentityHeadersMiddleware())
	v1.Use(middleware.CustomContextMiddleware(cfg.AppConfig.AppSource))
	{
		tenants := v1.Group("/tenants")
		{
			tenants.GET("/me", apiHandlers.Dashboard.ResolveTenant())
			tenants.POST("/bind", apiHandlers.Binding.BindTenant())
		}

		ingest := v1.Group("/ingest")
		{
			ingest.POST("/kpis", apiHandlers.Ingestion.IngestKpis())
			ingest.POST("/traffic", apiHandlers.Ingestion.IngestTraffic())
			ingest.POST("/keywords", apiHandlers.Ingestion.IngestKeywords())
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/overview", apiHandlers.Dashboard.Overview())
		}

		v1.GET("/companies", apiHandlers.Dashboard.Companies())
	}
}
