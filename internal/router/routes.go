package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/leadscout/internal/auth"
	"github.com/octobees/leadscout/internal/config"
	"github.com/octobees/leadscout/internal/handler"
	middlewarepkg "github.com/octobees/leadscout/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Config      *handler.ConfigHandler
	Scan        *handler.ScanHandler
	Intent      *handler.IntentHandler
	Leads       *handler.LeadsHandler
	Results     *handler.ResultsHandler
	AdminUpload *handler.AdminUploadHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("/api")
	secured.Use(middlewarepkg.JWT(jwtManager))

	read := middlewarepkg.RequireRole(auth.RoleAdmin, auth.RoleViewer)
	write := middlewarepkg.RequireRole(auth.RoleAdmin)
	scanLimit := middlewarepkg.RateLimiter(cfg.RateLimitScan)

	secured.GET("/config", handlers.Config.Get, read)
	secured.POST("/config", handlers.Config.Update, write)

	secured.GET("/status", handlers.Scan.Status, read)
	secured.GET("/logs", handlers.Scan.Logs, read)
	secured.POST("/scan/single", handlers.Scan.Single, write, scanLimit)
	secured.POST("/scan/auto", handlers.Scan.Auto, write, scanLimit)
	secured.POST("/scan/stop", handlers.Scan.Stop, write)

	if handlers.Intent != nil {
		secured.POST("/intent", handlers.Intent.Parse, write)
	}

	secured.GET("/runs", handlers.Leads.ListRuns, read)
	secured.GET("/runs/:id/leads", handlers.Leads.RunLeads, read)
	secured.GET("/leads/recent", handlers.Leads.RecentLeads, read)
	secured.POST("/clear", handlers.Leads.Clear, write)

	secured.GET("/results/latest", handlers.Results.LatestJSON, read)
	secured.GET("/results/latest.csv", handlers.Results.LatestCSV, read)
	secured.GET("/results/latest.xlsx", handlers.Results.LatestXLSX, read)

	admin := e.Group("/admin", middlewarepkg.JWT(jwtManager), write)
	admin.POST("/upload-csv", handlers.AdminUpload.UploadCSV, scanLimit)
}
