package routes

import (
	"github.com/emojilens/backend/internal/config"
	"github.com/emojilens/backend/internal/controllers"
	"github.com/emojilens/backend/internal/db"
	"github.com/emojilens/backend/internal/middleware"
	"github.com/emojilens/backend/internal/services"
	"github.com/emojilens/backend/internal/web"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the global middleware and all routes.
func NewRouter(cfg config.Config, gateway *db.Gateway) (*gin.Engine, error) {
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigin()))
	r.Use(gin.Recovery())

	if err := web.Register(r); err != nil {
		return nil, err
	}

	SetupRoutes(r, cfg, gateway)
	return r, nil
}

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, cfg config.Config, gateway *db.Gateway) {
	if gateway == nil {
		gateway = db.Disabled()
	}

	// Initialize services
	llmService := services.NewLLMService(cfg.OpenAI)
	recordService := services.NewRecordService(gateway)

	// Initialize controllers
	healthController := controllers.NewHealthController(gateway)
	analysisController := controllers.NewAnalysisController(llmService, recordService)

	r.GET("/health", healthController.Health)
	r.GET("/ready", healthController.Ready)

	api := r.Group("/api")
	{
		api.POST("/analyze", analysisController.Analyze)

		if cfg.Server.AdminEnabled() {
			adminController := controllers.NewAdminController(recordService, llmService)

			admin := api.Group("/admin")
			admin.Use(middleware.AdminAuthMiddleware(cfg.Server.AdminJWTSecret))
			{
				admin.GET("/analyses", adminController.ListAnalyses)
				admin.GET("/llm-api-calls", adminController.GetLLMAPICalls)
				admin.DELETE("/llm-api-calls", adminController.ClearLLMAPICalls)
			}
		}
	}
}
