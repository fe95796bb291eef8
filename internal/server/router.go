package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/igsnforms-backend/internal/handlers"
	"github.com/yungbote/igsnforms-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName       string
	AllowOrigins      []string
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	DepositionHandler *handlers.DepositionHandler
	EntryHandler      *handlers.EntryHandler
	FormHandler       *handlers.FormHandler
	SettingHandler    *handlers.SettingHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	api := router.Group("/api")

	// Deposition reads allow anonymous access to public records.
	reads := api.Group("/")
	reads.Use(cfg.AuthMiddleware.OptionalAuth())
	reads.GET("/deposition", cfg.DepositionHandler.List)
	reads.GET("/deposition/:id", cfg.DepositionHandler.Get)
	reads.GET("/form/:id/schema", cfg.FormHandler.GetSchema)
	reads.GET("/vocabulary", cfg.SettingHandler.GetVocabulary)

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Deposition
	protected.POST("/deposition", cfg.DepositionHandler.Create)
	protected.PATCH("/deposition/:id", cfg.DepositionHandler.UpdateMetadata)
	protected.GET("/deposition/:id/access", cfg.DepositionHandler.GetAccess)
	protected.PUT("/deposition/:id/access", cfg.DepositionHandler.SetAccess)
	// Entry
	protected.POST("/form/:id/entry", cfg.EntryHandler.Save)
	protected.GET("/form/:id/entry", cfg.EntryHandler.ListByForm)
	protected.GET("/entry/:id", cfg.EntryHandler.Get)
	protected.DELETE("/entry/:id", cfg.EntryHandler.Delete)
	protected.GET("/entry/:id/changesets", cfg.EntryHandler.ListChangesets)
	// Form
	protected.POST("/form", cfg.FormHandler.Create)
	protected.GET("/form", cfg.FormHandler.List)
	protected.GET("/form/:id", cfg.FormHandler.Get)
	protected.PUT("/form/:id", cfg.FormHandler.Update)
	protected.DELETE("/form/:id", cfg.FormHandler.Delete)
	// Settings
	protected.PUT("/vocabulary/institutions", cfg.SettingHandler.SetInstitutions)
	protected.PUT("/vocabulary/materials", cfg.SettingHandler.SetMaterials)

	return router
}
