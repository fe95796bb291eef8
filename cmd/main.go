package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/igsnforms-backend/internal/clients/gdrive"
	"github.com/yungbote/igsnforms-backend/internal/clients/redis"
	"github.com/yungbote/igsnforms-backend/internal/db"
	"github.com/yungbote/igsnforms-backend/internal/handlers"
	"github.com/yungbote/igsnforms-backend/internal/igsn"
	"github.com/yungbote/igsnforms-backend/internal/logger"
	"github.com/yungbote/igsnforms-backend/internal/middleware"
	"github.com/yungbote/igsnforms-backend/internal/observability"
	"github.com/yungbote/igsnforms-backend/internal/repos"
	"github.com/yungbote/igsnforms-backend/internal/server"
	"github.com/yungbote/igsnforms-backend/internal/services"
	"github.com/yungbote/igsnforms-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	apiBaseURL := utils.GetEnv("API_BASE_URL", "http://localhost:8080/api", log)
	serviceName := utils.GetEnv("SERVICE_NAME", "igsnforms-backend", log)
	environment := utils.GetEnv("ENVIRONMENT", "development", log)
	allowOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)
	publisher := utils.GetEnv("IGSN_PUBLISHER", "", log)
	clientID := utils.GetEnv("IGSN_CLIENT_ID", "", log)
	providerID := utils.GetEnv("IGSN_PROVIDER_ID", "", log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: environment,
		Version:     os.Getenv("SERVICE_VERSION"),
	})
	if otelShutdown != nil {
		defer otelShutdown(context.Background())
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	counterRepo := repos.NewPrefixCounterRepo(thePG, log)
	depositionRepo := repos.NewDepositionRepo(thePG, log)
	sampleRepo := repos.NewSampleRepo(thePG, log)
	formRepo := repos.NewFormRepo(thePG, log)
	entryRepo := repos.NewFormEntryRepo(thePG, log)
	changesetRepo := repos.NewChangesetRepo(thePG, log)
	settingRepo := repos.NewSettingRepo(thePG, log)

	// Clients
	cache, err := redis.NewCache(log)
	if err != nil {
		log.Warn("Redis cache unavailable, continuing without it", "error", err)
		cache = nil
	}
	driveClient, err := gdrive.NewClient(context.Background(), log)
	if err != nil {
		log.Warn("Drive client unavailable, entry mirroring disabled", "error", err)
		driveClient = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	metadataDefaults := igsn.MetadataDefaults{
		Publisher:  publisher,
		ClientID:   clientID,
		ProviderID: providerID,
	}
	settingsService := services.NewSettingsService(thePG, log, settingRepo, cache, metadataDefaults)
	allocatorService := services.NewAllocatorService(thePG, log, counterRepo, settingsService)
	depositionService := services.NewDepositionService(thePG, log, depositionRepo, sampleRepo, allocatorService, settingsService)
	registrationService := services.NewRegistrationService(thePG, log, depositionService)
	relationService := services.NewRelationService(thePG, log, depositionRepo, apiBaseURL)
	entryService := services.NewEntryService(thePG, log, entryRepo, formRepo, changesetRepo, registrationService, relationService, driveClient)
	formService := services.NewFormService(thePG, log, formRepo)
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService)
	depositionHandler := handlers.NewDepositionHandler(log, depositionService, authService)
	entryHandler := handlers.NewEntryHandler(log, entryService, authService)
	formHandler := handlers.NewFormHandler(log, formService, authService)
	settingHandler := handlers.NewSettingHandler(log, settingsService, authService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if allowOrigins != "" {
		origins = strings.Split(allowOrigins, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		ServiceName:       serviceName,
		AllowOrigins:      origins,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		DepositionHandler: depositionHandler,
		EntryHandler:      entryHandler,
		FormHandler:       formHandler,
		SettingHandler:    settingHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
