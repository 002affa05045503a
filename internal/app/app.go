package app

import (
	"fmt"

	"roastmyapp_backend/database"
	"roastmyapp_backend/internal/config"
	"roastmyapp_backend/internal/handlers"
	"roastmyapp_backend/internal/logger"
	"roastmyapp_backend/internal/middleware"
	"roastmyapp_backend/internal/repositories"
	"roastmyapp_backend/internal/routes"
	"roastmyapp_backend/internal/services"
	"roastmyapp_backend/internal/storage"
	"roastmyapp_backend/internal/validator"
	"roastmyapp_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter, serviceContainer := SetupRouter(cfg, gormDB)

	// Фоновый воркер авто-выбора: потребляет персистентные задачи,
	// дедлайны переживают рестарт процесса.
	worker := workers.NewSelectionWorker(gormDB, serviceContainer.SelectionService)
	if err := worker.Start(cfg.Selection.SweepCron); err != nil {
		logger.Fatal("Failed to start selection worker", "error", err)
	}
	defer worker.Stop()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *services.ServiceContainer) {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	serviceContainer := initializeServices(storageInstance)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter, serviceContainer
}

func initializeServices(storageInstance storage.Storage) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	profileRepo := repositories.NewProfileRepository()
	requestRepo := repositories.NewRequestRepository()
	appRepo := repositories.NewApplicationRepository()
	feedbackRepo := repositories.NewFeedbackRepository()
	taskRepo := repositories.NewSelectionTaskRepository()
	uploadRepo := repositories.NewUploadRepository()

	authService := services.NewAuthService(userRepo, profileRepo, refreshTokenRepo)
	profileService := services.NewProfileService(profileRepo)
	requestService := services.NewRequestService(requestRepo, appRepo, taskRepo, profileRepo)
	applicationService := services.NewApplicationService(requestRepo, appRepo, profileRepo, feedbackRepo, taskRepo)
	selectionService := services.NewSelectionService(requestRepo, appRepo, feedbackRepo, taskRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo, requestRepo)
	uploadService := services.NewUploadService(uploadRepo, requestRepo, storageInstance)

	return &services.ServiceContainer{
		AuthService:        authService,
		ProfileService:     profileService,
		RequestService:     requestService,
		ApplicationService: applicationService,
		SelectionService:   selectionService,
		FeedbackService:    feedbackService,
		UploadService:      uploadService,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:        handlers.NewAuthHandler(baseHandler, services.AuthService),
		ProfileHandler:     handlers.NewProfileHandler(baseHandler, services.ProfileService),
		RequestHandler:     handlers.NewRequestHandler(baseHandler, services.RequestService),
		ApplicationHandler: handlers.NewApplicationHandler(baseHandler, services.ApplicationService),
		FeedbackHandler:    handlers.NewFeedbackHandler(baseHandler, services.FeedbackService),
		UploadHandler:      handlers.NewUploadHandler(baseHandler, services.UploadService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
