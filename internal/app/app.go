package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rencontre_backend/database"
	"rencontre_backend/internal/auth"
	"rencontre_backend/internal/config"
	"rencontre_backend/internal/email"
	"rencontre_backend/internal/handlers"
	"rencontre_backend/internal/imageprocessor"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/middleware"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/payments/fedapay"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/routes"
	"rencontre_backend/internal/services"
	"rencontre_backend/internal/storage"
	"rencontre_backend/internal/validator"
	"rencontre_backend/internal/workers"
	"rencontre_backend/pkg/apperrors"
	"rencontre_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	webhookRPS      = 20
	webhookBurst    = 40
	limiterCleanup  = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Run поднимает сервер и ждёт SIGINT/SIGTERM
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	db, err := database.Connect(cfg.Database.DSN, cfg.Server.Debug)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := seedFirstAdmin(db, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workers.NewSubscriptionWorker(db).Start(ctx); err != nil {
		logger.Fatal("Failed to start subscription worker", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           setupRouter(ctx, cfg, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// Migrate - отдельная команда, сервер при старте схему не трогает
func Migrate() error {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)

	db, err := database.Connect(cfg.Database.DSN, cfg.Server.Debug)
	if err != nil {
		return err
	}
	return database.AutoMigrate(db)
}

// SetupRouter собирает приложение целиком. Используется тестами.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	return setupRouter(context.Background(), cfg, db)
}

func setupRouter(ctx context.Context, cfg *config.Config, db *gorm.DB) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	apperrors.Debug = cfg.Server.Debug

	storageInstance, err := storage.NewStorage(storage.ConfigFromApp(cfg))
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokens := auth.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTTL)*time.Minute,
		time.Duration(cfg.JWT.RefreshTTL)*time.Hour,
	)

	wsManager := ws.NewWebSocketManager()
	go wsManager.Run(ctx)
	wsHandler := ws.NewWebSocketHandler(wsManager, cfg.Server.FrontendURL)

	serviceContainer := initializeServices(cfg, storageInstance, tokens, wsManager)
	appHandlers := initializeHandlers(serviceContainer, storageInstance)

	authLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	webhookLimiter := middleware.NewRateLimiter(webhookRPS, webhookBurst)
	authLimiter.StartCleanup(limiterCleanup, ctx.Done())
	webhookLimiter.StartCleanup(limiterCleanup, ctx.Done())

	mw := handlers.RouteMiddlewares{
		Auth:         middleware.AuthMiddleware(tokens),
		OptionalAuth: middleware.OptionalAuthMiddleware(tokens),
		AuthLimit:    authLimiter.Middleware(),
		WebhookLimit: webhookLimiter.Middleware(),
	}

	router := initializeGinRouter(cfg, db)
	routes.RegisterRoutes(router, appHandlers, mw, wsHandler)
	return router
}

func initializeServices(
	cfg *config.Config,
	storageInstance storage.Storage,
	tokens *auth.TokenManager,
	notifier services.MessageNotifier,
) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	profileRepo := repositories.NewProfileRepository()
	blogRepo := repositories.NewBlogRepository()
	chatRepo := repositories.NewChatRepository()
	paymentRepo := repositories.NewPaymentRepository()
	documentRepo := repositories.NewDocumentRepository()
	contactRepo := repositories.NewContactRepository()

	mediaService := services.NewMediaService(storageInstance, imageprocessor.NewProcessor(cfg.Upload.ImageQuality), services.MediaConfig{
		MaxFileSize:  cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
	})

	gateway := fedapay.NewClient(fedapay.Config{
		APIURL:    cfg.FedaPay.APIURL,
		SecretKey: cfg.FedaPay.SecretKey,
		Timeout:   time.Duration(cfg.FedaPay.Timeout) * time.Second,
	})
	paymentService := services.NewPaymentService(gateway, paymentRepo, userRepo, documentRepo, services.PaymentConfig{
		FrontendURL:   cfg.Server.FrontendURL,
		BackendDomain: cfg.Server.BackendDomain,
		WebhookSecret: cfg.FedaPay.WebhookSecret,
		Debug:         cfg.Server.Debug,
	})

	emailService := services.NewEmailService(newEmailProvider(cfg), cfg.Email.AdminEmail)

	return &services.ServiceContainer{
		AuthService:     services.NewAuthService(userRepo, profileRepo, refreshTokenRepo, tokens, auth.NewGoogleVerifier(cfg.Google.ClientID), mediaService),
		UserService:     services.NewUserService(userRepo, mediaService),
		ProfileService:  services.NewProfileService(profileRepo, userRepo, chatRepo, mediaService),
		SearchService:   services.NewSearchService(profileRepo, mediaService),
		BlogService:     services.NewBlogService(blogRepo, mediaService),
		ChatService:     services.NewChatService(chatRepo, userRepo, mediaService, notifier),
		PaymentService:  paymentService,
		DocumentService: services.NewDocumentService(documentRepo, paymentService, mediaService),
		ContactService:  services.NewContactService(contactRepo, emailService),
		MediaService:    mediaService,
		EmailService:    emailService,
	}
}

// newEmailProvider - без SMTP письма только логируются
func newEmailProvider(cfg *config.Config) email.Provider {
	if !cfg.Email.Enabled || cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP disabled, using mock email provider")
		return email.NewMockProvider()
	}

	provider := email.NewSMTPProvider(email.ConfigFromApp(cfg))
	if err := provider.Validate(); err != nil {
		logger.Warn("SMTP config invalid, using mock email provider", "error", err)
		return email.NewMockProvider()
	}
	return provider
}

func initializeHandlers(svc *services.ServiceContainer, storageInstance storage.Storage) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, svc.AuthService),
		UserHandler:     handlers.NewUserHandler(baseHandler, svc.UserService),
		ProfileHandler:  handlers.NewProfileHandler(baseHandler, svc.ProfileService),
		SearchHandler:   handlers.NewSearchHandler(baseHandler, svc.SearchService),
		BlogHandler:     handlers.NewBlogHandler(baseHandler, svc.BlogService),
		ChatHandler:     handlers.NewChatHandler(baseHandler, svc.ChatService),
		PaymentHandler:  handlers.NewPaymentHandler(baseHandler, svc.PaymentService),
		DocumentHandler: handlers.NewDocumentHandler(baseHandler, svc.DocumentService),
		ContactHandler:  handlers.NewContactHandler(baseHandler, svc.ContactService),
		FileHandler:     handlers.NewFileHandler(baseHandler, storageInstance),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.FrontendURL))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstAdmin создаёт администратора из FIRST_ADMIN_EMAIL вместе с анкетой
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	userRepo := repositories.NewUserRepository()
	profileRepo := repositories.NewProfileRepository()

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	_, err := userRepo.FindByEmail(tx, adminEmail)
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:              adminEmail,
		Username:           adminEmail,
		PasswordHash:       hash,
		RegistrationMethod: models.RegistrationEmail,
		Role:               models.UserRoleAdmin,
		Status:             models.UserStatusActive,
	}
	if err := userRepo.Create(tx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	if err := profileRepo.Create(tx, services.DefaultProfile(admin.ID, time.Now())); err != nil {
		return fmt.Errorf("failed to create admin profile: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return tx.Commit().Error
}
