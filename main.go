package main

import (
	"os"

	api "replydesk/cmd/api"
	authdomain "replydesk/internal/auth/domain"
	authRepo "replydesk/internal/auth/repository"
	authUsecase "replydesk/internal/auth/usecase"
	activityUsecase "replydesk/internal/activity/usecase"
	replydomain "replydesk/internal/reply/domain"
	replyRepo "replydesk/internal/reply/repository"
	replyUsecase "replydesk/internal/reply/usecase"
	templatedomain "replydesk/internal/template/domain"
	templateRepo "replydesk/internal/template/repository"
	templateUsecase "replydesk/internal/template/usecase"
	"replydesk/pkg/ai"
	"replydesk/pkg/config"
	"replydesk/pkg/database"
	"replydesk/pkg/imap"
	"replydesk/pkg/logger"
	"replydesk/pkg/mailer"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New()
	defer log.Sync()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &replydomain.EmailReply{}, &templatedomain.QuickReplyTemplate{}); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	emailReplyRepo := replyRepo.NewEmailReplyRepository(db)
	quickReplyRepo := templateRepo.NewTemplateRepository(db)

	// Initialize external services
	mailbox := imap.NewService(cfg, log)
	transport := mailer.NewMailer(cfg, log)
	api.InitRuntimeConfig(cfg.AIModel)
	aiClient := ai.NewHTTPClientWithModelGetter(cfg.AIAPIURL, cfg.AIAPIKey, api.GetRuntimeAIModel)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	replyUsecaseInstance := replyUsecase.NewReplyUsecase(emailReplyRepo, aiClient, transport, log)
	templateUsecaseInstance := templateUsecase.NewTemplateUsecase(quickReplyRepo)
	activityUsecaseInstance := activityUsecase.NewActivityUsecase(emailReplyRepo)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, replyUsecaseInstance, templateUsecaseInstance, activityUsecaseInstance, mailbox, cfg, log)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("server starting", zap.String("port", port))
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
