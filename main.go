package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	api "mailminder-backend/cmd/api"
	authdomain "mailminder-backend/internal/auth/domain"
	authRepo "mailminder-backend/internal/auth/repository"
	authUsecase "mailminder-backend/internal/auth/usecase"
	ledgerdomain "mailminder-backend/internal/ledger/domain"
	ledgerRepo "mailminder-backend/internal/ledger/repository"
	monitordomain "mailminder-backend/internal/monitor/domain"
	monitorRepo "mailminder-backend/internal/monitor/repository"
	monitorUsecase "mailminder-backend/internal/monitor/usecase"
	"mailminder-backend/internal/poller"
	"mailminder-backend/pkg/ai"
	"mailminder-backend/pkg/config"
	"mailminder-backend/pkg/database"
	"mailminder-backend/pkg/gcal"
	"mailminder-backend/pkg/gmail"
	"mailminder-backend/pkg/imap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.EmailAccount{},
		&monitordomain.Monitor{},
		&monitordomain.UserSettings{},
		&ledgerdomain.CheckCounter{},
		&ledgerdomain.RespondedEmail{},
		&ledgerdomain.ActivityLogEntry{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	accountRepo := authRepo.NewAccountRepository(db)
	monitorRepository := monitorRepo.NewMonitorRepository(db)
	settingsRepo := monitorRepo.NewSettingsRepository(db)
	counterRepo := ledgerRepo.NewCheckCounterRepository(db)
	respondedRepo := ledgerRepo.NewRespondedEmailRepository(db)
	activityRepo := ledgerRepo.NewActivityLogRepository(db)

	// Initialize mail and calendar providers
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	imapService := imap.NewService()
	calendarService := gcal.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)

	providers := map[string]monitordomain.MailProvider{
		"gmail": gmailService,
		"imap":  imapService,
	}

	// Initialize AI responder
	responder, err := ai.NewResponder(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize AI responder:", err)
	}
	log.Printf("AI responder initialized with provider: %s", cfg.AIProvider)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, accountRepo, cfg)
	monitorUsecaseInstance := monitorUsecase.NewMonitorUsecase(monitorRepository, settingsRepo)

	// Start the poll cycle
	p := poller.NewPoller(
		settingsRepo, monitorRepository, accountRepo,
		counterRepo, respondedRepo, activityRepo,
		providers, calendarService, responder,
		cfg.PollInterval, cfg.PollConcurrency,
	)
	p.Start()

	// Stop the poller cleanly on shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		p.Stop()
		os.Exit(0)
	}()

	// Start HTTP server
	handler := api.NewHandler(authUsecaseInstance, monitorUsecaseInstance, counterRepo, activityRepo)
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
