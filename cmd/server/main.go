package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"eventrsvp/config"
	"eventrsvp/internal/adapters/email"
	deliveryhttp "eventrsvp/internal/delivery/http"
	"eventrsvp/internal/delivery/http/controllers"
	"eventrsvp/internal/delivery/http/middleware"
	"eventrsvp/internal/domain"
	filerepo "eventrsvp/internal/repository/file"
	"eventrsvp/internal/repository/postgres"
	"eventrsvp/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	store, closeStore, err := newStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	providers := newProviders(cfg, logger)
	dispatcher := services.NewNotificationDispatcher(logger, providers, filepath.Join(cfg.DataDir, "drafts"))

	svc := services.NewRegistrationService(
		logger,
		store,
		dispatcher,
		email.NewTemplateRenderer(),
		services.EventDetails{
			Start:       cfg.Event.Start,
			End:         cfg.Event.End,
			Summary:     cfg.Event.Summary,
			Description: cfg.Event.Description,
			Location:    cfg.Event.Location,
		},
		filepath.Join(cfg.DataDir, "invites"),
		cfg.RequestTimeout,
	)

	registrationController := controllers.NewRegistrationController(logger, svc)
	adminController := controllers.NewAdminController(logger, svc)

	mux := deliveryhttp.NewRouter(registrationController, adminController, cfg.AdminSecret)
	var handler http.Handler = middleware.LoggingMiddleware(logger, mux)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"store", store.Source(),
			"providers", len(providers),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}

// newStore resolves the storage strategy: postgres when a database URL is
// configured, otherwise the flat-file store under the data dir. The *sql.DB
// is opened once here and shared for the process lifetime; it connects
// lazily and pools connections itself.
func newStore(cfg *config.Config, logger *slog.Logger) (domain.RegistrationStore, func(), error) {
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
		return postgres.NewRegistrationStore(db), func() { _ = db.Close() }, nil
	}

	logger.Warn("DATABASE_URL not set, falling back to file storage", "dir", cfg.DataDir)
	store, err := filerepo.NewRegistrationStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// newProviders builds the ordered delivery chain: hosted API first, then
// direct SMTP. An empty chain is valid; the dispatcher degrades to drafts.
func newProviders(cfg *config.Config, logger *slog.Logger) []domain.Provider {
	var providers []domain.Provider
	if cfg.SESConfigured() {
		providers = append(providers, email.NewSESProvider(email.SESConfig{
			Region:             cfg.SES.Region,
			AccessKeyID:        cfg.SES.AccessKeyID,
			SecretAccessKey:    cfg.SES.SecretAccessKey,
			FromAddress:        cfg.FromAddress,
			FromName:           cfg.FromName,
			InsecureSkipVerify: cfg.SES.InsecureSkipVerify,
		}, logger))
	}
	if cfg.SMTPConfigured() {
		providers = append(providers, email.NewSMTPProvider(email.SMTPConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			User:        cfg.SMTP.User,
			Password:    cfg.SMTP.Password,
			FromAddress: cfg.FromAddress,
			FromName:    cfg.FromName,
		}))
	}
	if len(providers) == 0 {
		logger.Warn("no email provider configured, invites will be written as drafts")
	}
	return providers
}
