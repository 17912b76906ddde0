package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/medtour-leads/internal/config"
	"github.com/xavierca1/medtour-leads/internal/infra/database"
	"github.com/xavierca1/medtour-leads/internal/infra/http/handlers"
	"github.com/xavierca1/medtour-leads/internal/infra/http/middleware"
	"github.com/xavierca1/medtour-leads/internal/infra/integration/calendar"
	"github.com/xavierca1/medtour-leads/internal/infra/mail"
	"github.com/xavierca1/medtour-leads/internal/infra/notify"
	"github.com/xavierca1/medtour-leads/internal/infra/queue"
	"github.com/xavierca1/medtour-leads/internal/logger"
	"github.com/xavierca1/medtour-leads/internal/usecase"
)

const version = "1.0.0"

func main() {
	godotenv.Load()
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("schema migration failed")
	}

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	statusRepo := database.NewStatusRepository(db)
	intakeRepo := database.NewIntakeRepository(db)
	analyticsRepo := database.NewAnalyticsRepository(db)

	// 2. Notification side effects
	mailSender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	var bookingLinker notify.BookingLinker
	if cfg.CalendarURL != "" {
		bookingLinker = calendar.NewClient(cfg.CalendarURL, cfg.CalendarToken)
	}
	dispatcher := notify.NewDispatcher(mailSender, bookingLinker)

	var (
		notifier usecase.Notifier
		broker   handlers.BrokerConnection
	)
	switch cfg.NotifyMode {
	case "queue":
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitUser, cfg.RabbitPass, cfg.RabbitHost, cfg.RabbitPort)
		if err != nil {
			logger.WithError(err).Fatal("rabbitmq connection failed")
		}
		defer rabbitMQ.Close()

		consumerCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			logger.WithError(err).Fatal("rabbitmq consumer channel failed")
		}

		notifier = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ.Conn

		worker := queue.NewWorker(consumerCh, dispatcher)
		go func() {
			if err := worker.Start(ctx, queue.QueueName); err != nil {
				logger.WithError(err).Error("notification worker stopped")
			}
		}()
	case "direct":
		notifier = dispatcher
	default:
		logger.WithField("notify_mode", cfg.NotifyMode).Warn("status notifications disabled")
	}

	// 3. Use cases
	resolveLeadUC := usecase.NewResolveLeadUseCase(leadRepo, intakeRepo)
	captureIntakeUC := usecase.NewCaptureIntakeUseCase(intakeRepo, cfg.DefaultPhoneRegion)
	changeStatusUC := usecase.NewChangeStatusUseCase(statusRepo, resolveLeadUC, notifier)
	backfillEmailUC := usecase.NewBackfillEmailUseCase(leadRepo)
	queryLeadsUC := usecase.NewQueryLeadsUseCase(leadRepo, statusRepo)
	computeSnapshotUC := usecase.NewComputeSnapshotUseCase(analyticsRepo)

	// 4. Handlers
	rateLimiter := handlers.NewRateLimiter(cfg.IntakeRateLimit, time.Minute)
	go rateLimiter.Cleanup(10*time.Minute, ctx.Done())

	leadHandler := handlers.NewLeadHandler(resolveLeadUC, changeStatusUC, backfillEmailUC, queryLeadsUC)
	intakeHandler := handlers.NewIntakeHandler(captureIntakeUC, rateLimiter)
	analyticsHandler := handlers.NewAnalyticsHandler(computeSnapshotUC)
	healthHandler := handlers.NewHealthHandler(db, broker, version)

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Admin-User"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/intake", func(r chi.Router) {
		r.Post("/quote", intakeHandler.CaptureQuote)
		r.Post("/consultation", intakeHandler.CaptureConsultation)
		r.Post("/hospital", intakeHandler.CaptureHospital)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/leads", leadHandler.List)
		r.Get("/leads/{id}", leadHandler.Get)
		r.Post("/leads/{id}/status", leadHandler.ChangeStatus)
		r.Put("/leads/{id}/email", leadHandler.BackfillEmail)
		r.Get("/leads/{id}/history", leadHandler.History)
		r.Get("/lead-statuses", leadHandler.Statuses)
		r.Get("/analytics", analyticsHandler.Handle)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.ServerPort).Info("lead service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
