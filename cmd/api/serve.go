package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/continu8/backoffice/internal/api/dto"
	httptransport "github.com/continu8/backoffice/internal/api/http"
	"github.com/continu8/backoffice/internal/api/http/handlers"
	"github.com/continu8/backoffice/internal/auth"
	"github.com/continu8/backoffice/internal/config"
	"github.com/continu8/backoffice/internal/events"
	"github.com/continu8/backoffice/internal/notify"
	"github.com/continu8/backoffice/internal/observability"
	"github.com/continu8/backoffice/internal/persistence"
	"github.com/continu8/backoffice/internal/repository"
	"github.com/continu8/backoffice/internal/service"
	"github.com/continu8/backoffice/internal/storage"
	"github.com/continu8/backoffice/internal/ticketing"
	"github.com/continu8/backoffice/internal/validation"
	"github.com/continu8/backoffice/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()
	queue := events.NewRedisDispatcher(rdb.Client, cfg.Redis.NotificationQueue, logger)

	pool := pg.Pool
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	leadRepo := repository.NewLeadRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	store, err := storage.NewLocalStore(cfg.Storage.RootDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		logger.Error("failed to prepare attachment store", zap.Error(err))
		return err
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		ActivityRepo:   activityRepo,
		ContactRepo:    contactRepo,
		Numbers:        numberAllocator(cfg.Tickets, ticketRepo, repository.NewSequenceRepository(pool)),
		Store:          store,
		Publisher:      queue,
		Metrics:        metrics,
		Logger:         logger.Named("tickets"),
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	leadService := service.NewLeadService(service.LeadDependencies{
		LeadRepo:     leadRepo,
		ActivityRepo: activityRepo,
		BookingRepo:  bookingRepo,
		UnitOfWork:   pg.UnitOfWork(),
		TxRepos:      service.NewLeadTxRepos,
		Publisher:    queue,
		Metrics:      metrics,
		Logger:       logger.Named("leads"),
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo:  bookingRepo,
		ActivityRepo: activityRepo,
		Leads:        leadService,
		Logger:       logger.Named("bookings"),
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:  queue,
		ProfileRepo: profileRepo,
		Email:       notify.NewEmailSender(cfg.Notification, logger.Named("email")),
		Chat:        notify.NewSlackNotifier(cfg.Notification.SlackWebhookURL),
		Metrics:     metrics,
		Logger:      logger.Named("notifications"),
		Config:      cfg.Notification,
		AppURL:      cfg.App.PublicURL,
	})
	workerDone := worker.StartNotificationWorker(ctx, notificationService, queue, logger.Named("worker"))

	validate := validation.New()
	validate.RegisterCustomType(dto.OptionalStringValue, dto.OptionalString{})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Storage.MaxUploadBytes) + 1<<20,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    rdb,
		}),
		Tickets:        handlers.NewTicketsHandler(ticketService, validate),
		Leads:          handlers.NewLeadsHandler(leadService, validate),
		Bookings:       handlers.NewBookingsHandler(bookingService, validate),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, profileRepo),
		Gatherer:       registry,
		FilesRoot:      cfg.Storage.RootDir,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err = <-listenErr:
		logger.Error("fiber listen", zap.Error(err))
	case <-waitForShutdown(logger):
	}

	if shutdownErr := app.ShutdownWithTimeout(10 * time.Second); shutdownErr != nil {
		logger.Warn("http shutdown", zap.Error(shutdownErr))
	}
	cancel()
	<-workerDone
	return err
}

// numberAllocator picks the ticket numbering strategy.
func numberAllocator(cfg config.TicketConfig, counter ticketing.TicketCounter, seq ticketing.Sequence) ticketing.NumberAllocator {
	if cfg.NumberStrategy == config.NumberStrategyCount {
		return ticketing.NewCountAllocator(counter)
	}
	return ticketing.NewSequenceAllocator(seq)
}

func waitForShutdown(logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		close(done)
	}()
	return done
}
