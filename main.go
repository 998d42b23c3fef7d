package main

import (
	"log"

	"github.com/THF151/booking-backend/config"
	"github.com/THF151/booking-backend/internal/handler"
	"github.com/THF151/booking-backend/internal/middleware"
	"github.com/THF151/booking-backend/internal/repository"
	"github.com/THF151/booking-backend/internal/service"
	"github.com/THF151/booking-backend/internal/worker"
	"github.com/THF151/booking-backend/pkg/database"
	"github.com/THF151/booking-backend/pkg/email"
	"github.com/THF151/booking-backend/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	inviteeRepo := repository.NewInviteeRepository(db)
	jobRepo := repository.NewJobRepository(db)
	commRepo := repository.NewCommunicationRepository(db)
	tenantRepo := repository.NewTenantRepository(db)

	// Optional lifecycle publisher
	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		mq, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mq.Close()
		publisher = mq
	}

	// Services
	scheduler := service.NewNotificationScheduler(commRepo)
	bookingSvc := service.NewBookingService(
		eventRepo, bookingRepo, overrideRepo, sessionRepo,
		inviteeRepo, jobRepo, scheduler, publisher,
	)

	// Background dispatcher
	mailer := email.NewHTTPService(cfg.MailServiceURL, cfg.MailServiceToken)
	dispatcher := worker.NewDispatcher(jobRepo, bookingRepo, eventRepo, tenantRepo, commRepo, mailer, worker.Options{
		PollInterval: cfg.WorkerPollInterval,
		BatchSize:    cfg.WorkerBatchSize,
		FrontendURL:  cfg.FrontendURL,
	})
	if err := dispatcher.Start(); err != nil {
		log.Fatalf("failed to start dispatcher: %v", err)
	}
	defer dispatcher.Stop()

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-backend"})
	})

	handler.NewBookingHandler(bookingSvc, jobRepo, cfg.DefaultTenantID).RegisterRoutes(e)

	log.Printf("Booking backend starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
