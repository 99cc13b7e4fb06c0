package main // Entry point package

import (
	"context" // Dispatcher lifetime
	"log"     // Logging library
	"time"    // Outbox poll interval

	"github.com/hibiken/asynq"    // Redis-backed task queue
	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/workspace-booking/internal/booking"      // Booking lifecycle service
	"github.com/iliyamo/workspace-booking/internal/client"       // Collaborator HTTP clients
	"github.com/iliyamo/workspace-booking/internal/config"       // Internal config loader
	"github.com/iliyamo/workspace-booking/internal/database"     // MySQL connection pool
	"github.com/iliyamo/workspace-booking/internal/handler"      // HTTP handlers
	"github.com/iliyamo/workspace-booking/internal/logger"       // Structured logging
	"github.com/iliyamo/workspace-booking/internal/orchestrator" // Outbox dispatcher and saga worker
	"github.com/iliyamo/workspace-booking/internal/queue"        // Audit event consumer
	"github.com/iliyamo/workspace-booking/internal/repository"   // MySQL repositories
	"github.com/iliyamo/workspace-booking/internal/router"       // Internal router setup
	queue_publisher "github.com/iliyamo/workspace-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // Optional .env; real deployments set the environment directly

	cfg := config.Load() // Load environment config
	logger.Init()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	repo := repository.NewBookingRepo(db)
	gateway := client.NewGateway(cfg.UserServiceURL, cfg.WorkspaceServiceURL, cfg.GatewayTimeout)
	svc := booking.NewService(repo, gateway)

	// Redis backs the rate limiter, the response cache and the task
	// queue. The middlewares degrade to pass-through when the client
	// is nil; asynq manages its own connections from the same settings.
	rs := config.LoadRedisSettings()
	rdb := config.NewRedisClient(rs)
	if rdb == nil {
		log.Printf("redis unavailable at %s; rate limiting and caching disabled", rs.Addr)
	}
	redisOpt := asynq.RedisClientOpt{
		Addr:      rs.Addr,
		Password:  rs.Password,
		DB:        rs.DB,
		TLSConfig: rs.TLS,
	}

	// Saga worker: consumes committed booking events from the task
	// queue and drives payment, notification, reporting and the audit
	// event bus.
	collab := client.NewCollaborators(cfg.PaymentServiceURL, cfg.NotificationServiceURL, cfg.ReportingServiceURL, cfg.GatewayTimeout)
	worker := orchestrator.NewWorker(repo, collab, collab, collab, queue_publisher.PublishBookingEvent, cfg.HourlyRateCents)
	orchestrator.StartWorker(redisOpt, worker)

	// Outbox dispatcher: polls pending events and hands them to asynq.
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()
	dispatcher := orchestrator.NewDispatcher(repo, asynqClient, time.Second)
	go dispatcher.Run(context.Background())

	// Audit trail consumer: drains booking.events into logs/booking.log.
	go queue.StartBookingConsumer(cfg.RabbitURL)

	e := echo.New()          // Create Echo instance
	router.RegisterRoutes(e) // Register application routes
	router.RegisterBookings(e, handler.NewBookingHandler(svc), rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
