package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/crosspost/configs"
	"github.com/maheshrc27/crosspost/internal/api/handlers"
	job "github.com/maheshrc27/crosspost/internal/jobs"
	"github.com/maheshrc27/crosspost/internal/metrics"
	"github.com/maheshrc27/crosspost/internal/queue"
	"github.com/maheshrc27/crosspost/internal/repository"
	"github.com/maheshrc27/crosspost/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	ctx := context.Background()
	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	scheduledPostRepo := repository.NewScheduledPostRepository(db)
	historyRepo := repository.NewPostingHistoryRepository(db)

	var mediaHost service.MediaHostService
	if cfg.R2Enabled() {
		mediaHost, err = service.NewR2Service(ctx, *cfg)
		if err != nil {
			log.Fatalf("Failed to configure R2: %v", err)
		}
	}

	platformService := service.NewPlatformService(service.NewPlatformClients(ctx, *cfg, mediaHost))
	scheduleService := service.NewScheduleService(scheduledPostRepo, historyRepo)
	dispatchService := service.NewDispatchService(scheduleService, platformService, historyRepo, cfg.PlatformTimeout)
	uploadService, err := service.NewUploadService(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	scheduler := job.NewPostScheduler(scheduleService, dispatchService, cfg.SchedulerInterval)

	// queue
	var (
		enqueuer    queue.Enqueuer
		asynqClient *asynq.Client
		asynqServer *asynq.Server
	)
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		asynqClient = asynq.NewClient(redisConn)
		defer asynqClient.Close()
		enqueuer = asynqClient

		queueW := queue.NewQueue(dispatchService)
		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 4,
		})

		log.Println("Starting the Asynq server...")
		if err := asynqServer.Start(queueW.NewServeMux()); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: handlers.ErrorHandler,
	})

	prom := metrics.NewHTTPMetrics("crosspost")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Static("/uploads", uploadService.Dir())

	handlers.RegisterRoutes(app,
		handlers.NewPlatformHandler(platformService),
		handlers.NewPostHandler(dispatchService),
		handlers.NewUploadHandler(uploadService),
		handlers.NewScheduleHandler(scheduleService, dispatchService, scheduler, enqueuer),
	)

	// cron jobs
	cleanupJob := job.NewMediaCleanupJob(scheduleService, uploadService.Dir(), cfg.MediaRetention)

	c := cron.New()
	if err := c.AddFunc(cfg.MediaCleanupSpec, cleanupJob.Run); err != nil {
		log.Fatalf("Invalid MEDIA_CLEANUP_SPEC %q: %v", cfg.MediaCleanupSpec, err)
	}
	c.Start()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, scheduler, c, asynqServer)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, scheduler *job.PostScheduler, c *cron.Cron, asynqServer *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}

	scheduler.Stop()
	c.Stop()
	if asynqServer != nil {
		asynqServer.Shutdown()
	}

	log.Println("Server shutdown complete.")
}
