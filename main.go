package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lottery-publish-system/channels"
	"lottery-publish-system/handlers"
	"lottery-publish-system/metrics"
	"lottery-publish-system/middleware"
	"lottery-publish-system/models"
	"lottery-publish-system/services"
	"lottery-publish-system/utils"
	"lottery-publish-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.TrimSpace(allowedOrigins),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Game{},
		&models.GameItem{},
		&models.Draw{},
		&models.DrawTemplate{},
		&models.DrawPause{},
		&models.DrawStats{},
		&models.Ticket{},
		&models.TicketDetail{},
		&models.TripleBet{},
		&models.User{},
		&models.ChannelInstance{},
		&models.GameChannel{},
		&models.DrawPublication{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it events are simply not broadcast.
	var rdb *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable, events disabled: %v", err)
			rdb = nil
		}
	} else {
		log.Println("⚠️  REDIS_URL not set, event broadcasting disabled")
	}

	// Channel providers. Instagram's API rejects bursts, so its sends are
	// serialized through a throttled worker.
	registry := channels.NewRegistry(db)
	registry.Register(channels.NewTelegramProvider(), nil)
	registry.Register(channels.NewFacebookProvider(), nil)
	registry.Register(channels.NewWhatsAppProvider(
		os.Getenv("WHATSAPP_GATEWAY_URL"), os.Getenv("WHATSAPP_SERVICE_TOKEN")), nil)

	igThrottle := channels.NewThrottledSender(10 * time.Second)
	igThrottle.Start(ctx)
	registry.Register(channels.NewInstagramProvider(), igThrottle)

	// Services
	events := services.NewEventService(db, rdb)
	templates := services.NewDrawTemplateService(db)
	pauses := services.NewDrawPauseService(db)
	messageTemplates := services.NewMessageTemplateService()
	stats := services.NewDrawStatsService(db)
	prizes := services.NewPrizeProcessorService(db)
	tickets := services.NewTicketService(db, events)
	tripletas := services.NewTripletaService(db, events)
	gameService := services.NewGameService(db)
	drawService := services.NewDrawService(db, events)

	notifier := services.NewAdminNotifierService(db, stats, os.Getenv("ADMIN_TELEGRAM_BOT_TOKEN"))
	importer := services.NewExternalTicketImporter(db,
		os.Getenv("SALES_API_URL"), os.Getenv("SALES_SERVICE_TOKEN"))
	images := services.NewDrawImageService(db, messageTemplates, os.Getenv("IMAGE_RENDERER_URL"))

	generator := services.NewDrawGeneratorService(db, templates, pauses, events)
	closer := services.NewDrawCloserService(db, events, importer, notifier)
	executor := services.NewDrawExecutorService(db, events, prizes, tripletas, stats, images, notifier)
	publisher := services.NewPublicationService(db, registry, messageTemplates, events)

	scheduler := services.NewDrawScheduler(generator, closer, executor, publisher)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler:", err)
	}
	defer scheduler.Stop()

	retryWorker := workers.NewPublicationRetryWorker(db, publisher)
	retryWorker.Start(ctx)

	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "9091"
	}
	metricsSrv := metrics.StartMetricsServer(metricsPort, func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	defer metricsSrv.Close()

	handlers.SetupGameRoutes(app, gameService)
	handlers.SetupDrawRoutes(app, drawService, generator, publisher, stats, templates, pauses)
	handlers.SetupWagerRoutes(app, tickets, tripletas)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ Metrics on http://localhost:%s/metrics", metricsPort)
	log.Println("✅ Draw lifecycle scheduler running")
	log.Println("✅ Publication retry worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("⚠️ Shutdown error: %v", err)
	}
}
