package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kulit/internal/config"
	"kulit/internal/events"
	"kulit/internal/handlers"
	"kulit/internal/middleware"
	"kulit/internal/notification"
	"kulit/internal/repositories"
	"kulit/internal/services"
	"kulit/pkg/email"
	"kulit/pkg/kafka"
	"kulit/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// storage bundles the repositories and transaction manager for one driver.
type storage struct {
	repos repositories.Repositories
	txm   repositories.TxManager
	users repositories.UserRepository
	rates repositories.ShippingRateRepository
	close func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, cleanup, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer cleanup()

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// NewApp wires storage, brokers, services and routes from cfg. The returned
// cleanup stops background consumers and closes every connection.
func NewApp(cfg *config.Config) (*fiber.App, func(), error) {
	store, err := openStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	closers := []func() error{store.close}
	cleanup := func() {
		cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("Error during cleanup: %v", err)
			}
		}
	}

	// --- Services ---
	shippingService := services.NewShippingService(store.rates, services.ShippingConfig{
		DefaultFee:            cfg.ShippingDefaultFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	})
	productService := services.NewProductService(store.repos.Products, store.txm)
	stockService := services.NewStockService(store.txm, store.repos.Adjustments)
	cartService := services.NewCartService(store.repos.Carts, store.repos.Products)
	authService := services.NewAuthService(store.users, cfg.JWTSecret)

	if err := seed(ctx, cfg, shippingService, productService, authService); err != nil {
		cleanup()
		return nil, nil, err
	}

	// --- Event broker ---
	publisher, err := startBroker(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	orderService := services.NewOrderService(store.txm, store.repos, cartService, shippingService, publisher)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, stockService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	shippingHandler := handlers.NewShippingHandler(shippingService)

	app := fiber.New(fiber.Config{AppName: "kulit"})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"db":     cfg.DBDriver,
			"broker": cfg.EventBroker,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	shippingHandler.RegisterRoutes(apiV1)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminOnly())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	shippingHandler.RegisterAdminRoutes(admin)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)

	return app, cleanup, nil
}

func openStorage(cfg *config.Config) (*storage, error) {
	if cfg.DBDriver == "memory" {
		mem := repositories.NewMemoryStore()
		return &storage{
			repos: mem.Repositories(),
			txm:   mem,
			users: repositories.NewMockUserRepository(),
			rates: repositories.NewMockShippingRateRepository(),
			close: func() error { return nil },
		}, nil
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)

	return &storage{
		repos: repositories.NewGORMRepositories(db),
		txm:   repositories.NewGORMTxManager(db),
		users: repositories.NewGORMUserRepository(db),
		rates: repositories.NewGORMShippingRateRepository(db),
		close: sqlDB.Close,
	}, nil
}

// startBroker connects the configured broker and starts the notification
// consumer. It returns a nil publisher when events are disabled.
func startBroker(ctx context.Context, cfg *config.Config, closers *[]func() error) (events.Publisher, error) {
	notifier := notification.NewHandler(newMailer(cfg))

	switch cfg.EventBroker {
	case "rabbitmq":
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		*closers = append(*closers, mqClient.Close)
		if err := mqClient.Consume(ctx, notifier.HandleEvent); err != nil {
			return nil, fmt.Errorf("failed to start RabbitMQ consumer: %w", err)
		}
		return mqClient, nil
	case "kafka":
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, "kulit-notifications")
		*closers = append(*closers, producer.Close, consumer.Close)
		go consumer.Consume(ctx, notifier.HandleEvent)
		return producer, nil
	default:
		log.Println("Event broker disabled, order notifications will not be sent")
		return nil, nil
	}
}

// logMailer stands in for SMTP when no mail host is configured.
type logMailer struct{}

func (logMailer) Send(to, subject, _ string) error {
	log.Printf("[Notifier] SMTP not configured, would send %q to %s", subject, to)
	return nil
}

func newMailer(cfg *config.Config) notification.Mailer {
	if cfg.SMTPHost == "" {
		return logMailer{}
	}
	return email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
}
