package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/analytics"
	"storefront/internal/bundle"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

// cartStorage is what a cart backend must provide: documents and purchase markers.
type cartStorage interface {
	repositories.KeyValueStore
	repositories.Deduper
}

// appDeps are the external resources the HTTP app is built on.
type appDeps struct {
	Config    config.Config
	Products  repositories.ProductRepository
	Storage   cartStorage
	Publisher analytics.Publisher
	Gateway   payments.Gateway
	Logger    *zap.SugaredLogger
}

func main() {
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &repositories.KVEntry{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	seedProducts(productRepo, log)

	storage, closeStorage, err := newCartStorage(cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize cart storage: %v", err)
	}
	defer closeStorage()

	publisher, closePublisher, err := newPublisher(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
	}
	defer closePublisher()

	var gateway payments.Gateway = payments.StubGateway{}
	if cfg.StripeSecretKey != "" {
		gateway, err = payments.NewStripeGateway(payments.StripeGatewayConfig{APIKey: cfg.StripeSecretKey})
		if err != nil {
			log.Fatalf("Failed to initialize Stripe: %v", err)
		}
	} else {
		log.Warnf("STRIPE_SECRET_KEY is not set; checkout uses the stub gateway")
	}

	app := newApp(appDeps{
		Config:    cfg,
		Products:  productRepo,
		Storage:   storage,
		Publisher: publisher,
		Gateway:   gateway,
		Logger:    log,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Infof("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("Error during Fiber shutdown: %v", err)
	}
	log.Infof("Server gracefully stopped")
}

// newApp wires services and handlers onto a Fiber app.
func newApp(deps appDeps) *fiber.App {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	tracker := analytics.NewTracker(deps.Publisher, deps.Storage, cfg.Currency, log)
	catalog := bundle.DefaultCatalog()

	productService := services.NewProductService(deps.Products, tracker)
	couponService := services.NewCouponService(repositories.NewStaticCouponRepository(repositories.DefaultCoupons), cfg.CouponCheckDelay)
	cartService := services.NewCartService(services.CartServiceDeps{
		Storage:    deps.Storage,
		Products:   deps.Products,
		Coupons:    couponService,
		Catalog:    catalog,
		Calculator: pricing.NewCalculator(cfg.Pricing),
		Tracker:    tracker,
		Logger:     log,
	})
	checkoutService := services.NewCheckoutService(
		cartService,
		deps.Gateway,
		repositories.NewMockCheckoutRepository(),
		tracker,
		services.CheckoutConfig{
			SuccessURL: cfg.CheckoutSuccessURL,
			CancelURL:  cfg.CheckoutCancelURL,
			Currency:   cfg.Currency,
		},
		log,
	)
	identityService := services.NewIdentityService(cfg.AuthJWTSecret)

	app := fiber.New(fiber.Config{AppName: "storefront"})
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1", middleware.OptionalIdentity(identityService, log))
	handlers.NewProductHandler(productService, log).RegisterRoutes(apiV1)
	handlers.NewBundleHandler(catalog).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, log).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkoutService, log).RegisterRoutes(apiV1)

	return app
}

func newLogger(cfg config.Config) (*zap.SugaredLogger, error) {
	var (
		base *zap.Logger
		err  error
	)
	if cfg.IsProduction() {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return base.Sugar(), nil
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	return gorm.Open(dialector, &gorm.Config{})
}

// newCartStorage picks the cart backend named by CART_STORAGE. The returned
// func releases its connections.
func newCartStorage(cfg config.Config, db *gorm.DB) (cartStorage, func(), error) {
	switch cfg.CartStorage {
	case "memory":
		return repositories.NewMemoryKeyValueStore(), func() {}, nil
	case "gorm", "":
		return repositories.NewGORMKeyValueStore(db), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return repositories.NewRedisKeyValueStore(client, "storefront:", cfg.CartTTL), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported CART_STORAGE %q", cfg.CartStorage)
	}
}

// newPublisher picks the analytics sink. Events only leave the process in
// production; the storefront publishes to the queue and never consumes it.
func newPublisher(cfg config.Config, log *zap.SugaredLogger) (analytics.Publisher, func(), error) {
	if !cfg.IsProduction() || cfg.RabbitMQURL == "" {
		return analytics.NewLogPublisher(log), func() {}, nil
	}
	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := mqClient.Close(); err != nil {
			log.Errorf("Error closing RabbitMQ client: %v", err)
		}
	}
	return analytics.NewAMQPPublisher(mqClient), closeClient, nil
}

// seedProducts loads the launch catalog. Create upserts, so restarts are safe.
func seedProducts(repo repositories.ProductRepository, log *zap.SugaredLogger) {
	for i := range launchCatalog {
		product := launchCatalog[i]
		if err := repo.Create(&product); err != nil {
			log.Errorf("Error seeding product %s: %v", product.ID, err)
		}
	}
	log.Infof("Seeded %d products", len(launchCatalog))
}

// Accessories are unsized so curated bundles can carry one apparel size.
var apparelSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

var launchCatalog = []models.Product{
	{ID: "tee-classic-black", Name: "Classic Tee - Black", Description: "Midweight cotton tee in black.", Price: 28, Image: "/images/tee-classic-black.jpg", Category: "tees", Sizes: apparelSizes, Colors: []string{"Black"}, Active: true},
	{ID: "tee-classic-white", Name: "Classic Tee - White", Description: "Midweight cotton tee in white.", Price: 28, Image: "/images/tee-classic-white.jpg", Category: "tees", Sizes: apparelSizes, Colors: []string{"White"}, Active: true},
	{ID: "tee-long-sleeve", Name: "Long Sleeve Tee", Description: "Long sleeve tee with ribbed cuffs.", Price: 38, Image: "/images/tee-long-sleeve.jpg", Category: "tees", Sizes: apparelSizes, Colors: []string{"Black", "White", "Navy"}, Active: true},
	{ID: "hoodie-heavyweight", Name: "Heavyweight Hoodie", Description: "Brushed fleece pullover hoodie.", Price: 85, Image: "/images/hoodie-heavyweight.jpg", Category: "outerwear", Sizes: apparelSizes, Colors: []string{"Black", "Heather Grey"}, Active: true},
	{ID: "cap-logo", Name: "Logo Cap", Description: "Six panel cap with embroidered logo.", Price: 30, Image: "/images/cap-logo.jpg", Category: "accessories", Active: true},
	{ID: "beanie-knit", Name: "Knit Beanie", Description: "Rib knit beanie.", Price: 24, Image: "/images/beanie-knit.jpg", Category: "accessories", Active: true},
	{ID: "socks-crew", Name: "Crew Socks", Description: "Cushioned crew socks.", Price: 16, Image: "/images/socks-crew.jpg", Category: "accessories", Active: true},
	{ID: "tote-canvas", Name: "Canvas Tote", Description: "Heavy canvas tote bag.", Price: 22, Image: "/images/tote-canvas.jpg", Category: "accessories", Active: true},
}
