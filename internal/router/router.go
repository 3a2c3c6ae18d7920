// internal/router/router.go
package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/config"
	"github.com/ermimobile/emobile-backend/internal/handlers"
	"github.com/ermimobile/emobile-backend/internal/middleware"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

const version = "1.0.0"

// Server is the HTTP engine together with the connections it owns.
type Server struct {
	Engine *gin.Engine

	closers []func() error
}

// Close releases the broker, cache and limiter resources.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func Initialize(db *gorm.DB, cfg *config.Config) (*Server, error) {
	server := &Server{}

	rdb, err := connectRedis(cfg)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		server.closers = append(server.closers, rdb.Close)
	}

	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	notificationService := services.NewNotificationService(cfg)

	var cartStore services.CartStore = services.NewDatabaseCartStore(db)
	if cfg.Cart.Store == "redis" {
		cartStore = services.NewRedisCartStore(rdb, time.Duration(cfg.Cart.TTLHours)*time.Hour)
	}

	idempotencyTTL := time.Duration(cfg.Order.IdempotencyTTL) * time.Hour
	var idempotencyStore services.IdempotencyStore = services.NewMemoryIdempotencyStore(idempotencyTTL)
	if rdb != nil {
		idempotencyStore = services.NewRedisIdempotencyStore(rdb, idempotencyTTL)
	}

	var publisher services.OrderPublisher = services.LogOrderPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = services.NewKafkaOrderPublisher(services.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic))
		logrus.WithField("topic", cfg.Kafka.OrderTopic).Info("Publishing order events to Kafka")
	}
	server.closers = append(server.closers, publisher.Close)

	categoryService := services.NewCategoryService(db)
	productService := services.NewProductService(db)
	cartService := services.NewCartService(cartStore, productService, cfg.Cart.MergeOnLogin)
	orderService := services.NewOrderService(db, storageService, publisher, idempotencyStore, cartService, cfg.Order.TotalTolerance).
		WithNotifications(notificationService)
	authService := services.NewAuthService(db, cfg, notificationService, cartService)
	settingsService := services.NewSettingsService(db)
	adminService := services.NewAdminService(db, orderService)
	contactService := services.NewContactService(db)
	userService := services.NewUserService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, storageService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, storageService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, storageService)
	adminHandler := handlers.NewAdminHandler(adminService)
	contactHandler := handlers.NewContactHandler(contactService)
	userHandler := handlers.NewUserHandler(userService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limits := middleware.NewRateLimits(cfg.RateLimit)
	server.closers = append(server.closers, func() error {
		limits.Stop()
		return nil
	})

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(limits.General())

	// Uploaded files are served from disk unless they live in S3
	if cfg.AWS.AccessKeyID == "" {
		r.Static(cfg.Upload.PublicPath, cfg.Upload.LocalDir)
	}

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	}
	r.GET("/health", health)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(), middleware.ResolveIdentity(), middleware.AuditLogMiddleware(db))
	{
		v1.GET("/health", health)

		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limits.Auth())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/verify-email", authHandler.VerifyEmail)
			auth.POST("/resend-verification", authHandler.ResendVerification)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Catalog routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/images", productHandler.GetImages)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/tree", categoryHandler.GetTree)
			categories.GET("/filter", categoryHandler.GetFilter)
			categories.GET("/:id", categoryHandler.GetCategory)
		}

		// Cart routes (guest or user)
		cart := v1.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:productId", cartHandler.UpdateItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
			cart.POST("/checkout", orderHandler.Checkout)
		}

		// Order routes
		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.PlaceOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/receipt", limits.Upload(), orderHandler.UploadReceipt)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(middleware.AuthRequired())
		{
			users.PUT("/me", userHandler.UpdateProfile)
			users.PUT("/me/password", limits.Auth(), userHandler.ChangePassword)
			users.GET("/:id/orders", orderHandler.GetUserOrders)
		}

		// Storefront settings
		v1.GET("/settings", settingsHandler.GetSettings)
		v1.GET("/payment-info/:method", settingsHandler.GetPaymentInfo)
		v1.POST("/contact", contactHandler.SendMessage)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			// Catalog management (admins and editors)
			staff := admin.Group("")
			staff.Use(middleware.StaffRequired())
			{
				staff.POST("/categories", categoryHandler.CreateCategory)
				staff.PUT("/categories/:id", categoryHandler.UpdateCategory)
				staff.DELETE("/categories/:id", categoryHandler.DeleteCategory)
				staff.POST("/categories/:id/upload", limits.Upload(), categoryHandler.UploadImage)

				staff.POST("/products", productHandler.CreateProduct)
				staff.PUT("/products/:id", productHandler.UpdateProduct)
				staff.DELETE("/products/:id", productHandler.DeleteProduct)
				staff.POST("/products/:id/upload", limits.Upload(), productHandler.UploadImage)
				staff.POST("/products/:id/upload-multiple", limits.Upload(), productHandler.UploadImages)
			}

			adminOnly := admin.Group("")
			adminOnly.Use(middleware.AdminRequired())
			{
				adminOnly.GET("/stats", adminHandler.GetDashboardStats)

				adminOnly.GET("/orders", orderHandler.ListOrders)
				adminOnly.PUT("/orders/:id/status", orderHandler.UpdateStatus)
				adminOnly.DELETE("/orders/:id", orderHandler.DeleteOrder)

				adminOnly.GET("/users", adminHandler.GetUsers)
				adminOnly.PUT("/users/:id/role", adminHandler.UpdateUserRole)

				adminOnly.PUT("/settings/:key", settingsHandler.UpdateSetting)
				adminOnly.POST("/settings/hero-image/upload", limits.Upload(), settingsHandler.UploadHeroImage)

				adminOnly.GET("/contacts", contactHandler.ListMessages)
				adminOnly.PUT("/contacts/:id/status", contactHandler.UpdateStatus)
				adminOnly.DELETE("/contacts/:id", contactHandler.DeleteMessage)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "route")
	})

	server.Engine = r
	return server, nil
}

// connectRedis returns nil when Redis is not configured. A configured but
// unreachable Redis is fatal only when carts are stored there.
func connectRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Host == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		if cfg.Cart.Store == "redis" {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logrus.WithError(err).Warn("Redis unavailable, using in-memory idempotency keys")
		return nil, nil
	}

	logrus.WithField("addr", cfg.Redis.Addr()).Info("Connected to Redis")
	return rdb, nil
}
