package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/config"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/handlers"
	"github.com/templetrust/seva-booking-backend/internal/middleware"
	"github.com/templetrust/seva-booking-backend/internal/services"
	"github.com/templetrust/seva-booking-backend/pkg/jwt"
	"github.com/templetrust/seva-booking-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Temple Seva Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	phoneValidator := validator.NewPhoneValidator()
	razorpayService := services.NewRazorpayService(&cfg.Payment, logger)

	if cfg.GatewayEnabled() {
		logger.Info("Razorpay gateway checkout enabled")
	} else {
		logger.Warn("Razorpay credentials not configured - gateway bookings will be rejected")
	}

	// Initialize repositories. Booking and devotee repositories share
	// transactions, so they take the sqlx handle directly.
	bookingRepo := database.NewBookingRepository(db.DB, logger)
	devoteeRepo := database.NewDevoteeRepository(db.DB, logger)
	sevaRepo := database.NewSevaRepository(db)
	settingRepo := database.NewSystemSettingRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	adminUserRepo := database.NewAdminUserRepository(db)

	bookingService := services.NewBookingService(
		bookingRepo,
		devoteeRepo,
		sevaRepo,
		settingRepo,
		notificationRepo,
		razorpayService,
		phoneValidator,
		cfg,
		logger,
	)

	logger.Info("Services initialized")

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, bookingRepo, phoneValidator, logger)
	adminBookingHandler := handlers.NewAdminBookingHandler(bookingRepo, logger)
	devoteeHandler := handlers.NewDevoteeHandler(devoteeRepo, phoneValidator, logger)
	sevaHandler := handlers.NewSevaHandler(sevaRepo, logger)
	settingHandler := handlers.NewSettingHandler(settingRepo, logger)
	paymentHandler := handlers.NewPaymentHandler(razorpayService, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, logger)
	authHandler := handlers.NewAuthHandler(adminUserRepo, jwtService, phoneValidator, cfg, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Seva catalog (public, read-only)
		sevas := v1.Group("/sevas")
		{
			sevas.GET("", sevaHandler.ListSevas)
			sevas.GET("/:id", sevaHandler.GetSeva)
		}

		// Settings view (public, read-only)
		v1.GET("/settings", settingHandler.GetSettings)

		// Devotee profile prefill (public)
		v1.GET("/devotees/:mobile", devoteeHandler.GetByMobile)

		// Booking routes. Creation accepts both guests and authenticated
		// devotees, so auth is optional there.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", middleware.OptionalAuth(jwtService), bookingHandler.CreateBooking)
			bookings.POST("/:id/payment", bookingHandler.ConfirmPayment)
			bookings.GET("/phone/:phone", bookingHandler.GetBookingsByPhone)
			bookings.GET("/me", middleware.RequireAuth(jwtService), bookingHandler.GetMyBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
		}

		// Staff authentication (public)
		adminAuth := v1.Group("/admin/auth")
		{
			adminAuth.POST("/login", authHandler.Login)
			adminAuth.POST("/refresh", authHandler.RefreshToken)
			adminAuth.PUT("/password", middleware.RequireAuth(jwtService), authHandler.ChangePassword)
		}

		// Admin reconciliation routes (all protected)
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth(jwtService), middleware.RequireAdmin())
		{
			admin.GET("/bookings", adminBookingHandler.ListBookings)
			admin.GET("/bookings/totals", adminBookingHandler.GetTotals)
			admin.PUT("/bookings/:id", adminBookingHandler.UpdateBooking)
			admin.DELETE("/bookings/:id", adminBookingHandler.DeleteBooking)

			admin.GET("/devotees", devoteeHandler.ListDevotees)
			admin.PUT("/devotees/:id", devoteeHandler.UpdateDevotee)
			admin.DELETE("/devotees/:id", devoteeHandler.DeleteDevotee)

			admin.GET("/settings", settingHandler.ListSettings)
			admin.PUT("/settings", settingHandler.UpdateSettings)

			admin.GET("/notifications", notificationHandler.ListNotifications)
			admin.DELETE("/notifications", notificationHandler.PruneNotifications)

			admin.POST("/payments/order", paymentHandler.CreateOrder)
			admin.POST("/payments/link", paymentHandler.CreatePaymentLink)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "healthy"
		if err := db.Ping(); err != nil {
			dbStatus = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbStatus,
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
