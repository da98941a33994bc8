package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/runpool/runpool-backend/internal/config"
	"github.com/runpool/runpool-backend/internal/database"
	"github.com/runpool/runpool-backend/internal/handlers"
	"github.com/runpool/runpool-backend/internal/middleware"
	"github.com/runpool/runpool-backend/internal/services"
	"github.com/runpool/runpool-backend/internal/utils"
	"github.com/runpool/runpool-backend/pkg/jwt"
	"github.com/runpool/runpool-backend/pkg/notify"
	"github.com/sirupsen/logrus"
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

	logger.Info("Starting RunPool backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

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

	userRepo := database.NewUserRepository(db)
	ratingRepo := database.NewRatingRepository(db)
	profileRepo := database.NewProfileRepository(db.DB)
	raceRepo := database.NewRaceRepository(db.DB)
	tripRepo := database.NewTripRepository(db.DB)
	reservationRepo := database.NewReservationRepository(db.DB)

	// Initialize notifier
	var notifier notify.Notifier
	if cfg.Notify.Mode == "production" {
		logger.Info("Initializing notification gateways in production mode...")
		mailGateway := notify.NewMailGateway(notify.MailConfig{
			APIURL: cfg.Notify.MailAPIURL,
			APIKey: cfg.Notify.MailAPIKey,
			Sender: cfg.Notify.MailSender,
		})
		whatsappGateway := notify.NewWhatsAppGateway(notify.WhatsAppConfig{
			APIURL: cfg.Notify.WhatsAppAPIURL,
			Token:  cfg.Notify.WhatsAppToken,
			Sender: cfg.Notify.WhatsAppSender,
		})
		notifier = notify.NewFanoutNotifier(mailGateway, whatsappGateway)
	} else {
		logger.Info("Notifications in development mode (logged, not sent)")
		notifier = notify.NewLogNotifier(logger)
	}

	tripService := services.NewTripService(
		tripRepo,
		reservationRepo,
		raceRepo,
		userRepo,
		profileRepo,
		notifier,
		cfg.Notify.FrontendBaseURL,
		logger,
	)
	raceService := services.NewRaceService(raceRepo, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	tripHandler := handlers.NewTripHandler(tripService)
	raceHandler := handlers.NewRaceHandler(raceService)
	profileHandler := handlers.NewProfileHandler(profileRepo)
	ratingHandler := handlers.NewTripRatingHandler(ratingRepo, tripRepo)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

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
	v1.Use(middleware.AuthMiddleware(jwtService))
	{
		trips := v1.Group("/trips")
		{
			trips.POST("", tripHandler.CreateTrip)
			trips.GET("", tripHandler.ListTripsByRace)
			trips.POST("/join", tripHandler.JoinTrip)
			trips.GET("/passenger/:passengerId", tripHandler.ListTripsByPassenger)
			trips.GET("/:id", tripHandler.GetTrip)
			trips.PATCH("/:id", tripHandler.UpdateTrip)
			trips.DELETE("/:id", tripHandler.DeleteTrip)
			trips.GET("/:id/passengers", tripHandler.GetTripPassengers)
			trips.DELETE("/:id/passengers/:passengerId", tripHandler.LeaveTrip)
			trips.GET("/:id/ratings", ratingHandler.ListTripRatings)
		}

		races := v1.Group("/races")
		{
			races.GET("", raceHandler.ListRaces)
			races.GET("/:id", raceHandler.GetRace)
			races.POST("", raceHandler.CreateRace)
			races.PATCH("/:id", raceHandler.UpdateRace)
		}

		profiles := v1.Group("/profiles")
		{
			profiles.POST("", profileHandler.CreateProfile)
		}

		users := v1.Group("/users")
		{
			users.GET("/:id/profile", profileHandler.GetProfile)
			users.DELETE("/:id/profile", profileHandler.DeleteProfile)
			users.GET("/:id/ratings", ratingHandler.ListUserRatings)
		}

		v1.POST("/trip-ratings", ratingHandler.CreateRating)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// requestLogger logs every request with latency, status and device fields.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		device := utils.ParseUserAgent(c.Request.UserAgent())

		fields := logrus.Fields{
			"status":      c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        path,
			"query":       query,
			"ip":          c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
			"device_type": device.DeviceType,
			"os":          device.OS,
			"browser":     device.Browser,
		}
		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.String())
			return
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request completed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request completed")
		default:
			entry.Info("Request completed")
		}
	}
}

// healthCheckHandler reports service and database health.
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
