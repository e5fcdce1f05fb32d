package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/docsmedbilling/credentialing-helpdesk/docs" // Import generated docs
	"github.com/docsmedbilling/credentialing-helpdesk/internal/config"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/controllers"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/database"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/mailer"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/middleware"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/scheduler"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/services"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/telemetry"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/uploads"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

var (
	db               *gorm.DB
	userService      services.UserService
	sessionService   services.SessionService
	ticketService    services.TicketService
	commentService   services.CommentService
	authController   *controllers.AuthController
	ticketController controllers.TicketController
	adminController  *controllers.AdminController
	configuration    *config.Config
)

// @title Credentialing Helpdesk API
// @version 1.0
// @description Ticketing backend for the Credentialing Helpdesk Portal
// @host 127.0.0.1:5000
// @BasePath /
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name helpdesk_session
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()

	// Initialize database connection
	setupDatabase(configuration)

	// One-time schema initialization and admin seed, mirrors `init-db`
	if len(os.Args) > 1 && os.Args[1] == "init-db" {
		runInitDB()
		return
	}

	// Optional tracing
	if configuration.OtelEnabled {
		shutdown, err := telemetry.Setup(context.Background(),
			configuration.ServiceName, configuration.OtelEndpoint,
			config.GetEnvWithDefault("APP_ENV", "development"))
		checkPanicErr(err)
		defer shutdown()
	}

	location, err := configuration.Location()
	checkPanicErr(err)

	uploadStore, err := uploads.NewStore(configuration.UploadDir)
	checkPanicErr(err)

	notifier := mailer.NewNotifier(buildSender(configuration), configuration.MailUsername)

	// Initialize services and controllers
	userService = services.NewUserService(db)
	sessionService = services.NewSessionService(db, configuration.SessionTTL)
	ticketService = services.NewTicketService(db)
	commentService = services.NewCommentService(db)

	authController = controllers.NewAuthController(userService, sessionService, notifier,
		configuration.SecretKey, configuration.SessionTTL)
	ticketController = controllers.NewTicketController(ticketService, commentService,
		uploadStore, notifier, location)
	adminController = controllers.NewAdminController(ticketService, notifier)

	// SLA reminder scheduler
	reminders := scheduler.New(ticketService, sessionService, notifier, configuration.ReminderInterval)
	checkPanicErr(reminders.Start())

	// Initialize Gin router
	router := setupRouter()

	// Start the server
	addr := fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)
	log.Infof("Starting server on %s", addr)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Stop the scheduler and drain requests on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	reminders.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		gin.SetMode(gin.ReleaseMode)
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase initializes the database connection and migrates the schema
func setupDatabase(conf *config.Config) {
	var err error
	db, err = database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
		Tracing:  conf.OtelEnabled,
	})
	checkPanicErr(err)

	err = db.AutoMigrate(&models.User{}, &models.Ticket{}, &models.Comment{}, &models.Session{})
	checkPanicErr(err)
}

// runInitDB seeds the admin account, the Go counterpart of `flask init-db`
func runInitDB() {
	admins := services.NewUserService(db)
	password := configuration.AdminPassword
	if password == "" {
		password = "Admin@123"
	}

	created, err := admins.EnsureAdmin("CredentialingAdmin", configuration.AdminEmail, password)
	checkPanicErr(err)

	if created {
		fmt.Printf("Created default admin: %s\n", configuration.AdminEmail)
	}
	fmt.Println("Database initialized.")
}

// buildSender returns the SMTP sender, or a log-only sender when no mail
// credentials are configured
func buildSender(conf *config.Config) mailer.Sender {
	if conf.MailUsername == "" || conf.MailPassword == "" {
		log.Warn("MAIL_USERNAME/MAIL_PASSWORD not set, mail delivery disabled")
		return mailer.LogOnlySender{}
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Server:     conf.MailServer,
		Port:       conf.MailPort,
		Username:   conf.MailUsername,
		Password:   conf.MailPassword,
		SenderName: conf.MailSenderName,
	})
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter() *gin.Engine {
	router := gin.Default()

	if configuration.CORSOrigin != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     []string{configuration.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if configuration.OtelEnabled {
		router.Use(otelgin.Middleware(configuration.ServiceName))
	}

	setupRoutes(router)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.POST("/forgot-password", authController.ForgotPassword)
			auth.POST("/reset-password", authController.ResetPassword)
		}

		// Protected routes (requires a valid session cookie)
		protected := v1.Group("")
		protected.Use(middleware.SessionAuth(sessionService))
		{
			protected.POST("/auth/logout", authController.Logout)

			tickets := protected.Group("/tickets")
			{
				tickets.GET("", ticketController.ListTickets)
				tickets.POST("", ticketController.CreateTicket)
				tickets.GET("/:id", ticketController.GetTicket)
				tickets.GET("/:id/attachment", ticketController.DownloadAttachment)
				tickets.POST("/:id/comments", ticketController.AddComment)
				tickets.POST("/:id/actions", ticketController.StaffAction)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.PUT("/tickets/:id/status", adminController.UpdateStatus)
				admin.PUT("/tickets/:id/assignee", adminController.UpdateAssignee)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "credentialing-helpdesk",
	})
}
