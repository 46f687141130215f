package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"eaumembers/internal/database"
	"eaumembers/internal/handlers"
	"eaumembers/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env in development; in production the platform injects env vars
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	db := database.GetDB()

	store := services.NewGormReminderStore(db)
	events := services.NewEventService(db)

	sender, err := services.NewEmailSender(services.EmailConfig{
		Provider:  getEnv("EMAIL_PROVIDER", "sendgrid"),
		APIKey:    os.Getenv("EMAIL_API_KEY"),
		FromEmail: getEnv("EMAIL_FROM_ADDRESS", "noreply@englishaustralia.com.au"),
		FromName:  getEnv("EMAIL_FROM_NAME", "English Australia"),
		RelayURL:  getEnv("EMAIL_RELAY_URL", "http://localhost:3001"),
	})
	if err != nil {
		log.Fatal("Failed to configure email sender:", err)
	}

	dispatcher := services.NewDispatcher(store, events, sender, services.DispatcherConfig{
		PortalURL:   getEnv("PORTAL_URL", "http://localhost:5180"),
		MaxAttempts: getEnvInt("REMINDER_MAX_ATTEMPTS", 5),
	})

	worker := services.NewReminderWorker(
		store,
		dispatcher,
		time.Duration(getEnvInt("REMINDER_POLL_SECONDS", 60))*time.Second,
		getEnvInt("REMINDER_BATCH_SIZE", 50),
	)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker.Start(workerCtx)

	// Initialize Gin router
	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1"})

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5180"), ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	eventHandler := handlers.NewEventHandler(db)
	registrationHandler := handlers.NewRegistrationHandler(db, store)
	adminHandler := handlers.NewReminderAdminHandler(store)

	// Basic routes
	router.GET("/", handlers.HomeHandler)
	router.GET("/health", handlers.HealthHandler)

	// Event catalog
	router.POST("/events", eventHandler.CreateEvent)
	router.GET("/events", eventHandler.ListEvents)
	router.GET("/events/:id", eventHandler.GetEvent)

	// Registration (the reminder-scheduling trigger)
	router.POST("/events/:id/registrations", registrationHandler.RegisterForEvent)
	router.DELETE("/registrations/:id", registrationHandler.CancelRegistration)

	// Admin monitoring and cleanup
	admin := router.Group("/admin")
	{
		admin.GET("/reminders/pending", adminHandler.ListPending)
		admin.GET("/reminders/dead", adminHandler.ListDead)
		admin.DELETE("/events/:id/reminders", adminHandler.DeleteForEvent)
	}

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s...", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Wait for a shutdown signal, then drain: stop the worker loop and let
	// any in-flight reminder batch finish before exiting.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	stopWorker()
	worker.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Shutdown complete")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}
