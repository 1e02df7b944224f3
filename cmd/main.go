package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tech-entry-bot/config"
	_ "tech-entry-bot/docs"
	"tech-entry-bot/internal/gateway"
	"tech-entry-bot/internal/handlers"
	"tech-entry-bot/internal/models"
	"tech-entry-bot/internal/repositories"
	"tech-entry-bot/internal/services"
	"tech-entry-bot/internal/sheet"
	"tech-entry-bot/internal/utils"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Tech Entry Bot API
// @version 1.0
// @description Schedules technician site-entry appointments over WhatsApp with a single slot question
// @host localhost:8081
// @BasePath /api/v1
func main() {
	// Load config
	cfg := config.NewConfig()

	// Open the workbook store
	workbook, err := sheet.Open(cfg.WorkbookPath)
	if err != nil {
		log.Fatalf("Error opening workbook: %v", err)
	}
	defer workbook.Close()

	eventRepo := repositories.NewSheetEventRepository(workbook)
	contactRepo := repositories.NewSheetContactRepository(workbook)
	logRepo := repositories.NewSheetLogRepository(workbook)

	// Pick the message gateway
	var gw gateway.Gateway
	var pairing handlers.PairingGateway
	var meow *gateway.WhatsmeowGateway

	switch cfg.Gateway {
	case "twilio":
		gw = gateway.NewTwilioGateway(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From)
	default:
		meow = gateway.NewWhatsmeowGateway(cfg.SessionDBPath)
		gw = meow
		pairing = meow
	}

	directory := services.NewContactDirectory(eventRepo, contactRepo, logRepo)
	dispatcher := services.NewDispatcher(eventRepo, contactRepo, logRepo, gw)
	sweeper := services.NewSweeper(eventRepo, contactRepo, logRepo, dispatcher, cfg.FollowUpInterval, cfg.MaxReminders)
	reducer := services.NewReducer(eventRepo, contactRepo, logRepo, directory)

	if meow != nil {
		meow.SetInboundHandler(func(from string, msg models.InboundMessage) {
			if err := reducer.HandleInbound(context.Background(), from, msg); err != nil {
				utils.LogError("Failed to process inbound message from %s: %v", from, err)
			}
		})
		if err := meow.Connect(); err != nil {
			utils.LogWarning("WhatsApp connection not established yet: %v", err)
		}
	}

	backup, err := services.NewBackupService(cfg.S3Config)
	if err != nil {
		utils.LogError("Backup service unavailable: %v", err)
		backup = nil
	}

	// Create HTTP handler
	httpHandler := handlers.NewHTTPHandler(cfg, dispatcher, sweeper, reducer, directory, backup, pairing)
	router := mux.NewRouter().PathPrefix("/api/v1").Subrouter()

	router.HandleFunc("/webhook", httpHandler.HandleWebhook).Methods("POST", "OPTIONS")

	// Operational routes
	router.HandleFunc("/ops/kick", httpHandler.HandleKick).Methods("POST", "OPTIONS")
	router.HandleFunc("/ops/sweep", httpHandler.HandleSweep).Methods("POST", "OPTIONS")
	router.HandleFunc("/ops/backup", httpHandler.HandleBackup).Methods("POST", "OPTIONS")

	// Event routes
	router.HandleFunc("/events/{event_id}/contact", httpHandler.GetEventContact).Methods("GET", "OPTIONS")
	router.HandleFunc("/events/{event_id}/redirect", httpHandler.RedirectEvent).Methods("POST", "OPTIONS")

	// Authentication and status routes
	router.HandleFunc("/qrcode", httpHandler.GetQRCode).Methods("GET", "OPTIONS")
	router.HandleFunc("/status", httpHandler.GetStatus).Methods("GET", "OPTIONS")
	router.HandleFunc("/healthz", httpHandler.Healthz).Methods("GET", "OPTIONS")

	// WebSocket route
	router.HandleFunc("/ws", handlers.WebSocketHandler)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	mainRouter := mux.NewRouter()
	mainRouter.PathPrefix("/api/v1").Handler(router)

	// CORS setup
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	handler := c.Handler(mainRouter)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Server is running on %s\n", cfg.ListenAddr)
		fmt.Printf("Swagger UI available at: http://localhost%s/api/v1/swagger/index.html\n", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-stop
	fmt.Println("\nShutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	if meow != nil {
		meow.Disconnect()
	}

	fmt.Println("Server stopped successfully")
}
