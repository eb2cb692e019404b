package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"import-broker/internal/config"
	"import-broker/internal/database"
	"import-broker/internal/handlers"
	"import-broker/internal/kafka"
	"import-broker/internal/logger"
	"import-broker/internal/models"
	"import-broker/internal/redis"
	"import-broker/internal/services"
)

// Factory functions for external connections (replaceable in tests).
var (
	dbConnect        = database.Connect
	redisConnect     = redis.Connect
	newKafkaProducer = kafka.NewProducer
	newKafkaConsumer = kafka.NewConsumer
	kafkaHealthCheck = handlers.CheckKafkaHealth
	loadConfig       = config.Load
	newLogger        = logger.New
)

// application aggregates the assembled dependencies.
type application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	producer *kafka.Producer
	consumer *kafka.Consumer
	rates    *services.RateService
	arrivals *services.ArrivalsService
	mux      *http.ServeMux
	server   *http.Server
}

func main() {
	app, err := buildApplication()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}
	app.log.Info("Starting import broker server...")

	go func() {
		app.log.WithField("address", app.server.Addr).Info("HTTP server starting")
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	app.rates.Stop()
	app.arrivals.Stop()
	_ = app.consumer.Stop()
	if err := app.server.Shutdown(ctx); err != nil {
		app.log.WithError(err).Error("Server forced to shutdown")
	}
	_ = app.producer.Close()
	_ = app.redis.Close()
	_ = app.db.Close()
	app.log.Info("Server exited")
}

// buildApplication creates all dependencies (replaceable in tests).
func buildApplication() (*application, error) {
	cfg := loadConfig()
	log := newLogger(&cfg.Logger)

	db, err := dbConnect(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	redisClient, err := redisConnect(&cfg.Redis, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	producer, err := newKafkaProducer(&cfg.Kafka, log)
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	consumer, err := newKafkaConsumer(&cfg.Kafka, log)
	if err != nil {
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	rateSource := services.NewSimulatedRateSource(&cfg.Rates, time.Now().UnixNano())
	rateService := services.NewRateService(rateSource, redisClient, producer, log, &cfg.Rates)
	arrivalsService := services.NewArrivalsService(redisClient, log, &cfg.Arrivals, time.Now().UnixNano())

	quoteService := services.NewQuoteService(db, rateService, producer, log)
	vehicleService := services.NewVehicleService(db, redisClient, log, &cfg.Inventory)
	inquiryService := services.NewInquiryService(db, producer, log)
	rateLimiter := services.NewRateLimiter(redisClient, log, &cfg.RateLimit)

	calculatorHandler := handlers.NewCalculatorHandler(quoteService, rateService, log)
	quoteHandler := handlers.NewQuoteHandler(quoteService, log)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, log)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService, log)
	arrivalsHandler := handlers.NewArrivalsHandler(arrivalsService, log)
	healthHandler := handlers.NewHealthHandler(db, redisClient, cfg.Kafka.Brokers, kafkaHealthCheck)
	rateLimitHandler := handlers.NewRateLimitHandler(rateLimiter, log, &cfg.RateLimit)

	registerEventHandlers(consumer, log)
	if err := consumer.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("kafka consumer start: %w", err)
	}

	if err := rateService.Start(); err != nil {
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("rate service start: %w", err)
	}

	if err := arrivalsService.Start(); err != nil {
		rateService.Stop()
		_ = consumer.Stop()
		_ = producer.Close()
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("arrivals service start: %w", err)
	}

	mux := setupRoutes(calculatorHandler, quoteHandler, vehicleHandler, inquiryHandler, arrivalsHandler, healthHandler, rateLimitHandler, rateLimiter, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &application{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		producer: producer,
		consumer: consumer,
		rates:    rateService,
		arrivals: arrivalsService,
		mux:      mux,
		server:   server,
	}, nil
}

// setupRoutes wires the HTTP routes.
func setupRoutes(calculatorHandler *handlers.CalculatorHandler, quoteHandler *handlers.QuoteHandler, vehicleHandler *handlers.VehicleHandler, inquiryHandler *handlers.InquiryHandler, arrivalsHandler *handlers.ArrivalsHandler, healthHandler *handlers.HealthHandler, rateLimitHandler *handlers.RateLimitHandler, rateLimiter *services.RateLimiter, log *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	applyAPI := func(h http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(handlers.RateLimitMiddleware(rateLimiter, log, h))
	}

	// Health check endpoints
	mux.HandleFunc("/health", corsMiddleware(healthHandler.Health))
	mux.HandleFunc("/health/readiness", corsMiddleware(healthHandler.Readiness))
	mux.HandleFunc("/health/liveness", corsMiddleware(healthHandler.Liveness))

	// Calculator endpoints
	mux.HandleFunc("/api/calculator/estimate", applyAPI(calculatorHandler.Estimate))
	mux.HandleFunc("/api/calculator/rates", applyAPI(calculatorHandler.Rates))
	mux.HandleFunc("/api/calculator/bands", applyAPI(calculatorHandler.Bands))

	// Quote endpoints
	mux.HandleFunc("/api/quotes", applyAPI(handleQuotesRoute(quoteHandler)))
	mux.HandleFunc("/api/quotes/", applyAPI(quoteHandler.GetQuote))

	// Vehicle endpoints
	mux.HandleFunc("/api/vehicles", applyAPI(handleVehiclesRoute(vehicleHandler)))
	mux.HandleFunc("/api/vehicles/", applyAPI(handleVehicleRoute(vehicleHandler)))

	// Inquiry endpoints
	mux.HandleFunc("/api/inquiries", applyAPI(handleInquiriesRoute(inquiryHandler)))
	mux.HandleFunc("/api/inquiries/", applyAPI(inquiryHandler.GetInquiry))

	// Arrivals feed
	mux.HandleFunc("/api/arrivals", applyAPI(arrivalsHandler.List))

	// Rate limit status
	mux.HandleFunc("/api/rate-limit/status", applyAPI(rateLimitHandler.Status))

	return mux
}

// handleQuotesRoute dispatches the quotes collection.
func handleQuotesRoute(handler *handlers.QuoteHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListQuotes(w, r)
		case http.MethodPost:
			handler.CreateQuote(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleVehiclesRoute dispatches the vehicles collection.
func handleVehiclesRoute(handler *handlers.VehicleHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListVehicles(w, r)
		case http.MethodPost:
			handler.CreateVehicle(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleVehicleRoute dispatches a single vehicle and its sub-resources.
func handleVehicleRoute(handler *handlers.VehicleHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/availability") {
			if r.Method == http.MethodPut {
				handler.UpdateAvailability(w, r)
			} else {
				writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		if r.Method == http.MethodGet {
			handler.GetVehicle(w, r)
		} else {
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// handleInquiriesRoute dispatches the inquiries collection.
func handleInquiriesRoute(handler *handlers.InquiryHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handler.ListInquiries(w, r)
		case http.MethodPost:
			handler.CreateInquiry(w, r)
		default:
			writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// registerEventHandlers registers Kafka event handlers.
func registerEventHandlers(consumer *kafka.Consumer, log *logger.Logger) {
	consumer.RegisterHandler(models.EventTypeQuoteCreated, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing quote created event")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeInquiryCreated, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing inquiry created event")
		return nil
	})

	consumer.RegisterHandler(models.EventTypeRatesUpdated, func(ctx context.Context, event *models.Event) error {
		log.WithField("event_id", event.ID).Info("Processing rates updated event")
		return nil
	})
}

func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	type errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
