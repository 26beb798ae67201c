package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slok/go-http-metrics/metrics/prometheus"
	httpmetrics "github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lykerclassy/lipana-mpesa-integration/internal/config"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/db"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/gateway"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/handlers"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/logger"
	mw "github.com/lykerclassy/lipana-mpesa-integration/internal/middleware"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/repository/mongodb"
	"github.com/lykerclassy/lipana-mpesa-integration/internal/services"
)

type Server struct {
	router         *mux.Router
	log            logger.Logger
	httpServer     *http.Server
	paymentHandler *handlers.PaymentHandler
	mongoClient    *mongo.Client
}

// NewServer wires the whole backend: Mongo store, Lipana client, lifecycle
// service, handlers, middleware. All dependencies are constructed here and
// passed down; nothing is package-global.
func NewServer(cfg *config.ServerConfig, log logger.Logger) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoClient, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	log.Info("connected to MongoDB")

	database := mongoClient.Database(cfg.MongoDatabase)
	transactionRepo := mongodb.NewTransactionRepo(database, log)
	lipanaClient := gateway.NewClient(cfg.LipanaSecretKey, cfg.LipanaEnvironment, log)
	transactionService := services.NewTransactionService(transactionRepo, lipanaClient, log)
	paymentHandler := handlers.NewPaymentHandler(transactionService, log)

	s := &Server{
		router:         mux.NewRouter(),
		log:            log,
		paymentHandler: paymentHandler,
		mongoClient:    mongoClient,
	}

	s.router.Use(
		mw.Logging(log),
		mw.Recovery(log),
	)

	metricsMw := httpmetrics.New(httpmetrics.Config{
		Recorder: prometheus.NewRecorder(prometheus.Config{}),
	})
	s.router.Use(func(next http.Handler) http.Handler {
		return std.Handler("", metricsMw, next)
	})

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	s.paymentHandler.RegisterRoutes(s.router)

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.httpServer = srv
	return srv.ListenAndServe()
}

// Shutdown stops the HTTP server and closes the Mongo connection.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.Error("failed to shutdown HTTP server", logger.ErrorField("error", err))
			shutdownErr = fmt.Errorf("HTTP server shutdown: %w", err)
		}
	}

	if s.mongoClient != nil {
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			s.log.Error("failed to disconnect from MongoDB", logger.ErrorField("error", err))
			shutdownErr = fmt.Errorf("mongo disconnect: %w", err)
		}
	}

	return shutdownErr
}
