package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ticketly/internal/analytics"
	analyticsapi "ticketly/internal/analytics/api"
	"ticketly/internal/auth"
	"ticketly/internal/config"
	"ticketly/internal/database/migrations"
	"ticketly/internal/events"
	eventsdb "ticketly/internal/events/db"
	"ticketly/internal/events/event_api"
	"ticketly/internal/kafka"
	"ticketly/internal/ledger"
	ledgerdb "ticketly/internal/ledger/db"
	"ticketly/internal/ledger/redislock"
	"ticketly/internal/logger"
	"ticketly/internal/tickets/qr"
	"ticketly/internal/tickets/ticket_api"
)

func openDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("DATABASE", "Failed to open postgres: "+err.Error())
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", "Failed to connect to postgres: "+err.Error())
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func newVerifier(ctx context.Context, cfg *config.Config, log *logger.Logger) auth.Verifier {
	if cfg.Auth.Mode == "oidc" {
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer)
		if err != nil {
			log.Fatal("AUTH", "OIDC setup failed: "+err.Error())
		}
		log.Info("AUTH", "Using OIDC token verification")
		return verifier
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("AUTH", "AUTH_JWT_SECRET not set")
	}
	return auth.NewHMACVerifier(cfg.Auth.JWTSecret)
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	ctx := context.Background()

	if cfg.QR.Secret == "" {
		log.Fatal("CONFIG", "QR_SECRET_KEY not set")
	}

	bunDB := openDatabase(cfg, log)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.Run(ctx); err != nil {
		log.Fatal("DATABASE", "Migration failed: "+err.Error())
	}

	var eventLock ledger.EventLock
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("REDIS", "Failed to connect to redis: "+err.Error())
		}
		defer redisClient.Close()
		eventLock = redislock.New(redisClient, cfg.Redis.LockTTL)
		log.Info("REDIS", "Redis connection successful")
	} else {
		eventLock = ledger.NewLocalLock()
		log.Warn("REDIS", "Redis disabled, using in-process event locks")
	}

	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		topics := []string{
			cfg.Kafka.Topics.TicketBooked,
			cfg.Kafka.Topics.TicketCancelled,
			cfg.Kafka.Topics.TicketCheckedIn,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", "Topic bootstrap failed: "+err.Error())
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", "Kafka producer ready")
	}

	qrGen := qr.NewGenerator(cfg.QR.Secret)
	ledgerService := ledger.NewService(ledgerdb.New(bunDB), eventLock, publisher, qrGen, log)
	eventService := events.NewService(eventsdb.New(bunDB), log)
	analyticsService := analytics.NewService(bunDB)

	ticketHandler := ticket_api.NewHandler(ledgerService)
	eventHandler := event_api.NewHandler(eventService)
	analyticsHandler := analyticsapi.NewHandler(analyticsService)

	authenticate := auth.Middleware(newVerifier(ctx, cfg, log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/events", func(r chi.Router) {
		eventHandler.PublicRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			eventHandler.AdminRoutes(r)
		})
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Use(authenticate)
		ticketHandler.Routes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(auth.RequireAdmin)
		r.Get("/dashboard", analyticsHandler.GetDashboard)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "Ticketly listening on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "HTTP error: "+err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Shutdown complete")
}
