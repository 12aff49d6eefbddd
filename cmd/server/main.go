package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/nekogravitycat/club-planner/internal/app"
	"github.com/nekogravitycat/club-planner/internal/booking"
	"github.com/nekogravitycat/club-planner/internal/config"
	"github.com/nekogravitycat/club-planner/internal/db"
	"github.com/nekogravitycat/club-planner/internal/pkg/cache"
	"github.com/nekogravitycat/club-planner/internal/pkg/events"
	"github.com/nekogravitycat/club-planner/internal/pkg/logging"
	"github.com/nekogravitycat/club-planner/internal/resource"
	"github.com/nekogravitycat/club-planner/internal/seed"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logWriter := logging.Setup(cfg.LogFile)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("failed to load time zone: %v", err)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("failed to migrate db: %v", err)
	}

	// Optional occupancy cache
	var occCache cache.Cache
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer client.Close()
		occCache = cache.NewRedis(client)
	} else {
		occCache = cache.NewMemory()
	}

	// Optional event publisher
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		publisher = p
	}
	defer publisher.Close()

	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction(),
		ProdOrigins:  cfg.ProdOrigins,
		LogWriter:    logWriter,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		Location:     loc,
		HalfNames:    resource.HalfNames{A: cfg.FieldHalfAName, B: cfg.FieldHalfBName},
		Planner: booking.PlannerOptions{
			PinClickedHalf:   cfg.PinClickedHalf,
			MaxLockerPadding: cfg.MaxLockerPadding,
		},
		MaxSeries: cfg.MaxSeriesWeeks,
		Cache:     occCache,
		CacheTTL:  cfg.OccupancyCacheTTL,
		Events:    publisher,
	})

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			log.Fatalf("failed to load seed file: %v", err)
		}
		if err := seed.Apply(ctx, f, container.Seed); err != nil {
			log.Fatalf("failed to apply seed file: %v", err)
		}
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		log.Printf("server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Println("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	log.Println("server exited gracefully")
}
