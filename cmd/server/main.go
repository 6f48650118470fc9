// Package main is the entry point for the fleetops API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"fleetops/internal/config"
	"fleetops/internal/controller"
	"fleetops/internal/controller/handlers"
	"fleetops/internal/logger"
	"fleetops/internal/notify"
	"fleetops/internal/observability"
	"fleetops/internal/service"
	"fleetops/internal/store"
	"fleetops/internal/store/postgres"
	"fleetops/internal/sweeper"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogger := logger.New(cfg.LogLevel)

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if *migrateFlag {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(db.DB()); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	}

	// Tracing is off unless a collector endpoint is configured.
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "fleetops-server", cfg.OTELEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Printf("Failed to shutdown tracer: %v", err)
			}
		}()
	}

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics("fleetops-server")
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Observable gauges query the DB only when scraped.
	meter := otel.Meter("fleetops-server")
	registerGauge(meter, "fleetops.tasks.assigned", "Tasks currently assigned to a technician", db, store.TaskStatusAssigned)
	registerGauge(meter, "fleetops.tasks.in_progress", "Tasks currently in progress", db, store.TaskStatusInProgress)
	registerGauge(meter, "fleetops.tasks.on_hold", "Tasks currently on hold", db, store.TaskStatusOnHold)

	notifier := notify.NewLogNotifier(slogger)
	tasks := service.NewTaskService(db, slogger)
	assignments := service.NewAssignmentService(db, notifier, slogger)
	schedules := service.NewScheduleService(db, slogger)

	sw := sweeper.New(db, notifier, slogger, cfg.ScheduleRetention, cfg.PendingReminderAge)
	if err := sw.Start(cfg.SweepSchedule); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sw.Stop()

	h := handlers.New(tasks, assignments, schedules, db)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(addr, h, cfg, metricsHandler)

	go func() {
		log.Printf("FleetOps server starting on %s", addr)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited properly")
}

func registerGauge(meter metric.Meter, name, description string, db *postgres.Store, status store.TaskStatus) {
	_, err := meter.Int64ObservableGauge(name,
		metric.WithDescription(description),
		metric.WithInt64Callback(func(ctx context.Context, obs metric.Int64Observer) error {
			count, err := db.CountTasksByStatus(ctx, status)
			if err != nil {
				log.Printf("Failed to count %s tasks: %v", status, err)
				return nil // Don't crash metrics scrape on DB error
			}
			obs.Observe(count)
			return nil
		}),
	)
	if err != nil {
		log.Printf("Failed to register gauge %s: %v", name, err)
	}
}
