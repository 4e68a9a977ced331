// Package main runs the skedcore scheduling core: the hourly pipeline
// trigger and the /rpc HTTP surface.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aerovane/skedcore/internal/api"
	"github.com/aerovane/skedcore/internal/decision"
	"github.com/aerovane/skedcore/internal/notifications"
	"github.com/aerovane/skedcore/internal/orchestrator"
	"github.com/aerovane/skedcore/internal/platform/config"
	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/platform/logging"
	"github.com/aerovane/skedcore/internal/platform/observability"
	"github.com/aerovane/skedcore/internal/ranking"
	"github.com/aerovane/skedcore/internal/repositories"
	"github.com/aerovane/skedcore/internal/scheduling/candidates"
	"github.com/aerovane/skedcore/internal/scheduling/classifier"
	"github.com/aerovane/skedcore/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	addr := flag.String("addr", ":8080", "HTTP server address")
	tunablesPath := flag.String("tunables", os.Getenv("SKEDCORE_TUNABLES_FILE"), "optional tunables YAML file")
	flag.Parse()

	logger := logging.New()

	shutdownTracing, err := observability.InitTracing("skedcore")
	if err != nil {
		log.Printf("Tracing disabled: %v", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Printf("Tracing shutdown error: %v", err)
			}
		}()
	}

	dbCfg, err := db.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}

	pgDB, err := db.NewPostgresDB(dbCfg)
	if err != nil {
		log.Fatalf("PostgreSQL connection failed: %v", err)
	}
	defer pgDB.Close()
	log.Println("PostgreSQL connected")

	tunables, err := config.Load(*tunablesPath)
	if err != nil {
		log.Fatalf("Failed to load tunables: %v", err)
	}

	publisher := notifications.Connect(dbCfg.NATSURL)
	defer publisher.Close()
	if dbCfg.NATSURL != "" {
		log.Println("Notification publisher connected to NATS")
	} else {
		log.Println("Notification publisher disabled (NATS_URL not set)")
	}

	students := repositories.NewStudentRepository(pgDB)
	instructors := repositories.NewInstructorRepository(pgDB)
	aircraft := repositories.NewAircraftRepository(pgDB)
	thresholds := repositories.NewThresholdRepository(pgDB)
	flights := repositories.NewFlightRepository(pgDB)
	snapshots := repositories.NewWeatherSnapshotRepository(pgDB)
	actions := repositories.NewRescheduleActionRepository(pgDB)
	notifs := repositories.NewNotificationRepository(pgDB).WithPublisher(publisher)
	cronRuns := repositories.NewCronRunRepository(pgDB)

	forecastAPIKey := os.Getenv("FORECAST_API_KEY")
	forecastBaseURL := os.Getenv("FORECAST_BASE_URL")
	if forecastAPIKey == "" {
		log.Println("FORECAST_API_KEY not set: forecast gateway skips the upstream and uses cache/synthetic fallback")
	}
	gateway := weather.NewGateway(forecastBaseURL, forecastAPIKey, snapshots, tunables, logger)

	classif := classifier.NewClassifier(flights, students, thresholds, snapshots, time.Duration(tunables.RescheduleHorizonHours)*time.Hour)
	generator := candidates.NewGenerator(flights, students, instructors, aircraft, tunables)

	rankerEndpoint := os.Getenv("RANKER_ENDPOINT")
	rankerAPIKey := os.Getenv("RANKER_API_KEY")
	if rankerEndpoint == "" {
		log.Println("RANKER_ENDPOINT not set: ranker will report not-configured")
	}
	ranker := ranking.NewRanker(rankerEndpoint, rankerAPIKey, tunables)

	recorder := decision.NewRecorder(flights, snapshots, actions, notifs, tunables)

	pipeline := orchestrator.NewPipeline(flights, snapshots, cronRuns, notifs, gateway, classif, generator, ranker, recorder, tunables, logger)

	server := api.NewServer(flights, snapshots, cronRuns, gateway, classif, generator, ranker, recorder, pipeline, logger)
	router := api.NewRouter(server)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runHourlyTrigger(ctx, pipeline, logger)

	go func() {
		log.Printf("Starting HTTP server on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Println("skedcore is ready and accepting connections")
	log.Println("  - RPC:     POST /rpc")
	log.Println("  - Health:  GET  /healthz")
	log.Println("  - Metrics: GET  /metrics")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	cancel()

	log.Println("Shutting down skedcore...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("skedcore stopped")
}

// runHourlyTrigger fires the pipeline at the top of every hour.
func runHourlyTrigger(ctx context.Context, pipeline *orchestrator.Pipeline, logger *logging.Logger) {
	for {
		now := time.Now().UTC()
		next := now.Truncate(time.Hour).Add(time.Hour)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			summary, err := pipeline.Run(ctx, orchestrator.TriggerCron, nil)
			if err != nil {
				logger.Error("cron", "hourly pipeline trigger failed", logging.Fields{"error": err.Error()})
				continue
			}
			logger.Info(summary.CorrelationID, "hourly pipeline trigger completed", logging.Fields{
				"status": summary.Status, "rescheduled": summary.Rescheduled,
			})
		}
	}
}
