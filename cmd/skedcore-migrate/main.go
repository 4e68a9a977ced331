// Package main verifies the skedcore schema is present and, with
// --prune-snapshots, runs the weather_snapshots retention sweep.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/aerovane/skedcore/internal/platform/db"
	"github.com/aerovane/skedcore/internal/repositories"
)

var schemaTables = []string{
	"students", "instructors", "aircraft", "training_thresholds",
	"flights", "weather_snapshots", "reschedule_actions",
	"notifications", "cron_runs",
}

func main() {
	pruneSnapshots := flag.Bool("prune-snapshots", false, "delete weather_snapshots older than --prune-older-than")
	pruneOlderThan := flag.Duration("prune-older-than", 30*24*time.Hour, "retention window for --prune-snapshots")
	flag.Parse()

	log.Println("skedcore schema verification tool")

	cfg, err := db.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgDB, err := db.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("PostgreSQL connection failed: %v", err)
	}
	defer pgDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pgDB.Health(ctx); err != nil {
		log.Fatalf("PostgreSQL health check failed: %v", err)
	}
	log.Println("✓ PostgreSQL connection successful")

	log.Println("Verifying schema...")
	for _, table := range schemaTables {
		var exists bool
		query := `SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)`
		if err := pgDB.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			log.Fatalf("Failed to check table %s: %v", table, err)
		}
		if !exists {
			log.Fatalf("Table %s does not exist; apply scripts/migrations/schema.sql first", table)
		}
		log.Printf("✓ Table %q exists", table)
	}
	log.Println("Schema verification complete")

	if !*pruneSnapshots {
		return
	}

	cutoff := time.Now().UTC().Add(-*pruneOlderThan)
	log.Printf("Pruning weather_snapshots older than %s...", cutoff.Format(time.RFC3339))

	snapshotRepo := repositories.NewWeatherSnapshotRepository(pgDB)
	cronRunRepo := repositories.NewCronRunRepository(pgDB)

	deleted, err := pruneSnapshotsOlderThan(ctx, snapshotRepo, cutoff)
	if err != nil {
		log.Fatalf("Prune failed: %v", err)
	}
	log.Printf("Deleted %d weather_snapshots rows", deleted)

	runsDeleted, err := cronRunRepo.PruneOlderThan(ctx, sql.NullTime{Time: cutoff, Valid: true})
	if err != nil {
		log.Fatalf("Cron run prune failed: %v", err)
	}
	log.Printf("Deleted %d cron_runs rows", runsDeleted)

	fmt.Println("=== PRUNE COMPLETE ===")
}

func pruneSnapshotsOlderThan(ctx context.Context, repo *repositories.WeatherSnapshotRepository, cutoff time.Time) (int64, error) {
	return repo.DeleteOlderThan(ctx, cutoff)
}
