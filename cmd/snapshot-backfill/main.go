// Command snapshot-backfill rebuilds missing order snapshots in Redis from
// the Postgres order store. Run it after a Redis outage or a prolonged
// degradation of the snapshot write path.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mrmateussiilva/api-sgp/internal/database"
	"github.com/mrmateussiilva/api-sgp/internal/domain"
	"github.com/mrmateussiilva/api-sgp/internal/redis"
)

const pageSize = 200

func main() {
	var (
		databaseURL = flag.String("database", os.Getenv("DATABASE_URL"), "Postgres URL (or set DATABASE_URL env)")
		redisURL    = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
		dryRun      = flag.Bool("dry-run", false, "Dry run mode (don't write to Redis)")
		verbose     = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("Postgres URL required (--database or DATABASE_URL env)")
	}
	if *redisURL == "" {
		log.Fatal("Redis URL required (--redis or REDIS_URL env)")
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	pool, err := database.Connect(ctx, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, *redisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()
	slog.Info("Connected", "redis", sanitizeURL(*redisURL))

	repo := database.NewOrderRepo(pool)
	snapshots := redis.NewSnapshotStore(rdb)

	if err := backfillSnapshots(ctx, repo, snapshots, *dryRun); err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}

	slog.Info("Backfill complete")
}

func backfillSnapshots(ctx context.Context, repo domain.OrderRepository, snapshots domain.SnapshotStore, dryRun bool) error {
	start := time.Now()
	var scanned, backfilled, skipped int

	slog.Info("Starting backfill", "dry_run", dryRun)

	for skip := 0; ; skip += pageSize {
		orders, err := repo.List(ctx, domain.OrderFilter{Skip: skip, Limit: pageSize})
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			break
		}

		for _, order := range orders {
			scanned++

			_, err := snapshots.GetLatest(ctx, order.ID)
			if err == nil {
				slog.Debug("Snapshot present", "order_id", order.ID)
				skipped++
				continue
			}
			if !errors.Is(err, domain.ErrSnapshotNotFound) {
				return err
			}

			if !dryRun {
				if err := snapshots.Put(ctx, order.ID, order); err != nil {
					return err
				}
			}
			slog.Debug("Backfilled snapshot", "order_id", order.ID)
			backfilled++
		}

		if len(orders) < pageSize {
			break
		}
	}

	slog.Info("Backfill summary",
		"scanned", scanned,
		"backfilled", backfilled,
		"skipped", skipped,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

func sanitizeURL(url string) string {
	// Hide password in Redis URL for logging
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) == 2 {
			credParts := strings.Split(parts[0], ":")
			if len(credParts) >= 2 {
				return credParts[0] + ":***@" + parts[1]
			}
		}
	}
	return url
}
