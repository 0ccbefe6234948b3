package main

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oksam-app/eco-todo-backend/config"
	"github.com/oksam-app/eco-todo-backend/internal/bootstrap"
	lbrepo "github.com/oksam-app/eco-todo-backend/internal/leaderboard/repository"
	lbservice "github.com/oksam-app/eco-todo-backend/internal/leaderboard/service"
	pointsrepo "github.com/oksam-app/eco-todo-backend/internal/points/repository"
	pointsservice "github.com/oksam-app/eco-todo-backend/internal/points/service"
	"github.com/oksam-app/eco-todo-backend/internal/storage/postgres"
)

// The worker owns the two background duties the API server shouldn't
// block on: replaying local fallback queues into the real-time store,
// and persisting a nightly leaderboard snapshot.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
	if err != nil {
		log.Fatalf("postgres pool: %v", err)
	}
	defer pool.Close()

	local, err := pointsrepo.NewLocalStore(cfg.Fallback.Dir)
	if err != nil {
		log.Fatalf("fallback store: %v", err)
	}

	store := pointsrepo.NewStoreRepo(rdb)
	ledger := pointsservice.NewLedger(store, local)
	lbSvc := lbservice.NewService(store)
	snapshots := lbrepo.NewSnapshotRepo(pool)

	c := cron.New(cron.WithSeconds())

	// Replay queued fallback writes every 5 minutes.
	if _, err := c.AddFunc("0 */5 * * * *", func() {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := ledger.ReplayAll(rctx); err != nil {
			log.Printf("fallback replay failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("cron: %v", err)
	}

	// Snapshot the leaderboard nightly at 12:00 AM.
	if _, err := c.AddFunc("0 0 0 * * *", func() {
		sctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if taken, err := snapshots.SnapshotTakenOn(sctx, time.Now().UTC()); err != nil {
			log.Printf("leaderboard snapshot check failed: %v", err)
		} else if taken {
			log.Println("leaderboard snapshot already taken today, skipping")
			return
		}
		board, err := lbSvc.Compute(sctx, "")
		if err != nil {
			log.Printf("leaderboard snapshot compute failed: %v", err)
			return
		}
		if err := snapshots.Save(sctx, board); err != nil {
			log.Printf("leaderboard snapshot save failed: %v", err)
			return
		}
		log.Printf("leaderboard snapshot saved (%d entries)", len(board.Entries))
	}); err != nil {
		log.Fatalf("cron: %v", err)
	}

	log.Println("worker started (replay every 5m, snapshot nightly at 12:00AM)")
	c.Start()

	select {}
}
