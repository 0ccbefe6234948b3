package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksam-app/eco-todo-backend/internal/leaderboard/domain"
)

// SnapshotRepo persists nightly leaderboard snapshots to Postgres so
// rankings can be inspected historically; the live board itself never
// touches this table.
type SnapshotRepo struct {
	db *pgxpool.Pool
}

func NewSnapshotRepo(db *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save writes one row per ranked entry, all sharing taken_at.
func (r *SnapshotRepo) Save(ctx context.Context, board *domain.Board) error {
	if len(board.Entries) == 0 {
		return nil
	}

	takenAt := board.GeneratedAt
	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}

	batch := &pgx.Batch{}
	for _, e := range board.Entries {
		batch.Queue(`
insert into leaderboard_snapshots (taken_at, uid, display_name, total_points, rank)
values ($1, $2, $3, $4, $5)`,
			takenAt, e.UID, e.DisplayName, e.TotalPoints, e.Rank,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for range board.Entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save leaderboard snapshot: %w", err)
		}
	}
	return nil
}

// SnapshotTakenOn reports whether a snapshot was already persisted on
// the given UTC day. The nightly job uses this to stay idempotent
// across worker restarts.
func (r *SnapshotRepo) SnapshotTakenOn(ctx context.Context, day time.Time) (bool, error) {
	latest, err := r.LatestTakenAt(ctx)
	if err != nil {
		return false, err
	}
	if latest.IsZero() {
		return false, nil
	}
	return sameUTCDay(latest, day), nil
}

func sameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// LatestTakenAt returns the timestamp of the most recent snapshot, or
// the zero time when none exists.
func (r *SnapshotRepo) LatestTakenAt(ctx context.Context) (time.Time, error) {
	var takenAt *time.Time
	err := r.db.QueryRow(ctx, `select max(taken_at) from leaderboard_snapshots`).Scan(&takenAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest snapshot: %w", err)
	}
	if takenAt == nil {
		return time.Time{}, nil
	}
	return *takenAt, nil
}
