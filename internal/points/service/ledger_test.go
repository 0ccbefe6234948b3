package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksam-app/eco-todo-backend/internal/points/domain"
	"github.com/oksam-app/eco-todo-backend/internal/points/repository"
)

func workingStore(t *testing.T) *repository.StoreRepo {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return repository.NewStoreRepo(client)
}

// brokenStore points at a port nothing listens on, with retries off so
// every call fails fast.
func brokenStore(t *testing.T) *repository.StoreRepo {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return repository.NewStoreRepo(client)
}

func localStore(t *testing.T, dir string) *repository.LocalStore {
	t.Helper()
	local, err := repository.NewLocalStore(dir)
	require.NoError(t, err)
	return local
}

func TestAddPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("first earn of a fresh user", func(t *testing.T) {
		ledger := NewLedger(workingStore(t), localStore(t, t.TempDir()))

		res, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 15, "Plastic bottle recycled")
		require.NoError(t, err)
		assert.Equal(t, 15, res.TotalPoints)
		assert.Equal(t, 15, res.SessionPoints)
		assert.False(t, res.Fallback)
		assert.Equal(t, "Plastic bottle recycled", res.Entry.Reason)
		assert.NotEmpty(t, res.Entry.ID)

		history, fallback, err := ledger.History(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, fallback)
		require.Len(t, history, 1)
		assert.Equal(t, 15, history[0].Points)
	})

	t.Run("first earn leaves a complete record", func(t *testing.T) {
		store := workingStore(t)
		ledger := NewLedger(store, localStore(t, t.TempDir()))

		// No sync/Load beforehand: earning must not create a bare
		// counter hash that the leaderboard would render nameless.
		_, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 15, "")
		require.NoError(t, err)

		rec, err := store.GetRecord(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", rec.Email)
		assert.NotZero(t, rec.CreatedAt)
		assert.Equal(t, 15, rec.TotalPoints)
	})

	t.Run("totals accumulate across earns", func(t *testing.T) {
		ledger := NewLedger(workingStore(t), localStore(t, t.TempDir()))

		_, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 15, "")
		require.NoError(t, err)
		res, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 10, "")
		require.NoError(t, err)

		assert.Equal(t, 25, res.TotalPoints)
		assert.Equal(t, 25, res.SessionPoints)
	})

	t.Run("empty reason gets the default", func(t *testing.T) {
		ledger := NewLedger(workingStore(t), localStore(t, t.TempDir()))

		res, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 5, "")
		require.NoError(t, err)
		assert.Equal(t, "Quiz completed", res.Entry.Reason)
	})

	t.Run("non-positive points are rejected", func(t *testing.T) {
		ledger := NewLedger(workingStore(t), localStore(t, t.TempDir()))

		_, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 0, "x")
		assert.ErrorIs(t, err, domain.ErrInvalidPoints)
		_, err = ledger.AddPoints(ctx, "u1", "alice@example.com", -5, "x")
		assert.ErrorIs(t, err, domain.ErrInvalidPoints)
	})

	t.Run("store failure falls back locally without surfacing", func(t *testing.T) {
		dir := t.TempDir()
		local := localStore(t, dir)
		ledger := NewLedger(brokenStore(t), local)

		res, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 10, "Aluminum can recycled")
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Equal(t, 10, res.TotalPoints)
		assert.Equal(t, 10, res.SessionPoints)

		rec, err := local.Load("u1")
		require.NoError(t, err)
		assert.Equal(t, 10, rec.TotalPoints)
		require.Len(t, rec.Pending, 1)
	})
}

func TestSessionPoints(t *testing.T) {
	ctx := context.Background()
	store := workingStore(t)
	ledger := NewLedger(store, localStore(t, t.TempDir()))

	_, err := ledger.AddPoints(ctx, "u1", "alice@example.com", 15, "")
	require.NoError(t, err)
	assert.Equal(t, 15, ledger.SessionPoints("u1"))

	// Reset zeroes the visit counter but never the lifetime total.
	ledger.ResetSessionPoints("u1")
	assert.Equal(t, 0, ledger.SessionPoints("u1"))

	rec, err := store.GetRecord(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, rec.TotalPoints)

	// Counters are per user.
	_, err = ledger.AddPoints(ctx, "u2", "bob@example.com", 5, "")
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.SessionPoints("u1"))
	assert.Equal(t, 5, ledger.SessionPoints("u2"))
}

func TestReplayPending(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Earn twice while the store is down.
	offline := NewLedger(brokenStore(t), localStore(t, dir))
	_, err := offline.AddPoints(ctx, "u1", "alice@example.com", 10, "")
	require.NoError(t, err)
	_, err = offline.AddPoints(ctx, "u1", "alice@example.com", 5, "")
	require.NoError(t, err)

	// Store comes back; a new ledger over the same fallback dir drains
	// the queue.
	store := workingStore(t)
	local := localStore(t, dir)
	online := NewLedger(store, local)
	require.NoError(t, online.ReplayPending(ctx, "u1"))

	rec, err := store.GetRecord(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, rec.TotalPoints)

	pending, err := local.Pending("u1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Replaying again must not double-count.
	require.NoError(t, online.ReplayPending(ctx, "u1"))
	rec, err = store.GetRecord(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, rec.TotalPoints)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes a zero record", func(t *testing.T) {
		ledger := NewLedger(workingStore(t), localStore(t, t.TempDir()))

		res, err := ledger.Load(ctx, "u1", "alice@example.com", "Alice")
		require.NoError(t, err)
		assert.False(t, res.Fallback)
		assert.Equal(t, 0, res.Record.TotalPoints)
		assert.Equal(t, "alice@example.com", res.Record.Email)
	})

	t.Run("replays the queue before reading", func(t *testing.T) {
		dir := t.TempDir()
		offline := NewLedger(brokenStore(t), localStore(t, dir))
		_, err := offline.AddPoints(ctx, "u1", "alice@example.com", 10, "")
		require.NoError(t, err)

		online := NewLedger(workingStore(t), localStore(t, dir))
		res, err := online.Load(ctx, "u1", "alice@example.com", "")
		require.NoError(t, err)
		assert.False(t, res.Fallback)
		assert.Equal(t, 10, res.Record.TotalPoints)
	})

	t.Run("serves the local mirror when the store is down", func(t *testing.T) {
		dir := t.TempDir()
		seeded := NewLedger(brokenStore(t), localStore(t, dir))
		_, err := seeded.AddPoints(ctx, "u1", "alice@example.com", 10, "")
		require.NoError(t, err)

		stillOffline := NewLedger(brokenStore(t), localStore(t, dir))
		res, err := stillOffline.Load(ctx, "u1", "alice@example.com", "")
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Equal(t, 10, res.Record.TotalPoints)
	})
}

func TestReplayAll(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	offline := NewLedger(brokenStore(t), localStore(t, dir))
	_, err := offline.AddPoints(ctx, "u1", "alice@example.com", 10, "")
	require.NoError(t, err)
	_, err = offline.AddPoints(ctx, "u2", "bob@example.com", 20, "")
	require.NoError(t, err)

	store := workingStore(t)
	online := NewLedger(store, localStore(t, dir))
	require.NoError(t, online.ReplayAll(ctx))

	for uid, want := range map[string]int{"u1": 10, "u2": 20} {
		rec, err := store.GetRecord(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, want, rec.TotalPoints)
	}
}
