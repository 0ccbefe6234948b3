package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksam-app/eco-todo-backend/internal/points/domain"
	"github.com/oksam-app/eco-todo-backend/internal/points/repository"
)

const defaultReason = "Quiz completed"

// Ledger records point-earning events and maintains the running total
// per user. Writes go to the real-time store as one transactional
// update; when the store is unreachable the same logical update lands
// in the local fallback record and is replayed later, so a flaky
// connection never loses a session.
type Ledger struct {
	store *repository.StoreRepo
	local *repository.LocalStore

	mu      sync.Mutex
	session map[string]int // points earned this visit, per uid
}

func NewLedger(store *repository.StoreRepo, local *repository.LocalStore) *Ledger {
	return &Ledger{
		store:   store,
		local:   local,
		session: make(map[string]int),
	}
}

// LoadResult distinguishes where the record came from. Consumers treat
// Fallback as a degraded (but never zero-flashing) read.
type LoadResult struct {
	Record   domain.UserRecord
	Fallback bool
}

// Load fetches the user's record, initializing a zero-value one on
// first sight. Pending fallback entries are replayed first so the
// returned total reflects them.
func (l *Ledger) Load(ctx context.Context, uid, email, displayName string) (*LoadResult, error) {
	if err := l.ReplayPending(ctx, uid); err != nil {
		log.Printf("[warn] operation=ledger_replay uid=%s error=%v", uid, err)
	}

	rec, err := l.store.EnsureRecord(ctx, uid, email, displayName)
	if err == nil {
		return &LoadResult{Record: *rec}, nil
	}

	// Store unreachable: serve the mirrored local copy.
	localRec, lerr := l.local.Load(uid)
	if lerr != nil {
		return nil, err
	}
	log.Printf("[warn] operation=ledger_load uid=%s fallback=local error=%v", uid, err)
	return &LoadResult{
		Record: domain.UserRecord{
			UID:         uid,
			Email:       email,
			DisplayName: displayName,
			TotalPoints: localRec.TotalPoints,
		},
		Fallback: true,
	}, nil
}

// AddPoints appends one history entry and increments the user's total.
// The remote write is a single multi-key transaction; on store failure
// the update is written to the local fallback record instead and no
// error reaches the caller. points must be > 0.
func (l *Ledger) AddPoints(ctx context.Context, uid, email string, points int, reason string) (*domain.AddResult, error) {
	if points <= 0 {
		return nil, domain.ErrInvalidPoints
	}
	if reason == "" {
		reason = defaultReason
	}

	entry := domain.HistoryEntry{
		ID:        uuid.New().String(),
		Points:    points,
		Reason:    reason,
		Timestamp: time.Now().UnixMilli(),
		Type:      domain.EntryTypeEarned,
	}

	// Drain any queued fallback writes first so totals stay in order.
	if err := l.ReplayPending(ctx, uid); err != nil {
		log.Printf("[warn] operation=ledger_replay uid=%s error=%v", uid, err)
	}

	// A first earn must still leave a complete record (email,
	// createdAt), not a bare counter hash. Failure here means the store
	// is down; the append below then takes the fallback path.
	if _, err := l.store.EnsureRecord(ctx, uid, email, ""); err != nil {
		log.Printf("[warn] operation=add_points uid=%s ensure record failed: %v", uid, err)
	}

	res := &domain.AddResult{Entry: entry}
	total, err := l.store.AppendEntry(ctx, uid, entry)
	if err != nil {
		log.Printf("[warn] operation=add_points uid=%s fallback=local error=%v", uid, err)
		total, err = l.local.Append(uid, entry)
		if err != nil {
			// Both paths failed; this one does surface.
			return nil, err
		}
		res.Fallback = true
	}
	res.TotalPoints = total

	l.mu.Lock()
	l.session[uid] += points
	res.SessionPoints = l.session[uid]
	l.mu.Unlock()

	return res, nil
}

// SessionPoints reports points earned since the current visit began.
func (l *Ledger) SessionPoints(uid string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session[uid]
}

// ResetSessionPoints zeroes the per-visit counter. Lifetime totals and
// history are untouched.
func (l *Ledger) ResetSessionPoints(uid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session[uid] = 0
}

// History returns the user's point-earning events, newest first,
// falling back to the local mirror when the store is unreachable.
func (l *Ledger) History(ctx context.Context, uid string) ([]domain.HistoryEntry, bool, error) {
	entries, err := l.store.GetHistory(ctx, uid)
	if err == nil {
		return entries, false, nil
	}

	rec, lerr := l.local.Load(uid)
	if lerr != nil {
		return nil, false, err
	}
	return rec.PointsHistory, true, nil
}

// UpdateDisplayName mirrors a profile rename into the store record.
func (l *Ledger) UpdateDisplayName(ctx context.Context, uid, name string) error {
	return l.store.SetDisplayName(ctx, uid, name)
}

// ReplayPending pushes uid's queued fallback entries into the store as
// increments. Entries already present (by id) only get cleared, which
// makes replay idempotent across crashes mid-way.
func (l *Ledger) ReplayPending(ctx context.Context, uid string) error {
	pending, err := l.local.Pending(uid)
	if err != nil || len(pending) == 0 {
		return err
	}

	replayed := make([]string, 0, len(pending))
	for _, e := range pending {
		seen, err := l.store.HasEntry(ctx, uid, e.ID)
		if err != nil {
			break // store still down; keep the rest queued
		}
		if !seen {
			if _, err := l.store.AppendEntry(ctx, uid, e); err != nil {
				break
			}
		}
		replayed = append(replayed, e.ID)
	}

	if len(replayed) == 0 {
		return nil
	}
	log.Printf("[info] operation=ledger_replay uid=%s replayed=%d", uid, len(replayed))
	return l.local.ClearPending(uid, replayed)
}

// ReplayAll drains every user's fallback queue. The maintenance worker
// calls this on a schedule.
func (l *Ledger) ReplayAll(ctx context.Context) error {
	uids, err := l.local.PendingUsers()
	if err != nil {
		return err
	}
	for _, uid := range uids {
		if err := l.ReplayPending(ctx, uid); err != nil {
			log.Printf("[warn] operation=ledger_replay_all uid=%s error=%v", uid, err)
		}
	}
	return nil
}
