package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksam-app/eco-todo-backend/internal/points/domain"
)

const (
	userKeyPrefix    = "users:"        // Hash per user: users:{uid}
	historyKeySuffix = ":history"     // Hash of history entries: users:{uid}:history
	userIndexKey     = "users:index"  // Set of all known uids
	userEventChannel = "users:events" // Pub/Sub channel carrying the uid of every ledger write
)

// StoreRepo is the real-time store behind the points ledger. The layout
// mirrors the hierarchical users/{uid} tree of the hosted database the
// app was built against: a hash per user, a hash of history entries per
// user, an index set, and a change channel that plays the role of the
// store's value subscription.
type StoreRepo struct {
	client *redis.Client
}

func NewStoreRepo(client *redis.Client) *StoreRepo {
	return &StoreRepo{client: client}
}

func (r *StoreRepo) userKey(uid string) string    { return userKeyPrefix + uid }
func (r *StoreRepo) historyKey(uid string) string { return userKeyPrefix + uid + historyKeySuffix }

// EnsureRecord initializes a zero-value record for uid if none exists
// and returns the current record either way.
func (r *StoreRepo) EnsureRecord(ctx context.Context, uid, email, displayName string) (*domain.UserRecord, error) {
	rec, err := r.GetRecord(ctx, uid)
	if err == nil {
		return rec, nil
	}
	if err != domain.ErrUserNotFound {
		return nil, err
	}

	now := time.Now().UnixMilli()
	fields := map[string]interface{}{
		"email":       email,
		"totalPoints": 0,
		"lastUpdated": now,
		"createdAt":   now,
	}
	if displayName != "" {
		fields["displayName"] = displayName
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.userKey(uid), fields)
		pipe.SAdd(ctx, userIndexKey, uid)
		pipe.Publish(ctx, userEventChannel, uid)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("init user record: %w", err)
	}

	return &domain.UserRecord{
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		TotalPoints: 0,
		LastUpdated: now,
		CreatedAt:   now,
	}, nil
}

// GetRecord reads users:{uid}. Returns domain.ErrUserNotFound when the
// record has never been initialized.
func (r *StoreRepo) GetRecord(ctx context.Context, uid string) (*domain.UserRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.userKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("get user record: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrUserNotFound
	}

	rec := &domain.UserRecord{
		UID:         uid,
		Email:       fields["email"],
		DisplayName: fields["displayName"],
	}
	rec.TotalPoints, _ = strconv.Atoi(fields["totalPoints"])
	rec.LastUpdated, _ = strconv.ParseInt(fields["lastUpdated"], 10, 64)
	rec.CreatedAt, _ = strconv.ParseInt(fields["createdAt"], 10, 64)
	return rec, nil
}

// AppendEntry applies one ledger write as a single transactional
// multi-key update: increment the total, stamp lastUpdated, store the
// history entry, index the user and notify subscribers. A concurrent
// reader never sees the total without the entry or vice versa. The
// returned value is the total after the increment.
func (r *StoreRepo) AppendEntry(ctx context.Context, uid string, e domain.HistoryEntry) (int, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal history entry: %w", err)
	}

	var incr *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, r.userKey(uid), "totalPoints", int64(e.Points))
		pipe.HSet(ctx, r.userKey(uid), "lastUpdated", e.Timestamp)
		pipe.HSet(ctx, r.historyKey(uid), e.ID, payload)
		pipe.SAdd(ctx, userIndexKey, uid)
		pipe.Publish(ctx, userEventChannel, uid)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}
	return int(incr.Val()), nil
}

// HasEntry reports whether a history entry id is already recorded.
// Replay of the fallback queue uses this to stay idempotent.
func (r *StoreRepo) HasEntry(ctx context.Context, uid, entryID string) (bool, error) {
	ok, err := r.client.HExists(ctx, r.historyKey(uid), entryID).Result()
	if err != nil {
		return false, fmt.Errorf("check history entry: %w", err)
	}
	return ok, nil
}

// GetHistory returns all history entries for uid, newest first.
func (r *StoreRepo) GetHistory(ctx context.Context, uid string) ([]domain.HistoryEntry, error) {
	raw, err := r.client.HGetAll(ctx, r.historyKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("get points history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(raw))
	for id, data := range raw {
		var e domain.HistoryEntry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			continue // skip corrupt entries rather than failing the whole read
		}
		e.ID = id
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp > entries[j].Timestamp
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

// SetDisplayName mirrors a profile rename into the store record so the
// leaderboard picks it up on the next change event.
func (r *StoreRepo) SetDisplayName(ctx context.Context, uid, name string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.userKey(uid), "displayName", name)
		pipe.Publish(ctx, userEventChannel, uid)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set display name: %w", err)
	}
	return nil
}

// ListUIDs returns every uid present in the index.
func (r *StoreRepo) ListUIDs(ctx context.Context) ([]string, error) {
	uids, err := r.client.SMembers(ctx, userIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return uids, nil
}

// CountUsers returns the number of registered users.
func (r *StoreRepo) CountUsers(ctx context.Context) (int64, error) {
	n, err := r.client.SCard(ctx, userIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Subscription is a live feed of ledger change notifications. Every
// subscriber must call Close when its consumer goes away; the channel
// is closed on teardown.
type Subscription struct {
	pubsub *redis.PubSub
	C      <-chan string
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

// Subscribe opens a change subscription over the users collection. The
// returned channel carries the uid of each write. The error is returned
// eagerly (not on first receive) so callers can surface a degraded
// state instead of presenting an empty view.
func (r *StoreRepo) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := r.client.Subscribe(ctx, userEventChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	out := make(chan string, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			default:
				// Drop rather than block: the consumer recomputes from
				// the full index anyway, so a missed event coalesces
				// into the next one.
			}
		}
	}()

	return &Subscription{pubsub: pubsub, C: out}, nil
}
