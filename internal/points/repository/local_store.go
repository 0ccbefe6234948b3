package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oksam-app/eco-todo-backend/internal/points/domain"
)

// LocalRecord is the per-user fallback file: a mirror of the remote
// {totalPoints, pointsHistory} pair plus the queue of entries written
// while the store was unreachable. The remote store stays the single
// source of truth; pending entries are replayed as increments, never
// summed independently.
type LocalRecord struct {
	TotalPoints   int                   `json:"totalPoints"`
	PointsHistory []domain.HistoryEntry `json:"pointsHistory"`
	Pending       []domain.HistoryEntry `json:"pending,omitempty"`
}

// LocalStore persists fallback records as one JSON file per user under
// a data directory.
type LocalStore struct {
	dir string
	mu  sync.Mutex
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("fallback dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fallback dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(uid string) string {
	// uid comes from a verified token, but keep it path-safe anyway.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, uid)
	return filepath.Join(s.dir, safe+".json")
}

// Load reads the fallback record for uid. A missing file yields an
// empty record, not an error.
func (s *LocalStore) Load(uid string) (*LocalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(uid)
}

func (s *LocalStore) loadLocked(uid string) (*LocalRecord, error) {
	data, err := os.ReadFile(s.path(uid))
	if os.IsNotExist(err) {
		return &LocalRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fallback record: %w", err)
	}

	var rec LocalRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse fallback record: %w", err)
	}
	return &rec, nil
}

func (s *LocalStore) saveLocked(uid string, rec *LocalRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fallback record: %w", err)
	}

	tmp := s.path(uid) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write fallback record: %w", err)
	}
	if err := os.Rename(tmp, s.path(uid)); err != nil {
		return fmt.Errorf("replace fallback record: %w", err)
	}
	return nil
}

// Append records one ledger entry locally: total incremented, entry
// prepended to the mirrored history and queued for replay. Returns the
// total after the increment.
func (s *LocalStore) Append(uid string, e domain.HistoryEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadLocked(uid)
	if err != nil {
		return 0, err
	}

	rec.TotalPoints += e.Points
	rec.PointsHistory = append([]domain.HistoryEntry{e}, rec.PointsHistory...)
	rec.Pending = append(rec.Pending, e)

	if err := s.saveLocked(uid, rec); err != nil {
		return 0, err
	}
	return rec.TotalPoints, nil
}

// Pending returns the queued entries for uid, oldest first.
func (s *LocalStore) Pending(uid string) ([]domain.HistoryEntry, error) {
	rec, err := s.Load(uid)
	if err != nil {
		return nil, err
	}
	return rec.Pending, nil
}

// ClearPending removes the given entry ids from uid's replay queue.
func (s *LocalStore) ClearPending(uid string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.loadLocked(uid)
	if err != nil {
		return err
	}
	if len(rec.Pending) == 0 {
		return nil
	}

	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}

	kept := rec.Pending[:0]
	for _, e := range rec.Pending {
		if !done[e.ID] {
			kept = append(kept, e)
		}
	}
	rec.Pending = kept

	return s.saveLocked(uid, rec)
}

// PendingUsers lists every uid with a non-empty replay queue.
func (s *LocalStore) PendingUsers() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("scan fallback dir: %w", err)
	}

	var uids []string
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		uid := strings.TrimSuffix(name, ".json")
		rec, err := s.loadLocked(uid)
		if err != nil {
			continue
		}
		if len(rec.Pending) > 0 {
			uids = append(uids, uid)
		}
	}
	return uids, nil
}
