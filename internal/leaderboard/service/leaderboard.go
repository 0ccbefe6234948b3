package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/oksam-app/eco-todo-backend/internal/leaderboard/domain"
	pointsdomain "github.com/oksam-app/eco-todo-backend/internal/points/domain"
	"github.com/oksam-app/eco-todo-backend/internal/points/repository"
)

// Service derives the live ranking from the user records in the
// real-time store.
type Service struct {
	store *repository.StoreRepo
}

func NewService(store *repository.StoreRepo) *Service {
	return &Service{store: store}
}

// Compute reads every user record and builds the ranked board. Users
// with zero points are filtered out. Order: totalPoints descending;
// ties broken by earlier lastUpdated (whoever reached the total first
// ranks higher), then uid, so the ranking is fully deterministic.
func (s *Service) Compute(ctx context.Context, currentUID string) (*domain.Board, error) {
	uids, err := s.store.ListUIDs(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.Entry, 0, len(uids))
	for _, uid := range uids {
		rec, err := s.store.GetRecord(ctx, uid)
		if err == pointsdomain.ErrUserNotFound {
			continue // indexed but never initialized; skip
		}
		if err != nil {
			return nil, err
		}
		if rec.TotalPoints <= 0 {
			continue
		}
		entries = append(entries, domain.Entry{
			UID:         uid,
			DisplayName: resolveDisplayName(rec),
			TotalPoints: rec.TotalPoints,
			LastUpdated: rec.LastUpdated,
			You:         uid == currentUID,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		if entries[i].LastUpdated != entries[j].LastUpdated {
			return entries[i].LastUpdated < entries[j].LastUpdated
		}
		return entries[i].UID < entries[j].UID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Board{
		Entries:     entries,
		TotalUsers:  total,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// CountUsers returns the live registered-user count.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.store.CountUsers(ctx)
}

// Watch opens a change subscription over the user collection. Callers
// own the returned handle and must Close it on teardown.
func (s *Service) Watch(ctx context.Context) (*repository.Subscription, error) {
	return s.store.Subscribe(ctx)
}

// resolveDisplayName prefers the stored display name and falls back to
// the local part of the email address.
func resolveDisplayName(rec *pointsdomain.UserRecord) string {
	if rec.DisplayName != "" {
		return rec.DisplayName
	}
	if at := strings.Index(rec.Email, "@"); at > 0 {
		return rec.Email[:at]
	}
	if rec.Email != "" {
		return rec.Email
	}
	return "Anonymous"
}
