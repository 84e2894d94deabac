package memory

import (
	"context"
	"sort"
	"time"

	"github.com/footylabs/clubledger/internal/domain/match"
)

// MatchRepository is a view over the shared Store satisfying match.Repository.
type MatchRepository struct {
	s *Store
}

func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{s: s}
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) (match.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item.ID = r.s.nextMatchID
	r.s.nextMatchID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.s.now()
	}
	r.s.matches[item.ID] = item

	return item, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.matches[id]
	return item, ok, nil
}

func (r *MatchRepository) ListUpcoming(_ context.Context, from time.Time, limit int) ([]match.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]match.Match, 0, len(r.s.matches))
	for _, item := range r.s.matches {
		if !item.MatchTime.Before(from) {
			out = append(out, item)
		}
	}
	sortByTime(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *MatchRepository) ClaimDueReminders(_ context.Context, from, until time.Time) ([]match.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []match.Match
	for id, item := range r.s.matches {
		if item.ReminderSent {
			continue
		}
		if item.MatchTime.Before(from) || !item.MatchTime.Before(until) {
			continue
		}
		item.ReminderSent = true
		r.s.matches[id] = item
		out = append(out, item)
	}
	sortByTime(out)

	return out, nil
}

func sortByTime(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].MatchTime.Equal(items[j].MatchTime) {
			return items[i].MatchTime.Before(items[j].MatchTime)
		}
		return items[i].ID < items[j].ID
	})
}
