package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/player"
)

// PlayerRepository is a view over the shared Store satisfying player.Repository.
type PlayerRepository struct {
	s *Store
}

func (s *Store) Players() *PlayerRepository {
	return &PlayerRepository{s: s}
}

func (r *PlayerRepository) Create(_ context.Context, item player.Player) (player.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item.ID = r.s.nextPlayerID
	r.s.nextPlayerID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.s.now()
	}
	r.s.players[item.ID] = item

	return item, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, id int64) (player.Player, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.players[id]
	return item, ok, nil
}

func (r *PlayerRepository) GetByName(_ context.Context, name string) (player.Player, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, item := range r.s.players {
		if item.Name == name {
			return item, true, nil
		}
	}

	return player.Player{}, false, nil
}

func (r *PlayerRepository) ListByClub(_ context.Context, clubID int64) ([]player.Player, error) {
	return r.list(func(item player.Player) bool {
		return item.ClubID != nil && *item.ClubID == clubID
	}, 0)
}

func (r *PlayerRepository) ListFreeAgents(_ context.Context) ([]player.Player, error) {
	return r.list(func(item player.Player) bool {
		return item.ClubID == nil
	}, 0)
}

func (r *PlayerRepository) ListTopByValue(_ context.Context, limit int) ([]player.Player, error) {
	return r.list(func(player.Player) bool { return true }, limit)
}

func (r *PlayerRepository) list(keep func(player.Player) bool, limit int) ([]player.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]player.Player, 0, len(r.s.players))
	for _, item := range r.s.players {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *PlayerRepository) UpdateValue(_ context.Context, id int64, value decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.players[id]
	if !ok {
		return nil
	}
	item.Value = value
	r.s.players[id] = item

	return nil
}
