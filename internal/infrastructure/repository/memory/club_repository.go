package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/club"
)

// ClubRepository is a view over the shared Store satisfying club.Repository.
type ClubRepository struct {
	s *Store
}

func (s *Store) Clubs() *ClubRepository {
	return &ClubRepository{s: s}
}

func (r *ClubRepository) Create(_ context.Context, item club.Club) (club.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item.ID = r.s.nextClubID
	r.s.nextClubID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.s.now()
	}
	r.s.clubs[item.ID] = item

	return item, nil
}

func (r *ClubRepository) GetByID(_ context.Context, id int64) (club.Club, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.clubs[id]
	return item, ok, nil
}

func (r *ClubRepository) GetByName(_ context.Context, name string) (club.Club, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, item := range r.s.clubs {
		if item.Name == name {
			return item, true, nil
		}
	}

	return club.Club{}, false, nil
}

func (r *ClubRepository) GetByOwner(_ context.Context, ownerID int64) (club.Club, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, item := range r.s.clubs {
		if item.OwnerID == ownerID {
			return item, true, nil
		}
	}

	return club.Club{}, false, nil
}

func (r *ClubRepository) List(_ context.Context) ([]club.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.s.clubsLocked()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *ClubRepository) ListRichest(_ context.Context, limit int) ([]club.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.s.clubsLocked()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Money.Equal(out[j].Money) {
			return out[i].Money.GreaterThan(out[j].Money)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *Store) clubsLocked() []club.Club {
	out := make([]club.Club, 0, len(s.clubs))
	for _, item := range s.clubs {
		out = append(out, item)
	}
	return out
}

func (r *ClubRepository) UpdateMoney(_ context.Context, id int64, money decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.clubs[id]
	if !ok {
		return nil
	}
	item.Money = money
	r.s.clubs[id] = item

	return nil
}

func (r *ClubRepository) UpdateNotificationGroup(_ context.Context, id int64, groupID *int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.clubs[id]
	if !ok {
		return nil
	}
	item.NotificationGroupID = groupID
	r.s.clubs[id] = item

	return nil
}

// Delete mirrors the database cascade: transfers and matches touching the
// club go away, its players become free agents.
func (r *ClubRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.transfers[:0]
	for _, item := range r.s.transfers {
		if item.ToClubID == id || (item.FromClubID != nil && *item.FromClubID == id) {
			continue
		}
		kept = append(kept, item)
	}
	r.s.transfers = kept

	for matchID, item := range r.s.matches {
		if item.Team1ID == id || item.Team2ID == id {
			delete(r.s.matches, matchID)
		}
	}

	for playerID, item := range r.s.players {
		if item.ClubID != nil && *item.ClubID == id {
			item.ClubID = nil
			r.s.players[playerID] = item
		}
	}

	delete(r.s.clubs, id)

	return nil
}
