// Package memory holds an in-process store implementing every repository
// interface over plain maps. It backs service tests and local runs without a
// database; the transfer ledger needs one lock spanning players, clubs and
// transfers, so a single Store carries all entities.
package memory

import (
	"sync"
	"time"

	"github.com/footylabs/clubledger/internal/domain/club"
	"github.com/footylabs/clubledger/internal/domain/match"
	"github.com/footylabs/clubledger/internal/domain/player"
	"github.com/footylabs/clubledger/internal/domain/transfer"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	clubs     map[int64]club.Club
	players   map[int64]player.Player
	matches   map[int64]match.Match
	transfers []transfer.Transfer

	nextClubID     int64
	nextPlayerID   int64
	nextMatchID    int64
	nextTransferID int64
}

func NewStore() *Store {
	return &Store{
		now:            time.Now,
		clubs:          make(map[int64]club.Club),
		players:        make(map[int64]player.Player),
		matches:        make(map[int64]match.Match),
		nextClubID:     1,
		nextPlayerID:   1,
		nextMatchID:    1,
		nextTransferID: 1,
	}
}

// SetNow overrides the clock used for transfer dates. Tests only.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
