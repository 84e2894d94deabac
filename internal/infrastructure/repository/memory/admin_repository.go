package memory

import "context"

// AdminRepository is a view over the shared Store for maintenance operations.
type AdminRepository struct {
	s *Store
}

func (s *Store) Admin() *AdminRepository {
	return &AdminRepository{s: s}
}

func (r *AdminRepository) ResetAllData(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clear(r.s.clubs)
	clear(r.s.players)
	clear(r.s.matches)
	r.s.transfers = nil

	return nil
}
