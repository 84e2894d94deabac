package postgres

import (
	"time"

	"github.com/footylabs/clubledger/internal/domain/match"
)

type matchTableModel struct {
	ID           int64     `db:"id"`
	Team1ID      int64     `db:"team1_id"`
	Team2ID      int64     `db:"team2_id"`
	MatchTime    time.Time `db:"match_time"`
	ReminderSent bool      `db:"reminder_sent"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:           m.ID,
		Team1ID:      m.Team1ID,
		Team2ID:      m.Team2ID,
		MatchTime:    m.MatchTime,
		ReminderSent: m.ReminderSent,
		CreatedAt:    m.CreatedAt,
	}
}
