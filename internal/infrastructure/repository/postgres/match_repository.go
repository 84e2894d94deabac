package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/footylabs/clubledger/internal/domain/match"
	qb "github.com/footylabs/clubledger/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

var matchSelectColumns = []string{
	"id",
	"team1_id",
	"team2_id",
	"match_time",
	"reminder_sent",
	"created_at",
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) (match.Match, error) {
	query, args, err := qb.InsertInto("matches").
		Columns("team1_id", "team2_id", "match_time", "reminder_sent").
		Values(item.Team1ID, item.Team2ID, item.MatchTime, item.ReminderSent).
		Suffix("RETURNING id, created_at").
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return match.Match{}, fmt.Errorf("insert match: %w", err)
	}

	return item, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]match.Match, error) {
	builder := qb.Select(matchSelectColumns...).From("matches").
		Where(qb.Gte("match_time", from)).
		OrderBy("match_time", "id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list upcoming matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select upcoming matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// ClaimDueReminders flips reminder_sent for every due match in one statement,
// so a claim is visible to exactly one caller even with concurrent ticks.
func (r *MatchRepository) ClaimDueReminders(ctx context.Context, from, until time.Time) ([]match.Match, error) {
	query, args, err := qb.Update("matches").
		Set("reminder_sent", true).
		Where(
			qb.Gte("match_time", from),
			qb.Lt("match_time", until),
			qb.Eq("reminder_sent", false),
		).
		Suffix("RETURNING id, team1_id, team2_id, match_time, reminder_sent, created_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build claim due reminders query: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("claim due reminders: %w", err)
	}
	defer rows.Close()

	var out []match.Match
	for rows.Next() {
		var row matchTableModel
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan claimed match: %w", err)
		}
		out = append(out, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claimed matches: %w", err)
	}

	return out, nil
}
