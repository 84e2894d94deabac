package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/player"
	qb "github.com/footylabs/clubledger/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"name",
	"value",
	"position",
	"age",
	"club_id",
	"created_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) (player.Player, error) {
	var age sql.NullInt64
	if item.Age != nil {
		age = sql.NullInt64{Int64: int64(*item.Age), Valid: true}
	}

	query, args, err := qb.InsertInto("players").
		Columns("name", "value", "position", "age", "club_id").
		Values(item.Name, item.Value, nullString(item.Position), age, nullInt64(item.ClubID)).
		Suffix("RETURNING id, created_at").
		ToSQL()
	if err != nil {
		return player.Player{}, fmt.Errorf("build insert player query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return player.Player{}, fmt.Errorf("insert player: %w", err)
	}

	return item, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *PlayerRepository) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	return r.getOne(ctx, qb.Eq("name", name))
}

func (r *PlayerRepository) getOne(ctx context.Context, cond qb.Condition) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").Where(cond).ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PlayerRepository) ListByClub(ctx context.Context, clubID int64) ([]player.Player, error) {
	return r.list(ctx, 0, qb.Eq("club_id", clubID))
}

func (r *PlayerRepository) ListFreeAgents(ctx context.Context) ([]player.Player, error) {
	return r.list(ctx, 0, qb.IsNull("club_id"))
}

func (r *PlayerRepository) ListTopByValue(ctx context.Context, limit int) ([]player.Player, error) {
	return r.list(ctx, limit)
}

func (r *PlayerRepository) list(ctx context.Context, limit int, conds ...qb.Condition) ([]player.Player, error) {
	builder := qb.Select(playerSelectColumns...).From("players").
		Where(conds...).
		OrderBy("value DESC", "id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *PlayerRepository) UpdateValue(ctx context.Context, id int64, value decimal.Decimal) error {
	query, args, err := qb.Update("players").
		Set("value", value).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player value query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update player value: %w", err)
	}

	return nil
}
