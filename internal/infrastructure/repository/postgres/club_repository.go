package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/club"
	qb "github.com/footylabs/clubledger/internal/platform/querybuilder"
)

type ClubRepository struct {
	db *sqlx.DB
}

var clubSelectColumns = []string{
	"id",
	"name",
	"owner_id",
	"money",
	"notification_group_id",
	"created_at",
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) Create(ctx context.Context, item club.Club) (club.Club, error) {
	query, args, err := qb.InsertInto("clubs").
		Columns("name", "owner_id", "money", "notification_group_id").
		Values(item.Name, item.OwnerID, item.Money, nullInt64(item.NotificationGroupID)).
		Suffix("RETURNING id, created_at").
		ToSQL()
	if err != nil {
		return club.Club{}, fmt.Errorf("build insert club query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return club.Club{}, fmt.Errorf("insert club: %w", err)
	}

	return item, nil
}

func (r *ClubRepository) GetByID(ctx context.Context, id int64) (club.Club, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *ClubRepository) GetByName(ctx context.Context, name string) (club.Club, bool, error) {
	return r.getOne(ctx, qb.Eq("name", name))
}

func (r *ClubRepository) GetByOwner(ctx context.Context, ownerID int64) (club.Club, bool, error) {
	return r.getOne(ctx, qb.Eq("owner_id", ownerID))
}

func (r *ClubRepository) getOne(ctx context.Context, cond qb.Condition) (club.Club, bool, error) {
	query, args, err := qb.Select(clubSelectColumns...).From("clubs").Where(cond).ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build select club query: %w", err)
	}

	var row clubTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("select club: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	return r.list(ctx, "name", 0)
}

func (r *ClubRepository) ListRichest(ctx context.Context, limit int) ([]club.Club, error) {
	return r.list(ctx, "money DESC", limit)
}

func (r *ClubRepository) list(ctx context.Context, orderBy string, limit int) ([]club.Club, error) {
	builder := qb.Select(clubSelectColumns...).From("clubs").OrderBy(orderBy)
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list clubs query: %w", err)
	}

	var rows []clubTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select clubs: %w", err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *ClubRepository) UpdateMoney(ctx context.Context, id int64, money decimal.Decimal) error {
	query, args, err := qb.Update("clubs").
		Set("money", money).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update club money query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update club money: %w", err)
	}

	return nil
}

func (r *ClubRepository) UpdateNotificationGroup(ctx context.Context, id int64, groupID *int64) error {
	query, args, err := qb.Update("clubs").
		Set("notification_group_id", nullInt64(groupID)).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update club notification group query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update club notification group: %w", err)
	}

	return nil
}

// Delete removes the club with everything referencing it in one transaction:
// transfer rows on either side, matches on either side, then player
// assignments are nulled so the roster becomes free agents.
func (r *ClubRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx delete club: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	transfersQuery, transfersArgs, err := qb.DeleteFrom("transfers").
		Where(qb.Expr("(from_club_id = ? OR to_club_id = ?)", id, id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete club transfers query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, transfersQuery, transfersArgs...); err != nil {
		return fmt.Errorf("delete club transfers: %w", err)
	}

	matchesQuery, matchesArgs, err := qb.DeleteFrom("matches").
		Where(qb.Expr("(team1_id = ? OR team2_id = ?)", id, id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete club matches query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, matchesQuery, matchesArgs...); err != nil {
		return fmt.Errorf("delete club matches: %w", err)
	}

	releaseQuery, releaseArgs, err := qb.Update("players").
		SetExpr("club_id", "NULL").
		Where(qb.Eq("club_id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build release club players query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, releaseQuery, releaseArgs...); err != nil {
		return fmt.Errorf("release club players: %w", err)
	}

	clubQuery, clubArgs, err := qb.DeleteFrom("clubs").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete club query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clubQuery, clubArgs...); err != nil {
		return fmt.Errorf("delete club: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete club tx: %w", err)
	}

	return nil
}
