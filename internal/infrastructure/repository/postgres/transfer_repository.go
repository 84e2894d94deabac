package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/transfer"
	qb "github.com/footylabs/clubledger/internal/platform/querybuilder"
)

type TransferRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var transferSelectColumns = []string{
	"id",
	"player_id",
	"from_club_id",
	"to_club_id",
	"transfer_fee",
	"transfer_date",
}

func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db, now: time.Now}
}

func (r *TransferRepository) ListRecent(ctx context.Context, limit int) ([]transfer.Transfer, error) {
	return r.list(ctx, limit)
}

func (r *TransferRepository) ListByPlayer(ctx context.Context, playerID int64) ([]transfer.Transfer, error) {
	return r.list(ctx, 0, qb.Eq("player_id", playerID))
}

func (r *TransferRepository) list(ctx context.Context, limit int, conds ...qb.Condition) ([]transfer.Transfer, error) {
	builder := qb.Select(transferSelectColumns...).From("transfers").
		Where(conds...).
		OrderBy("transfer_date DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list transfers query: %w", err)
	}

	var rows []transferTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select transfers: %w", err)
	}

	out := make([]transfer.Transfer, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// ExecuteTransfer runs the whole move inside one transaction. The player row
// and the destination club row are locked FOR UPDATE so concurrent transfers
// against the same player or wallet serialize instead of double-spending.
func (r *TransferRepository) ExecuteTransfer(ctx context.Context, playerID, toClubID int64, fee decimal.Decimal) (transfer.Transfer, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("begin tx transfer: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var fromClubID sql.NullInt64
	err = tx.QueryRowxContext(ctx,
		"SELECT club_id FROM players WHERE id = $1 FOR UPDATE", playerID,
	).Scan(&fromClubID)
	if err != nil {
		if isNotFound(err) {
			return transfer.Transfer{}, transfer.ErrPlayerNotFound
		}
		return transfer.Transfer{}, fmt.Errorf("lock player: %w", err)
	}
	if fromClubID.Valid && fromClubID.Int64 == toClubID {
		return transfer.Transfer{}, transfer.ErrSameClub
	}

	var toMoney decimal.Decimal
	err = tx.QueryRowxContext(ctx,
		"SELECT money FROM clubs WHERE id = $1 FOR UPDATE", toClubID,
	).Scan(&toMoney)
	if err != nil {
		if isNotFound(err) {
			return transfer.Transfer{}, transfer.ErrClubNotFound
		}
		return transfer.Transfer{}, fmt.Errorf("lock destination club: %w", err)
	}
	if toMoney.LessThan(fee) {
		return transfer.Transfer{}, transfer.ErrInsufficientFunds
	}

	assignQuery, assignArgs, err := qb.Update("players").
		Set("club_id", toClubID).
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("build assign player query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, assignQuery, assignArgs...); err != nil {
		return transfer.Transfer{}, fmt.Errorf("assign player: %w", err)
	}

	record := transfer.Transfer{
		PlayerID:   playerID,
		FromClubID: int64Ptr(fromClubID),
		ToClubID:   toClubID,
		Fee:        fee,
		Date:       r.now().UTC(),
	}
	insertQuery, insertArgs, err := qb.InsertInto("transfers").
		Columns("player_id", "from_club_id", "to_club_id", "transfer_fee", "transfer_date").
		Values(record.PlayerID, fromClubID, record.ToClubID, record.Fee, record.Date).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("build insert transfer query: %w", err)
	}
	if err := tx.QueryRowxContext(ctx, insertQuery, insertArgs...).Scan(&record.ID); err != nil {
		return transfer.Transfer{}, fmt.Errorf("insert transfer: %w", err)
	}

	if fromClubID.Valid {
		creditQuery, creditArgs, err := qb.Update("clubs").
			SetExpr("money", "money + ?", fee).
			Where(qb.Eq("id", fromClubID.Int64)).
			ToSQL()
		if err != nil {
			return transfer.Transfer{}, fmt.Errorf("build credit source club query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, creditQuery, creditArgs...); err != nil {
			return transfer.Transfer{}, fmt.Errorf("credit source club: %w", err)
		}
	}

	debitQuery, debitArgs, err := qb.Update("clubs").
		SetExpr("money", "money - ?", fee).
		Where(qb.Eq("id", toClubID)).
		ToSQL()
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("build debit destination club query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, debitQuery, debitArgs...); err != nil {
		return transfer.Transfer{}, fmt.Errorf("debit destination club: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return transfer.Transfer{}, fmt.Errorf("commit transfer tx: %w", err)
	}

	return record, nil
}
