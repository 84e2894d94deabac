package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/footylabs/clubledger/internal/domain/match"
	"github.com/footylabs/clubledger/internal/infrastructure/repository/memory"
)

func TestAdminService_ResetAllData(t *testing.T) {
	store := memory.NewStore()
	clubA := seedClub(t, store, "Alpha FC", 100, 1000)
	clubB := seedClub(t, store, "Bravo FC", 200, 1000)
	subject := seedPlayer(t, store, "Jordan Vale", &clubA.ID)

	ledger := NewLedgerService(store.Transfers(), store.Transfers(), testLogger())
	if _, err := ledger.Transfer(context.Background(), TransferInput{
		PlayerID: subject.ID,
		ToClubID: clubB.ID,
		Fee:      decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := store.Matches().Create(context.Background(), match.Match{
		Team1ID:   clubA.ID,
		Team2ID:   clubB.ID,
		MatchTime: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("create match: %v", err)
	}

	service := NewAdminService(store.Admin(), testLogger())
	if err := service.ResetAllData(context.Background()); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	clubs, _ := store.Clubs().List(context.Background())
	if len(clubs) != 0 {
		t.Fatalf("expected no clubs after reset, got %d", len(clubs))
	}
	players, _ := store.Players().ListFreeAgents(context.Background())
	if len(players) != 0 {
		t.Fatalf("expected no players after reset, got %d", len(players))
	}
	transfers, _ := store.Transfers().ListRecent(context.Background(), 10)
	if len(transfers) != 0 {
		t.Fatalf("expected no transfers after reset, got %d", len(transfers))
	}
	matches, _ := store.Matches().ListUpcoming(context.Background(), time.Now().Add(-time.Hour), 10)
	if len(matches) != 0 {
		t.Fatalf("expected no matches after reset, got %d", len(matches))
	}
}
