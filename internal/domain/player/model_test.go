package player

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlayerValidate(t *testing.T) {
	age := 24
	tooOld := 51
	tooYoung := 15

	cases := []struct {
		name    string
		player  Player
		wantErr bool
	}{
		{name: "valid contracted", player: Player{Name: "Jordan Vale", Value: decimal.NewFromInt(50), Age: &age}},
		{name: "valid free agent without age", player: Player{Name: "Sam Reyes"}},
		{name: "missing name", player: Player{Value: decimal.NewFromInt(1)}, wantErr: true},
		{name: "negative value", player: Player{Name: "Jordan Vale", Value: decimal.NewFromInt(-1)}, wantErr: true},
		{name: "too old", player: Player{Name: "Jordan Vale", Age: &tooOld}, wantErr: true},
		{name: "too young", player: Player{Name: "Jordan Vale", Age: &tooYoung}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.player.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestPlayerIsFreeAgent(t *testing.T) {
	clubID := int64(7)
	if (Player{ClubID: &clubID}).IsFreeAgent() {
		t.Fatal("player with a club is not a free agent")
	}
	if !(Player{}).IsFreeAgent() {
		t.Fatal("player without a club is a free agent")
	}
}
