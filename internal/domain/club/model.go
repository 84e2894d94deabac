package club

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Club is a chat-community football club with a money balance.
// NotificationGroupID points at an external role/group used to resolve the
// reminder audience; when nil the audience falls back to the owner.
type Club struct {
	ID                  int64
	Name                string
	OwnerID             int64
	Money               decimal.Decimal
	NotificationGroupID *int64
	CreatedAt           time.Time
}

func (c Club) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}
	if c.OwnerID <= 0 {
		return fmt.Errorf("club owner id is required")
	}

	return nil
}
