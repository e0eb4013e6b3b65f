package models

import (
	"time"

	dbtypes "github.com/leadflowhq/leadflow-backend/pkg/db/types"
)

// BuyerHistory is one append-only change trail entry. Entries are never
// updated or deleted individually; they go away with their buyer.
type BuyerHistory struct {
	ID        string             `gorm:"column:id;primaryKey"`
	BuyerID   string             `gorm:"column:buyer_id;not null;index:buyer_history_buyer_id_idx"`
	ChangedBy string             `gorm:"column:changed_by;not null"`
	ChangedAt time.Time          `gorm:"column:changed_at;autoCreateTime"`
	Diff      dbtypes.ChangeDiff `gorm:"column:diff;type:text;not null"`
}

func (BuyerHistory) TableName() string {
	return "buyer_history"
}
