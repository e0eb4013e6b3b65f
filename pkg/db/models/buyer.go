package models

import (
	"time"

	dbtypes "github.com/leadflowhq/leadflow-backend/pkg/db/types"
	"github.com/leadflowhq/leadflow-backend/pkg/enums"
)

// Buyer is a captured lead. Uniqueness of (phone, owner) and of non-empty
// (email, owner) is enforced by the repository's duplicate lookup, not by a
// storage constraint.
type Buyer struct {
	ID           string             `gorm:"column:id;primaryKey"`
	FullName     string             `gorm:"column:full_name;not null"`
	Email        *string            `gorm:"column:email"`
	Phone        string             `gorm:"column:phone;not null;index:buyers_owner_phone_idx,priority:2"`
	City         enums.City         `gorm:"column:city;not null"`
	PropertyType enums.PropertyType `gorm:"column:property_type;not null"`
	BHK          *enums.BHK         `gorm:"column:bhk"`
	Purpose      enums.Purpose      `gorm:"column:purpose;not null"`
	BudgetMin    *int               `gorm:"column:budget_min"`
	BudgetMax    *int               `gorm:"column:budget_max"`
	Timeline     enums.Timeline     `gorm:"column:timeline;not null"`
	Source       enums.Source       `gorm:"column:source;not null"`
	Status       enums.Status       `gorm:"column:status;not null;default:New"`
	Notes        *string            `gorm:"column:notes"`
	Tags         dbtypes.StringList `gorm:"column:tags;type:text"`
	OwnerID      string             `gorm:"column:owner_id;not null;index:buyers_owner_phone_idx,priority:1"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
