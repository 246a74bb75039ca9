package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset is one tradable catalog entry, identified by its ticker symbol.
// Symbols are stored uppercase.
type Asset struct {
	AssetID     uuid.UUID  `gorm:"column:asset_id;type:uuid;primaryKey" json:"asset_id"`
	Name        string     `gorm:"column:name;not null" json:"name"`
	Symbol      string     `gorm:"column:symbol;not null;uniqueIndex" json:"symbol"`
	AssetClass  string     `gorm:"column:asset_class;not null;default:stock" json:"asset_class"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	AddedBy     *uuid.UUID `gorm:"column:added_by;type:uuid" json:"added_by,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (Asset) TableName() string {
	return "Assets"
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.AssetID == uuid.Nil {
		a.AssetID = uuid.New()
	}
	return nil
}
