package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Investment side.
const (
	TradeBuy  = "buy"
	TradeSell = "sell"
)

// Investment is one immutable journal entry for an executed trade. Rows are
// written once and never updated or deleted; the asset reference may dangle
// after a catalog deletion (historical record).
type Investment struct {
	InvestmentID uuid.UUID      `gorm:"column:investment_id;type:uuid;primaryKey" json:"investment_id"`
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	PortfolioID  uuid.UUID      `gorm:"column:portfolio_id;type:uuid;not null" json:"portfolio_id"`
	AssetID      uuid.UUID      `gorm:"column:asset_id;type:uuid;not null" json:"asset_id"`
	Type         string         `gorm:"column:type;type:varchar(4);not null" json:"type"`
	Quantity     float64        `gorm:"column:quantity;type:decimal(18,6);not null" json:"quantity"`
	Price        float64        `gorm:"column:price;type:decimal(18,4);not null" json:"price"`
	Total        float64        `gorm:"column:total;type:decimal(18,2);not null" json:"total"`
	Quote        datatypes.JSON `gorm:"column:quote" json:"quote,omitempty"`
	ExecutedAt   time.Time      `gorm:"column:executed_at;not null;index" json:"executed_at"`
}

func (Investment) TableName() string {
	return "Investments"
}

func (i *Investment) BeforeCreate(tx *gorm.DB) error {
	if i.InvestmentID == uuid.Nil {
		i.InvestmentID = uuid.New()
	}
	if i.ExecutedAt.IsZero() {
		i.ExecutedAt = time.Now()
	}
	return nil
}
