package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Portfolio is a user's cash balance plus current holdings. One per user,
// created lazily with the demo starting balance on first access.
//
// Version backs the optimistic concurrency check on trades: the commit write
// is conditional on the version read during validation.
type Portfolio struct {
	PortfolioID uuid.UUID `gorm:"column:portfolio_id;type:uuid;primaryKey" json:"portfolio_id"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	CashBalance float64   `gorm:"column:cash_balance;type:decimal(18,2);not null;default:0" json:"cash_balance"`
	Version     int64     `gorm:"column:version;not null;default:0" json:"-"`
	Holdings    []Holding `gorm:"foreignKey:PortfolioID;references:PortfolioID" json:"holdings"`
	CreatedAt   time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Portfolio) TableName() string {
	return "Portfolios"
}

func (p *Portfolio) BeforeCreate(tx *gorm.DB) error {
	if p.PortfolioID == uuid.Nil {
		p.PortfolioID = uuid.New()
	}
	return nil
}

// Holding is one open position: quantity held plus weighted average
// acquisition cost. A holding never persists at zero quantity; full
// liquidation deletes the row.
type Holding struct {
	HoldingID   uuid.UUID `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	PortfolioID uuid.UUID `gorm:"column:portfolio_id;type:uuid;not null;index:idx_portfolio_asset,unique" json:"portfolio_id"`
	AssetID     uuid.UUID `gorm:"column:asset_id;type:uuid;not null;index:idx_portfolio_asset,unique" json:"asset_id"`
	Quantity    float64   `gorm:"column:quantity;type:decimal(18,6);not null" json:"quantity"`
	AvgPrice    float64   `gorm:"column:avg_price;type:decimal(18,4);not null" json:"avg_price"`
	CreatedAt   time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Holding) TableName() string {
	return "Holdings"
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}
