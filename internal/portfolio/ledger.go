package portfolio

import (
	"math"

	"smartfolio-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quantities below this are treated as zero so float residue from fractional
// sells cannot strand a dust holding.
const qtyEpsilon = 1e-9

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// findHolding returns the open position for (portfolio, asset), nil if none.
func findHolding(tx *gorm.DB, portfolioID, assetID uuid.UUID) (*domain.Holding, error) {
	var h domain.Holding
	err := tx.Where("portfolio_id = ? AND asset_id = ?", portfolioID, assetID).First(&h).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// applyBuy creates or grows the holding, recomputing the weighted average
// acquisition cost.
func applyBuy(tx *gorm.DB, p *domain.Portfolio, assetID uuid.UUID, quantity, price float64) error {
	h, err := findHolding(tx, p.PortfolioID, assetID)
	if err != nil {
		return err
	}
	if h == nil {
		return tx.Create(&domain.Holding{
			PortfolioID: p.PortfolioID,
			AssetID:     assetID,
			Quantity:    quantity,
			AvgPrice:    price,
		}).Error
	}
	newQty := h.Quantity + quantity
	h.AvgPrice = (h.AvgPrice*h.Quantity + price*quantity) / newQty
	h.Quantity = newQty
	return tx.Save(h).Error
}

// applySell shrinks the holding, deleting it when the position is fully
// liquidated. AvgPrice is never recomputed on sells.
func applySell(tx *gorm.DB, h *domain.Holding, quantity float64) error {
	remaining := h.Quantity - quantity
	if remaining <= qtyEpsilon {
		return tx.Delete(h).Error
	}
	h.Quantity = remaining
	return tx.Save(h).Error
}

// commitCash writes the new cash balance conditionally on the version read
// during validation. Zero rows affected means a concurrent trade won the
// read-modify-write race; the caller retries from scratch.
func commitCash(tx *gorm.DB, p *domain.Portfolio, newBalance float64) error {
	res := tx.Model(&domain.Portfolio{}).
		Where("portfolio_id = ? AND version = ?", p.PortfolioID, p.Version).
		Updates(map[string]interface{}{
			"cash_balance": round2(newBalance),
			"version":      p.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTradeConflict
	}
	p.CashBalance = round2(newBalance)
	p.Version++
	return nil
}
