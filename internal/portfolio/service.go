package portfolio

import (
	"context"
	"errors"
	"time"

	"smartfolio-backend/internal/domain"
	"smartfolio-backend/internal/pkg/validation"
	"smartfolio-backend/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxCommitRetries bounds re-runs of the validate-then-commit sequence when a
// concurrent trade on the same portfolio wins the version check.
const maxCommitRetries = 3

// Service is the transaction engine: it owns every mutation of Portfolio,
// Holdings and the Investment journal. Prices always come from the injected
// oracle; no client-supplied price is ever trusted.
type Service struct {
	DB           *gorm.DB
	Oracle       pricing.Oracle
	StartingCash float64
}

// HoldingView is a holding resolved to display form. Asset is nil when the
// catalog entry has since been deleted.
type HoldingView struct {
	HoldingID uuid.UUID     `json:"holding_id"`
	Asset     *domain.Asset `json:"asset"`
	AssetID   uuid.UUID     `json:"asset_id"`
	Quantity  float64       `json:"quantity"`
	AvgPrice  float64       `json:"avg_price"`
}

// View is the portfolio shape returned to callers.
type View struct {
	PortfolioID uuid.UUID     `json:"portfolio_id"`
	UserID      uuid.UUID     `json:"user_id"`
	CashBalance float64       `json:"cash_balance"`
	Holdings    []HoldingView `json:"holdings"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// TradeResult pairs the updated portfolio with the journal entry just written.
type TradeResult struct {
	Portfolio  *View              `json:"portfolio"`
	Investment *domain.Investment `json:"investment"`
}

// InvestmentView is a journal entry with its asset resolved. A nil Asset means
// the catalog entry was deleted after the trade; the record itself is kept.
type InvestmentView struct {
	domain.Investment
	Asset *domain.Asset `json:"asset"`
}

// Buy executes a market buy of quantity units of symbol for the user.
func (s *Service) Buy(ctx context.Context, userID uuid.UUID, symbol string, quantity float64) (*TradeResult, error) {
	return s.trade(ctx, userID, symbol, quantity, domain.TradeBuy)
}

// Sell executes a market sell of quantity units of symbol for the user.
func (s *Service) Sell(ctx context.Context, userID uuid.UUID, symbol string, quantity float64) (*TradeResult, error) {
	return s.trade(ctx, userID, symbol, quantity, domain.TradeSell)
}

// trade runs the validate-then-commit sequence. All lookups and the oracle
// call happen strictly before any mutation; the portfolio write and journal
// append commit together in one transaction, conditional on the portfolio
// version read during validation. On version conflict the whole sequence is
// retried from scratch, bounded by maxCommitRetries.
func (s *Service) trade(ctx context.Context, userID uuid.UUID, symbol string, quantity float64, side string) (*TradeResult, error) {
	if userID == uuid.Nil || !validation.IsValidSymbol(symbol) || !validation.IsValidQuantity(quantity) {
		return nil, ErrInvalidInput
	}
	sym := validation.NormalizeSymbol(symbol)

	var asset domain.Asset
	if err := s.DB.WithContext(ctx).Where("symbol = ?", sym).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}

	quote, err := s.Oracle.GetQuote(ctx, asset.Symbol)
	if err != nil || quote == nil || quote.Price <= 0 {
		return nil, ErrPriceUnavailable
	}
	total := round2(quote.Price * quantity)

	var result *TradeResult
	for attempt := 0; ; attempt++ {
		result, err = s.commit(ctx, userID, &asset, quote, quantity, total, side)
		if !errors.Is(err, ErrTradeConflict) {
			break
		}
		if attempt+1 >= maxCommitRetries {
			log.Warn().Str("user_id", userID.String()).Str("symbol", sym).Msg("Trade gave up after version conflicts")
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) commit(ctx context.Context, userID uuid.UUID, asset *domain.Asset, quote *pricing.Quote, quantity, total float64, side string) (*TradeResult, error) {
	var inv *domain.Investment
	var p domain.Portfolio

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&p).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if side == domain.TradeSell {
				return ErrNoPortfolio
			}
			p = domain.Portfolio{UserID: userID, CashBalance: s.startingCash()}
			if err := tx.Create(&p).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// another request created the row first; the retry reads it
					return ErrTradeConflict
				}
				return err
			}
		case err != nil:
			return err
		}

		if side == domain.TradeBuy {
			if p.CashBalance < total {
				return ErrInsufficientFunds
			}
			if err := applyBuy(tx, &p, asset.AssetID, quantity, quote.Price); err != nil {
				return err
			}
			if err := commitCash(tx, &p, p.CashBalance-total); err != nil {
				return err
			}
		} else {
			h, err := findHolding(tx, p.PortfolioID, asset.AssetID)
			if err != nil {
				return err
			}
			if h == nil || quantity-h.Quantity > qtyEpsilon {
				return ErrInsufficientQuantity
			}
			if err := applySell(tx, h, quantity); err != nil {
				return err
			}
			if err := commitCash(tx, &p, p.CashBalance+total); err != nil {
				return err
			}
		}

		inv = &domain.Investment{
			UserID:      userID,
			PortfolioID: p.PortfolioID,
			AssetID:     asset.AssetID,
			Type:        side,
			Quantity:    quantity,
			Price:       quote.Price,
			Total:       total,
			Quote:       datatypes.JSON(quote.Raw),
		}
		return tx.Create(inv).Error
	})
	if err != nil {
		return nil, err
	}

	view, err := s.buildView(ctx, &p)
	if err != nil {
		return nil, err
	}
	return &TradeResult{Portfolio: view, Investment: inv}, nil
}

// GetPortfolio returns the user's portfolio, lazily creating it with the
// starting cash balance on first access.
func (s *Service) GetPortfolio(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	var p domain.Portfolio
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = domain.Portfolio{UserID: userID, CashBalance: s.startingCash()}
		err = s.DB.WithContext(ctx).Create(&p).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// concurrent first access: someone else inserted between our read
			// and our create, so use their row
			err = s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
		}
	}
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, &p)
}

// GetInvestments returns the user's journal, newest first. Entries whose
// asset was deleted from the catalog keep a nil Asset rather than erroring.
func (s *Service) GetInvestments(ctx context.Context, userID uuid.UUID) ([]InvestmentView, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	var invs []domain.Investment
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("executed_at DESC").
		Find(&invs).Error; err != nil {
		return nil, err
	}

	assetMap, err := s.assetsByID(ctx, assetIDsOf(invs))
	if err != nil {
		return nil, err
	}

	out := make([]InvestmentView, len(invs))
	for i, inv := range invs {
		out[i] = InvestmentView{Investment: inv, Asset: assetMap[inv.AssetID]}
	}
	return out, nil
}

func (s *Service) startingCash() float64 {
	if s.StartingCash > 0 {
		return s.StartingCash
	}
	return 10000
}

func (s *Service) buildView(ctx context.Context, p *domain.Portfolio) (*View, error) {
	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).
		Where("portfolio_id = ?", p.PortfolioID).
		Order(`"createdAt" ASC`).
		Find(&holdings).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(holdings))
	for _, h := range holdings {
		ids = append(ids, h.AssetID)
	}
	assetMap, err := s.assetsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	hv := make([]HoldingView, len(holdings))
	for i, h := range holdings {
		hv[i] = HoldingView{
			HoldingID: h.HoldingID,
			Asset:     assetMap[h.AssetID],
			AssetID:   h.AssetID,
			Quantity:  h.Quantity,
			AvgPrice:  h.AvgPrice,
		}
	}

	return &View{
		PortfolioID: p.PortfolioID,
		UserID:      p.UserID,
		CashBalance: p.CashBalance,
		Holdings:    hv,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (s *Service) assetsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Asset, error) {
	out := map[uuid.UUID]*domain.Asset{}
	if len(ids) == 0 {
		return out, nil
	}
	var assets []domain.Asset
	if err := s.DB.WithContext(ctx).Where("asset_id IN ?", ids).Find(&assets).Error; err != nil {
		return nil, err
	}
	for i := range assets {
		out[assets[i].AssetID] = &assets[i]
	}
	return out, nil
}

func assetIDsOf(invs []domain.Investment) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(invs))
	for _, inv := range invs {
		if !seen[inv.AssetID] {
			seen[inv.AssetID] = true
			ids = append(ids, inv.AssetID)
		}
	}
	return ids
}
