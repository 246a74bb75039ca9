package portfolio

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"smartfolio-backend/internal/middleware"
	"smartfolio-backend/internal/pkg/response"
)

type Handlers struct {
	Service *Service
}

// TradeRequest is the body for buy/sell. Any "price" field a client sends is
// intentionally absent here: execution price always comes from the oracle.
type TradeRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

var tradeStatus = map[error]int{
	ErrInvalidInput:         fiber.StatusBadRequest,
	ErrAssetNotFound:        fiber.StatusNotFound,
	ErrPriceUnavailable:     fiber.StatusBadRequest,
	ErrInsufficientFunds:    fiber.StatusBadRequest,
	ErrNoPortfolio:          fiber.StatusBadRequest,
	ErrInsufficientQuantity: fiber.StatusBadRequest,
	ErrTradeConflict:        fiber.StatusConflict,
}

// Me GET /api/v1/portfolio/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	view, err := h.Service.GetPortfolio(c.Context(), userID)
	if err != nil {
		return tradeError(c, err)
	}
	return response.Success(c, "Portfolio fetched", view, nil)
}

// Buy POST /api/v1/portfolio/buy
func (h *Handlers) Buy(c *fiber.Ctx) error {
	return h.execute(c, h.Service.Buy)
}

// Sell POST /api/v1/portfolio/sell
func (h *Handlers) Sell(c *fiber.Ctx) error {
	return h.execute(c, h.Service.Sell)
}

// Investments GET /api/v1/portfolio/investments
func (h *Handlers) Investments(c *fiber.Ctx) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	invs, err := h.Service.GetInvestments(c.Context(), userID)
	if err != nil {
		return tradeError(c, err)
	}
	return response.Success(c, "Investments fetched", invs, nil)
}

type tradeFn func(ctx context.Context, userID uuid.UUID, symbol string, quantity float64) (*TradeResult, error)

func (h *Handlers) execute(c *fiber.Ctx, fn tradeFn) error {
	userID, ok := sessionUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body TradeRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, ErrInvalidInput.Error(), fiber.StatusBadRequest, nil)
	}
	result, err := fn(c.Context(), userID, body.Symbol, body.Quantity)
	if err != nil {
		return tradeError(c, err)
	}
	return response.Success(c, "Trade executed", result, nil)
}

func tradeError(c *fiber.Ctx, err error) error {
	if code, ok := tradeStatus[err]; ok {
		return response.Error(c, err.Error(), code, nil)
	}
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

func sessionUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	u := middleware.SessionUserFrom(c)
	if u == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(u.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
