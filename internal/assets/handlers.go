package assets

import (
	"encoding/json"
	"errors"

	"smartfolio-backend/internal/domain"
	"smartfolio-backend/internal/middleware"
	"smartfolio-backend/internal/pkg/response"
	"smartfolio-backend/internal/pkg/validation"
	"smartfolio-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
	Oracle  pricing.Oracle
}

// List GET /api/v1/assets
func (h *Handlers) List(c *fiber.Ctx) error {
	assets, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Assets fetched", assets, nil)
}

// Search GET /api/v1/assets/search?q=
func (h *Handlers) Search(c *fiber.Ctx) error {
	results, err := h.Service.Search(c.Context(), c.Query("q"))
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	if results == nil {
		results = []domain.Asset{}
	}
	return response.Success(c, "Search results", results, nil)
}

// Price GET /api/v1/assets/price/:symbol — live oracle passthrough.
func (h *Handlers) Price(c *fiber.Ctx) error {
	symbol := validation.NormalizeSymbol(c.Params("symbol"))
	if !validation.IsValidSymbol(symbol) {
		return response.Error(c, ErrInvalidSymbol.Error(), fiber.StatusBadRequest, nil)
	}
	quote, err := h.Oracle.GetQuote(c.Context(), symbol)
	if err != nil {
		return response.Error(c, pricing.ErrUnavailable.Error(), fiber.StatusNotFound, nil)
	}
	var raw json.RawMessage
	if len(quote.Raw) > 0 {
		raw = json.RawMessage(quote.Raw)
	}
	return response.Success(c, "Price fetched", fiber.Map{
		"symbol": quote.Symbol,
		"price":  quote.Price,
		"as_of":  quote.AsOf,
		"raw":    raw,
	}, nil)
}

// Create POST /api/v1/assets (admin)
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, ErrNameSymbolRequired.Error(), fiber.StatusBadRequest, nil)
	}

	var addedBy *uuid.UUID
	if u := middleware.SessionUserFrom(c); u != nil {
		if id, err := uuid.Parse(u.UserID); err == nil {
			addedBy = &id
		}
	}

	asset, err := h.Service.Create(c.Context(), in, addedBy)
	if err != nil {
		switch {
		case errors.Is(err, ErrNameSymbolRequired), errors.Is(err, ErrInvalidSymbol), errors.Is(err, ErrAlreadyExists):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Asset created", asset, nil)
}

// Delete DELETE /api/v1/assets/:id (admin) — cascades holdings removal.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	assetID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid asset id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), assetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Asset removed everywhere", nil, nil)
}
