package assets

import (
	"context"
	"errors"
	"strings"

	"smartfolio-backend/internal/domain"
	"smartfolio-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameSymbolRequired = errors.New("Name and symbol required")
	ErrInvalidSymbol      = errors.New("Invalid symbol")
	ErrAlreadyExists      = errors.New("Asset already exists")
	ErrNotFound           = errors.New("Asset not found")
)

// Service manages the tradable asset catalog. Catalog deletion cascades into
// holdings cleanup; journal entries keep their (then dangling) asset reference.
type Service struct {
	DB *gorm.DB
}

// List returns the full catalog, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&assets).Error
	return assets, err
}

// Search matches symbol or name by case-insensitive substring, capped at 20.
func (s *Service) Search(ctx context.Context, q string) ([]domain.Asset, error) {
	var assets []domain.Asset
	if q == "" {
		return assets, nil
	}
	pattern := "%" + strings.ToLower(q) + "%"
	err := s.DB.WithContext(ctx).
		Where("LOWER(symbol) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern).
		Limit(20).
		Find(&assets).Error
	return assets, err
}

// CreateInput for admin catalog additions.
type CreateInput struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	AssetClass  string  `json:"asset_class"`
	Description *string `json:"description"`
}

// Create adds a catalog entry. Symbols are stored uppercase and must be unique.
func (s *Service) Create(ctx context.Context, in CreateInput, addedBy *uuid.UUID) (*domain.Asset, error) {
	if in.Name == "" || in.Symbol == "" {
		return nil, ErrNameSymbolRequired
	}
	if !validation.IsValidSymbol(in.Symbol) {
		return nil, ErrInvalidSymbol
	}
	sym := validation.NormalizeSymbol(in.Symbol)

	var existing domain.Asset
	err := s.DB.WithContext(ctx).Where("symbol = ?", sym).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	class := in.AssetClass
	if class == "" {
		class = "stock"
	}
	asset := domain.Asset{
		Name:        in.Name,
		Symbol:      sym,
		AssetClass:  class,
		Description: in.Description,
		AddedBy:     addedBy,
	}
	if err := s.DB.WithContext(ctx).Create(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// Delete removes a catalog entry and every holding that references it, in one
// transaction. Investments are left untouched: the journal is historical and
// consumers treat a dangling asset reference as "asset deleted".
func (s *Service) Delete(ctx context.Context, assetID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("asset_id = ?", assetID).Delete(&domain.Asset{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("asset_id = ?", assetID).Delete(&domain.Holding{}).Error
	})
}
