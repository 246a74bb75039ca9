package assets

import (
	"context"
	"testing"

	"smartfolio-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAssets(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Asset{}, &domain.Portfolio{}, &domain.Holding{}))
	return &Service{DB: db}, db
}

func TestCreate_UppercasesSymbol(t *testing.T) {
	svc, _ := setupAssets(t)

	asset, err := svc.Create(context.Background(), CreateInput{Name: "Apple Inc.", Symbol: "aapl"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", asset.Symbol)
	assert.Equal(t, "stock", asset.AssetClass)
}

func TestCreate_DuplicateRejected(t *testing.T) {
	svc, _ := setupAssets(t)

	_, err := svc.Create(context.Background(), CreateInput{Name: "Apple Inc.", Symbol: "AAPL"}, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Apple again", Symbol: "aapl"}, nil)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCreate_MissingFields(t *testing.T) {
	svc, _ := setupAssets(t)

	_, err := svc.Create(context.Background(), CreateInput{Symbol: "AAPL"}, nil)
	assert.ErrorIs(t, err, ErrNameSymbolRequired)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Apple"}, nil)
	assert.ErrorIs(t, err, ErrNameSymbolRequired)
}

func TestSearch_MatchesSymbolAndName(t *testing.T) {
	svc, _ := setupAssets(t)
	_, err := svc.Create(context.Background(), CreateInput{Name: "Apple Inc.", Symbol: "AAPL"}, nil)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateInput{Name: "Microsoft", Symbol: "MSFT"}, nil)
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), "app")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)

	results, err = svc.Search(context.Background(), "micro")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MSFT", results[0].Symbol)

	results, err = svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDelete_CascadesHoldingsNotInvestments(t *testing.T) {
	svc, db := setupAssets(t)
	require.NoError(t, db.AutoMigrate(&domain.Investment{}))

	asset, err := svc.Create(context.Background(), CreateInput{Name: "Apple Inc.", Symbol: "AAPL"}, nil)
	require.NoError(t, err)

	p := domain.Portfolio{UserID: uuid.New(), CashBalance: 10000}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&domain.Holding{
		PortfolioID: p.PortfolioID, AssetID: asset.AssetID, Quantity: 5, AvgPrice: 100,
	}).Error)
	require.NoError(t, db.Create(&domain.Investment{
		UserID: p.UserID, PortfolioID: p.PortfolioID, AssetID: asset.AssetID,
		Type: domain.TradeBuy, Quantity: 5, Price: 100, Total: 500,
	}).Error)

	require.NoError(t, svc.Delete(context.Background(), asset.AssetID))

	var holdings int64
	require.NoError(t, db.Model(&domain.Holding{}).Count(&holdings).Error)
	assert.Zero(t, holdings)

	// the journal keeps its (now dangling) asset reference
	var invs int64
	require.NoError(t, db.Model(&domain.Investment{}).Count(&invs).Error)
	assert.Equal(t, int64(1), invs)
}

func TestDelete_Unknown(t *testing.T) {
	svc, _ := setupAssets(t)
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
