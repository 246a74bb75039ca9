package portfolio

import "errors"

// Trade failure taxonomy. Every precondition failure is raised before any
// mutation and maps to a distinct user-visible message.
var (
	ErrInvalidInput         = errors.New("Invalid symbol or quantity")
	ErrAssetNotFound        = errors.New("Asset not found in catalog")
	ErrPriceUnavailable     = errors.New("Unable to fetch live price")
	ErrInsufficientFunds    = errors.New("Insufficient balance")
	ErrNoPortfolio          = errors.New("Portfolio does not exist or is empty")
	ErrInsufficientQuantity = errors.New("Not enough quantity available to sell")
	ErrTradeConflict        = errors.New("Trade conflicted with a concurrent update, please retry")
)
