package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// CatalogSource serves the cached last-known price from the ticker
// catalog. It is the offline default: prices only move when something
// refreshes the cache (seeding, an admin update, or a remote source).
type CatalogSource struct {
	store *ledger.Store
}

// NewCatalogSource creates a catalog-backed price source.
func NewCatalogSource(store *ledger.Store) (*CatalogSource, error) {
	if store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "catalog source requires a ledger store")
	}

	return &CatalogSource{store: store}, nil
}

// CurrentPrice implements market.Source.
func (c *CatalogSource) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ticker, err := c.store.GetTicker(symbol)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeUnknownTicker) {
			return decimal.Zero, errors.Wrapf(errors.ErrCodePriceUnavailable, err, "no price for %s", symbol)
		}

		return decimal.Zero, err
	}

	if !ticker.LastPrice.IsPositive() {
		return decimal.Zero, errors.Newf(errors.ErrCodePriceUnavailable, "no cached price for %s", symbol)
	}

	return ticker.LastPrice, nil
}

// History implements market.Source. The catalog keeps only the latest
// quote, so no series can be served.
func (c *CatalogSource) History(ctx context.Context, symbol string, from time.Time) ([]types.PricePoint, error) {
	return nil, errors.Newf(errors.ErrCodePriceUnavailable, "catalog source keeps no history for %s", symbol)
}
