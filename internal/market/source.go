// Package market supplies current and historical prices for ticker
// symbols. The trade engine consumes the Source contract; it never
// reads prices out of ledger rows.
package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// SourceType defines the type of price source.
type SourceType string

const (
	SourceCatalog SourceType = "catalog"
	SourcePolygon SourceType = "polygon"
)

// Source supplies prices for ticker symbols.
type Source interface {
	// CurrentPrice returns one quote for the symbol. A trade uses a
	// single quote for all of its sub-steps. Fails with
	// PriceUnavailable when no price can be supplied.
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	// History returns the ordered close-price series for the symbol
	// from the given time onward. Fails with PriceUnavailable when the
	// source has no series for the symbol.
	History(ctx context.Context, symbol string, from time.Time) ([]types.PricePoint, error)
}

// Config carries the settings the source implementations need.
type Config struct {
	// Store backs the catalog source and receives cache refreshes from
	// the polygon source. Required for both source types.
	Store *ledger.Store
	// PolygonAPIKey is required for the polygon source.
	PolygonAPIKey string
}

// NewSource creates a price source of the given type.
func NewSource(sourceType SourceType, config Config) (Source, error) {
	switch sourceType {
	case SourceCatalog:
		return NewCatalogSource(config.Store)
	case SourcePolygon:
		return NewPolygonSource(config.PolygonAPIKey, config.Store)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported price source: %s", sourceType)
	}
}
