package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a tradable symbol from the catalog. LastPrice is a cached
// quote refreshed by the price source, never authoritative for a trade.
type Ticker struct {
	Symbol      string          `yaml:"symbol" json:"symbol" validate:"required"`
	CompanyName string          `yaml:"company_name" json:"company_name"`
	LastPrice   decimal.Decimal `yaml:"last_price" json:"last_price"`
	UpdatedAt   time.Time       `yaml:"updated_at" json:"updated_at"`
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Time  time.Time       `yaml:"time" json:"time"`
	Price decimal.Decimal `yaml:"price" json:"price"`
}
