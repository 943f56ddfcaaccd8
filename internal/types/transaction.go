package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether the side is one of the two known actions.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Transaction is an immutable, append-only record of one executed
// buy or sell. Entries are never updated or reordered; deletion exists
// only as an explicit audit correction outside the normal trade flow.
type Transaction struct {
	ID          string          `yaml:"id" json:"id"`
	PortfolioID string          `yaml:"portfolio_id" json:"portfolio_id"`
	Symbol      string          `yaml:"symbol" json:"symbol" validate:"required"`
	Side        Side            `yaml:"side" json:"side" validate:"required,oneof=buy sell"`
	Quantity    decimal.Decimal `yaml:"quantity" json:"quantity"`
	Price       decimal.Decimal `yaml:"price" json:"price"`
	Timestamp   time.Time       `yaml:"timestamp" json:"timestamp"`
}
