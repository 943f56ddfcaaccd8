package types

import (
	"github.com/shopspring/decimal"
)

// Position is the aggregate holding of one ticker within one portfolio.
// CostBasis is the total paid for the currently held quantity
// (average-cost method, no per-lot tracking). Quantity and CostBasis
// move together: buys increase both, sells reduce both proportionally.
// A position with zero quantity is deleted, never stored.
type Position struct {
	PortfolioID string          `yaml:"portfolio_id" json:"portfolio_id"`
	Symbol      string          `yaml:"symbol" json:"symbol"`
	Quantity    decimal.Decimal `yaml:"quantity" json:"quantity"`
	CostBasis   decimal.Decimal `yaml:"cost_basis" json:"cost_basis"`
}

// AveragePrice returns CostBasis/Quantity, or zero for an empty
// position so callers never divide by zero.
func (p Position) AveragePrice() decimal.Decimal {
	if p.Quantity.IsZero() {
		return decimal.Zero
	}

	return p.CostBasis.Div(p.Quantity)
}
