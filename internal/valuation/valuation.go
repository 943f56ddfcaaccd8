// Package valuation derives display figures from position snapshots
// and live prices. Everything here is a pure function: no storage, no
// quoting, no mutation.
package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/types"
)

// OtherLabel names the aggregate slice produced by Allocate.
const OtherLabel = "Other"

// PositionValue is one position with its derived figures at a given
// price.
type PositionValue struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	AveragePrice decimal.Decimal `json:"average_price"`
	CurrentValue decimal.Decimal `json:"current_value"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
}

// PortfolioSummary aggregates derived figures across a portfolio.
type PortfolioSummary struct {
	Positions       []PositionValue `json:"positions"`
	TotalCostBasis  decimal.Decimal `json:"total_cost_basis"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
}

// Slice is one wedge of the cost-basis allocation.
type Slice struct {
	Label     string          `json:"label"`
	CostBasis decimal.Decimal `json:"cost_basis"`
}

// AveragePrice returns cost basis per held share. Callers must not ask
// for the average price of a position they do not hold; the zero guard
// exists so display code cannot divide by zero.
func AveragePrice(position types.Position) decimal.Decimal {
	return position.AveragePrice()
}

// CurrentValue returns the position's worth at the given price.
func CurrentValue(position types.Position, price decimal.Decimal) decimal.Decimal {
	return position.Quantity.Mul(price)
}

// ProfitLoss returns current value minus cost basis at the given price.
func ProfitLoss(position types.Position, price decimal.Decimal) decimal.Decimal {
	return CurrentValue(position, price).Sub(position.CostBasis)
}

// Value derives all per-position figures at the given price.
func Value(position types.Position, price decimal.Decimal) PositionValue {
	return PositionValue{
		Symbol:       position.Symbol,
		Quantity:     position.Quantity,
		CostBasis:    position.CostBasis,
		AveragePrice: AveragePrice(position),
		CurrentValue: CurrentValue(position, price),
		ProfitLoss:   ProfitLoss(position, price),
	}
}

// Summarize derives the portfolio-level aggregates. prices maps symbol
// to the current quote; a position without a quote is valued at zero,
// which shows up as a loss of its full cost basis rather than hiding
// the row.
func Summarize(positions []types.Position, prices map[string]decimal.Decimal) PortfolioSummary {
	summary := PortfolioSummary{
		Positions:       make([]PositionValue, 0, len(positions)),
		TotalCostBasis:  decimal.Zero,
		TotalValue:      decimal.Zero,
		TotalProfitLoss: decimal.Zero,
	}

	for _, position := range positions {
		value := Value(position, prices[position.Symbol])
		summary.Positions = append(summary.Positions, value)
		summary.TotalCostBasis = summary.TotalCostBasis.Add(value.CostBasis)
		summary.TotalValue = summary.TotalValue.Add(value.CurrentValue)
	}

	summary.TotalProfitLoss = summary.TotalValue.Sub(summary.TotalCostBasis)

	return summary
}

// Allocate reduces positions to at most n+1 slices for display: the
// top n by cost basis in descending order, then one aggregate slice
// holding the sum of the rest. Ties keep their original order (stable
// sort) so the output is deterministic.
func Allocate(positions []types.Position, n int) []Slice {
	sorted := make([]types.Position, len(positions))
	copy(sorted, positions)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CostBasis.GreaterThan(sorted[j].CostBasis)
	})

	if n < 0 {
		n = 0
	}

	slices := make([]Slice, 0, n+1)

	for i, position := range sorted {
		if i >= n {
			break
		}

		slices = append(slices, Slice{
			Label:     position.Symbol,
			CostBasis: position.CostBasis,
		})
	}

	if len(sorted) > n {
		other := decimal.Zero
		for _, position := range sorted[n:] {
			other = other.Add(position.CostBasis)
		}

		slices = append(slices, Slice{
			Label:     OtherLabel,
			CostBasis: other,
		})
	}

	return slices
}
