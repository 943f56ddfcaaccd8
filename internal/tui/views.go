package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/internal/valuation"
)

// tickerItem implements list.Item for the catalog list.
type tickerItem struct {
	symbol      string
	companyName string
	lastPrice   decimal.Decimal
}

func (i tickerItem) Title() string { return i.symbol }
func (i tickerItem) Description() string {
	if i.lastPrice.IsPositive() {
		return i.companyName + " · $" + i.lastPrice.StringFixed(2)
	}

	return i.companyName
}
func (i tickerItem) FilterValue() string { return i.symbol }

// NewTickerList creates the catalog list.
func NewTickerList() list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Tickers"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return l
}

// UpdateTickerItems replaces the list contents with the given catalog.
func UpdateTickerItems(l list.Model, tickers []types.Ticker) list.Model {
	items := make([]list.Item, 0, len(tickers))

	for _, ticker := range tickers {
		items = append(items, tickerItem{
			symbol:      ticker.Symbol,
			companyName: ticker.CompanyName,
			lastPrice:   ticker.LastPrice,
		})
	}

	l.SetItems(items)

	return l
}

// NewQuantityInput creates the share-quantity prompt.
func NewQuantityInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "10"
	ti.CharLimit = 20
	ti.Width = 20
	ti.Prompt = "> "

	return ti
}

// ParseQuantity parses a positive decimal share quantity.
func ParseQuantity(input string) (decimal.Decimal, bool) {
	quantity, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil || !quantity.IsPositive() {
		return decimal.Zero, false
	}

	return quantity, true
}

// NewPositionsTable creates the positions table.
func NewPositionsTable() table.Model {
	columns := []table.Column{
		{Title: "Symbol", Width: 10},
		{Title: "Shares", Width: 12},
		{Title: "Avg Price", Width: 12},
		{Title: "Cost Basis", Width: 14},
		{Title: "Value", Width: 14},
		{Title: "P/L", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdatePositionRows fills the table from the portfolio snapshot.
// Rows are sorted by symbol for a stable display.
func UpdatePositionRows(t table.Model, positions []types.Position, prices map[string]decimal.Decimal) table.Model {
	sorted := make([]types.Position, len(positions))
	copy(sorted, positions)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Symbol < sorted[j].Symbol
	})

	rows := make([]table.Row, 0, len(sorted))

	for _, position := range sorted {
		value := valuation.Value(position, prices[position.Symbol])

		rows = append(rows, table.Row{
			position.Symbol,
			position.Quantity.String(),
			value.AveragePrice.StringFixed(2),
			value.CostBasis.StringFixed(2),
			value.CurrentValue.StringFixed(2),
			FormatProfitLoss(value.ProfitLoss),
		})
	}

	t.SetRows(rows)

	return t
}
