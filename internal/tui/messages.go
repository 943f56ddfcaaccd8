package tui

import (
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/types"
)

// TickersLoadedMsg carries the ticker catalog after a refresh.
type TickersLoadedMsg struct {
	Tickers []types.Ticker
}

// PositionsLoadedMsg carries the portfolio snapshot after a refresh.
type PositionsLoadedMsg struct {
	Positions []types.Position
	Prices    map[string]decimal.Decimal
	Balance   decimal.Decimal
}

// TradeExecutedMsg signals a completed trade.
type TradeExecutedMsg struct {
	Receipt ledger.TradeReceipt
}

// ErrorMsg carries a failure from any background command.
type ErrorMsg struct {
	Err error
}
