package ledger

import (
	"database/sql"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/types"
)

// TradeReceipt is the persisted outcome of one trade: the log entry,
// the position after the trade (None when fully closed), and the cash
// balance after the trade.
type TradeReceipt struct {
	Transaction types.Transaction               `json:"transaction"`
	Position    optional.Option[types.Position] `json:"position"`
	Balance     decimal.Decimal                 `json:"balance"`
}

// ApplyBuy debits shares*price from the user's balance, opens or
// increases the position, and appends a buy entry to the transaction
// log, all inside one database transaction. On any failure nothing is
// mutated.
func (s *Store) ApplyBuy(username, portfolioID, symbol string, shares, price decimal.Decimal) (TradeReceipt, error) {
	var receipt TradeReceipt

	err := s.withTx(func(tx *sql.Tx) error {
		cost := shares.Mul(price).Round(4)

		balance, err := s.withdrawTx(tx, username, cost)
		if err != nil {
			return err
		}

		position, err := s.openOrIncreaseTx(tx, portfolioID, symbol, shares, cost)
		if err != nil {
			return err
		}

		entry, err := s.recordTx(tx, portfolioID, symbol, types.SideBuy, shares, price)
		if err != nil {
			return err
		}

		receipt = TradeReceipt{
			Transaction: entry,
			Position:    optional.Some(position),
			Balance:     balance,
		}

		return nil
	})
	if err != nil {
		return TradeReceipt{}, err
	}

	return receipt, nil
}

// ApplySell decreases or closes the position, credits shares*price to
// the user's balance, and appends a sell entry to the transaction log,
// all inside one database transaction. On any failure nothing is
// mutated.
func (s *Store) ApplySell(username, portfolioID, symbol string, shares, price decimal.Decimal) (TradeReceipt, error) {
	var receipt TradeReceipt

	err := s.withTx(func(tx *sql.Tx) error {
		position, err := s.decreaseOrCloseTx(tx, portfolioID, symbol, shares)
		if err != nil {
			return err
		}

		proceeds := shares.Mul(price).Round(4)

		balance, err := s.depositTx(tx, username, proceeds)
		if err != nil {
			return err
		}

		entry, err := s.recordTx(tx, portfolioID, symbol, types.SideSell, shares, price)
		if err != nil {
			return err
		}

		receipt = TradeReceipt{
			Transaction: entry,
			Position:    position,
			Balance:     balance,
		}

		return nil
	})
	if err != nil {
		return TradeReceipt{}, err
	}

	return receipt, nil
}
