package ledger

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// Record appends one immutable entry to the transaction log with a
// server-assigned timestamp. Existing entries are never updated or
// reordered.
func (s *Store) Record(portfolioID, symbol string, side types.Side, quantity, price decimal.Decimal) (types.Transaction, error) {
	var entry types.Transaction

	err := s.withTx(func(tx *sql.Tx) error {
		var err error

		entry, err = s.recordTx(tx, portfolioID, symbol, side, quantity, price)

		return err
	})
	if err != nil {
		return types.Transaction{}, err
	}

	return entry, nil
}

// List returns the portfolio's transactions in storage order
// (chronological by timestamp). When from or to are set, entries are
// filtered to from <= timestamp <= to, inclusive on both bounds.
func (s *Store) List(portfolioID string, from, to *time.Time) ([]types.Transaction, error) {
	query := s.sq.Select("id", "portfolio_id", "symbol", "side", "quantity::VARCHAR", "price::VARCHAR", "created_at").
		From("transactions").
		Where(squirrel.Eq{"portfolio_id": portfolioID}).
		OrderBy("created_at ASC")

	if from != nil {
		query = query.Where(squirrel.GtOrEq{"created_at": *from})
	}

	if to != nil {
		query = query.Where(squirrel.LtOrEq{"created_at": *to})
	}

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query transactions", err)
	}
	defer rows.Close()

	var entries []types.Transaction

	for rows.Next() {
		var t types.Transaction
		if err := rows.Scan(&t.ID, &t.PortfolioID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &t.Timestamp); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan transaction", err)
		}

		entries = append(entries, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating transactions", err)
	}

	return entries, nil
}

// DeleteTransaction removes one log entry. This is an explicit audit
// correction, never part of the normal trade flow.
func (s *Store) DeleteTransaction(id string) error {
	result, err := s.sq.Delete("transactions").Where(squirrel.Eq{"id": id}).RunWith(s.db).Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete transaction", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read delete result", err)
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "no transaction with id %q", id)
	}

	return nil
}

// recordTx appends a log entry inside an existing transaction.
func (s *Store) recordTx(tx *sql.Tx, portfolioID, symbol string, side types.Side, quantity, price decimal.Decimal) (types.Transaction, error) {
	if !side.Valid() {
		return types.Transaction{}, errors.Newf(errors.ErrCodeInvalidAction,
			"action must be %q or %q, got %q", types.SideBuy, types.SideSell, side)
	}

	if !quantity.IsPositive() {
		return types.Transaction{}, errors.Newf(errors.ErrCodeInvalidAmount, "quantity must be positive, got %s", quantity)
	}

	if price.IsNegative() {
		return types.Transaction{}, errors.Newf(errors.ErrCodeInvalidAmount, "price must be non-negative, got %s", price)
	}

	entry := types.Transaction{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Side:        side,
		Quantity:    quantity,
		Price:       price,
		Timestamp:   time.Now().UTC(),
	}

	_, err := s.sq.Insert("transactions").
		Columns("id", "portfolio_id", "symbol", "side", "quantity", "price", "created_at").
		Values(entry.ID, entry.PortfolioID, entry.Symbol, string(entry.Side), entry.Quantity.String(), entry.Price.String(), entry.Timestamp).
		RunWith(tx).
		Exec()
	if err != nil {
		return types.Transaction{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert transaction", err)
	}

	return entry, nil
}
