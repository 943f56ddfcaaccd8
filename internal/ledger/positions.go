package ledger

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// GetPosition returns the position held by the portfolio in the given
// symbol, or None. Absence and a fully closed position are the same
// persisted state, so there is no zero-valued result.
func (s *Store) GetPosition(portfolioID, symbol string) (optional.Option[types.Position], error) {
	return s.positionFor(s.db, portfolioID, symbol)
}

// ListPositions returns every open position in the portfolio.
func (s *Store) ListPositions(portfolioID string) ([]types.Position, error) {
	rows, err := s.sq.Select("portfolio_id", "symbol", "quantity::VARCHAR", "cost_basis::VARCHAR").
		From("positions").
		Where(squirrel.Eq{"portfolio_id": portfolioID}).
		OrderBy("symbol ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query positions", err)
	}
	defer rows.Close()

	var positions []types.Position

	for rows.Next() {
		var p types.Position
		if err := rows.Scan(&p.PortfolioID, &p.Symbol, &p.Quantity, &p.CostBasis); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan position", err)
		}

		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating positions", err)
	}

	return positions, nil
}

// OpenOrIncrease creates the position with (quantityDelta, costDelta)
// or adds the deltas to an existing one. Cost basis accumulates across
// buys; there is no per-lot tracking.
func (s *Store) OpenOrIncrease(portfolioID, symbol string, quantityDelta, costDelta decimal.Decimal) (types.Position, error) {
	var position types.Position

	err := s.withTx(func(tx *sql.Tx) error {
		var err error

		position, err = s.openOrIncreaseTx(tx, portfolioID, symbol, quantityDelta, costDelta)

		return err
	})
	if err != nil {
		return types.Position{}, err
	}

	return position, nil
}

// DecreaseOrClose reduces the position by quantityDelta shares,
// shrinking the cost basis proportionally. Reducing to exactly zero
// deletes the row. Fails with InsufficientShares when quantityDelta
// exceeds the held quantity.
func (s *Store) DecreaseOrClose(portfolioID, symbol string, quantityDelta decimal.Decimal) (optional.Option[types.Position], error) {
	var position optional.Option[types.Position]

	err := s.withTx(func(tx *sql.Tx) error {
		var err error

		position, err = s.decreaseOrCloseTx(tx, portfolioID, symbol, quantityDelta)

		return err
	})
	if err != nil {
		return optional.None[types.Position](), err
	}

	return position, nil
}

// positionFor reads one position row through the given runner.
func (s *Store) positionFor(runner squirrel.BaseRunner, portfolioID, symbol string) (optional.Option[types.Position], error) {
	var p types.Position

	err := s.sq.Select("portfolio_id", "symbol", "quantity::VARCHAR", "cost_basis::VARCHAR").
		From("positions").
		Where(squirrel.Eq{"portfolio_id": portfolioID, "symbol": symbol}).
		RunWith(runner).
		QueryRow().
		Scan(&p.PortfolioID, &p.Symbol, &p.Quantity, &p.CostBasis)
	if err == sql.ErrNoRows {
		return optional.None[types.Position](), nil
	}

	if err != nil {
		return optional.None[types.Position](), errors.Wrap(errors.ErrCodeQueryFailed, "failed to query position", err)
	}

	return optional.Some(p), nil
}

func (s *Store) openOrIncreaseTx(tx *sql.Tx, portfolioID, symbol string, quantityDelta, costDelta decimal.Decimal) (types.Position, error) {
	if !quantityDelta.IsPositive() || !costDelta.IsPositive() {
		return types.Position{}, errors.Newf(errors.ErrCodeInvalidAmount,
			"position increase must be positive, got quantity %s cost %s", quantityDelta, costDelta)
	}

	current, err := s.positionFor(tx, portfolioID, symbol)
	if err != nil {
		return types.Position{}, err
	}

	if current.IsNone() {
		position := types.Position{
			PortfolioID: portfolioID,
			Symbol:      symbol,
			Quantity:    quantityDelta,
			CostBasis:   costDelta,
		}

		_, err := s.sq.Insert("positions").
			Columns("portfolio_id", "symbol", "quantity", "cost_basis").
			Values(position.PortfolioID, position.Symbol, position.Quantity.String(), position.CostBasis.String()).
			RunWith(tx).
			Exec()
		if err != nil {
			return types.Position{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert position", err)
		}

		return position, nil
	}

	position := current.Unwrap()
	position.Quantity = position.Quantity.Add(quantityDelta)
	position.CostBasis = position.CostBasis.Add(costDelta)

	if err := s.writePosition(tx, position); err != nil {
		return types.Position{}, err
	}

	return position, nil
}

func (s *Store) decreaseOrCloseTx(tx *sql.Tx, portfolioID, symbol string, quantityDelta decimal.Decimal) (optional.Option[types.Position], error) {
	if !quantityDelta.IsPositive() {
		return optional.None[types.Position](), errors.Newf(errors.ErrCodeInvalidAmount,
			"position decrease must be positive, got %s", quantityDelta)
	}

	current, err := s.positionFor(tx, portfolioID, symbol)
	if err != nil {
		return optional.None[types.Position](), err
	}

	if current.IsNone() {
		return optional.None[types.Position](), errors.Newf(errors.ErrCodeInsufficientShares,
			"insufficient shares: have 0 %s, want to sell %s", symbol, quantityDelta)
	}

	position := current.Unwrap()
	if quantityDelta.GreaterThan(position.Quantity) {
		return optional.None[types.Position](), errors.Newf(errors.ErrCodeInsufficientShares,
			"insufficient shares: have %s %s, want to sell %s", position.Quantity, symbol, quantityDelta)
	}

	if quantityDelta.Equal(position.Quantity) {
		_, err := s.sq.Delete("positions").
			Where(squirrel.Eq{"portfolio_id": portfolioID, "symbol": symbol}).
			RunWith(tx).
			Exec()
		if err != nil {
			return optional.None[types.Position](), errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete position", err)
		}

		return optional.None[types.Position](), nil
	}

	// Proportional cost-basis reduction: selling k of n shares removes
	// k/n of the basis (average-cost accounting).
	remaining := position.Quantity.Sub(quantityDelta)
	position.CostBasis = position.CostBasis.Mul(remaining).Div(position.Quantity).Round(4)
	position.Quantity = remaining

	if err := s.writePosition(tx, position); err != nil {
		return optional.None[types.Position](), err
	}

	return optional.Some(position), nil
}

func (s *Store) writePosition(tx *sql.Tx, position types.Position) error {
	_, err := s.sq.Update("positions").
		Set("quantity", position.Quantity.String()).
		Set("cost_basis", position.CostBasis.String()).
		Where(squirrel.Eq{"portfolio_id": position.PortfolioID, "symbol": position.Symbol}).
		RunWith(tx).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to update position", err)
	}

	return nil
}
