package ledger

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// CreatePortfolio creates a named portfolio for the user. Fails with
// DuplicatePortfolioName if the user already has one with that name.
func (s *Store) CreatePortfolio(username, name string) (types.Portfolio, error) {
	if name == "" {
		return types.Portfolio{}, errors.New(errors.ErrCodeInvalidParameter, "portfolio name is required")
	}

	var portfolio types.Portfolio

	err := s.withTx(func(tx *sql.Tx) error {
		user, err := s.userByName(tx, username)
		if err != nil {
			return err
		}

		var exists int

		err = s.sq.Select("COUNT(*)").
			From("portfolios").
			Where(squirrel.Eq{"user_id": user.ID, "name": name}).
			RunWith(tx).
			QueryRow().
			Scan(&exists)
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to check portfolio name", err)
		}

		if exists > 0 {
			return errors.Newf(errors.ErrCodeDuplicatePortfolioName, "user %q already has a portfolio named %q", username, name)
		}

		portfolio = types.Portfolio{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}

		_, err = s.sq.Insert("portfolios").
			Columns("id", "user_id", "name", "created_at").
			Values(portfolio.ID, portfolio.UserID, portfolio.Name, portfolio.CreatedAt).
			RunWith(tx).
			Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert portfolio", err)
		}

		return nil
	})
	if err != nil {
		return types.Portfolio{}, err
	}

	return portfolio, nil
}

// GetPortfolio returns the portfolio with the given id.
func (s *Store) GetPortfolio(id string) (types.Portfolio, error) {
	var portfolio types.Portfolio

	err := s.sq.Select("id", "user_id", "name", "created_at").
		From("portfolios").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRow().
		Scan(&portfolio.ID, &portfolio.UserID, &portfolio.Name, &portfolio.CreatedAt)
	if err == sql.ErrNoRows {
		return types.Portfolio{}, errors.Newf(errors.ErrCodeUnknownPortfolio, "no portfolio with id %q", id)
	}

	if err != nil {
		return types.Portfolio{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query portfolio", err)
	}

	return portfolio, nil
}

// ListPortfolios returns every portfolio owned by the user.
func (s *Store) ListPortfolios(username string) ([]types.Portfolio, error) {
	user, err := s.GetUserByName(username)
	if err != nil {
		return nil, err
	}

	rows, err := s.sq.Select("id", "user_id", "name", "created_at").
		From("portfolios").
		Where(squirrel.Eq{"user_id": user.ID}).
		OrderBy("created_at ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query portfolios", err)
	}
	defer rows.Close()

	var portfolios []types.Portfolio

	for rows.Next() {
		var p types.Portfolio
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan portfolio", err)
		}

		portfolios = append(portfolios, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating portfolios", err)
	}

	return portfolios, nil
}

// DeletePortfolio removes a portfolio and cascades to its positions.
func (s *Store) DeletePortfolio(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		result, err := s.sq.Delete("portfolios").Where(squirrel.Eq{"id": id}).RunWith(tx).Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete portfolio", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read delete result", err)
		}

		if affected == 0 {
			return errors.Newf(errors.ErrCodeUnknownPortfolio, "no portfolio with id %q", id)
		}

		if _, err := s.sq.Delete("positions").Where(squirrel.Eq{"portfolio_id": id}).RunWith(tx).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete positions", err)
		}

		return nil
	})
}
