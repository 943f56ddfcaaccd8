package ledger

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// CreateUser registers a new user with a bcrypt-hashed password and a
// zero balance. Fails with DuplicateUsername if the name is taken.
func (s *Store) CreateUser(username, password, email string) (types.User, error) {
	if username == "" || password == "" {
		return types.User{}, errors.New(errors.ErrCodeInvalidParameter, "username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, errors.Wrap(errors.ErrCodeUnknown, "failed to hash password", err)
	}

	user := types.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Balance:      decimal.Zero,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.withTx(func(tx *sql.Tx) error {
		var exists int

		err := s.sq.Select("COUNT(*)").
			From("users").
			Where(squirrel.Eq{"username": username}).
			RunWith(tx).
			QueryRow().
			Scan(&exists)
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to check username", err)
		}

		if exists > 0 {
			return errors.Newf(errors.ErrCodeDuplicateUsername, "username %q is already taken", username)
		}

		_, err = s.sq.Insert("users").
			Columns("id", "username", "password_hash", "email", "balance", "created_at").
			Values(user.ID, user.Username, user.PasswordHash, user.Email, user.Balance.String(), user.CreatedAt).
			RunWith(tx).
			Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert user", err)
		}

		return nil
	})
	if err != nil {
		return types.User{}, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair and returns the user.
// Fails with InvalidCredentials on either an unknown name or a wrong
// password so callers cannot probe for registered usernames.
func (s *Store) Authenticate(username, password string) (types.User, error) {
	user, err := s.GetUserByName(username)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeUnknownUser) {
			return types.User{}, errors.New(errors.ErrCodeInvalidCredentials, "invalid username or password")
		}

		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, errors.New(errors.ErrCodeInvalidCredentials, "invalid username or password")
	}

	return user, nil
}

// GetUserByName returns the user with the given username.
func (s *Store) GetUserByName(username string) (types.User, error) {
	return s.userByName(s.db, username)
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(id string) (types.User, error) {
	var user types.User

	err := s.sq.Select("id", "username", "password_hash", "email", "balance::VARCHAR", "created_at").
		From("users").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRow().
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Balance, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return types.User{}, errors.Newf(errors.ErrCodeUnknownUser, "no user with id %q", id)
	}

	if err != nil {
		return types.User{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query user", err)
	}

	return user, nil
}

// DeleteUser removes a user together with all portfolios and positions
// owned by it. Transaction log entries survive as independent audit
// facts.
func (s *Store) DeleteUser(username string) error {
	return s.withTx(func(tx *sql.Tx) error {
		user, err := s.userByName(tx, username)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM positions
			WHERE portfolio_id IN (SELECT id FROM portfolios WHERE user_id = ?)
		`, user.ID)
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete positions", err)
		}

		if _, err = s.sq.Delete("portfolios").Where(squirrel.Eq{"user_id": user.ID}).RunWith(tx).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete portfolios", err)
		}

		if _, err = s.sq.Delete("users").Where(squirrel.Eq{"id": user.ID}).RunWith(tx).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete user", err)
		}

		return nil
	})
}

// Balance returns the user's current cash balance.
func (s *Store) Balance(username string) (decimal.Decimal, error) {
	user, err := s.GetUserByName(username)
	if err != nil {
		return decimal.Zero, err
	}

	return user.Balance, nil
}

// Deposit increases the user's balance by amount. The amount must be
// positive.
func (s *Store) Deposit(username string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := s.withTx(func(tx *sql.Tx) error {
		var err error

		balance, err = s.depositTx(tx, username, amount)

		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// Withdraw decreases the user's balance by amount only if the result
// stays non-negative; otherwise the balance is unchanged and
// InsufficientFunds is returned.
func (s *Store) Withdraw(username string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := s.withTx(func(tx *sql.Tx) error {
		var err error

		balance, err = s.withdrawTx(tx, username, amount)

		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// userByName reads one user row through the given runner (db or tx).
func (s *Store) userByName(runner squirrel.BaseRunner, username string) (types.User, error) {
	var user types.User

	err := s.sq.Select("id", "username", "password_hash", "email", "balance::VARCHAR", "created_at").
		From("users").
		Where(squirrel.Eq{"username": username}).
		RunWith(runner).
		QueryRow().
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.Balance, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return types.User{}, errors.Newf(errors.ErrCodeUnknownUser, "no user named %q", username)
	}

	if err != nil {
		return types.User{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query user", err)
	}

	return user, nil
}

// depositTx applies a deposit inside an existing transaction.
func (s *Store) depositTx(tx *sql.Tx, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidAmount, "deposit amount must be positive, got %s", amount)
	}

	user, err := s.userByName(tx, username)
	if err != nil {
		return decimal.Zero, err
	}

	balance := user.Balance.Add(amount)
	if err := s.setBalance(tx, user.ID, balance); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// withdrawTx applies a withdrawal inside an existing transaction.
func (s *Store) withdrawTx(tx *sql.Tx, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidAmount, "withdrawal amount must be positive, got %s", amount)
	}

	user, err := s.userByName(tx, username)
	if err != nil {
		return decimal.Zero, err
	}

	balance := user.Balance.Sub(amount)
	if balance.IsNegative() {
		return decimal.Zero, errors.Newf(errors.ErrCodeInsufficientFunds,
			"insufficient funds: need $%s, have $%s", amount.StringFixed(2), user.Balance.StringFixed(2))
	}

	if err := s.setBalance(tx, user.ID, balance); err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

func (s *Store) setBalance(tx *sql.Tx, userID string, balance decimal.Decimal) error {
	_, err := s.sq.Update("users").
		Set("balance", balance.String()).
		Where(squirrel.Eq{"id": userID}).
		RunWith(tx).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to update balance", err)
	}

	return nil
}
