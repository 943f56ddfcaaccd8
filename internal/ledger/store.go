// Package ledger implements the durable portfolio ledger: users and
// their cash balances, portfolios, aggregate positions, the append-only
// transaction log, and the ticker catalog. All state lives in an
// embedded DuckDB database accessed synchronously.
package ledger

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/papertrade-sim/papertrade/internal/logger"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// Store is the ledger store. A single Store owns one DuckDB database;
// the process is the only writer.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewStore opens the database at path (":memory:" for an ephemeral
// store) and prepares the statement builder.
func NewStore(path string, logger *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return nil, errors.Wrap(errors.ErrCodeStoreInitFailed, "failed to open database", err)
	}

	return &Store{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the ledger tables.
//
// Monetary and quantity columns are DECIMAL(18,4); values are bound and
// scanned as canonical decimal strings so a deposit followed by a
// withdrawal of the same amount round-trips exactly.
func (s *Store) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			username VARCHAR UNIQUE NOT NULL,
			password_hash VARCHAR NOT NULL,
			email VARCHAR,
			balance DECIMAL(18,4) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS portfolios (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create portfolios table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tickers (
			symbol VARCHAR PRIMARY KEY,
			company_name VARCHAR,
			last_price DECIMAL(18,4),
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tickers table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS positions (
			portfolio_id VARCHAR NOT NULL,
			symbol VARCHAR NOT NULL,
			quantity DECIMAL(18,4) NOT NULL CHECK (quantity >= 0),
			cost_basis DECIMAL(18,4) NOT NULL CHECK (cost_basis >= 0),
			PRIMARY KEY (portfolio_id, symbol)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create positions table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id VARCHAR PRIMARY KEY,
			portfolio_id VARCHAR NOT NULL,
			symbol VARCHAR NOT NULL,
			side VARCHAR NOT NULL,
			quantity DECIMAL(18,4) NOT NULL,
			price DECIMAL(18,4) NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create transactions table: %w", err)
	}

	return nil
}

// Cleanup drops all ledger tables and recreates the schema.
func (s *Store) Cleanup() error {
	_, err := s.db.Exec(`
		DROP TABLE IF EXISTS transactions;
		DROP TABLE IF EXISTS positions;
		DROP TABLE IF EXISTS tickers;
		DROP TABLE IF EXISTS portfolios;
		DROP TABLE IF EXISTS users;
	`)
	if err != nil {
		return fmt.Errorf("failed to cleanup tables: %w", err)
	}

	return s.Initialize()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransactionFailed, "failed to begin transaction", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Rollback failed", zap.Error(rbErr))
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeTransactionFailed, "failed to commit transaction", err)
	}

	return nil
}
