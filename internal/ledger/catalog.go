package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// catalogEntry matches one record of the SEC company_tickers.json
// shape: {"0": {"ticker": "AAPL", "title": "Apple Inc."}, ...}.
type catalogEntry struct {
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// CreateTicker adds a symbol to the catalog. Fails with DuplicateTicker
// if the symbol already exists.
func (s *Store) CreateTicker(symbol, companyName string, price decimal.Decimal) (types.Ticker, error) {
	if symbol == "" {
		return types.Ticker{}, errors.New(errors.ErrCodeInvalidParameter, "ticker symbol is required")
	}

	ticker := types.Ticker{
		Symbol:      symbol,
		CompanyName: companyName,
		LastPrice:   price,
		UpdatedAt:   time.Now().UTC(),
	}

	err := s.withTx(func(tx *sql.Tx) error {
		var exists int

		err := s.sq.Select("COUNT(*)").
			From("tickers").
			Where(squirrel.Eq{"symbol": symbol}).
			RunWith(tx).
			QueryRow().
			Scan(&exists)
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to check ticker", err)
		}

		if exists > 0 {
			return errors.Newf(errors.ErrCodeDuplicateTicker, "ticker %q already exists", symbol)
		}

		_, err = s.sq.Insert("tickers").
			Columns("symbol", "company_name", "last_price", "updated_at").
			Values(ticker.Symbol, ticker.CompanyName, ticker.LastPrice.String(), ticker.UpdatedAt).
			RunWith(tx).
			Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert ticker", err)
		}

		return nil
	})
	if err != nil {
		return types.Ticker{}, err
	}

	return ticker, nil
}

// GetTicker returns the catalog entry for the symbol.
func (s *Store) GetTicker(symbol string) (types.Ticker, error) {
	var ticker types.Ticker

	err := s.sq.Select("symbol", "company_name", "last_price::VARCHAR", "updated_at").
		From("tickers").
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(s.db).
		QueryRow().
		Scan(&ticker.Symbol, &ticker.CompanyName, &ticker.LastPrice, &ticker.UpdatedAt)
	if err == sql.ErrNoRows {
		return types.Ticker{}, errors.Newf(errors.ErrCodeUnknownTicker, "no ticker %q in catalog", symbol)
	}

	if err != nil {
		return types.Ticker{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query ticker", err)
	}

	return ticker, nil
}

// ListTickers returns the whole catalog ordered by symbol.
func (s *Store) ListTickers() ([]types.Ticker, error) {
	rows, err := s.sq.Select("symbol", "company_name", "last_price::VARCHAR", "updated_at").
		From("tickers").
		OrderBy("symbol ASC").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query tickers", err)
	}
	defer rows.Close()

	var tickers []types.Ticker

	for rows.Next() {
		var t types.Ticker
		if err := rows.Scan(&t.Symbol, &t.CompanyName, &t.LastPrice, &t.UpdatedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan ticker", err)
		}

		tickers = append(tickers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating tickers", err)
	}

	return tickers, nil
}

// SetLastPrice refreshes the cached quote for a symbol. The cache is a
// display convenience; trades always quote the price source directly.
func (s *Store) SetLastPrice(symbol string, price decimal.Decimal) error {
	result, err := s.sq.Update("tickers").
		Set("last_price", price.String()).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"symbol": symbol}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to update ticker price", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read update result", err)
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeUnknownTicker, "no ticker %q in catalog", symbol)
	}

	return nil
}

// DeleteTicker removes a symbol from the catalog. Administrative
// action only; positions and transactions referencing the symbol are
// left untouched.
func (s *Store) DeleteTicker(symbol string) error {
	_, err := s.sq.Delete("tickers").Where(squirrel.Eq{"symbol": symbol}).RunWith(s.db).Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete ticker", err)
	}

	return nil
}

// SeedCatalog loads the ticker catalog from a company_tickers.json
// file. Symbols already present are skipped so reseeding is safe. A
// limit above zero caps how many entries are loaded.
func (s *Store) SeedCatalog(path string, limit int) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeCatalogSeed, err, "failed to read catalog file %s", path)
	}

	var entries map[string]catalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, errors.Wrap(errors.ErrCodeCatalogSeed, "failed to parse catalog file", err)
	}

	// Map iteration order is random; seed in a stable order so a
	// limited seed always loads the same symbols.
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}

	bar := progressbar.NewOptions(len(keys),
		progressbar.OptionSetDescription(fmt.Sprintf("Seeding %d tickers", len(keys))),
		progressbar.OptionShowCount())

	seeded := 0

	for _, k := range keys {
		entry := entries[k]
		if entry.Ticker == "" {
			continue
		}

		_, err := s.CreateTicker(entry.Ticker, entry.Title, decimal.Zero)
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeDuplicateTicker) {
				continue
			}

			return seeded, err
		}

		seeded++

		if err := bar.Add(1); err != nil {
			s.logger.Warn("progress bar update failed", zap.Error(err))
		}
	}

	if err := bar.Finish(); err != nil {
		s.logger.Warn("progress bar finish failed", zap.Error(err))
	}

	s.logger.Info("Catalog seeded", zap.Int("tickers", seeded), zap.String("path", path))

	return seeded, nil
}
