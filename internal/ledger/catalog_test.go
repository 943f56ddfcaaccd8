package ledger

import (
	"os"
	"path/filepath"

	"github.com/papertrade-sim/papertrade/pkg/errors"
)

func (s *StoreTestSuite) writeCatalog(content string) string {
	path := filepath.Join(s.T().TempDir(), "company_tickers.json")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (s *StoreTestSuite) TestCreateAndGetTicker() {
	s.createTicker("ACME", "50")

	ticker, err := s.store.GetTicker("ACME")
	s.Require().NoError(err)
	s.Equal("ACME", ticker.Symbol)
	s.Equal("ACME Inc.", ticker.CompanyName)
	s.True(ticker.LastPrice.Equal(d("50")))
}

func (s *StoreTestSuite) TestCreateTickerDuplicate() {
	s.createTicker("ACME", "50")

	_, err := s.store.CreateTicker("ACME", "Acme Corp", d("60"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeDuplicateTicker, errors.GetCode(err))
}

func (s *StoreTestSuite) TestGetTickerUnknown() {
	_, err := s.store.GetTicker("NOPE")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownTicker, errors.GetCode(err))
}

func (s *StoreTestSuite) TestSetLastPrice() {
	s.createTicker("ACME", "50")

	s.Require().NoError(s.store.SetLastPrice("ACME", d("52.25")))

	ticker, err := s.store.GetTicker("ACME")
	s.Require().NoError(err)
	s.True(ticker.LastPrice.Equal(d("52.25")), "price %s", ticker.LastPrice)

	err = s.store.SetLastPrice("NOPE", d("1"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownTicker, errors.GetCode(err))
}

func (s *StoreTestSuite) TestDeleteTicker() {
	s.createTicker("ACME", "50")

	s.Require().NoError(s.store.DeleteTicker("ACME"))

	_, err := s.store.GetTicker("ACME")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownTicker, errors.GetCode(err))
}

func (s *StoreTestSuite) TestSeedCatalog() {
	path := s.writeCatalog(`{
		"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
		"1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"},
		"2": {"cik_str": 1018724, "ticker": "AMZN", "title": "AMAZON COM INC"}
	}`)

	seeded, err := s.store.SeedCatalog(path, 0)
	s.Require().NoError(err)
	s.Equal(3, seeded)

	ticker, err := s.store.GetTicker("AAPL")
	s.Require().NoError(err)
	s.Equal("Apple Inc.", ticker.CompanyName)
	s.True(ticker.LastPrice.IsZero())
}

func (s *StoreTestSuite) TestSeedCatalogLimitIsStable() {
	catalog := `{
		"0": {"ticker": "AAPL", "title": "Apple Inc."},
		"1": {"ticker": "MSFT", "title": "MICROSOFT CORP"},
		"2": {"ticker": "AMZN", "title": "AMAZON COM INC"}
	}`

	path := s.writeCatalog(catalog)

	seeded, err := s.store.SeedCatalog(path, 2)
	s.Require().NoError(err)
	s.Equal(2, seeded)

	// Keys are sorted before the limit applies, so "0" and "1" win.
	_, err = s.store.GetTicker("AAPL")
	s.Require().NoError(err)

	_, err = s.store.GetTicker("MSFT")
	s.Require().NoError(err)

	_, err = s.store.GetTicker("AMZN")
	s.Require().Error(err)
}

func (s *StoreTestSuite) TestSeedCatalogSkipsDuplicates() {
	path := s.writeCatalog(`{"0": {"ticker": "AAPL", "title": "Apple Inc."}}`)

	seeded, err := s.store.SeedCatalog(path, 0)
	s.Require().NoError(err)
	s.Equal(1, seeded)

	seeded, err = s.store.SeedCatalog(path, 0)
	s.Require().NoError(err)
	s.Equal(0, seeded)
}

func (s *StoreTestSuite) TestSeedCatalogMissingFile() {
	_, err := s.store.SeedCatalog(filepath.Join(s.T().TempDir(), "missing.json"), 0)
	s.Require().Error(err)
	s.Equal(errors.ErrCodeCatalogSeed, errors.GetCode(err))
}

func (s *StoreTestSuite) TestSeedCatalogMalformed() {
	path := s.writeCatalog(`not json`)

	_, err := s.store.SeedCatalog(path, 0)
	s.Require().Error(err)
	s.Equal(errors.ErrCodeCatalogSeed, errors.GetCode(err))
}
