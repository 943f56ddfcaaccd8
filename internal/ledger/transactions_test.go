package ledger

import (
	"time"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

func (s *StoreTestSuite) TestRecordAndList() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	first, err := s.store.Record(portfolio.ID, "ACME", types.SideBuy, d("10"), d("50"))
	s.Require().NoError(err)
	s.NotEmpty(first.ID)
	s.False(first.Timestamp.IsZero())

	second, err := s.store.Record(portfolio.ID, "ACME", types.SideSell, d("4"), d("60"))
	s.Require().NoError(err)

	entries, err := s.store.List(portfolio.ID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)

	// Chronological storage order.
	s.Equal(first.ID, entries[0].ID)
	s.Equal(second.ID, entries[1].ID)
	s.Equal(types.SideBuy, entries[0].Side)
	s.Equal(types.SideSell, entries[1].Side)
	s.True(entries[0].Quantity.Equal(d("10")))
	s.True(entries[1].Price.Equal(d("60")))
}

func (s *StoreTestSuite) TestRecordRejectsInvalidInput() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.Record(portfolio.ID, "ACME", types.Side("short"), d("10"), d("50"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidAction, errors.GetCode(err))

	_, err = s.store.Record(portfolio.ID, "ACME", types.SideBuy, d("0"), d("50"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidAmount, errors.GetCode(err))

	_, err = s.store.Record(portfolio.ID, "ACME", types.SideBuy, d("10"), d("-1"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidAmount, errors.GetCode(err))
}

func (s *StoreTestSuite) TestListDateFilterIsInclusive() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	entry, err := s.store.Record(portfolio.ID, "ACME", types.SideBuy, d("10"), d("50"))
	s.Require().NoError(err)

	// Bounds equal to the entry's own timestamp still match it.
	entries, err := s.store.List(portfolio.ID, &entry.Timestamp, &entry.Timestamp)
	s.Require().NoError(err)
	s.Len(entries, 1)

	after := entry.Timestamp.Add(time.Second)

	entries, err = s.store.List(portfolio.ID, &after, nil)
	s.Require().NoError(err)
	s.Empty(entries)

	before := entry.Timestamp.Add(-time.Second)

	entries, err = s.store.List(portfolio.ID, nil, &before)
	s.Require().NoError(err)
	s.Empty(entries)

	entries, err = s.store.List(portfolio.ID, &before, &after)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *StoreTestSuite) TestListScopedToPortfolio() {
	s.createFundedUser("alice", "0")
	main := s.createPortfolio("alice", "main")
	other := s.createPortfolio("alice", "other")

	_, err := s.store.Record(main.ID, "ACME", types.SideBuy, d("10"), d("50"))
	s.Require().NoError(err)

	entries, err := s.store.List(other.ID, nil, nil)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *StoreTestSuite) TestDeleteTransaction() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	entry, err := s.store.Record(portfolio.ID, "ACME", types.SideBuy, d("10"), d("50"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteTransaction(entry.ID))

	entries, err := s.store.List(portfolio.ID, nil, nil)
	s.Require().NoError(err)
	s.Empty(entries)

	err = s.store.DeleteTransaction(entry.ID)
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}
