package ledger

import (
	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

func (s *StoreTestSuite) TestApplyBuy() {
	s.createFundedUser("alice", "1000")
	portfolio := s.createPortfolio("alice", "main")

	receipt, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().NoError(err)

	s.True(receipt.Balance.Equal(d("500")), "balance %s", receipt.Balance)
	s.Require().True(receipt.Position.IsSome())
	s.True(receipt.Position.Unwrap().Quantity.Equal(d("10")))
	s.True(receipt.Position.Unwrap().CostBasis.Equal(d("500")))
	s.Equal(types.SideBuy, receipt.Transaction.Side)
	s.True(receipt.Transaction.Price.Equal(d("50")))
}

func (s *StoreTestSuite) TestApplySell() {
	s.createFundedUser("alice", "1000")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().NoError(err)

	receipt, err := s.store.ApplySell("alice", portfolio.ID, "ACME", d("4"), d("60"))
	s.Require().NoError(err)

	// 500 after the buy, plus 4*60 proceeds.
	s.True(receipt.Balance.Equal(d("740")), "balance %s", receipt.Balance)
	s.Require().True(receipt.Position.IsSome())
	s.True(receipt.Position.Unwrap().Quantity.Equal(d("6")))
	s.True(receipt.Position.Unwrap().CostBasis.Equal(d("300")))
	s.Equal(types.SideSell, receipt.Transaction.Side)
}

func (s *StoreTestSuite) TestApplySellClosesPosition() {
	s.createFundedUser("alice", "1000")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().NoError(err)

	receipt, err := s.store.ApplySell("alice", portfolio.ID, "ACME", d("10"), d("60"))
	s.Require().NoError(err)

	s.True(receipt.Position.IsNone())
	s.True(receipt.Balance.Equal(d("1100")), "balance %s", receipt.Balance)
}

func (s *StoreTestSuite) TestApplyBuyInsufficientFundsLeavesLedgerUntouched() {
	s.createFundedUser("alice", "100")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInsufficientFunds, errors.GetCode(err))

	balance, err := s.store.Balance("alice")
	s.Require().NoError(err)
	s.True(balance.Equal(d("100")), "balance %s", balance)

	position, err := s.store.GetPosition(portfolio.ID, "ACME")
	s.Require().NoError(err)
	s.True(position.IsNone())

	entries, err := s.store.List(portfolio.ID, nil, nil)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *StoreTestSuite) TestApplySellInsufficientSharesLeavesLedgerUntouched() {
	s.createFundedUser("alice", "1000")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().NoError(err)

	_, err = s.store.ApplySell("alice", portfolio.ID, "ACME", d("11"), d("60"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInsufficientShares, errors.GetCode(err))

	balance, err := s.store.Balance("alice")
	s.Require().NoError(err)
	s.True(balance.Equal(d("500")), "balance %s", balance)

	position, err := s.store.GetPosition(portfolio.ID, "ACME")
	s.Require().NoError(err)
	s.Require().True(position.IsSome())
	s.True(position.Unwrap().Quantity.Equal(d("10")))

	entries, err := s.store.List(portfolio.ID, nil, nil)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

// The full scenario: deposit 1000, buy 10 at 50, sell 4 at 60.
func (s *StoreTestSuite) TestBuySellLifecycle() {
	s.createFundedUser("alice", "1000")
	portfolio := s.createPortfolio("alice", "main")

	buy, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().NoError(err)
	s.True(buy.Balance.Equal(d("500")))

	sell, err := s.store.ApplySell("alice", portfolio.ID, "ACME", d("4"), d("60"))
	s.Require().NoError(err)
	s.True(sell.Balance.Equal(d("740")))
	s.Require().True(sell.Position.IsSome())
	s.True(sell.Position.Unwrap().Quantity.Equal(d("6")))
	s.True(sell.Position.Unwrap().CostBasis.Equal(d("300")))

	entries, err := s.store.List(portfolio.ID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(types.SideBuy, entries[0].Side)
	s.Equal(types.SideSell, entries[1].Side)
}
