package ledger

import (
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

func (s *StoreTestSuite) TestGetPositionAbsent() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	position, err := s.store.GetPosition(portfolio.ID, "ACME")
	s.Require().NoError(err)
	s.True(position.IsNone())
}

func (s *StoreTestSuite) TestOpenOrIncrease() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	position, err := s.store.OpenOrIncrease(portfolio.ID, "ACME", d("10"), d("500"))
	s.Require().NoError(err)
	s.True(position.Quantity.Equal(d("10")))
	s.True(position.CostBasis.Equal(d("500")))

	// A second buy accumulates quantity and cost basis.
	position, err = s.store.OpenOrIncrease(portfolio.ID, "ACME", d("5"), d("300"))
	s.Require().NoError(err)
	s.True(position.Quantity.Equal(d("15")))
	s.True(position.CostBasis.Equal(d("800")))

	s.True(position.AveragePrice().Equal(d("53.3333333333333333")))
}

func (s *StoreTestSuite) TestOpenOrIncreaseRejectsNonPositive() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.OpenOrIncrease(portfolio.ID, "ACME", d("0"), d("500"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidAmount, errors.GetCode(err))

	_, err = s.store.OpenOrIncrease(portfolio.ID, "ACME", d("10"), d("-1"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidAmount, errors.GetCode(err))
}

func (s *StoreTestSuite) TestDecreaseReducesCostBasisProportionally() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.OpenOrIncrease(portfolio.ID, "ACME", d("10"), d("1000"))
	s.Require().NoError(err)

	// Selling half the shares removes half the basis, regardless of the
	// sale price.
	position, err := s.store.DecreaseOrClose(portfolio.ID, "ACME", d("5"))
	s.Require().NoError(err)
	s.Require().True(position.IsSome())
	s.True(position.Unwrap().Quantity.Equal(d("5")))
	s.True(position.Unwrap().CostBasis.Equal(d("500")))
}

func (s *StoreTestSuite) TestDecreaseToZeroDeletesPosition() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.OpenOrIncrease(portfolio.ID, "ACME", d("10"), d("500"))
	s.Require().NoError(err)

	position, err := s.store.DecreaseOrClose(portfolio.ID, "ACME", d("10"))
	s.Require().NoError(err)
	s.True(position.IsNone())

	stored, err := s.store.GetPosition(portfolio.ID, "ACME")
	s.Require().NoError(err)
	s.True(stored.IsNone())

	positions, err := s.store.ListPositions(portfolio.ID)
	s.Require().NoError(err)
	s.Empty(positions)
}

func (s *StoreTestSuite) TestDecreaseInsufficientShares() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.OpenOrIncrease(portfolio.ID, "ACME", d("10"), d("500"))
	s.Require().NoError(err)

	_, err = s.store.DecreaseOrClose(portfolio.ID, "ACME", d("10.0001"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInsufficientShares, errors.GetCode(err))

	// Selling a symbol that was never bought fails the same way.
	_, err = s.store.DecreaseOrClose(portfolio.ID, "GLOB", d("1"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInsufficientShares, errors.GetCode(err))
}

func (s *StoreTestSuite) TestFractionalShares() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	position, err := s.store.OpenOrIncrease(portfolio.ID, "ACME", d("0.5"), d("25"))
	s.Require().NoError(err)
	s.True(position.Quantity.Equal(d("0.5")))

	result, err := s.store.DecreaseOrClose(portfolio.ID, "ACME", d("0.25"))
	s.Require().NoError(err)
	s.Require().True(result.IsSome())
	s.True(result.Unwrap().Quantity.Equal(d("0.25")))
	s.True(result.Unwrap().CostBasis.Equal(d("12.5")))
}

func (s *StoreTestSuite) TestListPositionsSortedBySymbol() {
	s.createFundedUser("alice", "0")
	portfolio := s.createPortfolio("alice", "main")

	_, err := s.store.OpenOrIncrease(portfolio.ID, "GLOB", d("1"), d("10"))
	s.Require().NoError(err)

	_, err = s.store.OpenOrIncrease(portfolio.ID, "ACME", d("1"), d("10"))
	s.Require().NoError(err)

	positions, err := s.store.ListPositions(portfolio.ID)
	s.Require().NoError(err)
	s.Require().Len(positions, 2)
	s.Equal("ACME", positions[0].Symbol)
	s.Equal("GLOB", positions[1].Symbol)
}
