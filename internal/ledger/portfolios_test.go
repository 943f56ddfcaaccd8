package ledger

import (
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

func (s *StoreTestSuite) TestCreatePortfolio() {
	user := s.createFundedUser("alice", "0")

	portfolio := s.createPortfolio("alice", "main")

	s.NotEmpty(portfolio.ID)
	s.Equal(user.ID, portfolio.UserID)
	s.Equal("main", portfolio.Name)
}

func (s *StoreTestSuite) TestCreatePortfolioDuplicateName() {
	s.createFundedUser("alice", "0")
	s.createPortfolio("alice", "main")

	_, err := s.store.CreatePortfolio("alice", "main")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeDuplicatePortfolioName, errors.GetCode(err))
}

func (s *StoreTestSuite) TestCreatePortfolioSameNameDifferentUsers() {
	s.createFundedUser("alice", "0")
	s.createFundedUser("bob", "0")

	s.createPortfolio("alice", "main")
	s.createPortfolio("bob", "main")
}

func (s *StoreTestSuite) TestCreatePortfolioUnknownUser() {
	_, err := s.store.CreatePortfolio("nobody", "main")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownUser, errors.GetCode(err))
}

func (s *StoreTestSuite) TestListPortfolios() {
	s.createFundedUser("alice", "0")
	s.createPortfolio("alice", "main")
	s.createPortfolio("alice", "retirement")

	portfolios, err := s.store.ListPortfolios("alice")
	s.Require().NoError(err)
	s.Require().Len(portfolios, 2)
	s.Equal("main", portfolios[0].Name)
	s.Equal("retirement", portfolios[1].Name)
}

func (s *StoreTestSuite) TestDeletePortfolioCascadesPositions() {
	s.createFundedUser("alice", "1000")
	portfolio := s.createPortfolio("alice", "main")
	s.createTicker("ACME", "50")

	_, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeletePortfolio(portfolio.ID))

	_, err = s.store.GetPortfolio(portfolio.ID)
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownPortfolio, errors.GetCode(err))

	positions, err := s.store.ListPositions(portfolio.ID)
	s.Require().NoError(err)
	s.Empty(positions)
}

func (s *StoreTestSuite) TestDeletePortfolioUnknown() {
	err := s.store.DeletePortfolio("missing")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownPortfolio, errors.GetCode(err))
}
