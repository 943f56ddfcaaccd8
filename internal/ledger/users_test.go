package ledger

import (
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

func (s *StoreTestSuite) TestCreateUser() {
	user, err := s.store.CreateUser("alice", "secret", "alice@example.com")
	s.Require().NoError(err)

	s.NotEmpty(user.ID)
	s.Equal("alice", user.Username)
	s.Equal("alice@example.com", user.Email)
	s.True(user.Balance.IsZero())
	s.NotEqual("secret", user.PasswordHash)
}

func (s *StoreTestSuite) TestCreateUserDuplicate() {
	_, err := s.store.CreateUser("alice", "secret", "")
	s.Require().NoError(err)

	_, err = s.store.CreateUser("alice", "other", "")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeDuplicateUsername, errors.GetCode(err))
}

func (s *StoreTestSuite) TestCreateUserMissingFields() {
	_, err := s.store.CreateUser("", "secret", "")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	_, err = s.store.CreateUser("alice", "", "")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (s *StoreTestSuite) TestAuthenticate() {
	s.createFundedUser("alice", "0")

	user, err := s.store.Authenticate("alice", "secret")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *StoreTestSuite) TestAuthenticateWrongPassword() {
	s.createFundedUser("alice", "0")

	_, err := s.store.Authenticate("alice", "wrong")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidCredentials, errors.GetCode(err))
}

func (s *StoreTestSuite) TestAuthenticateUnknownUser() {
	// The same code as a wrong password so login failures do not reveal
	// which usernames exist.
	_, err := s.store.Authenticate("nobody", "secret")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidCredentials, errors.GetCode(err))
}

func (s *StoreTestSuite) TestDepositAndWithdraw() {
	s.createFundedUser("alice", "0")

	balance, err := s.store.Deposit("alice", d("1000"))
	s.Require().NoError(err)
	s.True(balance.Equal(d("1000")), "balance %s", balance)

	balance, err = s.store.Withdraw("alice", d("250.5"))
	s.Require().NoError(err)
	s.True(balance.Equal(d("749.5")), "balance %s", balance)

	balance, err = s.store.Balance("alice")
	s.Require().NoError(err)
	s.True(balance.Equal(d("749.5")), "balance %s", balance)
}

func (s *StoreTestSuite) TestDepositWithdrawRoundTripIsExact() {
	s.createFundedUser("alice", "0")

	_, err := s.store.Deposit("alice", d("0.1"))
	s.Require().NoError(err)

	_, err = s.store.Deposit("alice", d("0.2"))
	s.Require().NoError(err)

	balance, err := s.store.Withdraw("alice", d("0.3"))
	s.Require().NoError(err)
	s.True(balance.IsZero(), "balance %s", balance)
}

func (s *StoreTestSuite) TestWithdrawInsufficientFunds() {
	s.createFundedUser("alice", "100")

	_, err := s.store.Withdraw("alice", d("100.01"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInsufficientFunds, errors.GetCode(err))
	s.Contains(err.Error(), "need $100.01, have $100.00")

	// The failed withdrawal must not change the balance.
	balance, err := s.store.Balance("alice")
	s.Require().NoError(err)
	s.True(balance.Equal(d("100")), "balance %s", balance)
}

func (s *StoreTestSuite) TestDepositRejectsNonPositive() {
	s.createFundedUser("alice", "0")

	_, err := s.store.Deposit("alice", d("0"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidAmount, errors.GetCode(err))

	_, err = s.store.Deposit("alice", d("-5"))
	s.Require().Error(err)
	s.Equal(errors.ErrCodeInvalidAmount, errors.GetCode(err))
}

func (s *StoreTestSuite) TestBalanceUnknownUser() {
	_, err := s.store.Balance("nobody")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownUser, errors.GetCode(err))
}

func (s *StoreTestSuite) TestDeleteUserCascades() {
	user := s.createFundedUser("alice", "1000")
	portfolio := s.createPortfolio("alice", "main")
	s.createTicker("ACME", "50")

	_, err := s.store.ApplyBuy("alice", portfolio.ID, "ACME", d("10"), d("50"))
	s.Require().NoError(err)

	s.Require().NoError(s.store.DeleteUser("alice"))

	_, err = s.store.GetUser(user.ID)
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownUser, errors.GetCode(err))

	_, err = s.store.GetPortfolio(portfolio.ID)
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownPortfolio, errors.GetCode(err))

	positions, err := s.store.ListPositions(portfolio.ID)
	s.Require().NoError(err)
	s.Empty(positions)

	// The transaction log survives as an audit record.
	transactions, err := s.store.List(portfolio.ID, nil, nil)
	s.Require().NoError(err)
	s.Len(transactions, 1)
}

func (s *StoreTestSuite) TestDeleteUserUnknown() {
	err := s.store.DeleteUser("nobody")
	s.Require().Error(err)
	s.Equal(errors.ErrCodeUnknownUser, errors.GetCode(err))
}
