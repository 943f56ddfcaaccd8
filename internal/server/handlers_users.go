package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/types"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func newUserResponse(user types.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)

		return
	}

	user, err := s.store.CreateUser(req.Username, req.Password, req.Email)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)

		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(mux.Vars(r)["username"]); err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	balance, err := s.store.Balance(username)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, balanceResponse{Username: username, Balance: balance})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleBalanceChange(w, r, s.store.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleBalanceChange(w, r, s.store.Withdraw)
}

func (s *Server) handleBalanceChange(w http.ResponseWriter, r *http.Request,
	apply func(string, decimal.Decimal) (decimal.Decimal, error),
) {
	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)

		return
	}

	username := mux.Vars(r)["username"]

	balance, err := apply(username, req.Amount)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, balanceResponse{Username: username, Balance: balance})
}
