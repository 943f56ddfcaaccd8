package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/internal/valuation"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// defaultAllocationSlices is how many named wedges the allocation
// endpoint returns before folding the rest into one aggregate.
const defaultAllocationSlices = 5

type createPortfolioRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)

		return
	}

	portfolio, err := s.store.CreatePortfolio(req.Username, req.Name)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusCreated, portfolio)
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.store.ListPortfolios(mux.Vars(r)["username"])
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, portfolios)
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePortfolio(mux.Vars(r)["id"]); err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.listPositions(r)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, positions)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	positions, err := s.listPositions(r)
	if err != nil {
		s.respondError(w, err)

		return
	}

	// Positions without a reachable quote are valued at zero rather
	// than failing the whole summary.
	prices := make(map[string]decimal.Decimal, len(positions))

	for _, position := range positions {
		price, err := s.source.CurrentPrice(r.Context(), position.Symbol)
		if err != nil {
			continue
		}

		prices[position.Symbol] = price
	}

	s.respondJSON(w, http.StatusOK, valuation.Summarize(positions, prices))
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	positions, err := s.listPositions(r)
	if err != nil {
		s.respondError(w, err)

		return
	}

	top := defaultAllocationSlices

	if raw := r.URL.Query().Get("top"); raw != "" {
		top, err = strconv.Atoi(raw)
		if err != nil || top < 1 {
			s.respondError(w, errors.Newf(errors.ErrCodeInvalidParameter, "invalid top %q", raw))

			return
		}
	}

	s.respondJSON(w, http.StatusOK, valuation.Allocate(positions, top))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	portfolioID := mux.Vars(r)["id"]

	if _, err := s.store.GetPortfolio(portfolioID); err != nil {
		s.respondError(w, err)

		return
	}

	from, err := parseTimeParam(r, "from")
	if err != nil {
		s.respondError(w, err)

		return
	}

	to, err := parseTimeParam(r, "to")
	if err != nil {
		s.respondError(w, err)

		return
	}

	transactions, err := s.store.List(portfolioID, from, to)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) listPositions(r *http.Request) ([]types.Position, error) {
	portfolioID := mux.Vars(r)["id"]

	if _, err := s.store.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}

	return s.store.ListPositions(portfolioID)
}

// parseTimeParam reads an optional RFC 3339 timestamp or bare date
// query parameter. Bare dates are taken as midnight UTC.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}

	return nil, errors.Newf(errors.ErrCodeInvalidParameter, "invalid %s timestamp %q", name, raw)
}
