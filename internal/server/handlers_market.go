package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// defaultHistoryWindow is how far back the history endpoint reaches
// when no start is given.
const defaultHistoryWindow = 30 * 24 * time.Hour

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var request types.TradeRequest
	if err := decodeBody(r, &request); err != nil {
		s.respondError(w, err)

		return
	}

	receipt, err := s.engine.Execute(r.Context(), request)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleListTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := s.store.ListTickers()
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, tickers)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	if _, err := s.store.GetTicker(symbol); err != nil {
		s.respondError(w, err)

		return
	}

	start := time.Now().UTC().Add(-defaultHistoryWindow)

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.respondError(w, errors.Newf(errors.ErrCodeInvalidParameter, "invalid start date %q", raw))

			return
		}

		start = parsed
	}

	points, err := s.source.History(r.Context(), symbol, start)
	if err != nil {
		s.respondError(w, err)

		return
	}

	s.respondJSON(w, http.StatusOK, points)
}
