// Package server exposes the ledger, trade engine, and valuation over
// a JSON REST API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/papertrade-sim/papertrade/internal/engine"
	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/logger"
	"github.com/papertrade-sim/papertrade/internal/market"
)

// Server wires the HTTP routes to the ledger and trade engine.
type Server struct {
	store  *ledger.Store
	engine *engine.Engine
	source market.Source
	logger *logger.Logger
	router *mux.Router

	httpServer *http.Server
}

// NewServer creates the server and registers all routes.
func NewServer(store *ledger.Store, eng *engine.Engine, source market.Source, logger *logger.Logger) *Server {
	s := &Server{
		store:  store,
		engine: eng,
		source: source,
		logger: logger,
		router: mux.NewRouter(),
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	s.router.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{username}", s.handleDeleteUser).Methods(http.MethodDelete)
	s.router.HandleFunc("/users/{username}/balance", s.handleBalance).Methods(http.MethodGet)
	s.router.HandleFunc("/users/{username}/deposit", s.handleDeposit).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{username}/withdraw", s.handleWithdraw).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{username}/portfolios", s.handleListPortfolios).Methods(http.MethodGet)

	s.router.HandleFunc("/portfolios", s.handleCreatePortfolio).Methods(http.MethodPost)
	s.router.HandleFunc("/portfolios/{id}", s.handleDeletePortfolio).Methods(http.MethodDelete)
	s.router.HandleFunc("/portfolios/{id}/positions", s.handleListPositions).Methods(http.MethodGet)
	s.router.HandleFunc("/portfolios/{id}/summary", s.handleSummary).Methods(http.MethodGet)
	s.router.HandleFunc("/portfolios/{id}/allocation", s.handleAllocation).Methods(http.MethodGet)
	s.router.HandleFunc("/portfolios/{id}/transactions", s.handleListTransactions).Methods(http.MethodGet)

	s.router.HandleFunc("/trades", s.handleTrade).Methods(http.MethodPost)

	s.router.HandleFunc("/tickers", s.handleListTickers).Methods(http.MethodGet)
	s.router.HandleFunc("/tickers/{symbol}/history", s.handleHistory).Methods(http.MethodGet)
}

// Router returns the underlying router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving on addr and blocks until the listener fails or
// the server is shut down.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}
