// Package engine orchestrates trades: one price quote, normalization,
// validation, and the three-way ledger mutation as a single unit.
package engine

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/logger"
	"github.com/papertrade-sim/papertrade/internal/market"
	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// sharePrecision is the number of decimal places share quantities are
// rounded to when a currency amount is converted to shares.
const sharePrecision = 4

// Engine executes trade requests against the ledger using prices from
// the configured source.
type Engine struct {
	store  *ledger.Store
	source market.Source
	logger *logger.Logger

	// locks serializes trades per portfolio so concurrent requests
	// against the same portfolio cannot interleave their
	// read-modify-write steps.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates a trade engine.
func NewEngine(store *ledger.Store, source market.Source, logger *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		source: source,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Execute runs one trade to completion. The price is quoted exactly
// once and that quote is used for normalization, validation, cost,
// proceeds, and the transaction log entry. Any failure before or
// during the ledger mutation leaves the ledger untouched; there are no
// retries and no partial commits.
func (e *Engine) Execute(ctx context.Context, request types.TradeRequest) (ledger.TradeReceipt, error) {
	if err := request.Validate(); err != nil {
		return ledger.TradeReceipt{}, err
	}

	lock := e.portfolioLock(request.PortfolioID)
	lock.Lock()
	defer lock.Unlock()

	portfolio, err := e.store.GetPortfolio(request.PortfolioID)
	if err != nil {
		return ledger.TradeReceipt{}, err
	}

	user, err := e.store.GetUser(portfolio.UserID)
	if err != nil {
		return ledger.TradeReceipt{}, err
	}

	if _, err := e.store.GetTicker(request.Symbol); err != nil {
		return ledger.TradeReceipt{}, err
	}

	// Step 1: quote. A failed quote aborts the trade before any
	// mutation.
	price, err := e.source.CurrentPrice(ctx, request.Symbol)
	if err != nil {
		return ledger.TradeReceipt{}, err
	}

	// Step 2: normalize a currency amount into shares at the quoted
	// price.
	shares, err := normalizeShares(request, price)
	if err != nil {
		return ledger.TradeReceipt{}, err
	}

	// Step 3: validate affordability/holdings before touching the
	// ledger. The same checks hold inside the transaction; this keeps
	// the failure path mutation-free by construction.
	switch request.Side {
	case types.SideBuy:
		cost := shares.Mul(price).Round(sharePrecision)
		if cost.GreaterThan(user.Balance) {
			return ledger.TradeReceipt{}, errors.Newf(errors.ErrCodeInsufficientFunds,
				"insufficient funds: need $%s, have $%s", cost.StringFixed(2), user.Balance.StringFixed(2))
		}
	case types.SideSell:
		position, err := e.store.GetPosition(request.PortfolioID, request.Symbol)
		if err != nil {
			return ledger.TradeReceipt{}, err
		}

		held := decimal.Zero
		if position.IsSome() {
			held = position.Unwrap().Quantity
		}

		if shares.GreaterThan(held) {
			return ledger.TradeReceipt{}, errors.Newf(errors.ErrCodeInsufficientShares,
				"insufficient shares: have %s %s, want to sell %s", held, request.Symbol, shares)
		}
	}

	// Steps 4-5: apply and commit as one database transaction.
	var receipt ledger.TradeReceipt

	switch request.Side {
	case types.SideBuy:
		receipt, err = e.store.ApplyBuy(user.Username, request.PortfolioID, request.Symbol, shares, price)
	case types.SideSell:
		receipt, err = e.store.ApplySell(user.Username, request.PortfolioID, request.Symbol, shares, price)
	}

	if err != nil {
		return ledger.TradeReceipt{}, err
	}

	e.logger.Info("Trade executed",
		zap.String("portfolio", request.PortfolioID),
		zap.String("symbol", request.Symbol),
		zap.String("side", string(request.Side)),
		zap.String("shares", shares.String()),
		zap.String("price", price.String()),
	)

	return receipt, nil
}

// normalizeShares resolves the trade size to shares. Requests given in
// currency units convert at the quoted price.
func normalizeShares(request types.TradeRequest, price decimal.Decimal) (decimal.Decimal, error) {
	if request.Shares.IsSome() {
		return request.Shares.Unwrap(), nil
	}

	if !price.IsPositive() {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidAmount,
			"cannot convert a currency amount at price %s", price)
	}

	shares := request.Amount.Unwrap().Div(price).Round(sharePrecision)
	if !shares.IsPositive() {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidAmount,
			"amount %s is too small to buy any shares at price %s", request.Amount.Unwrap(), price)
	}

	return shares, nil
}

// portfolioLock returns the mutex guarding the given portfolio,
// creating it on first use.
func (e *Engine) portfolioLock(portfolioID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[portfolioID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[portfolioID] = lock
	}

	return lock
}
