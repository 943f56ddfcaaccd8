package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// TradeRequest is one buy or sell intent against a portfolio. The size
// is given either in shares or in currency; a currency amount is
// converted to shares at the quoted price by the trade engine.
type TradeRequest struct {
	PortfolioID string `yaml:"portfolio_id" json:"portfolio_id" validate:"required"`
	Symbol      string `yaml:"symbol" json:"symbol" validate:"required"`
	Side        Side   `yaml:"side" json:"side" validate:"required,oneof=buy sell"`
	// Shares is the trade size in shares. Exactly one of Shares and
	// Amount must be set.
	Shares optional.Option[decimal.Decimal] `yaml:"shares" json:"shares"`
	// Amount is the trade size in currency units.
	Amount optional.Option[decimal.Decimal] `yaml:"amount" json:"amount"`
}

// Validate validates the TradeRequest struct.
func (r *TradeRequest) Validate() error {
	validate := validator.New()

	if err := validate.Struct(r); err != nil {
		if !r.Side.Valid() {
			return errors.Newf(errors.ErrCodeInvalidAction, "action must be %q or %q, got %q", SideBuy, SideSell, r.Side)
		}

		return errors.Wrap(errors.ErrCodeInvalidTradeRequest, "invalid trade request", err)
	}

	if r.Shares.IsSome() == r.Amount.IsSome() {
		return errors.New(errors.ErrCodeInvalidTradeRequest, "exactly one of shares and amount must be set")
	}

	if r.Shares.IsSome() {
		if size := r.Shares.Unwrap(); !size.IsPositive() {
			return errors.Newf(errors.ErrCodeInvalidAmount, "share quantity must be positive, got %s", size)
		}
	}

	if r.Amount.IsSome() {
		if amount := r.Amount.Unwrap(); !amount.IsPositive() {
			return errors.Newf(errors.ErrCodeInvalidAmount, "currency amount must be positive, got %s", amount)
		}
	}

	return nil
}
