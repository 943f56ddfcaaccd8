package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered account holder. Balance is the simulated cash
// balance and is only ever mutated through the account ledger.
type User struct {
	ID           string          `yaml:"id" json:"id"`
	Username     string          `yaml:"username" json:"username" validate:"required"`
	PasswordHash string          `yaml:"-" json:"-"`
	Email        string          `yaml:"email" json:"email"`
	Balance      decimal.Decimal `yaml:"balance" json:"balance"`
	CreatedAt    time.Time       `yaml:"created_at" json:"created_at"`
}

// Portfolio groups positions under a user. Name is unique per user.
type Portfolio struct {
	ID        string    `yaml:"id" json:"id"`
	UserID    string    `yaml:"user_id" json:"user_id"`
	Name      string    `yaml:"name" json:"name" validate:"required"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}
