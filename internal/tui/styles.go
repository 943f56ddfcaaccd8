package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	// StatusStyle for the balance line.
	StatusStyle = lipgloss.NewStyle().Faint(true)
)

// FormatProfitLoss renders a signed amount with a direction indicator.
func FormatProfitLoss(amount decimal.Decimal) string {
	formatted := amount.StringFixed(2)

	switch {
	case amount.IsPositive():
		return formatted + " ▲"
	case amount.IsNegative():
		return formatted + " ▼"
	default:
		return formatted
	}
}
