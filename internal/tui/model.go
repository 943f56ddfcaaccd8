// Package tui is the terminal front-end: a ticker catalog, the
// portfolio's positions with live valuation, and a trade prompt, all
// driven by the same ledger and trade engine the HTTP facade uses.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/engine"
	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/market"
	"github.com/papertrade-sim/papertrade/internal/types"
)

// Application states.
const (
	StateTickerList = iota
	StateQuantityInput
	StatePositions
)

// Model is the main Bubble Tea model for the trading terminal.
type Model struct {
	state       int
	store       *ledger.Store
	engine      *engine.Engine
	source      market.Source
	username    string
	portfolioID string

	tickerList     list.Model
	positionsTable table.Model
	quantityInput  textinput.Model

	tradeSide   types.Side
	tradeSymbol string

	positions []types.Position
	prices    map[string]decimal.Decimal
	balance   decimal.Decimal
	status    string
	err       error
	width     int
	height    int
}

// NewModel creates a Model bound to one user's portfolio.
func NewModel(store *ledger.Store, eng *engine.Engine, source market.Source, username, portfolioID string) Model {
	return Model{
		state:          StateTickerList,
		store:          store,
		engine:         eng,
		source:         source,
		username:       username,
		portfolioID:    portfolioID,
		tickerList:     NewTickerList(),
		positionsTable: NewPositionsTable(),
		quantityInput:  NewQuantityInput(),
		prices:         make(map[string]decimal.Decimal),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTickers(), m.loadPositions())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateQuantityInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		case "tab":
			if m.state != StateQuantityInput {
				return m.toggleView()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tickerList.SetSize(msg.Width, msg.Height-6)
		m.positionsTable.SetWidth(msg.Width)
		m.positionsTable.SetHeight(msg.Height - 8)

		return m, nil

	case TickersLoadedMsg:
		m.tickerList = UpdateTickerItems(m.tickerList, msg.Tickers)

		return m, nil

	case PositionsLoadedMsg:
		m.positions = msg.Positions
		m.prices = msg.Prices
		m.balance = msg.Balance
		m.positionsTable = UpdatePositionRows(m.positionsTable, m.positions, m.prices)

		return m, nil

	case TradeExecutedMsg:
		m.err = nil
		m.status = fmt.Sprintf("%s %s %s @ %s",
			msg.Receipt.Transaction.Side,
			msg.Receipt.Transaction.Quantity,
			msg.Receipt.Transaction.Symbol,
			msg.Receipt.Transaction.Price.StringFixed(2),
		)
		m.state = StatePositions

		return m, m.loadPositions()

	case ErrorMsg:
		m.err = msg.Err

		return m, nil
	}

	switch m.state {
	case StateTickerList:
		return m.updateTickerList(msg)
	case StateQuantityInput:
		return m.updateQuantityInput(msg)
	case StatePositions:
		return m.updatePositions(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == StateQuantityInput {
		m.state = StateTickerList
		m.tradeSymbol = ""
		m.tradeSide = ""
		m.err = nil
		m.quantityInput.Reset()
	}

	return m, nil
}

func (m Model) toggleView() (tea.Model, tea.Cmd) {
	if m.state == StateTickerList {
		m.state = StatePositions

		return m, m.loadPositions()
	}

	m.state = StateTickerList

	return m, m.loadTickers()
}

func (m Model) updateTickerList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "b", "s":
			if item, ok := m.tickerList.SelectedItem().(tickerItem); ok {
				m.tradeSymbol = item.symbol
				m.tradeSide = types.SideBuy

				if msg.String() == "s" {
					m.tradeSide = types.SideSell
				}

				m.state = StateQuantityInput
				m.quantityInput.Reset()
				m.quantityInput.Focus()

				return m, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd
	m.tickerList, cmd = m.tickerList.Update(msg)

	return m, cmd
}

func (m Model) updateQuantityInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		quantity, ok := ParseQuantity(m.quantityInput.Value())
		if !ok {
			m.err = fmt.Errorf("invalid quantity %q", m.quantityInput.Value())

			return m, nil
		}

		m.quantityInput.Blur()

		return m, m.executeTrade(m.tradeSide, m.tradeSymbol, quantity)
	}

	var cmd tea.Cmd
	m.quantityInput, cmd = m.quantityInput.Update(msg)

	return m, cmd
}

func (m Model) updatePositions(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.positionsTable, cmd = m.positionsTable.Update(msg)

	return m, cmd
}

// loadTickers returns a command that fetches the catalog.
func (m Model) loadTickers() tea.Cmd {
	store := m.store

	return func() tea.Msg {
		tickers, err := store.ListTickers()
		if err != nil {
			return ErrorMsg{Err: err}
		}

		return TickersLoadedMsg{Tickers: tickers}
	}
}

// loadPositions returns a command that fetches the portfolio snapshot
// with one quote per held symbol.
func (m Model) loadPositions() tea.Cmd {
	store, source := m.store, m.source
	username, portfolioID := m.username, m.portfolioID

	return func() tea.Msg {
		positions, err := store.ListPositions(portfolioID)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		balance, err := store.Balance(username)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		prices := make(map[string]decimal.Decimal, len(positions))

		for _, position := range positions {
			price, err := source.CurrentPrice(context.Background(), position.Symbol)
			if err != nil {
				continue
			}

			prices[position.Symbol] = price
		}

		return PositionsLoadedMsg{Positions: positions, Prices: prices, Balance: balance}
	}
}

// executeTrade returns a command that runs one trade.
func (m Model) executeTrade(side types.Side, symbol string, quantity decimal.Decimal) tea.Cmd {
	eng, portfolioID := m.engine, m.portfolioID

	return func() tea.Msg {
		receipt, err := eng.Execute(context.Background(), types.TradeRequest{
			PortfolioID: portfolioID,
			Symbol:      symbol,
			Side:        side,
			Shares:      optional.Some(quantity),
		})
		if err != nil {
			return ErrorMsg{Err: err}
		}

		return TradeExecutedMsg{Receipt: receipt}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateTickerList:
		s.WriteString(TitleStyle.Render("Paper Trade - Tickers"))
		s.WriteString("\n\n")
		s.WriteString(m.tickerList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("b: buy | s: sell | tab: positions | q: quit"))

	case StateQuantityInput:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s %s", strings.ToUpper(string(m.tradeSide)), m.tradeSymbol)))
		s.WriteString("\n\n")
		s.WriteString("Enter share quantity:\n\n")
		s.WriteString(m.quantityInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, Esc to cancel"))

	case StatePositions:
		s.WriteString(TitleStyle.Render("Paper Trade - Positions"))
		s.WriteString("\n")
		s.WriteString(StatusStyle.Render(fmt.Sprintf("Balance: $%s", m.balance.StringFixed(2))))
		s.WriteString("\n\n")

		if len(m.positions) == 0 {
			s.WriteString("No open positions.\n")
		} else {
			s.WriteString(m.positionsTable.View())
		}

		if m.status != "" {
			s.WriteString("\n")
			s.WriteString(StatusStyle.Render(m.status))
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("tab: tickers | q: quit"))
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return s.String()
}
