package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"trading-console/internal/broker"
	apperrors "trading-console/internal/errors"
	"trading-console/internal/logging"
	"trading-console/internal/models"
	"trading-console/internal/security"
)

// MenuChoice is a numbered entry of the main menu.
type MenuChoice int

// Menu choices, in display order.
const (
	ChoiceViewMarket MenuChoice = iota + 1
	ChoiceBuy
	ChoiceSell
	ChoiceViewPortfolio
	ChoiceViewHistory
	ChoiceExit
)

var menuChoices = []MenuChoice{
	ChoiceViewMarket,
	ChoiceBuy,
	ChoiceSell,
	ChoiceViewPortfolio,
	ChoiceViewHistory,
	ChoiceExit,
}

func (c MenuChoice) String() string {
	switch c {
	case ChoiceViewMarket:
		return "View Market"
	case ChoiceBuy:
		return "Buy Stock"
	case ChoiceSell:
		return "Sell Stock"
	case ChoiceViewPortfolio:
		return "View Portfolio"
	case ChoiceViewHistory:
		return "View Transaction History"
	case ChoiceExit:
		return "Exit"
	default:
		return fmt.Sprintf("MenuChoice(%d)", int(c))
	}
}

// parseChoice maps a typed line to a menu choice.
func parseChoice(input string) (MenuChoice, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, false
	}
	c := MenuChoice(n)
	if c < ChoiceViewMarket || c > ChoiceExit {
		return 0, false
	}
	return c, true
}

// errInputClosed ends the session when the input stream runs out.
var errInputClosed = errors.New("input closed")

type menuAction func(ctx context.Context) error

type inputLine struct {
	text string
	err  error
}

// Session runs the interactive menu loop against a broker.
type Session struct {
	broker    broker.Broker
	validator *security.InputValidator
	out       *Output
	report    *Report
	logger    zerolog.Logger
	actions   map[MenuChoice]menuAction

	in    io.Reader
	lines chan inputLine
	done  chan struct{}
}

// SessionConfig holds the dependencies of a session.
type SessionConfig struct {
	Broker    broker.Broker
	In        io.Reader
	Out       *Output
	Logger    zerolog.Logger
	Validator *security.InputValidator
}

// NewSession creates a session. Run starts it.
func NewSession(cfg SessionConfig) *Session {
	validator := cfg.Validator
	if validator == nil {
		validator = security.NewInputValidator(security.MaxQuantity)
	}
	s := &Session{
		broker:    cfg.Broker,
		validator: validator,
		out:       cfg.Out,
		report:    NewReport(cfg.Out),
		logger:    logging.WithOperation(cfg.Logger, "session"),
		in:        cfg.In,
	}
	s.actions = map[MenuChoice]menuAction{
		ChoiceViewMarket:    s.viewMarket,
		ChoiceBuy:           func(ctx context.Context) error { return s.trade(ctx, models.OrderSideBuy) },
		ChoiceSell:          func(ctx context.Context) error { return s.trade(ctx, models.OrderSideSell) },
		ChoiceViewPortfolio: s.viewPortfolio,
		ChoiceViewHistory:   s.viewHistory,
	}
	return s
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Errors from individual actions are printed and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	s.startReader()
	defer close(s.done)

	s.logger.Info().Msg("Session started")
	s.out.Banner("STOCK TRADING PLATFORM")

	for {
		s.printMenu()
		line, err := s.readLine(ctx, "Choose option: ")
		if err != nil {
			return s.finish(err)
		}

		choice, ok := parseChoice(line)
		if !ok {
			s.out.Error("Invalid option. Try again.")
			continue
		}
		if choice == ChoiceExit {
			return s.finish(nil)
		}

		if err := s.actions[choice](ctx); err != nil {
			if errors.Is(err, errInputClosed) || errors.Is(err, context.Canceled) {
				return s.finish(err)
			}
			s.reportError(err)
		}
	}
}

func (s *Session) finish(err error) error {
	if err != nil && !errors.Is(err, errInputClosed) && !errors.Is(err, context.Canceled) {
		return err
	}
	s.out.Println()
	s.out.Info("Exiting platform. Goodbye!")
	s.logger.Info().Msg("Session ended")
	return nil
}

func (s *Session) printMenu() {
	s.out.Println()
	for _, c := range menuChoices {
		s.out.Printf("%d. %s\n", int(c), c)
	}
}

// startReader feeds input lines through a channel so a blocked read does
// not keep Run from observing cancellation.
func (s *Session) startReader() {
	s.lines = make(chan inputLine)
	s.done = make(chan struct{})
	go func() {
		defer close(s.lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case s.lines <- inputLine{text: scanner.Text()}:
			case <-s.done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case s.lines <- inputLine{err: err}:
			case <-s.done:
			}
		}
	}()
}

func (s *Session) readLine(ctx context.Context, prompt string) (string, error) {
	s.out.Print("%s", prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", errInputClosed
		}
		if line.err != nil {
			return "", fmt.Errorf("reading input: %w", line.err)
		}
		return line.text, nil
	}
}

func (s *Session) viewMarket(ctx context.Context) error {
	instruments, err := s.broker.GetInstruments(ctx)
	if err != nil {
		return err
	}
	s.report.Market(instruments)
	return nil
}

func (s *Session) trade(ctx context.Context, side models.OrderSide) error {
	raw, err := s.readLine(ctx, fmt.Sprintf("Enter stock symbol to %s: ", strings.ToLower(string(side))))
	if err != nil {
		return err
	}
	symbol, err := s.validator.ParseSymbol(raw)
	if err != nil {
		return err
	}
	quote, err := s.broker.GetQuote(ctx, symbol)
	if err != nil {
		return err
	}

	raw, err = s.readLine(ctx, "Enter quantity: ")
	if err != nil {
		return err
	}
	qty, err := s.validator.ParseQuantity(raw)
	if err != nil {
		return err
	}

	result, err := s.broker.PlaceOrder(ctx, &models.Order{Symbol: quote.Symbol, Side: side, Quantity: qty})
	if err != nil {
		return err
	}

	if side == models.OrderSideBuy {
		s.out.Success("Successfully bought! %s", formatTransaction(result.Transaction))
	} else {
		s.out.Success("Sell operation completed. %s", formatTransaction(result.Transaction))
	}
	return nil
}

func (s *Session) viewPortfolio(ctx context.Context) error {
	v, err := s.broker.GetValuation(ctx)
	s.report.Portfolio(v)
	return err
}

func (s *Session) viewHistory(ctx context.Context) error {
	history, err := s.broker.GetHistory(ctx)
	if err != nil {
		return err
	}
	s.report.History(history)
	return nil
}

// reportError prints a recoverable action error in user terms.
func (s *Session) reportError(err error) {
	s.logger.Debug().Err(err).Msg("Action failed")

	var validationErr *apperrors.ValidationError
	var orderErr *apperrors.OrderError
	var delistedErr *apperrors.DelistedError

	switch {
	case errors.As(err, &validationErr):
		s.out.Error("Invalid %s: %s.", validationErr.Field, validationErr.Message)
	case errors.Is(err, apperrors.ErrSymbolNotFound):
		s.out.Error("Stock not found.")
	case errors.Is(err, apperrors.ErrInsufficientHoldings) && errors.As(err, &orderErr):
		s.out.Error("Not enough shares to sell (%s).", orderErr.Reason)
	case errors.As(err, &delistedErr):
		s.out.Error("Held symbols missing from market: %s", strings.Join(delistedErr.Symbols, ", "))
	default:
		s.out.Error("Error: %v", err)
	}
}
