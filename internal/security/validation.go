// Package security provides validation of user-typed console input.
package security

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "trading-console/internal/errors"
)

// Symbol pattern: uppercase letters, numbers, and limited special chars
var symbolPattern = regexp.MustCompile(`^[A-Z0-9&-]{1,20}$`)

// MaxQuantity caps a single order (1 crore units).
const MaxQuantity = 10000000

// InputValidator provides input validation functionality.
type InputValidator struct {
	maxQuantity int
}

// NewInputValidator creates a new input validator. A non-positive
// maxQuantity falls back to MaxQuantity.
func NewInputValidator(maxQuantity int) *InputValidator {
	if maxQuantity <= 0 {
		maxQuantity = MaxQuantity
	}
	return &InputValidator{maxQuantity: maxQuantity}
}

// ParseSymbol normalizes and validates a stock symbol typed at the prompt.
func (v *InputValidator) ParseSymbol(input string) (string, error) {
	symbol := strings.TrimSpace(strings.ToUpper(input))

	if symbol == "" {
		return "", symbolError(symbol, "symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return "", symbolError(symbol, "symbol too long (max 20 characters)")
	}
	if !symbolPattern.MatchString(symbol) {
		return "", symbolError(symbol, "invalid symbol format")
	}

	return symbol, nil
}

// ParseQuantity parses and validates a trade quantity typed at the prompt.
func (v *InputValidator) ParseQuantity(input string) (int, error) {
	input = strings.TrimSpace(input)
	qty, err := strconv.Atoi(input)
	if err != nil {
		return 0, quantityError(input, "quantity must be a whole number")
	}
	if qty <= 0 {
		return 0, quantityError(input, "quantity must be positive")
	}
	if qty > v.maxQuantity {
		return 0, quantityError(input, "quantity exceeds maximum allowed")
	}
	return qty, nil
}

func symbolError(value, message string) error {
	return &apperrors.ValidationError{Field: "symbol", Value: value, Message: message, Err: apperrors.ErrInvalidSymbol}
}

func quantityError(value, message string) error {
	return &apperrors.ValidationError{Field: "quantity", Value: value, Message: message, Err: apperrors.ErrInvalidQuantity}
}
