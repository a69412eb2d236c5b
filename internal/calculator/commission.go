// Package calculator contains the pure money math for the platform's
// commission split. No storage or network access.
package calculator

import (
	"errors"
	"math"
)

// DefaultRate is the platform commission rate applied when none is configured.
const DefaultRate = 0.05

// ErrInvalidAmount is returned for negative gross amounts.
var ErrInvalidAmount = errors.New("amount must be non-negative")

// Split computes the platform commission and the organizer's net amount for
// a gross payment. Commission is rounded to the smallest currency unit
// (cents); the net amount is whatever remains, so commission + net always
// equals the gross amount.
func Split(amount, rate float64) (commission, net float64, err error) {
	if amount < 0 {
		return 0, 0, ErrInvalidAmount
	}
	commission = roundCents(amount * rate)
	net = amount - commission
	return commission, net, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
