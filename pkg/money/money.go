// Package money holds currency amount helpers built on shopspring/decimal.
//
// Amounts are decimals end to end so that sums and fractions computed by the
// pattern injectors are exact rather than accurate to a floating epsilon.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	dErrors "amlgen/pkg/domain-errors"
)

// Places is the number of decimal places sampled amounts are rounded to.
const Places = 2

// Band is an inclusive amount range sampled uniformly.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// NewBand builds a band from plain numbers, for configuration constants.
func NewBand(minAmount, maxAmount float64) Band {
	return Band{Min: decimal.NewFromFloat(minAmount), Max: decimal.NewFromFloat(maxAmount)}
}

// Validate rejects empty, inverted or non-positive bands.
func (b Band) Validate() error {
	if !b.Min.IsPositive() {
		return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("band minimum must be positive, got %s", b.Min))
	}
	if b.Max.LessThan(b.Min) {
		return dErrors.New(dErrors.CodeInvalidConfig, fmt.Sprintf("band maximum %s is below minimum %s", b.Max, b.Min))
	}
	return nil
}

// At maps a unit draw u in [0,1) onto the band, rounded to two places.
func (b Band) At(u float64) decimal.Decimal {
	span := b.Max.Sub(b.Min)
	return b.Min.Add(span.Mul(decimal.NewFromFloat(u))).Round(Places)
}

// Contains reports whether amount lies inside the band.
func (b Band) Contains(amount decimal.Decimal) bool {
	return !amount.LessThan(b.Min) && !amount.GreaterThan(b.Max)
}

// StrictlyBelow reports whether every amount in the band is under threshold.
func (b Band) StrictlyBelow(threshold decimal.Decimal) bool {
	return b.Max.LessThan(threshold)
}

func (b Band) String() string {
	return fmt.Sprintf("%s-%s", b.Min, b.Max)
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FractionOf returns round(whole × fraction, 2).
func FractionOf(whole int64, fraction decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(whole).Mul(fraction).Round(Places)
}

// Format renders amount with at least two decimal places and without
// dropping significant digits, so exact products such as a mule's forward
// survive serialization unchanged.
func Format(amount decimal.Decimal) string {
	places := int32(Places)
	s := amount.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		places = max(places, int32(len(s)-i-1))
	}
	return amount.StringFixed(places)
}

// Parse reads an amount written by Format.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid amount %q", s))
	}
	return d, nil
}
