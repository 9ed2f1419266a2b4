// Package money provides fixed-point-safe arithmetic for monetary values.
// Amounts cross the API boundary as float64; every rounding boundary goes
// through decimal so drift cannot compound across lifecycle stages.
package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to two decimal places (cents).
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ToLocal converts a source-currency amount into local currency at the
// given exchange rate, rounded to the cent.
func ToLocal(amount, rate float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(2).Float64()
	return f
}

// Mul multiplies two monetary factors and rounds the product to the cent.
func Mul(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// Sub subtracts b from a, rounded to the cent. The result may be negative.
func Sub(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// Min returns the smaller of two amounts.
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two amounts.
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
