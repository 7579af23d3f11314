package models

import "fmt"

// Cents is a USD amount in integer cents. Ledger arithmetic and budget
// comparisons are exact; floats only appear at the display boundary.
type Cents int64

// Dollars returns the amount as a float for display.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// String formats the amount as "$1.20".
func (c Cents) String() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}

// CentsFromDollars converts a dollar amount to cents, rounding half away
// from zero.
func CentsFromDollars(d float64) Cents {
	if d < 0 {
		return Cents(d*100 - 0.5)
	}
	return Cents(d*100 + 0.5)
}
