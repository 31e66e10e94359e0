// Package domain defines the core data structures of the trading pipeline.
package domain

import "fmt"

// Pair traded asset and the currency it is priced in.
type Pair struct {
	// Base traded asset symbol.
	Base string
	// Quote settlement currency symbol.
	Quote string
}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.Base, p.Quote)
}

// Symbol returns the concatenated exchange symbol.
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.Base, p.Quote)
}
