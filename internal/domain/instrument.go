package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InstrumentConstraints holds the per-symbol trading limits enforced by the
// exchange. Fetched per mirroring operation; treated as read-only.
type InstrumentConstraints struct {
	MinOrderQty    decimal.Decimal // Smallest acceptable order quantity
	MaxOrderQty    decimal.Decimal // Largest acceptable order quantity
	MaxMktOrderQty decimal.Decimal // Market-order quantity cap (<= MaxOrderQty)
	QtyStep        decimal.Decimal // Quantity granularity
	MinNotional    decimal.Decimal // Smallest acceptable order value
}

// Validate checks the exchange-side invariant
// 0 < MinOrderQty <= MaxMktOrderQty <= MaxOrderQty and QtyStep > 0.
func (c InstrumentConstraints) Validate() error {
	if !c.MinOrderQty.IsPositive() {
		return fmt.Errorf("minOrderQty must be positive, got %s", c.MinOrderQty)
	}
	if c.MaxMktOrderQty.LessThan(c.MinOrderQty) {
		return fmt.Errorf("maxMktOrderQty %s is below minOrderQty %s", c.MaxMktOrderQty, c.MinOrderQty)
	}
	if c.MaxOrderQty.LessThan(c.MaxMktOrderQty) {
		return fmt.Errorf("maxOrderQty %s is below maxMktOrderQty %s", c.MaxOrderQty, c.MaxMktOrderQty)
	}
	if !c.QtyStep.IsPositive() {
		return fmt.Errorf("qtyStep must be positive, got %s", c.QtyStep)
	}
	return nil
}
