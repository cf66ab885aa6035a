package mirror

import (
	"errors"

	"github.com/shopspring/decimal"

	"counterTradeBot/internal/domain"
)

// Sizing failures. Both indicate inputs the arithmetic cannot proceed on;
// the orchestrator treats them as recovered, per-event failures.
var (
	ErrZeroEquity = errors.New("primary account equity is zero")
	ErrZeroPrice  = errors.New("reference price is zero")
)

// Size computes the counter-order quantity.
//
// The counter account risks the same fraction of its equity as the primary
// account risked of its own: fraction = originalNotional / primaryEquity,
// counterNotional = counterEquity * fraction, rawQty = counterNotional /
// refPrice. The raw quantity is then fitted to the instrument: rounded to the
// nearest quantity step (half away from zero), clamped into [MinOrderQty,
// MaxOrderQty], capped at MaxMktOrderQty for market orders, and repaired
// upward if its notional falls below MinNotional. The repair rounds UP to the
// step above the threshold: undershooting the minimum notional is an
// exchange rejection, so the repair must never round down. A repaired
// quantity is re-clamped into [MinOrderQty, MaxOrderQty] since the repair can
// overshoot the maximum on extreme ratios.
//
// A result below MinOrderQty (near-zero counter equity) is returned as-is;
// the exchange is the final arbiter and rejects it with an insufficient-size
// error, which the orchestrator handles as a non-fatal outcome.
func Size(primaryEquity, counterEquity, originalNotional, refPrice decimal.Decimal, c domain.InstrumentConstraints, isMarket bool) (decimal.Decimal, error) {
	if primaryEquity.IsZero() {
		return decimal.Zero, ErrZeroEquity
	}
	if refPrice.IsZero() {
		return decimal.Zero, ErrZeroPrice
	}

	fraction := originalNotional.Div(primaryEquity)
	counterNotional := counterEquity.Mul(fraction)
	rawQty := counterNotional.Div(refPrice)

	qty := roundToStep(rawQty, c.QtyStep)
	qty = clamp(qty, c.MinOrderQty, c.MaxOrderQty)
	if isMarket && qty.GreaterThan(c.MaxMktOrderQty) {
		qty = c.MaxMktOrderQty
	}

	if qty.Mul(refPrice).LessThan(c.MinNotional) {
		qty = c.MinNotional.Div(refPrice).Div(c.QtyStep).Ceil().Mul(c.QtyStep)
		qty = clamp(qty, c.MinOrderQty, c.MaxOrderQty)
	}

	return qty, nil
}

// FormatQuantity serializes a quantity with exactly the number of fractional
// digits implied by the instrument's quantity step (step 0.001 -> 3 places).
// Exchange-info step strings carry trailing zeros ("0.00100000"); the scale
// comes from the trimmed form, not the literal exponent, so those do not
// widen the output.
func FormatQuantity(qty, step decimal.Decimal) string {
	step, _ = decimal.NewFromString(step.String()) // String trims trailing zeros
	places := -step.Exponent()
	if places < 0 {
		places = 0
	}
	return qty.StringFixed(places)
}

// roundToStep rounds a quantity to the nearest multiple of step,
// half away from zero.
func roundToStep(qty, step decimal.Decimal) decimal.Decimal {
	return qty.Div(step).Round(0).Mul(step)
}

func clamp(qty, min, max decimal.Decimal) decimal.Decimal {
	if qty.LessThan(min) {
		return min
	}
	if qty.GreaterThan(max) {
		return max
	}
	return qty
}
