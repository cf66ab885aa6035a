package mirror

import "counterTradeBot/internal/domain"

// Transform derives the full counter-order parameter set from an original
// order event and a sized, formatted quantity. Stateless and deterministic:
// the same event and quantity always produce an identical request.
//
// The side is inverted and take-profit/stop-loss are swapped, not copied: a
// counter-position carries inverted directional risk, so the original
// stop-loss level becomes the counter-position's profit target and vice
// versa. The link id makes the original->counter mapping auditable and feeds
// the classifier's anti-loop filter.
func Transform(ev domain.OrderEvent, qty string) domain.CounterOrderRequest {
	req := domain.CounterOrderRequest{
		Symbol:         ev.Symbol,
		Side:           ev.Side.Invert(),
		Type:           ev.Type,
		Qty:            qty,
		TakeProfit:     ev.StopLoss,
		StopLoss:       ev.TakeProfit,
		TimeInForce:    ev.TimeInForce,
		PositionIdx:    ev.PositionIdx,
		ReduceOnly:     false,
		CloseOnTrigger: false,
		LinkID:         domain.CounterLinkPrefix + ev.OrderID,
	}
	// Market orders carry no price.
	if ev.Type == domain.Limit {
		req.Price = ev.Price
	}
	return req
}
