package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"counterTradeBot/internal/domain"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name  string
		event domain.OrderEvent
		qty   string
		check func(*testing.T, domain.CounterOrderRequest)
	}{
		{
			name: "limit buy becomes limit sell with price",
			event: domain.OrderEvent{
				OrderID:     "ord-1",
				Symbol:      "ETHUSDT",
				Side:        domain.Buy,
				Type:        domain.Limit,
				Price:       "2000.5",
				TakeProfit:  "2100",
				StopLoss:    "1900",
				TimeInForce: "GTC",
				PositionIdx: 1,
			},
			qty: "0.500",
			check: func(t *testing.T, req domain.CounterOrderRequest) {
				assert.Equal(t, domain.Sell, req.Side)
				assert.Equal(t, domain.Limit, req.Type)
				assert.Equal(t, "2000.5", req.Price)
				assert.Equal(t, "0.500", req.Qty)
				assert.Equal(t, "GTC", req.TimeInForce)
				assert.Equal(t, 1, req.PositionIdx)
			},
		},
		{
			name: "market sell becomes market buy without price",
			event: domain.OrderEvent{
				OrderID: "ord-2",
				Symbol:  "BTCUSDT",
				Side:    domain.Sell,
				Type:    domain.Market,
				Price:   "", // market orders carry no price
			},
			qty: "0.01",
			check: func(t *testing.T, req domain.CounterOrderRequest) {
				assert.Equal(t, domain.Buy, req.Side)
				assert.Equal(t, domain.Market, req.Type)
				assert.Empty(t, req.Price)
			},
		},
		{
			name: "take profit and stop loss are swapped",
			event: domain.OrderEvent{
				OrderID:    "ord-3",
				Symbol:     "ETHUSDT",
				Side:       domain.Buy,
				Type:       domain.Market,
				TakeProfit: "2100",
				StopLoss:   "1900",
			},
			qty: "1",
			check: func(t *testing.T, req domain.CounterOrderRequest) {
				assert.Equal(t, "1900", req.TakeProfit)
				assert.Equal(t, "2100", req.StopLoss)
			},
		},
		{
			name: "counter-orders always open positions",
			event: domain.OrderEvent{
				OrderID: "ord-4",
				Symbol:  "ETHUSDT",
				Side:    domain.Sell,
				Type:    domain.Limit,
				Price:   "1800",
			},
			qty: "2",
			check: func(t *testing.T, req domain.CounterOrderRequest) {
				assert.False(t, req.ReduceOnly)
				assert.False(t, req.CloseOnTrigger)
			},
		},
		{
			name: "link id derives from the original order id",
			event: domain.OrderEvent{
				OrderID: "abc123",
				Symbol:  "ETHUSDT",
				Side:    domain.Buy,
				Type:    domain.Market,
			},
			qty: "1",
			check: func(t *testing.T, req domain.CounterOrderRequest) {
				assert.Equal(t, "counter_abc123", req.LinkID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Transform(tt.event, tt.qty)
			tt.check(t, req)
		})
	}
}

// Transforming twice must yield identical requests: the transformer holds no
// hidden mutable state.
func TestTransform_Idempotent(t *testing.T) {
	ev := domain.OrderEvent{
		OrderID:     "ord-9",
		Symbol:      "ETHUSDT",
		Side:        domain.Buy,
		Type:        domain.Limit,
		Price:       "2000",
		TakeProfit:  "2100",
		StopLoss:    "1900",
		TimeInForce: "GTC",
	}

	first := Transform(ev, "0.5")
	second := Transform(ev, "0.5")
	assert.Equal(t, first, second)
}

// Inverting the transformed side recovers the original, and the TP/SL swap
// round-trips.
func TestTransform_RoundTrip(t *testing.T) {
	for _, side := range []domain.OrderSide{domain.Buy, domain.Sell} {
		ev := domain.OrderEvent{
			OrderID:    "ord-7",
			Symbol:     "ETHUSDT",
			Side:       side,
			Type:       domain.Market,
			TakeProfit: "2100",
			StopLoss:   "1900",
		}
		req := Transform(ev, "1")
		assert.Equal(t, ev.Side, req.Side.Invert())
		assert.Equal(t, ev.StopLoss, req.TakeProfit)
		assert.Equal(t, ev.TakeProfit, req.StopLoss)
	}
}
