package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"counterTradeBot/internal/domain"
)

// Submission result codes as interpreted by the mirror orchestrator.
// SubmitInsufficientBalance is the one rejection that is routine rather than
// exceptional: the counter account often cannot afford to mirror a large
// primary trade (Binance futures code -2019, margin is insufficient).
const (
	SubmitAccepted            = 0
	SubmitInsufficientBalance = -2019
)

// SubmitResult carries the exchange's verdict on an order submission.
// A nonzero Code is an exchange-side rejection, delivered in-band; transport
// and protocol failures are returned as errors instead.
type SubmitResult struct {
	Code    int    // 0 = accepted
	Message string // Exchange-provided rejection reason, empty on success
	OrderID string // Exchange-assigned order id, set when accepted
}

// Accepted reports whether the exchange accepted the order.
func (r SubmitResult) Accepted() bool { return r.Code == SubmitAccepted }

// BalanceSource provides equity snapshots for one account.
type BalanceSource interface {
	// GetBalance retrieves the balance snapshot for the given settlement asset.
	// Returns ErrBalanceNotFound if the account holds no such asset.
	GetBalance(ctx context.Context, asset string) (domain.AccountBalance, error)
}

// InstrumentSource provides per-symbol trading constraints.
type InstrumentSource interface {
	// GetInstrumentConstraints retrieves the trading limits for a symbol.
	// Returns ErrInstrumentNotFound for unknown symbols.
	GetInstrumentConstraints(ctx context.Context, symbol string) (domain.InstrumentConstraints, error)
}

// PriceSource provides a reference price for sizing market orders, which carry
// no limit price of their own.
type PriceSource interface {
	// GetMarkPrice retrieves the current mark price for a symbol.
	GetMarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// OrderSink submits derived counter-orders to the counter account.
type OrderSink interface {
	// SubmitOrder places the counter-order. Exchange rejections come back as a
	// SubmitResult with a nonzero Code and a nil error; only transport-level
	// failures produce an error.
	SubmitOrder(ctx context.Context, req domain.CounterOrderRequest) (SubmitResult, error)
}

// OrderStream delivers batches of private order-update events from the
// primary account. Reconnection is the implementation's responsibility; the
// channel stays open across reconnects and closes only when the stream is
// permanently done.
type OrderStream interface {
	// StreamOrderUpdates starts the subscription. Delivery order within a batch
	// reflects exchange-side ordering. The transport performs no duplicate
	// suppression; the classifier's link-id filter is the only anti-loop
	// mechanism.
	StreamOrderUpdates(ctx context.Context) (<-chan []domain.OrderEvent, error)
}
