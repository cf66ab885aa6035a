package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Invert returns the opposite side.
func (s OrderSide) Invert() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType represents the execution type of an order.
type OrderType string

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
)

// OrderStatus represents the lifecycle state of an order on the exchange.
type OrderStatus string

const (
	StatusCreated         OrderStatus = "CREATED"
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusCancelled       OrderStatus = "CANCELED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// CreationOrigin distinguishes orders placed by the account holder from orders
// generated by the exchange itself (TP/SL triggers, liquidation close-outs).
type CreationOrigin string

const (
	OriginUser   CreationOrigin = "USER"
	OriginSystem CreationOrigin = "SYSTEM"
)

// CounterLinkPrefix tags every counter-order this bot places. Order-update
// events whose link id carries this prefix are the bot's own orders and must
// never be mirrored again.
const CounterLinkPrefix = "counter_"

// OrderEvent is a snapshot of a primary-account order at a point in its
// lifecycle, as delivered by the private order-update stream. Values are
// immutable once received.
type OrderEvent struct {
	OrderID      string         // Exchange-assigned order identifier
	LinkID       string         // Client-assigned order identifier
	Symbol       string         // Instrument symbol (e.g. "ETHUSDT")
	Side         OrderSide      // BUY or SELL
	Type         OrderType      // MARKET or LIMIT
	Status       OrderStatus    // Lifecycle state at event time
	Origin       CreationOrigin // User-initiated vs exchange-generated
	Qty          string         // Requested quantity (exchange decimal string)
	Price        string         // Limit price; empty for market orders
	CumExecValue string         // Cumulative executed notional value
	TakeProfit   string         // Take-profit price; empty if unset
	StopLoss     string         // Stop-loss price; empty if unset
	TimeInForce  string         // e.g. GTC, IOC
	PositionIdx  int            // Hedge-mode position index
}

// IsMarket reports whether the event describes a market order.
func (e OrderEvent) IsMarket() bool {
	return e.Type == Market
}

// CounterOrderRequest is the fully-derived order to submit on the counter
// account. Produced by the transformer, consumed by the order sink.
type CounterOrderRequest struct {
	Symbol         string
	Side           OrderSide
	Type           OrderType
	Qty            string // Formatted to the instrument's step precision
	Price          string // Only set for Limit orders
	TakeProfit     string // = original stop-loss (risk direction is inverted)
	StopLoss       string // = original take-profit
	TimeInForce    string
	PositionIdx    int
	ReduceOnly     bool   // Always false: counter-orders open, never close
	CloseOnTrigger bool   // Always false
	LinkID         string // "counter_" + original order id
}
