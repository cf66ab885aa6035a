package binanceclient

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"counterTradeBot/internal/domain"
)

// Listen keys expire after 60 minutes without a keepalive.
const keepAliveInterval = 25 * time.Minute

// StreamOrderUpdates subscribes to the account's private user-data stream and
// delivers order-update events in batches. Reconnection with exponential
// backoff happens inside the adapter; the returned channel stays open across
// reconnects and is closed only when the adapter gives up or the context is
// cancelled. No per-connection state is retained between reconnects.
func (c *Client) StreamOrderUpdates(ctx context.Context) (<-chan []domain.OrderEvent, error) {
	op := "StreamOrderUpdates"

	// Request a listen key up front so credential problems surface before the
	// subscription is reported as established.
	if _, err := c.futuresClient.NewStartUserStreamService().Do(ctx); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	out := make(chan []domain.OrderEvent)
	go c.streamLoop(ctx, out)
	return out, nil
}

// streamLoop owns one user-data connection at a time, reconnecting with
// exponential backoff and jitter until the context is cancelled or the
// maximum attempt count is exceeded.
func (c *Client) streamLoop(ctx context.Context, out chan<- []domain.OrderEvent) {
	op := "StreamOrderUpdates"
	defer close(out)

	handler := func(event *futures.WsUserDataEvent) {
		if event.Event != futures.UserDataEventTypeOrderTradeUpdate {
			return
		}
		ev := translateOrderUpdate(&event.OrderTradeUpdate)
		select {
		case out <- []domain.OrderEvent{ev}:
		case <-ctx.Done():
		}
	}
	errHandler := func(err error) {
		c.logger.Warn(ctx, op+": WebSocket error reported", map[string]interface{}{"error": err.Error()})
	}

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			c.logger.Info(ctx, op+": Context cancelled, stopping connection attempts.")
			return
		default:
		}

		// A fresh listen key per connection; expired keys cannot be revived.
		listenKey, err := c.futuresClient.NewStartUserStreamService().Do(ctx)
		if err != nil {
			c.handleError(ctx, err, op+" listen key request")
			if !c.backoff(ctx, op, &attempt) {
				return
			}
			continue
		}

		c.logger.Info(ctx, op+": Attempting WebSocket connection...", map[string]interface{}{"attempt": attempt + 1})
		doneCh, stopCh, connectErr := futures.WsUserDataServe(listenKey, handler, errHandler)
		if connectErr != nil {
			c.handleError(ctx, connectErr, op+" connection attempt")
			if !c.backoff(ctx, op, &attempt) {
				return
			}
			continue
		}

		c.logger.Info(ctx, op+": WebSocket connection established.")
		attempt = 0

		connCtx, cancelConn := context.WithCancel(ctx)
		go c.keepAlive(connCtx, listenKey)

		select {
		case <-doneCh:
			cancelConn()
			c.logger.Warn(ctx, op+": WebSocket connection closed unexpectedly. Reconnecting...")
		case <-ctx.Done():
			cancelConn()
			c.logger.Info(ctx, op+": Context cancelled, stopping WebSocket.")
			select {
			case stopCh <- struct{}{}:
			default:
			}
			return
		}
	}
}

// backoff sleeps for an exponentially growing delay with jitter. Returns
// false when the attempt budget is spent or the context is cancelled.
func (c *Client) backoff(ctx context.Context, op string, attempt *int) bool {
	*attempt++
	if *attempt >= c.maxReconnectAttempts {
		c.logger.Error(ctx, nil, op+": Max reconnection attempts exceeded, giving up.", map[string]interface{}{"maxAttempts": c.maxReconnectAttempts})
		return false
	}

	delay := c.reconnectDelay * time.Duration(1<<uint(*attempt-1))
	jitter := time.Duration(float64(delay) * 0.1)
	actualDelay := delay + jitter
	c.logger.Info(ctx, op+": Connection failed, retrying...", map[string]interface{}{"attempt": *attempt + 1, "delay": actualDelay.String()})

	select {
	case <-time.After(actualDelay):
		return true
	case <-ctx.Done():
		c.logger.Info(ctx, op+": Context cancelled during backoff.")
		return false
	}
}

// keepAlive refreshes the listen key for the lifetime of one connection.
func (c *Client) keepAlive(ctx context.Context, listenKey string) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.futuresClient.NewKeepaliveUserStreamService().ListenKey(listenKey).Do(ctx); err != nil {
				c.logger.Warn(ctx, "Failed to keep user data stream alive", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// translateOrderUpdate maps a Binance order-trade update onto the domain
// event consumed by the classifier.
func translateOrderUpdate(u *futures.WsOrderTradeUpdate) domain.OrderEvent {
	ev := domain.OrderEvent{
		OrderID:      strconv.FormatInt(u.ID, 10),
		LinkID:       u.ClientOrderID,
		Symbol:       u.Symbol,
		Side:         domain.OrderSide(u.Side),
		Type:         domain.OrderType(u.Type),
		Status:       domain.OrderStatus(u.Status),
		Origin:       classifyOrigin(u),
		Qty:          u.OriginalQty,
		CumExecValue: cumExecValue(u.AccumulatedFilledQty, u.AveragePrice),
		TimeInForce:  string(u.TimeInForce),
		PositionIdx:  fromPositionSide(u.PositionSide),
	}
	if ev.Type == domain.Limit {
		ev.Price = u.OriginalPrice
	}

	// A triggered conditional order exposes its level via the stop price;
	// which risk slot it belongs to follows from the original order type.
	switch u.OriginalType {
	case futures.OrderTypeTakeProfit, futures.OrderTypeTakeProfitMarket:
		ev.TakeProfit = u.StopPrice
	case futures.OrderTypeStop, futures.OrderTypeStopMarket:
		ev.StopLoss = u.StopPrice
	}

	return ev
}

// classifyOrigin separates user-initiated orders from exchange-generated
// ones. Liquidation and auto-deleveraging close-outs carry reserved client
// order id prefixes; triggered close-position conditionals are also the
// exchange acting on the account's behalf.
func classifyOrigin(u *futures.WsOrderTradeUpdate) domain.CreationOrigin {
	if strings.HasPrefix(u.ClientOrderID, "autoclose-") || strings.HasPrefix(u.ClientOrderID, "adl_autoclose") {
		return domain.OriginSystem
	}
	if u.IsClosingPosition {
		switch u.OriginalType {
		case futures.OrderTypeStop, futures.OrderTypeStopMarket,
			futures.OrderTypeTakeProfit, futures.OrderTypeTakeProfitMarket:
			return domain.OriginSystem
		}
	}
	return domain.OriginUser
}

// cumExecValue derives the cumulative executed notional from the filled
// quantity and average price. Empty when the order has no fills yet.
func cumExecValue(filledQty, avgPrice string) string {
	qty, err := decimal.NewFromString(filledQty)
	if err != nil || qty.IsZero() {
		return ""
	}
	price, err := decimal.NewFromString(avgPrice)
	if err != nil || price.IsZero() {
		return ""
	}
	return qty.Mul(price).String()
}

func fromPositionSide(ps futures.PositionSideType) int {
	switch ps {
	case futures.PositionSideTypeLong:
		return 1
	case futures.PositionSideTypeShort:
		return 2
	default:
		return 0
	}
}
