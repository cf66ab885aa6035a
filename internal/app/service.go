package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"counterTradeBot/config"
	"counterTradeBot/internal/domain"
	"counterTradeBot/internal/mirror"
	"counterTradeBot/internal/ports"
)

// MirrorService orchestrates the mirroring pipeline: it consumes order-update
// batches from the primary account and, for each qualifying event, fetches
// fresh balances and instrument constraints, sizes and transforms the
// counter-order, submits it and interprets the outcome.
//
// Events are processed strictly sequentially; at most one mirroring operation
// is in flight at a time, so no locking is needed beyond the read-only
// configuration.
type MirrorService struct {
	cfg            *config.Config
	logger         ports.Logger
	primaryBalance ports.BalanceSource
	counterBalance ports.BalanceSource
	instruments    ports.InstrumentSource
	prices         ports.PriceSource
	orders         ports.OrderSink
	stream         ports.OrderStream
	notifier       ports.Notifier
	history        ports.MirrorRepository
}

// Deps bundles the collaborators injected into the service.
type Deps struct {
	Logger         ports.Logger
	PrimaryBalance ports.BalanceSource
	CounterBalance ports.BalanceSource
	Instruments    ports.InstrumentSource
	Prices         ports.PriceSource
	Orders         ports.OrderSink
	Stream         ports.OrderStream
	Notifier       ports.Notifier
	History        ports.MirrorRepository
}

// NewMirrorService creates a new application service instance.
func NewMirrorService(cfg *config.Config, deps Deps) (*MirrorService, error) {
	if cfg == nil || deps.Logger == nil || deps.PrimaryBalance == nil || deps.CounterBalance == nil ||
		deps.Instruments == nil || deps.Prices == nil || deps.Orders == nil || deps.Stream == nil ||
		deps.Notifier == nil || deps.History == nil {
		return nil, fmt.Errorf("missing required dependencies for MirrorService")
	}
	if cfg.SettleAsset == "" {
		return nil, fmt.Errorf("configuration SettleAsset must be set")
	}

	return &MirrorService{
		cfg:            cfg,
		logger:         deps.Logger,
		primaryBalance: deps.PrimaryBalance,
		counterBalance: deps.CounterBalance,
		instruments:    deps.Instruments,
		prices:         deps.Prices,
		orders:         deps.Orders,
		stream:         deps.Stream,
		notifier:       deps.Notifier,
		history:        deps.History,
	}, nil
}

// Start begins consuming the order-update stream and blocks until the context
// is cancelled, a shutdown signal arrives, or the stream closes for good.
// No per-event failure stops the loop.
func (s *MirrorService) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting Mirror Service...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown: stop accepting new events, let the in-flight
	// operation finish.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	updates, err := s.stream.StreamOrderUpdates(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to subscribe to order updates")
		return fmt.Errorf("failed to subscribe to order updates: %w", err)
	}
	s.logger.Info(ctx, "Order update subscription established")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Context cancelled, Mirror Service stopped.")
			return nil
		case batch, ok := <-updates:
			if !ok {
				if ctx.Err() != nil {
					// The adapter closed the channel because we are shutting down.
					s.logger.Info(ctx, "Context cancelled, Mirror Service stopped.")
					return nil
				}
				// The adapter gave up reconnecting; the service cannot continue.
				s.logger.Error(ctx, fmt.Errorf("order update stream closed"), "Order update stream stopped")
				return fmt.Errorf("order update stream closed unexpectedly")
			}
			for _, ev := range batch {
				if !mirror.ShouldMirror(ev) {
					s.logger.Debug(ctx, "Event does not qualify for mirroring", map[string]interface{}{
						"orderID": ev.OrderID, "status": ev.Status, "origin": ev.Origin, "linkID": ev.LinkID,
					})
					continue
				}
				s.mirrorOrder(ctx, ev)
			}
		}
	}
}

// mirrorOrder runs one mirroring operation end to end. Every failure path is
// recovered: logged, notified, and the event abandoned without retry.
func (s *MirrorService) mirrorOrder(ctx context.Context, ev domain.OrderEvent) {
	op := "mirrorOrder"
	s.logger.Info(ctx, op+": Qualifying order detected", map[string]interface{}{
		"orderID": ev.OrderID, "symbol": ev.Symbol, "side": ev.Side, "type": ev.Type, "status": ev.Status, "qty": ev.Qty,
	})
	s.notify(ctx, fmt.Sprintf("Order detected: %s %s %s qty=%s (%s)", ev.Symbol, ev.Side, ev.Type, ev.Qty, ev.Status))

	// Operator context: what this symbol has seen recently.
	recent, err := s.history.FindBySymbol(ctx, ev.Symbol, 5)
	switch {
	case err != nil:
		s.logger.Warn(ctx, op+": Could not read mirror history", map[string]interface{}{"symbol": ev.Symbol, "error": err.Error()})
	case len(recent) > 0:
		s.logger.Debug(ctx, op+": Recent mirror activity for symbol", map[string]interface{}{
			"symbol": ev.Symbol, "recent": len(recent), "lastStatus": recent[0].Status, "lastLinkID": recent[0].LinkID,
		})
	}

	// Balances are fetched fresh per operation; equity moves between trades.
	primaryBal, err := s.primaryBalance.GetBalance(ctx, s.cfg.SettleAsset)
	if err != nil {
		s.logger.Error(ctx, err, op+": Failed to fetch primary account balance", map[string]interface{}{"orderID": ev.OrderID})
		s.notify(ctx, fmt.Sprintf("Mirror skipped for %s: primary balance unavailable", ev.OrderID))
		return
	}
	counterBal, err := s.counterBalance.GetBalance(ctx, s.cfg.SettleAsset)
	if err != nil {
		s.logger.Error(ctx, err, op+": Failed to fetch counter account balance", map[string]interface{}{"orderID": ev.OrderID})
		s.notify(ctx, fmt.Sprintf("Mirror skipped for %s: counter balance unavailable", ev.OrderID))
		return
	}

	cons, err := s.instruments.GetInstrumentConstraints(ctx, ev.Symbol)
	if err != nil {
		s.logger.Error(ctx, err, op+": Failed to fetch instrument constraints", map[string]interface{}{"symbol": ev.Symbol})
		s.notify(ctx, fmt.Sprintf("Mirror skipped for %s: instrument info unavailable", ev.OrderID))
		return
	}

	refPrice, err := s.referencePrice(ctx, ev)
	if err != nil {
		s.logger.Error(ctx, err, op+": Failed to resolve reference price", map[string]interface{}{"orderID": ev.OrderID, "symbol": ev.Symbol})
		s.notify(ctx, fmt.Sprintf("Mirror skipped for %s: no reference price", ev.OrderID))
		return
	}

	notional, err := s.originalNotional(ev, refPrice)
	if err != nil {
		s.logger.Error(ctx, err, op+": Failed to derive original notional value", map[string]interface{}{"orderID": ev.OrderID})
		s.notify(ctx, fmt.Sprintf("Mirror skipped for %s: bad notional value", ev.OrderID))
		return
	}

	qty, err := mirror.Size(primaryBal.Equity, counterBal.Equity, notional, refPrice, cons, ev.IsMarket())
	if err != nil {
		// Zero equity or zero price: a per-event failure, never a crash.
		s.logger.Error(ctx, err, op+": Sizing failed", map[string]interface{}{"orderID": ev.OrderID})
		s.notify(ctx, fmt.Sprintf("Mirror skipped for %s: %v", ev.OrderID, err))
		return
	}

	req := mirror.Transform(ev, mirror.FormatQuantity(qty, cons.QtyStep))
	s.logger.Info(ctx, op+": Submitting counter-order", map[string]interface{}{
		"symbol": req.Symbol, "side": req.Side, "type": req.Type, "qty": req.Qty, "price": req.Price, "linkID": req.LinkID,
	})

	res, err := s.orders.SubmitOrder(ctx, req)
	if err != nil {
		// Transport failure during submission: log, notify, done with this event.
		s.logger.Error(ctx, err, op+": Counter-order submission failed", map[string]interface{}{"linkID": req.LinkID})
		s.notify(ctx, fmt.Sprintf("Counter-order %s failed: %v", req.LinkID, err))
		s.record(ctx, ev, req, ports.SubmitResult{Code: -1, Message: err.Error()}, domain.MirrorFailed)
		return
	}

	switch {
	case res.Accepted():
		s.logger.Info(ctx, op+": Counter-order placed", map[string]interface{}{
			"linkID": req.LinkID, "counterOrderID": res.OrderID, "qty": req.Qty,
		})
		s.notify(ctx, fmt.Sprintf("Counter-order placed: %s %s %s qty=%s", req.Symbol, req.Side, req.Type, req.Qty))
		s.record(ctx, ev, req, res, domain.MirrorPlaced)
	case res.Code == ports.SubmitInsufficientBalance:
		// Routine outcome: the counter account cannot afford to mirror a large
		// primary trade. A warning, not an error.
		s.logger.Warn(ctx, op+": Counter account has insufficient balance", map[string]interface{}{
			"linkID": req.LinkID, "code": res.Code, "message": res.Message,
		})
		s.notify(ctx, fmt.Sprintf("Counter-order %s not placed: insufficient balance", req.LinkID))
		s.record(ctx, ev, req, res, domain.MirrorInsufficientBalance)
	default:
		s.logger.Warn(ctx, op+": Counter-order rejected by exchange", map[string]interface{}{
			"linkID": req.LinkID, "code": res.Code, "message": res.Message,
		})
		s.notify(ctx, fmt.Sprintf("Counter-order %s rejected: code=%d %s", req.LinkID, res.Code, res.Message))
		s.record(ctx, ev, req, res, domain.MirrorRejected)
	}
}

// referencePrice resolves the price used for sizing: the limit price when the
// original order has one, otherwise the current mark price. A mark price is a
// required input for market orders, not an optional refinement.
func (s *MirrorService) referencePrice(ctx context.Context, ev domain.OrderEvent) (decimal.Decimal, error) {
	if ev.Type == domain.Limit && ev.Price != "" {
		price, err := decimal.NewFromString(ev.Price)
		if err != nil {
			return decimal.Zero, fmt.Errorf("could not parse limit price %q: %w", ev.Price, err)
		}
		return price, nil
	}
	return s.prices.GetMarkPrice(ctx, ev.Symbol)
}

// originalNotional derives the monetary size of the original trade: the
// cumulative executed value when the order has fills, otherwise the requested
// quantity at the reference price (New/Created events have no fills yet).
func (s *MirrorService) originalNotional(ev domain.OrderEvent, refPrice decimal.Decimal) (decimal.Decimal, error) {
	if ev.CumExecValue != "" {
		v, err := decimal.NewFromString(ev.CumExecValue)
		if err != nil {
			return decimal.Zero, fmt.Errorf("could not parse executed value %q: %w", ev.CumExecValue, err)
		}
		if v.IsPositive() {
			return v, nil
		}
	}
	if ev.Qty == "" {
		return decimal.Zero, errors.New("event carries neither executed value nor quantity")
	}
	qty, err := decimal.NewFromString(ev.Qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse quantity %q: %w", ev.Qty, err)
	}
	return qty.Mul(refPrice), nil
}

// notify delivers a best-effort operator message. Failures are logged, never
// propagated.
func (s *MirrorService) notify(ctx context.Context, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		s.logger.Warn(ctx, "Notification delivery failed", map[string]interface{}{"error": err.Error()})
	}
}

// record appends the operation to the audit trail, best-effort.
func (s *MirrorService) record(ctx context.Context, ev domain.OrderEvent, req domain.CounterOrderRequest, res ports.SubmitResult, status domain.MirrorStatus) {
	rec := &domain.MirrorRecord{
		OriginalOrderID: ev.OrderID,
		LinkID:          req.LinkID,
		Symbol:          req.Symbol,
		Side:            req.Side,
		Type:            req.Type,
		Qty:             req.Qty,
		Price:           req.Price,
		ResultCode:      res.Code,
		ResultMessage:   res.Message,
		Status:          status,
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := s.history.Create(ctx, rec); err != nil {
		s.logger.Warn(ctx, "Failed to record mirror operation", map[string]interface{}{"linkID": rec.LinkID, "error": err.Error()})
		return
	}
	count, err := s.history.CountTodayBySymbol(ctx, rec.Symbol)
	if err != nil {
		s.logger.Warn(ctx, "Failed to count mirror operations", map[string]interface{}{"symbol": rec.Symbol, "error": err.Error()})
		return
	}
	s.logger.Info(ctx, "Mirror operations recorded today", map[string]interface{}{"symbol": rec.Symbol, "count": count})
}
