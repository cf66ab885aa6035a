package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"counterTradeBot/internal/domain"
	"counterTradeBot/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"
)

// Client adapts the go-binance USD-M futures API to the application ports:
// balance source, instrument source, price source, order sink and order
// stream. One Client wraps one account's credentials; the bot constructs two
// of them (primary and counter).
type Client struct {
	futuresClient        *futures.Client
	logger               ports.Logger
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey               string
	SecretKey            string
	UseTestnet           bool
	Logger               ports.Logger
	ReconnectDelay       time.Duration // Reconnect delay (e.g., 1 * time.Second)
	MaxReconnectAttempts int           // Max attempts before giving up
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: API key and secret are required", ports.ErrConfigurationError)
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using the global futures.UseTestnet
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = 1 * time.Second
	}
	maxAttempts := cfg.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &Client{
		futuresClient:        client,
		logger:               cfg.Logger,
		reconnectDelay:       reconnectDelay,
		maxReconnectAttempts: maxAttempts,
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Invalid signature
			mappedErr = ports.ErrAuthenticationFailed
		case -2014, -2015: // API-key format invalid / invalid key, IP or permissions
			mappedErr = ports.ErrInvalidAPIKeys
		case -2010: // New order rejected
			mappedErr = ports.ErrOrderPlacementFailed
		case -2019, -3005: // Margin / balance insufficient
			mappedErr = ports.ErrInsufficientFunds
		case -4003, -4014: // Qty / price not within permissible range
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// GetBalance retrieves the balance snapshot for a settlement asset.
func (c *Client) GetBalance(ctx context.Context, asset string) (domain.AccountBalance, error) {
	op := "GetBalance"
	account, err := c.futuresClient.NewGetAccountService().Do(ctx)
	if err != nil {
		return domain.AccountBalance{}, c.handleError(ctx, err, op)
	}

	for _, bal := range account.Assets {
		if bal.Asset != asset {
			continue
		}
		wallet, err := decimal.NewFromString(bal.WalletBalance)
		if err != nil {
			parseErr := fmt.Errorf("could not parse wallet balance '%s' for asset %s: %w", bal.WalletBalance, asset, err)
			return domain.AccountBalance{}, c.handleError(ctx, parseErr, op)
		}
		withdrawable, err := decimal.NewFromString(bal.MaxWithdrawAmount)
		if err != nil {
			parseErr := fmt.Errorf("could not parse withdrawable amount '%s' for asset %s: %w", bal.MaxWithdrawAmount, asset, err)
			return domain.AccountBalance{}, c.handleError(ctx, parseErr, op)
		}
		// Margin balance = wallet balance + unrealized PnL, the closest thing
		// futures accounts have to total equity.
		equity, err := decimal.NewFromString(bal.MarginBalance)
		if err != nil {
			parseErr := fmt.Errorf("could not parse margin balance '%s' for asset %s: %w", bal.MarginBalance, asset, err)
			return domain.AccountBalance{}, c.handleError(ctx, parseErr, op)
		}
		return domain.AccountBalance{
			WalletBalance:       wallet,
			AvailableToWithdraw: withdrawable,
			Equity:              equity,
		}, nil
	}

	err = fmt.Errorf("%w: %s", ports.ErrBalanceNotFound, asset)
	c.logger.Error(ctx, err, op+" failed", map[string]interface{}{"asset": asset})
	return domain.AccountBalance{}, err
}

// GetInstrumentConstraints retrieves the trading limits for a symbol from the
// exchange-info filters. Not cached; constraints are fetched per mirroring
// operation.
func (c *Client) GetInstrumentConstraints(ctx context.Context, symbol string) (domain.InstrumentConstraints, error) {
	op := "GetInstrumentConstraints"
	info, err := c.futuresClient.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return domain.InstrumentConstraints{}, c.handleError(ctx, err, op)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		lot := s.LotSizeFilter()
		marketLot := s.MarketLotSizeFilter()
		minNotional := s.MinNotionalFilter()
		if lot == nil || marketLot == nil || minNotional == nil {
			err := fmt.Errorf("symbol %s is missing lot size or notional filters", symbol)
			return domain.InstrumentConstraints{}, c.handleError(ctx, err, op)
		}

		cons, err := parseConstraints(lot.MinQuantity, lot.MaxQuantity, marketLot.MaxQuantity, lot.StepSize, minNotional.Notional)
		if err != nil {
			return domain.InstrumentConstraints{}, c.handleError(ctx, err, op)
		}
		if err := cons.Validate(); err != nil {
			return domain.InstrumentConstraints{}, c.handleError(ctx, fmt.Errorf("exchange returned invalid constraints for %s: %w", symbol, err), op)
		}
		return cons, nil
	}

	err = fmt.Errorf("%w: %s", ports.ErrInstrumentNotFound, symbol)
	c.logger.Error(ctx, err, op+" failed", map[string]interface{}{"symbol": symbol})
	return domain.InstrumentConstraints{}, err
}

func parseConstraints(minQty, maxQty, maxMktQty, step, minNotional string) (domain.InstrumentConstraints, error) {
	var cons domain.InstrumentConstraints
	var err error
	if cons.MinOrderQty, err = decimal.NewFromString(minQty); err != nil {
		return cons, fmt.Errorf("parsing min order qty '%s': %w", minQty, err)
	}
	if cons.MaxOrderQty, err = decimal.NewFromString(maxQty); err != nil {
		return cons, fmt.Errorf("parsing max order qty '%s': %w", maxQty, err)
	}
	if cons.MaxMktOrderQty, err = decimal.NewFromString(maxMktQty); err != nil {
		return cons, fmt.Errorf("parsing max market order qty '%s': %w", maxMktQty, err)
	}
	if cons.QtyStep, err = decimal.NewFromString(step); err != nil {
		return cons, fmt.Errorf("parsing qty step '%s': %w", step, err)
	}
	if cons.MinNotional, err = decimal.NewFromString(minNotional); err != nil {
		return cons, fmt.Errorf("parsing min notional '%s': %w", minNotional, err)
	}
	// Some symbols cap market orders above the plain maximum; the tighter
	// bound is the one that matters for sizing.
	if cons.MaxMktOrderQty.GreaterThan(cons.MaxOrderQty) {
		cons.MaxMktOrderQty = cons.MaxOrderQty
	}
	return cons, nil
}

// GetMarkPrice retrieves the current mark price for a given symbol.
func (c *Client) GetMarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	op := "GetMarkPrice"
	tickers, err := c.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, c.handleError(ctx, err, op)
	}
	if len(tickers) == 0 {
		err := fmt.Errorf("no price data returned for symbol %s", symbol)
		return decimal.Zero, c.handleError(ctx, err, op)
	}

	price, err := decimal.NewFromString(tickers[0].MarkPrice)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w", tickers[0].MarkPrice, err)
		return decimal.Zero, c.handleError(ctx, parseErr, op)
	}
	return price, nil
}

// SubmitOrder places the counter-order on this client's account. Exchange-side
// rejections are returned in-band as a SubmitResult with the API error code;
// only transport failures produce an error. When the entry order is accepted
// and carries TP/SL levels, close-position companion orders are placed
// best-effort.
func (c *Client) SubmitOrder(ctx context.Context, req domain.CounterOrderRequest) (ports.SubmitResult, error) {
	op := "SubmitOrder"

	svc := c.futuresClient.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Type(futures.OrderType(req.Type)).
		Quantity(req.Qty).
		NewClientOrderID(req.LinkID)
	if req.Type == domain.Limit {
		tif := req.TimeInForce
		if tif == "" {
			tif = string(futures.TimeInForceTypeGTC)
		}
		svc = svc.Price(req.Price).TimeInForce(futures.TimeInForceType(tif))
	}
	if ps := toPositionSide(req.PositionIdx); ps != "" {
		svc = svc.PositionSide(ps)
	}
	if req.ReduceOnly {
		svc = svc.ReduceOnly(true)
	}

	order, err := svc.Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			// An exchange rejection is an outcome, not a transport failure.
			c.logger.Debug(ctx, op+": order rejected by exchange", map[string]interface{}{
				"linkID": req.LinkID, "code": apiErr.Code, "message": apiErr.Message,
			})
			return ports.SubmitResult{Code: int(apiErr.Code), Message: apiErr.Message}, nil
		}
		return ports.SubmitResult{}, c.handleError(ctx, err, op)
	}

	res := ports.SubmitResult{
		Code:    ports.SubmitAccepted,
		OrderID: fmt.Sprintf("%d", order.OrderID),
	}
	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol": req.Symbol, "side": req.Side, "qty": req.Qty, "orderID": order.OrderID, "linkID": req.LinkID,
	})

	// Companion TP/SL orders close the counter position when its (already
	// inverted) risk levels trigger. Their failure never fails the mirror.
	closeSide := futures.SideType(req.Side.Invert())
	if req.StopLoss != "" {
		c.placeCompanion(ctx, req, futures.OrderTypeStopMarket, closeSide, req.StopLoss)
	}
	if req.TakeProfit != "" {
		c.placeCompanion(ctx, req, futures.OrderTypeTakeProfitMarket, closeSide, req.TakeProfit)
	}

	return res, nil
}

// placeCompanion places a close-position stop-market or take-profit-market
// order guarding the counter position.
func (c *Client) placeCompanion(ctx context.Context, req domain.CounterOrderRequest, orderType futures.OrderType, side futures.SideType, stopPrice string) {
	op := "placeCompanion"
	svc := c.futuresClient.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(side).
		Type(orderType).
		StopPrice(stopPrice).
		ClosePosition(true)
	if ps := toPositionSide(req.PositionIdx); ps != "" {
		svc = svc.PositionSide(ps)
	}

	if _, err := svc.Do(ctx); err != nil {
		c.logger.Warn(ctx, op+": failed to place companion order", map[string]interface{}{
			"symbol": req.Symbol, "type": orderType, "stopPrice": stopPrice, "linkID": req.LinkID, "error": err.Error(),
		})
		return
	}
	c.logger.Info(ctx, op+" successful", map[string]interface{}{
		"symbol": req.Symbol, "type": orderType, "stopPrice": stopPrice, "linkID": req.LinkID,
	})
}

// toPositionSide maps a hedge-mode position index onto Binance's position
// side. Index 0 is one-way mode, where the parameter is omitted.
func toPositionSide(positionIdx int) futures.PositionSideType {
	switch positionIdx {
	case 1:
		return futures.PositionSideTypeLong
	case 2:
		return futures.PositionSideTypeShort
	default:
		return ""
	}
}
