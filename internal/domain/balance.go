package domain

import "github.com/shopspring/decimal"

// AccountBalance is an equity snapshot for one sub-account in the settlement
// asset. Fetched fresh on every mirroring decision; equity moves between
// trades, so snapshots are never cached.
type AccountBalance struct {
	WalletBalance       decimal.Decimal // Funds on the wallet
	AvailableToWithdraw decimal.Decimal // Amount withdrawable right now
	Equity              decimal.Decimal // Total equity including unrealized PnL
}
