package domain

import "time"

// MirrorStatus records how a mirroring operation concluded.
type MirrorStatus string

const (
	MirrorPlaced              MirrorStatus = "placed"
	MirrorRejected            MirrorStatus = "rejected"
	MirrorInsufficientBalance MirrorStatus = "insufficient_balance"
	MirrorFailed              MirrorStatus = "failed"
)

// MirrorRecord is the audit trail entry for one mirroring operation.
type MirrorRecord struct {
	ID              int64
	OriginalOrderID string
	LinkID          string
	Symbol          string
	Side            OrderSide
	Type            OrderType
	Qty             string
	Price           string
	ResultCode      int
	ResultMessage   string
	Status          MirrorStatus
	CreatedAt       time.Time
}
