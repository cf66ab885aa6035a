package ports

import (
	"context"

	"counterTradeBot/internal/domain"
)

// MirrorRepository stores the audit trail of mirroring operations.
type MirrorRepository interface {
	// Create saves a new mirror record and returns its assigned ID.
	Create(ctx context.Context, rec *domain.MirrorRecord) (int64, error)
	// FindBySymbol retrieves the most recent records for a symbol, up to a limit.
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.MirrorRecord, error)
	// CountTodayBySymbol counts the mirror operations recorded today for a symbol.
	CountTodayBySymbol(ctx context.Context, symbol string) (int, error)
}
