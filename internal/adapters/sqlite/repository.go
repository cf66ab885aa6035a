package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"counterTradeBot/internal/domain"
	"counterTradeBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.MirrorRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/counter_trade_bot.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS mirror_orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_order_id TEXT NOT NULL,
		link_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		order_type TEXT NOT NULL,
		qty TEXT NOT NULL,
		price TEXT NOT NULL DEFAULT '',
		result_code INTEGER NOT NULL,
		result_message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mirror_orders_symbol_created_at ON mirror_orders (symbol, created_at);
	CREATE INDEX IF NOT EXISTS idx_mirror_orders_link_id ON mirror_orders (link_id);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Create saves a new mirror record and returns its assigned ID.
func (r *Repository) Create(ctx context.Context, rec *domain.MirrorRecord) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("cannot create nil mirror record")
	}
	const query = `
	INSERT INTO mirror_orders
		(original_order_id, link_id, symbol, side, order_type, qty, price, result_code, result_message, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		rec.OriginalOrderID, rec.LinkID, rec.Symbol, string(rec.Side), string(rec.Type),
		rec.Qty, rec.Price, rec.ResultCode, rec.ResultMessage, string(rec.Status), rec.CreatedAt)
	if err != nil {
		err = fmt.Errorf("%w: inserting mirror record: %v", ports.ErrQueryFailed, err)
		r.logger.Error(ctx, err, "Failed to insert mirror record", map[string]interface{}{"linkID": rec.LinkID})
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: fetching inserted id: %v", ports.ErrQueryFailed, err)
	}
	return id, nil
}

// FindBySymbol retrieves the most recent records for a symbol, up to a limit.
func (r *Repository) FindBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.MirrorRecord, error) {
	const query = `
	SELECT id, original_order_id, link_id, symbol, side, order_type, qty, price, result_code, result_message, status, created_at
	FROM mirror_orders
	WHERE symbol = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		err = fmt.Errorf("%w: querying mirror records: %v", ports.ErrQueryFailed, err)
		r.logger.Error(ctx, err, "Failed to query mirror records", map[string]interface{}{"symbol": symbol})
		return nil, err
	}
	defer rows.Close()

	var records []*domain.MirrorRecord
	for rows.Next() {
		rec := &domain.MirrorRecord{}
		var side, orderType, status string
		if err := rows.Scan(&rec.ID, &rec.OriginalOrderID, &rec.LinkID, &rec.Symbol, &side, &orderType,
			&rec.Qty, &rec.Price, &rec.ResultCode, &rec.ResultMessage, &status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning mirror record: %v", ports.ErrQueryFailed, err)
		}
		rec.Side = domain.OrderSide(side)
		rec.Type = domain.OrderType(orderType)
		rec.Status = domain.MirrorStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating mirror records: %v", ports.ErrQueryFailed, err)
	}
	return records, nil
}

// CountTodayBySymbol counts the mirror operations recorded today (UTC) for a symbol.
func (r *Repository) CountTodayBySymbol(ctx context.Context, symbol string) (int, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	const query = `SELECT COUNT(*) FROM mirror_orders WHERE symbol = ? AND created_at >= ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, symbol, startOfDay).Scan(&count); err != nil {
		err = fmt.Errorf("%w: counting mirror records: %v", ports.ErrQueryFailed, err)
		r.logger.Error(ctx, err, "Failed to count mirror records", map[string]interface{}{"symbol": symbol})
		return 0, err
	}
	return count, nil
}
