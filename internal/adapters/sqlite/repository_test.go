package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"counterTradeBot/internal/domain"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	dir, err := os.MkdirTemp("", "counter-trade-bot-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(dir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		os.RemoveAll(dir)
	})
	return repo
}

func testRecord(orderID string) *domain.MirrorRecord {
	return &domain.MirrorRecord{
		OriginalOrderID: orderID,
		LinkID:          domain.CounterLinkPrefix + orderID,
		Symbol:          "ETHUSDT",
		Side:            domain.Sell,
		Type:            domain.Limit,
		Qty:             "0.5",
		Price:           "2000",
		ResultCode:      0,
		Status:          domain.MirrorPlaced,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: "ignored.db"})
	assert.Error(t, err)
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := testRecord("42")
	id, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	found, err := repo.FindBySymbol(ctx, "ETHUSDT", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "42", got.OriginalOrderID)
	assert.Equal(t, "counter_42", got.LinkID)
	assert.Equal(t, domain.Sell, got.Side)
	assert.Equal(t, domain.Limit, got.Type)
	assert.Equal(t, "0.5", got.Qty)
	assert.Equal(t, "2000", got.Price)
	assert.Equal(t, domain.MirrorPlaced, got.Status)
}

func TestRepository_Create_NilRecord(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Create(context.Background(), nil)
	assert.Error(t, err)
}

func TestRepository_FindBySymbol_RespectsLimitAndOrder(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, orderID := range []string{"1", "2", "3"} {
		rec := testRecord(orderID)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := repo.Create(ctx, rec)
		require.NoError(t, err)
	}

	found, err := repo.FindBySymbol(ctx, "ETHUSDT", 2)
	require.NoError(t, err)
	require.Len(t, found, 2)

	// Newest first.
	assert.Equal(t, "3", found[0].OriginalOrderID)
	assert.Equal(t, "2", found[1].OriginalOrderID)
}

func TestRepository_FindBySymbol_NoMatches(t *testing.T) {
	repo := setupTestRepo(t)

	found, err := repo.FindBySymbol(context.Background(), "BTCUSDT", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRepository_CountTodayBySymbol(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	today := testRecord("10")
	_, err := repo.Create(ctx, today)
	require.NoError(t, err)

	yesterday := testRecord("11")
	yesterday.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	_, err = repo.Create(ctx, yesterday)
	require.NoError(t, err)

	otherSymbol := testRecord("12")
	otherSymbol.Symbol = "BTCUSDT"
	_, err = repo.Create(ctx, otherSymbol)
	require.NoError(t, err)

	count, err := repo.CountTodayBySymbol(ctx, "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
