package ledger

import (
	"sort"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, cost float64) *database.Product {
	t.Helper()
	product := &database.Product{
		Name:         "Granos de Café Premium",
		SKU:          "CAFE-001",
		Category:     "Bebidas",
		Stock:        stock,
		CostPrice:    decimal.NewFromFloat(cost),
		SellingPrice: decimal.NewFromFloat(cost * 2),
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestApplyStockDelta_UpdatesStockAndAppendsHistory(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	product := seedProduct(t, db, 10, 1.50)

	updated, err := svc.ApplyStockDelta(nil, product.ID, -3, database.StockEntrySale, "Sale test")
	require.NoError(t, err)
	require.Equal(t, 7, updated.Stock)

	var stored database.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&stored).Error)
	require.Equal(t, 7, stored.Stock)

	var entries []database.StockHistory
	require.NoError(t, db.Where("product_id = ?", product.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, database.StockEntrySale, entries[0].Type)
	require.Equal(t, -3, entries[0].QuantityChange)
	require.Equal(t, 7, entries[0].NewStockLevel)
	require.Equal(t, "Sale test", entries[0].Note)
}

func TestApplyStockDelta_AllowsNegativeStock(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	product := seedProduct(t, db, 2, 1.00)

	updated, err := svc.ApplyStockDelta(nil, product.ID, -5, database.StockEntrySale, "Oversell")
	require.NoError(t, err)
	require.Equal(t, -3, updated.Stock)

	var entry database.StockHistory
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&entry).Error)
	require.Equal(t, -3, entry.NewStockLevel)
}

func TestApplyStockDelta_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)

	_, err := svc.ApplyStockDelta(nil, uuid.New(), 1, database.StockEntryManualAdjustment, "")
	require.ErrorIs(t, err, database.ErrProductNotFound)

	var count int64
	db.Model(&database.StockHistory{}).Count(&count)
	require.Zero(t, count)
}

func TestApplyStockDelta_ZeroDeltaWritesNoHistory(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	product := seedProduct(t, db, 8, 1.00)

	updated, err := svc.ApplyStockDelta(nil, product.ID, 0, database.StockEntryManualAdjustment, "No-op")
	require.NoError(t, err)
	require.Equal(t, 8, updated.Stock)

	var count int64
	db.Model(&database.StockHistory{}).Where("product_id = ?", product.ID).Count(&count)
	require.Zero(t, count)
}

func TestApplyCostUpdate_OverwritesCostWithoutHistory(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	product := seedProduct(t, db, 5, 1.50)

	require.NoError(t, svc.ApplyCostUpdate(nil, product.ID, decimal.NewFromFloat(2.25)))

	var stored database.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&stored).Error)
	require.True(t, stored.CostPrice.Equal(decimal.NewFromFloat(2.25)))

	var count int64
	db.Model(&database.StockHistory{}).Count(&count)
	require.Zero(t, count)

	err := svc.ApplyCostUpdate(nil, uuid.New(), decimal.NewFromInt(1))
	require.ErrorIs(t, err, database.ErrProductNotFound)
}

func TestHistoryReplayReconstructsStock(t *testing.T) {
	db := newTestDB(t)
	svc := New(db)
	product := seedProduct(t, db, 0, 1.00)

	deltas := []struct {
		delta     int
		entryType string
	}{
		{10, database.StockEntryInitialStock},
		{-3, database.StockEntrySale},
		{5, database.StockEntryPurchase},
		{-20, database.StockEntrySale},
		{3, database.StockEntrySaleCancellation},
		{-1, database.StockEntryManualAdjustment},
	}
	for _, d := range deltas {
		_, err := svc.ApplyStockDelta(nil, product.ID, d.delta, d.entryType, "")
		require.NoError(t, err)
	}

	entries, err := svc.History(product.ID)
	require.NoError(t, err)
	require.Len(t, entries, len(deltas))

	// Replay oldest first from zero: each running total must match the
	// entry's recorded stock level, and the final total the product's stock.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	running := 0
	for _, entry := range entries {
		running += entry.QuantityChange
		require.Equal(t, entry.NewStockLevel, running)
	}

	var stored database.Product
	require.NoError(t, db.Where("id = ?", product.ID).First(&stored).Error)
	require.Equal(t, running, stored.Stock)
	require.Equal(t, -6, stored.Stock)
}
