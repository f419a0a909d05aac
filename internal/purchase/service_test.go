package purchase

import (
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/internal/ledger"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	return db, NewService(db, ledger.New(db), log)
}

func seedSupplier(t *testing.T, db *gorm.DB) *database.Supplier {
	t.Helper()
	supplier := &database.Supplier{Name: "Distribuidora del Norte"}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, cost float64) *database.Product {
	t.Helper()
	product := &database.Product{
		Name:         name,
		Category:     "Abarrotes",
		Stock:        stock,
		CostPrice:    decimal.NewFromFloat(cost),
		SellingPrice: decimal.NewFromFloat(cost * 2),
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func reload(t *testing.T, db *gorm.DB, id uuid.UUID) *database.Product {
	t.Helper()
	var product database.Product
	require.NoError(t, db.Where("id = ?", id).First(&product).Error)
	return &product
}

func TestCreate_StartsPendingWithoutStockEffect(t *testing.T) {
	db, svc := newTestService(t)
	supplier := seedSupplier(t, db)
	product := seedProduct(t, db, "Harina Sin Preparar", 10, 1.50)

	purchase, err := svc.Create(CreateInput{
		SupplierID: supplier.ID,
		Items:      []ItemInput{{ProductID: product.ID, Quantity: 5, UnitCost: decimal.NewFromFloat(1.40)}},
	})
	require.NoError(t, err)
	require.Equal(t, database.PurchaseStatusPending, purchase.Status)
	require.True(t, purchase.Total.Equal(decimal.NewFromFloat(7.00)))

	require.Equal(t, 10, reload(t, db, product.ID).Stock)
	var entries int64
	db.Model(&database.StockHistory{}).Count(&entries)
	require.Zero(t, entries)
}

func TestCreate_Validation(t *testing.T) {
	db, svc := newTestService(t)
	supplier := seedSupplier(t, db)
	product := seedProduct(t, db, "Sal de Mesa", 10, 0.50)

	_, err := svc.Create(CreateInput{SupplierID: supplier.ID})
	require.ErrorIs(t, err, database.ErrValidation)

	_, err = svc.Create(CreateInput{
		SupplierID: supplier.ID,
		Items:      []ItemInput{{ProductID: product.ID, Quantity: -1, UnitCost: decimal.NewFromFloat(0.45)}},
	})
	require.ErrorIs(t, err, database.ErrValidation)
}

func TestReceive_AppliesStockAndCost(t *testing.T) {
	db, svc := newTestService(t)
	supplier := seedSupplier(t, db)
	product := seedProduct(t, db, "Arroz Superior", 10, 1.50)

	purchase, err := svc.Create(CreateInput{
		SupplierID: supplier.ID,
		Items:      []ItemInput{{ProductID: product.ID, Quantity: 5, UnitCost: decimal.NewFromFloat(2.00)}},
	})
	require.NoError(t, err)

	received, err := svc.Receive(purchase.ID, nil)
	require.NoError(t, err)
	require.Equal(t, database.PurchaseStatusReceived, received.Status)

	stored := reload(t, db, product.ID)
	require.Equal(t, 15, stored.Stock)
	require.True(t, stored.CostPrice.Equal(decimal.NewFromFloat(2.00)))

	var entry database.StockHistory
	require.NoError(t, db.Where("type = ?", database.StockEntryPurchase).First(&entry).Error)
	require.Equal(t, 5, entry.QuantityChange)
	require.Equal(t, 15, entry.NewStockLevel)
	require.Contains(t, entry.Note, purchase.ID.String())
}

func TestReceive_Idempotent(t *testing.T) {
	db, svc := newTestService(t)
	supplier := seedSupplier(t, db)
	product := seedProduct(t, db, "Lentejas", 10, 2.20)

	purchase, err := svc.Create(CreateInput{
		SupplierID: supplier.ID,
		Items:      []ItemInput{{ProductID: product.ID, Quantity: 4, UnitCost: decimal.NewFromFloat(2.10)}},
	})
	require.NoError(t, err)

	_, err = svc.Receive(purchase.ID, nil)
	require.NoError(t, err)

	_, err = svc.Receive(purchase.ID, nil)
	require.ErrorIs(t, err, database.ErrInvalidState)

	// Second attempt must leave stock and history untouched.
	require.Equal(t, 14, reload(t, db, product.ID).Stock)
	var entries int64
	db.Model(&database.StockHistory{}).Count(&entries)
	require.EqualValues(t, 1, entries)
}

func TestReceive_ReconciledItemsReplaceOrder(t *testing.T) {
	db, svc := newTestService(t)
	supplier := seedSupplier(t, db)
	product := seedProduct(t, db, "Avena en Hojuelas", 0, 1.00)

	purchase, err := svc.Create(CreateInput{
		SupplierID: supplier.ID,
		Items:      []ItemInput{{ProductID: product.ID, Quantity: 10, UnitCost: decimal.NewFromFloat(1.00)}},
	})
	require.NoError(t, err)

	// Only 8 units arrived, at a higher cost than ordered.
	received, err := svc.Receive(purchase.ID, []ItemInput{
		{ProductID: product.ID, Quantity: 8, UnitCost: decimal.NewFromFloat(1.20)},
	})
	require.NoError(t, err)

	stored := reload(t, db, product.ID)
	require.Equal(t, 8, stored.Stock)
	require.True(t, stored.CostPrice.Equal(decimal.NewFromFloat(1.20)))

	require.Len(t, received.Items, 1)
	require.Equal(t, 8, received.Items[0].Quantity)
	require.True(t, received.Total.Equal(decimal.NewFromFloat(9.60)))

	var persisted database.Purchase
	require.NoError(t, db.Preload("Items").Where("id = ?", purchase.ID).First(&persisted).Error)
	require.Len(t, persisted.Items, 1)
	require.Equal(t, 8, persisted.Items[0].Quantity)
}

func TestReceive_LastCostWins(t *testing.T) {
	db, svc := newTestService(t)
	supplier := seedSupplier(t, db)
	product := seedProduct(t, db, "Café Instantáneo", 0, 5.00)

	// Same product twice in one reception: the later line's cost sticks.
	purchase, err := svc.Create(CreateInput{
		SupplierID: supplier.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: 3, UnitCost: decimal.NewFromFloat(5.50)},
			{ProductID: product.ID, Quantity: 2, UnitCost: decimal.NewFromFloat(6.00)},
		},
	})
	require.NoError(t, err)

	_, err = svc.Receive(purchase.ID, nil)
	require.NoError(t, err)

	stored := reload(t, db, product.ID)
	require.Equal(t, 5, stored.Stock)
	require.True(t, stored.CostPrice.Equal(decimal.NewFromFloat(6.00)))
}

func TestUpdate_PendingOnly(t *testing.T) {
	db, svc := newTestService(t)
	supplier := seedSupplier(t, db)
	product := seedProduct(t, db, "Quinua", 0, 4.00)

	purchase, err := svc.Create(CreateInput{
		SupplierID: supplier.ID,
		Items:      []ItemInput{{ProductID: product.ID, Quantity: 2, UnitCost: decimal.NewFromFloat(4.00)}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(purchase.ID, []ItemInput{
		{ProductID: product.ID, Quantity: 6, UnitCost: decimal.NewFromFloat(3.80)},
	})
	require.NoError(t, err)
	require.True(t, updated.Total.Equal(decimal.NewFromFloat(22.80)))
	require.Equal(t, 0, reload(t, db, product.ID).Stock)

	_, err = svc.Receive(purchase.ID, nil)
	require.NoError(t, err)

	_, err = svc.Update(purchase.ID, []ItemInput{
		{ProductID: product.ID, Quantity: 1, UnitCost: decimal.NewFromFloat(3.80)},
	})
	require.ErrorIs(t, err, database.ErrInvalidState)
}

func TestReceive_MissingPurchase(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.Receive(uuid.New(), nil)
	require.ErrorIs(t, err, database.ErrPurchaseNotFound)
}
