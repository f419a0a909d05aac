package reports

import (
	"io"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jfarias/abarrotes-backend/internal/ledger"
	"github.com/jfarias/abarrotes-backend/internal/sale"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestHandler(t *testing.T) (*gorm.DB, *Handler, *sale.Service) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	return db, NewHandler(db), sale.NewService(db, ledger.New(db), log)
}

func TestBuildSalesReport_ProfitFromCostSnapshots(t *testing.T) {
	db, h, sales := newTestHandler(t)

	product := &database.Product{
		Name:         "Leche Entera",
		Category:     "Lácteos",
		Stock:        50,
		CostPrice:    decimal.NewFromFloat(3.00),
		SellingPrice: decimal.NewFromFloat(4.50),
	}
	require.NoError(t, db.Create(product).Error)

	committed, err := sales.Commit(sale.CommitInput{
		Items: []sale.LineInput{
			{ProductID: product.ID, Quantity: 2, UnitPrice: decimal.NewFromFloat(4.50)},
		},
	})
	require.NoError(t, err)

	// Cost changes after the sale must not move reported profit.
	require.NoError(t, ledger.New(db).ApplyCostUpdate(nil, product.ID, decimal.NewFromFloat(9.00)))

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	report, err := h.buildSalesReport(start, end)
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	require.Equal(t, committed.ID, report.Rows[0].SaleID)
	require.True(t, report.Rows[0].Cost.Equal(decimal.NewFromFloat(6.00)))
	require.True(t, report.Rows[0].Profit.Equal(decimal.NewFromFloat(3.00)))
	require.True(t, report.GrossProfit.Equal(decimal.NewFromFloat(3.00)))
	require.Equal(t, 1, report.TotalTransactions)
	require.Equal(t, 2, report.TotalItemsSold)
}

func TestBuildSalesReport_CancelledExcludedFromTotals(t *testing.T) {
	db, h, sales := newTestHandler(t)

	product := &database.Product{
		Name:         "Huevos de Granja",
		Category:     "Abarrotes",
		Stock:        30,
		CostPrice:    decimal.NewFromFloat(0.50),
		SellingPrice: decimal.NewFromFloat(0.80),
	}
	require.NoError(t, db.Create(product).Error)

	kept, err := sales.Commit(sale.CommitInput{
		Items: []sale.LineInput{{ProductID: product.ID, Quantity: 10, UnitPrice: decimal.NewFromFloat(0.80)}},
	})
	require.NoError(t, err)

	cancelled, err := sales.Commit(sale.CommitInput{
		Items: []sale.LineInput{{ProductID: product.ID, Quantity: 5, UnitPrice: decimal.NewFromFloat(0.80)}},
	})
	require.NoError(t, err)
	_, err = sales.Cancel(cancelled.ID)
	require.NoError(t, err)

	report, err := h.buildSalesReport(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Both sales show as rows; only the completed one counts.
	require.Len(t, report.Rows, 2)
	require.True(t, report.TotalSales.Equal(kept.Total))
	require.Equal(t, 1, report.TotalTransactions)
	require.Equal(t, 10, report.TotalItemsSold)

	byID := map[string]SaleRow{}
	for _, row := range report.Rows {
		byID[row.SaleID.String()] = row
	}
	require.Equal(t, database.SaleStatusCancelled, byID[cancelled.ID.String()].Status)
	require.Equal(t, database.SaleStatusCompleted, byID[kept.ID.String()].Status)
}

func TestBuildStockValuation(t *testing.T) {
	db, h, _ := newTestHandler(t)

	products := []database.Product{
		{Name: "Arroz", Category: "Abarrotes", Stock: 10, CostPrice: decimal.NewFromFloat(2.00)},
		{Name: "Sal", Category: "Abarrotes", Stock: 0, CostPrice: decimal.NewFromFloat(0.50)},
	}
	require.NoError(t, db.Create(&products).Error)

	rows, err := h.buildStockValuation()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Arroz", rows[0].ProductName)
	require.True(t, rows[0].StockValue.Equal(decimal.NewFromFloat(20.00)))
	require.True(t, rows[1].StockValue.Equal(decimal.Zero))
}
