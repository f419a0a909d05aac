package dashboard

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type DashboardStats struct {
	TodaySales        decimal.Decimal `json:"today_sales"`
	TodayTransactions int             `json:"today_transactions"`
	MonthSales        decimal.Decimal `json:"month_sales"`
	MonthTransactions int             `json:"month_transactions"`
	TotalProducts     int             `json:"total_products"`
	LowStockProducts  int             `json:"low_stock_products"`
	PendingPurchases  int             `json:"pending_purchases"`
	PendingOrders     int             `json:"pending_orders"`
}

// GetStats returns dashboard statistics. Cancelled sales are excluded.
func (h *Handler) GetStats(c *gin.Context) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats DashboardStats
	stats.TodaySales = decimal.Zero
	stats.MonthSales = decimal.Zero

	var monthSales []database.Sale
	h.db.Where("created_at >= ? AND status = ?", monthStart, database.SaleStatusCompleted).
		Find(&monthSales)
	for _, s := range monthSales {
		stats.MonthSales = stats.MonthSales.Add(s.Total)
		stats.MonthTransactions++
		if !s.CreatedAt.Before(todayStart) {
			stats.TodaySales = stats.TodaySales.Add(s.Total)
			stats.TodayTransactions++
		}
	}

	var totalProducts int64
	h.db.Model(&database.Product{}).Count(&totalProducts)
	stats.TotalProducts = int(totalProducts)

	var lowStockProducts int64
	h.db.Model(&database.Product{}).
		Where("stock <= low_stock_threshold").
		Count(&lowStockProducts)
	stats.LowStockProducts = int(lowStockProducts)

	var pendingPurchases int64
	h.db.Model(&database.Purchase{}).
		Where("status = ?", database.PurchaseStatusPending).
		Count(&pendingPurchases)
	stats.PendingPurchases = int(pendingPurchases)

	var pendingOrders int64
	h.db.Model(&database.OnlineOrder{}).
		Where("status = ?", database.OrderStatusPending).
		Count(&pendingOrders)
	stats.PendingOrders = int(pendingOrders)

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

type TopProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalQty    int             `json:"total_qty"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

// GetTopProducts returns this month's best selling products
func (h *Handler) GetTopProducts(c *gin.Context) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var sales []database.Sale
	if err := h.db.Preload("Items").Preload("Items.Product").
		Where("created_at >= ? AND status = ?", monthStart, database.SaleStatusCompleted).
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top products"})
		return
	}

	byProduct := map[uuid.UUID]*TopProduct{}
	for _, s := range sales {
		for _, item := range s.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				name := ""
				if item.Product != nil {
					name = item.Product.Name
				}
				entry = &TopProduct{ProductID: item.ProductID, ProductName: name, TotalSales: decimal.Zero}
				byProduct[item.ProductID] = entry
			}
			entry.TotalQty += item.Quantity
			entry.TotalSales = entry.TotalSales.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	top := make([]TopProduct, 0, len(byProduct))
	for _, entry := range byProduct {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].TotalQty > top[j].TotalQty })
	if len(top) > 10 {
		top = top[:10]
	}

	c.JSON(http.StatusOK, gin.H{"data": top})
}

// GetRecentSales returns the latest sales for the dashboard feed
func (h *Handler) GetRecentSales(c *gin.Context) {
	var sales []database.Sale
	if err := h.db.Preload("Items").Preload("Client").
		Order("created_at DESC").
		Limit(10).
		Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}
