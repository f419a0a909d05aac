package inventory

import (
	"net/http"

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

type InventoryItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Threshold   int             `json:"low_stock_threshold"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	StockValue  decimal.Decimal `json:"stock_value"`
	Status      string          `json:"status"` // ok, low, out
}

type InventorySummary struct {
	TotalProducts   int             `json:"total_products"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
}

func statusFor(p database.Product) string {
	switch {
	case p.Stock <= 0:
		return "out"
	case p.Stock <= p.LowStockThreshold:
		return "low"
	default:
		return "ok"
	}
}

// GetInventory returns stock status for all products
func (h *Handler) GetInventory(c *gin.Context) {
	filter := c.Query("filter") // all, low, out

	var products []database.Product
	if err := h.db.Order("name ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	items := []InventoryItem{}
	for _, p := range products {
		status := statusFor(p)

		if filter == "low" && status != "low" {
			continue
		}
		if filter == "out" && status != "out" {
			continue
		}

		items = append(items, InventoryItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			Category:    p.Category,
			Stock:       p.Stock,
			Threshold:   p.LowStockThreshold,
			CostPrice:   p.CostPrice,
			StockValue:  p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))),
			Status:      status,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetSummary returns inventory summary stats. Valuation counts only positive
// stock; backorders do not produce negative value.
func (h *Handler) GetSummary(c *gin.Context) {
	var products []database.Product
	if err := h.db.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	summary := InventorySummary{
		TotalProducts:   len(products),
		TotalStockValue: decimal.Zero,
	}
	for _, p := range products {
		switch statusFor(p) {
		case "out":
			summary.OutOfStockCount++
		case "low":
			summary.LowStockCount++
		}
		if p.Stock > 0 {
			summary.TotalStockValue = summary.TotalStockValue.Add(
				p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))))
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// GetAlerts returns products that need attention
func (h *Handler) GetAlerts(c *gin.Context) {
	var lowStock []database.Product
	h.db.Where("stock > 0 AND stock <= low_stock_threshold").
		Order("stock ASC").
		Limit(10).
		Find(&lowStock)

	var outOfStock []database.Product
	h.db.Where("stock <= 0").
		Order("name ASC").
		Limit(10).
		Find(&outOfStock)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"low_stock":    lowStock,
			"out_of_stock": outOfStock,
		},
	})
}
