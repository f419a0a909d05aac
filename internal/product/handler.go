package product

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/internal/ledger"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	ledger *ledger.Service
}

func NewHandler(db *gorm.DB, lg *ledger.Service) *Handler {
	return &Handler{db: db, ledger: lg}
}

type ProductRequest struct {
	Name              string          `json:"name" binding:"required"`
	SKU               string          `json:"sku"`
	Category          string          `json:"category"`
	SupplierID        *uuid.UUID      `json:"supplier_id"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	ImageURL          string          `json:"image_url"`
	Description       string          `json:"description"`
}

// List returns all products, optionally filtered by category or supplier
func (h *Handler) List(c *gin.Context) {
	query := h.db.Preload("Supplier")

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if supplierID := c.Query("supplier_id"); supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}

	var products []database.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

// Create adds a new product. The opening stock is applied through the ledger
// so it shows up as an initial_stock history entry.
func (h *Handler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := database.Product{
		Name:              req.Name,
		SKU:               req.SKU,
		Category:          req.Category,
		SupplierID:        req.SupplierID,
		Stock:             0,
		LowStockThreshold: req.LowStockThreshold,
		CostPrice:         req.CostPrice,
		SellingPrice:      req.SellingPrice,
		ImageURL:          req.ImageURL,
		Description:       req.Description,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		updated, err := h.ledger.ApplyStockDelta(tx, product.ID, req.Stock, database.StockEntryInitialStock, "Product created")
		if err != nil {
			return err
		}
		product.Stock = updated.Stock
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": product})
}

// Get returns a single product
func (h *Handler) Get(c *gin.Context) {
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ?", productID).
		Preload("Supplier").
		First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Update modifies a product. Stock and cost changes route through the ledger:
// a changed stock value becomes a manual_adjustment entry for the difference.
func (h *Handler) Update(c *gin.Context) {
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ?", productID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newStock := product.Stock

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&product).Updates(map[string]interface{}{
			"name":                req.Name,
			"sku":                 req.SKU,
			"category":            req.Category,
			"supplier_id":         req.SupplierID,
			"low_stock_threshold": req.LowStockThreshold,
			"selling_price":       req.SellingPrice,
			"image_url":           req.ImageURL,
			"description":         req.Description,
		}).Error; err != nil {
			return err
		}

		if !product.CostPrice.Equal(req.CostPrice) {
			if err := h.ledger.ApplyCostUpdate(tx, product.ID, req.CostPrice); err != nil {
				return err
			}
		}

		if delta := req.Stock - product.Stock; delta != 0 {
			updated, err := h.ledger.ApplyStockDelta(tx, product.ID, delta, database.StockEntryManualAdjustment, "Manual product edit")
			if err != nil {
				return err
			}
			newStock = updated.Stock
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	product.Name = req.Name
	product.SKU = req.SKU
	product.Category = req.Category
	product.SupplierID = req.SupplierID
	product.LowStockThreshold = req.LowStockThreshold
	product.CostPrice = req.CostPrice
	product.SellingPrice = req.SellingPrice
	product.ImageURL = req.ImageURL
	product.Description = req.Description
	product.Stock = newStock

	c.JSON(http.StatusOK, gin.H{"data": product})
}

type AdjustStockRequest struct {
	Quantity int    `json:"quantity" binding:"required"` // signed delta
	Note     string `json:"note"`
}

// AdjustStock applies a manual stock adjustment. Negative resulting stock is
// allowed (backorder).
func (h *Handler) AdjustStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := req.Note
	if note == "" {
		note = "Manual stock adjustment"
	}

	product, err := h.ledger.ApplyStockDelta(nil, productID, req.Quantity, database.StockEntryManualAdjustment, note)
	if err != nil {
		c.JSON(database.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// History returns the product's stock history, newest first
func (h *Handler) History(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	entries, err := h.ledger.History(productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stock history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// Delete soft-deletes a product. Sales and history keep referencing the id.
func (h *Handler) Delete(c *gin.Context) {
	productID := c.Param("id")

	var product database.Product
	if err := h.db.Where("id = ?", productID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.db.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
