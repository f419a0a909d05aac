package purchase

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	service *Service
}

func NewHandler(db *gorm.DB, service *Service) *Handler {
	return &Handler{db: db, service: service}
}

// List returns all purchases, optionally filtered by status
func (h *Handler) List(c *gin.Context) {
	query := h.db.Preload("Items").Preload("Items.Product").Preload("Supplier")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var purchases []database.Purchase
	if err := query.Order("created_at DESC").Find(&purchases).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch purchases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": purchases})
}

// Create registers a new pending purchase order
func (h *Handler) Create(c *gin.Context) {
	var req CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.service.Create(req)
	if err != nil {
		c.JSON(database.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": purchase})
}

// Get returns a single purchase
func (h *Handler) Get(c *gin.Context) {
	purchaseID := c.Param("id")

	var purchase database.Purchase
	if err := h.db.Where("id = ?", purchaseID).
		Preload("Items").
		Preload("Items.Product").
		Preload("Supplier").
		First(&purchase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Purchase not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": purchase})
}

type updateRequest struct {
	Items []ItemInput `json:"items" binding:"required"`
}

// Update edits a pending purchase's items
func (h *Handler) Update(c *gin.Context) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase id"})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.service.Update(purchaseID, req.Items)
	if err != nil {
		c.JSON(database.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": purchase})
}

type receiveRequest struct {
	Items []ItemInput `json:"items"`
}

// Receive marks a pending purchase as received, applying the reconciled
// quantities to stock and overwriting product costs
func (h *Handler) Receive(c *gin.Context) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase id"})
		return
	}

	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purchase, err := h.service.Receive(purchaseID, req.Items)
	if err != nil {
		c.JSON(database.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": purchase})
}

// Delete removes a purchase record without touching stock
func (h *Handler) Delete(c *gin.Context) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase id"})
		return
	}

	if err := h.service.Delete(purchaseID); err != nil {
		c.JSON(database.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Purchase deleted"})
}
