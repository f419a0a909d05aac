package sale

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

// List returns all sales, newest first
func (h *Handler) List(c *gin.Context) {
	query := h.db.Preload("Items").Preload("Items.Product").Preload("Client")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if origin := c.Query("origin"); origin != "" {
		query = query.Where("origin = ?", origin)
	}

	var sales []database.Sale
	if err := query.Order("created_at DESC").Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sales})
}

// Create processes a new sale
func (h *Handler) Create(c *gin.Context) {
	var req CommitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sale, err := h.service.Commit(req)
	if err != nil {
		c.JSON(database.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	// Reload with associations
	h.db.Preload("Items").Preload("Items.Product").Preload("Client").Where("id = ?", sale.ID).First(sale)

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

// Get returns a single sale
func (h *Handler) Get(c *gin.Context) {
	saleID := c.Param("id")

	var sale database.Sale
	if err := h.db.Where("id = ?", saleID).
		Preload("Items").
		Preload("Items.Product").
		Preload("Client").
		First(&sale).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

// Cancel voids a completed sale and restores its stock
func (h *Handler) Cancel(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale id"})
		return
	}

	sale, err := h.service.Cancel(saleID)
	if err != nil {
		c.JSON(database.ErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}
