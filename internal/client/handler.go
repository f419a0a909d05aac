package client

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type ClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	DNI     string `json:"dni"`
}

// List returns all registered clients
func (h *Handler) List(c *gin.Context) {
	var clients []database.Client
	if err := h.db.Order("name ASC").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": clients})
}

// Create adds a new client
func (h *Handler) Create(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := database.Client{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
		DNI:     req.DNI,
	}

	if err := h.db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": client})
}

// Get returns a single client
func (h *Handler) Get(c *gin.Context) {
	clientID := c.Param("id")

	var client database.Client
	if err := h.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": client})
}

// Update modifies a client
func (h *Handler) Update(c *gin.Context) {
	clientID := c.Param("id")

	var client database.Client
	if err := h.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client.Name = req.Name
	client.Address = req.Address
	client.Phone = req.Phone
	client.Email = req.Email
	client.DNI = req.DNI

	if err := h.db.Save(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": client})
}

// Delete removes a client unless sales still reference it
func (h *Handler) Delete(c *gin.Context) {
	clientID := c.Param("id")

	var client database.Client
	if err := h.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var saleCount int64
	h.db.Model(&database.Sale{}).Where("client_id = ?", client.ID).Count(&saleCount)
	if saleCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Client has associated sales"})
		return
	}

	if err := h.db.Delete(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}
