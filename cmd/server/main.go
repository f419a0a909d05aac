package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jfarias/abarrotes-backend/internal/category"
	"github.com/jfarias/abarrotes-backend/internal/client"
	"github.com/jfarias/abarrotes-backend/internal/dashboard"
	"github.com/jfarias/abarrotes-backend/internal/inventory"
	"github.com/jfarias/abarrotes-backend/internal/ledger"
	"github.com/jfarias/abarrotes-backend/internal/order"
	"github.com/jfarias/abarrotes-backend/internal/product"
	"github.com/jfarias/abarrotes-backend/internal/purchase"
	"github.com/jfarias/abarrotes-backend/internal/reports"
	"github.com/jfarias/abarrotes-backend/internal/sale"
	"github.com/jfarias/abarrotes-backend/internal/supplier"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/jfarias/abarrotes-backend/pkg/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Core services. The ledger is the only writer of stock and cost fields;
	// sale, purchase and product flows all route through it.
	ledgerService := ledger.New(db)
	saleService := sale.NewService(db, ledgerService, log)
	purchaseService := purchase.NewService(db, ledgerService, log)
	orderService := order.NewService(db, saleService, log)
	categoryService := category.NewService(db)

	// Setup Gin router
	r := gin.Default()
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Product routes
		productHandler := product.NewHandler(db, ledgerService)
		v1.GET("/products", productHandler.List)
		v1.POST("/products", productHandler.Create)
		v1.GET("/products/:id", productHandler.Get)
		v1.PUT("/products/:id", productHandler.Update)
		v1.DELETE("/products/:id", productHandler.Delete)
		v1.PUT("/products/:id/stock", productHandler.AdjustStock)
		v1.GET("/products/:id/history", productHandler.History)

		// Category routes
		categoryHandler := category.NewHandler(db, categoryService)
		v1.GET("/categories", categoryHandler.List)
		v1.POST("/categories", categoryHandler.Create)
		v1.PUT("/categories/:id", categoryHandler.Update)
		v1.DELETE("/categories/:id", categoryHandler.Delete)

		// Supplier routes
		supplierHandler := supplier.NewHandler(db)
		v1.GET("/suppliers", supplierHandler.List)
		v1.POST("/suppliers", supplierHandler.Create)
		v1.GET("/suppliers/:id", supplierHandler.Get)
		v1.PUT("/suppliers/:id", supplierHandler.Update)
		v1.DELETE("/suppliers/:id", supplierHandler.Delete)

		// Client routes
		clientHandler := client.NewHandler(db)
		v1.GET("/clients", clientHandler.List)
		v1.POST("/clients", clientHandler.Create)
		v1.GET("/clients/:id", clientHandler.Get)
		v1.PUT("/clients/:id", clientHandler.Update)
		v1.DELETE("/clients/:id", clientHandler.Delete)

		// Sale routes
		saleHandler := sale.NewHandler(db, saleService)
		v1.GET("/sales", saleHandler.List)
		v1.POST("/sales", saleHandler.Create)
		v1.GET("/sales/:id", saleHandler.Get)
		v1.POST("/sales/:id/cancel", saleHandler.Cancel)

		// Purchase routes
		purchaseHandler := purchase.NewHandler(db, purchaseService)
		v1.GET("/purchases", purchaseHandler.List)
		v1.POST("/purchases", purchaseHandler.Create)
		v1.GET("/purchases/:id", purchaseHandler.Get)
		v1.PUT("/purchases/:id", purchaseHandler.Update)
		v1.DELETE("/purchases/:id", purchaseHandler.Delete)
		v1.POST("/purchases/:id/receive", purchaseHandler.Receive)

		// Online order routes
		orderHandler := order.NewHandler(db, orderService)
		v1.GET("/orders", orderHandler.List)
		v1.POST("/orders", orderHandler.Create)
		v1.GET("/orders/:id", orderHandler.Get)
		v1.POST("/orders/:id/confirm", orderHandler.Confirm)
		v1.POST("/orders/:id/ship", orderHandler.Ship)

		// Inventory routes
		inventoryHandler := inventory.NewHandler(db)
		v1.GET("/inventory", inventoryHandler.GetInventory)
		v1.GET("/inventory/summary", inventoryHandler.GetSummary)
		v1.GET("/inventory/alerts", inventoryHandler.GetAlerts)

		// Dashboard routes
		dashboardHandler := dashboard.NewHandler(db)
		v1.GET("/dashboard/stats", dashboardHandler.GetStats)
		v1.GET("/dashboard/top-products", dashboardHandler.GetTopProducts)
		v1.GET("/dashboard/recent-sales", dashboardHandler.GetRecentSales)

		// Reports routes
		reportsHandler := reports.NewHandler(db)
		v1.GET("/reports/sales", reportsHandler.GetSalesReport)
		v1.GET("/reports/sales/export", reportsHandler.ExportSalesReport)
		v1.GET("/reports/stock-valuation", reportsHandler.GetStockValuation)
		v1.GET("/reports/stock-valuation/export", reportsHandler.ExportStockValuation)
		v1.GET("/reports/purchases", reportsHandler.GetPurchasesReport)
		v1.GET("/reports/purchases/export", reportsHandler.ExportPurchasesReport)
		v1.GET("/reports/low-stock/export", reportsHandler.ExportLowStock)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Infof("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
