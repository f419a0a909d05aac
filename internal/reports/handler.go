package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type ReportRequest struct {
	StartDate string `form:"start_date"` // Format: 2024-01-01
	EndDate   string `form:"end_date"`   // Format: 2024-01-31
}

func (r ReportRequest) dateRange() (time.Time, time.Time) {
	// Default to current month if no dates provided
	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	endDate := time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 0, now.Location())

	if r.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", r.StartDate); err == nil {
			startDate = parsed
		}
	}
	if r.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", r.EndDate); err == nil {
			endDate = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, parsed.Location())
		}
	}
	return startDate, endDate
}

type SaleRow struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	Date          string          `json:"date"`
	Customer      string          `json:"customer"`
	Origin        string          `json:"origin"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	ItemsSold     int             `json:"items_sold"`
	Total         decimal.Decimal `json:"total"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
}

type SalesReport struct {
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	TotalTransactions int             `json:"total_transactions"`
	TotalItemsSold    int             `json:"total_items_sold"`
	Rows              []SaleRow       `json:"rows"`
}

// buildSalesReport lists sales in the range with per-sale cost and profit
// derived from the cost snapshots captured at commit time. Cancelled sales
// appear as rows but are excluded from the totals.
func (h *Handler) buildSalesReport(start, end time.Time) (*SalesReport, error) {
	var sales []database.Sale
	if err := h.db.Preload("Items").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at ASC").
		Find(&sales).Error; err != nil {
		return nil, err
	}

	report := &SalesReport{
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		TotalSales:  decimal.Zero,
		TotalCost:   decimal.Zero,
		GrossProfit: decimal.Zero,
		Rows:        []SaleRow{},
	}

	for _, s := range sales {
		cost := decimal.Zero
		itemsSold := 0
		for _, item := range s.Items {
			cost = cost.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			itemsSold += item.Quantity
		}

		customer := s.CustomerName
		if customer == "" {
			customer = "Consumidor Final"
		}

		report.Rows = append(report.Rows, SaleRow{
			SaleID:        s.ID,
			Date:          s.CreatedAt.Format("2006-01-02 15:04"),
			Customer:      customer,
			Origin:        s.Origin,
			PaymentMethod: s.PaymentMethod,
			Status:        s.Status,
			ItemsSold:     itemsSold,
			Total:         s.Total,
			Cost:          cost,
			Profit:        s.Total.Sub(cost),
		})

		if s.Status == database.SaleStatusCancelled {
			continue
		}
		report.TotalSales = report.TotalSales.Add(s.Total)
		report.TotalCost = report.TotalCost.Add(cost)
		report.TotalTransactions++
		report.TotalItemsSold += itemsSold
	}
	report.GrossProfit = report.TotalSales.Sub(report.TotalCost)

	return report, nil
}

// GetSalesReport returns the sales report for a date range
func (h *Handler) GetSalesReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end := req.dateRange()
	report, err := h.buildSalesReport(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// ExportSalesReport downloads the sales report as an Excel workbook
func (h *Handler) ExportSalesReport(c *gin.Context) {
	var req ReportRequest
	c.ShouldBindQuery(&req)

	start, end := req.dateRange()
	report, err := h.buildSalesReport(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report"})
		return
	}

	headers := []string{"Fecha", "ID Venta", "Cliente", "Origen", "Pago", "Estado", "Artículos", "Total", "Costo", "Ganancia"}
	rows := make([][]interface{}, 0, len(report.Rows))
	for _, r := range report.Rows {
		status := "Completada"
		if r.Status == database.SaleStatusCancelled {
			status = "Anulada"
		}
		rows = append(rows, []interface{}{
			r.Date, r.SaleID.String(), r.Customer, r.Origin, r.PaymentMethod, status,
			r.ItemsSold, r.Total.InexactFloat64(), r.Cost.InexactFloat64(), r.Profit.InexactFloat64(),
		})
	}

	writeWorkbook(c, "reporte_ventas_detallado", headers, rows)
}

type StockValuationRow struct {
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	StockValue  decimal.Decimal `json:"stock_value"`
}

func (h *Handler) buildStockValuation() ([]StockValuationRow, error) {
	var products []database.Product
	if err := h.db.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}

	rows := make([]StockValuationRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, StockValuationRow{
			ProductName: p.Name,
			SKU:         p.SKU,
			Category:    p.Category,
			Stock:       p.Stock,
			CostPrice:   p.CostPrice,
			StockValue:  p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))),
		})
	}
	return rows, nil
}

// GetStockValuation returns current stock valued at cost
func (h *Handler) GetStockValuation(c *gin.Context) {
	rows, err := h.buildStockValuation()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build stock valuation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ExportStockValuation downloads the stock valuation as an Excel workbook
func (h *Handler) ExportStockValuation(c *gin.Context) {
	valuation, err := h.buildStockValuation()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build stock valuation"})
		return
	}

	headers := []string{"Producto", "SKU", "Rubro", "Stock", "Costo Unitario", "Valor de Stock"}
	rows := make([][]interface{}, 0, len(valuation))
	for _, r := range valuation {
		rows = append(rows, []interface{}{
			r.ProductName, r.SKU, r.Category, r.Stock,
			r.CostPrice.InexactFloat64(), r.StockValue.InexactFloat64(),
		})
	}

	writeWorkbook(c, "reporte_valorizacion_stock", headers, rows)
}

type PurchaseRow struct {
	PurchaseID uuid.UUID       `json:"purchase_id"`
	Date       string          `json:"date"`
	Supplier   string          `json:"supplier"`
	Status     string          `json:"status"`
	Items      int             `json:"items"`
	Total      decimal.Decimal `json:"total"`
}

func (h *Handler) buildPurchasesReport(start, end time.Time) ([]PurchaseRow, error) {
	var purchases []database.Purchase
	if err := h.db.Preload("Items").Preload("Supplier").
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at ASC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}

	rows := make([]PurchaseRow, 0, len(purchases))
	for _, p := range purchases {
		supplierName := ""
		if p.Supplier != nil {
			supplierName = p.Supplier.Name
		}
		itemCount := 0
		for _, item := range p.Items {
			itemCount += item.Quantity
		}
		rows = append(rows, PurchaseRow{
			PurchaseID: p.ID,
			Date:       p.CreatedAt.Format("2006-01-02 15:04"),
			Supplier:   supplierName,
			Status:     p.Status,
			Items:      itemCount,
			Total:      p.Total,
		})
	}
	return rows, nil
}

// GetPurchasesReport returns purchases for a date range
func (h *Handler) GetPurchasesReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end := req.dateRange()
	rows, err := h.buildPurchasesReport(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build purchases report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ExportPurchasesReport downloads the purchases report as an Excel workbook
func (h *Handler) ExportPurchasesReport(c *gin.Context) {
	var req ReportRequest
	c.ShouldBindQuery(&req)

	start, end := req.dateRange()
	report, err := h.buildPurchasesReport(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build purchases report"})
		return
	}

	headers := []string{"Fecha", "ID Compra", "Proveedor", "Estado", "Artículos", "Total"}
	rows := make([][]interface{}, 0, len(report))
	for _, r := range report {
		status := "Pendiente"
		if r.Status == database.PurchaseStatusReceived {
			status = "Recibida"
		}
		rows = append(rows, []interface{}{
			r.Date, r.PurchaseID.String(), r.Supplier, status, r.Items, r.Total.InexactFloat64(),
		})
	}

	writeWorkbook(c, "reporte_compras", headers, rows)
}

// ExportLowStock downloads products at or below their threshold
func (h *Handler) ExportLowStock(c *gin.Context) {
	var products []database.Product
	if err := h.db.Where("stock <= low_stock_threshold").
		Order("stock ASC").
		Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build low stock report"})
		return
	}

	headers := []string{"Producto", "SKU", "Rubro", "Stock", "Umbral"}
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, []interface{}{p.Name, p.SKU, p.Category, p.Stock, p.LowStockThreshold})
	}

	writeWorkbook(c, "reporte_stock_bajo", headers, rows)
}

// writeWorkbook streams a single-sheet xlsx with a header row to the client
func writeWorkbook(c *gin.Context, baseName string, headers []string, rows [][]interface{}) {
	f := excelize.NewFile()
	defer f.Close()

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, header)
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue("Sheet1", cell, value)
		}
	}

	f.SetColWidth("Sheet1", "A", "B", 20)

	fileName := fmt.Sprintf("%s_%s.xlsx", baseName, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate workbook"})
		return
	}
}
