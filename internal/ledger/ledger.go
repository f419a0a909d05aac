package ledger

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the single choke point through which product stock and cost
// fields change. Every stock mutation appends one StockHistory entry, so the
// sum of historical deltas always reconstructs current stock.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ApplyStockDelta adds delta to the product's stock and appends a history
// entry recording the change. Negative resulting stock is allowed and
// represents backorder. A zero delta writes no history entry and leaves the
// product untouched; the loaded product is still returned.
//
// The product row is written before the history entry, so on a failure
// between the two writes history lags product state but never precedes it.
// Callers composing multi-line flows pass their own transaction handle.
func (s *Service) ApplyStockDelta(tx *gorm.DB, productID uuid.UUID, delta int, entryType, note string) (*database.Product, error) {
	if tx == nil {
		tx = s.db
	}

	var product database.Product
	if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrProductNotFound
		}
		return nil, err
	}

	if delta == 0 {
		return &product, nil
	}

	newStock := product.Stock + delta
	if err := tx.Model(&product).Update("stock", newStock).Error; err != nil {
		return nil, err
	}
	product.Stock = newStock

	entry := database.StockHistory{
		ProductID:      product.ID,
		Type:           entryType,
		QuantityChange: delta,
		NewStockLevel:  newStock,
		Note:           note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	return &product, nil
}

// ApplyCostUpdate overwrites the product's cost price. No history entry is
// written; the accompanying stock delta of a purchase reception carries the
// semantic record.
func (s *Service) ApplyCostUpdate(tx *gorm.DB, productID uuid.UUID, newCost decimal.Decimal) error {
	if tx == nil {
		tx = s.db
	}

	res := tx.Model(&database.Product{}).Where("id = ?", productID).Update("cost_price", newCost)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return database.ErrProductNotFound
	}
	return nil
}

// History returns a product's stock history, newest first.
func (s *Service) History(productID uuid.UUID) ([]database.StockHistory, error) {
	var entries []database.StockHistory
	err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
