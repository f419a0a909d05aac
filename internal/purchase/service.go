package purchase

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/internal/ledger"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service manages purchase orders and their reception into stock.
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
	log    *logrus.Logger
}

func NewService(db *gorm.DB, lg *ledger.Service, log *logrus.Logger) *Service {
	return &Service{db: db, ledger: lg, log: log}
}

type ItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type CreateInput struct {
	SupplierID uuid.UUID   `json:"supplier_id" binding:"required"`
	Items      []ItemInput `json:"items" binding:"required"`
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: purchase needs at least one item", database.ErrValidation)
	}
	for _, line := range items {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", database.ErrValidation)
		}
	}
	return nil
}

func itemsTotal(items []ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.UnitCost.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Create registers a new purchase order. Purchases always start pending; no
// stock moves until reception.
func (s *Service) Create(input CreateInput) (*database.Purchase, error) {
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	purchase := database.Purchase{
		SupplierID: input.SupplierID,
		Total:      itemsTotal(input.Items),
		Status:     database.PurchaseStatusPending,
	}
	for _, line := range input.Items {
		purchase.Items = append(purchase.Items, database.PurchaseItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
		})
	}

	if err := s.db.Create(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Update replaces a pending purchase's items and recomputes its total.
// Received purchases are frozen.
func (s *Service) Update(purchaseID uuid.UUID, items []ItemInput) (*database.Purchase, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	purchase, err := s.load(purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != database.PurchaseStatusPending {
		return nil, fmt.Errorf("%w: purchase is %s", database.ErrInvalidState, purchase.Status)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.replaceItems(tx, purchase, items, database.PurchaseStatusPending)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// Receive converts a pending purchase into stock. The reconciled items (which
// may differ from the original order once actual delivered quantities are
// known) drive the stock increases; each product's cost price is overwritten
// with the received unit cost, last write wins. Receiving an already-received
// purchase fails with ErrInvalidState and has no stock or history effect.
func (s *Service) Receive(purchaseID uuid.UUID, reconciled []ItemInput) (*database.Purchase, error) {
	purchase, err := s.load(purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != database.PurchaseStatusPending {
		return nil, fmt.Errorf("%w: purchase is %s", database.ErrInvalidState, purchase.Status)
	}

	if reconciled == nil {
		for _, item := range purchase.Items {
			reconciled = append(reconciled, ItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitCost:  item.UnitCost,
			})
		}
	}
	if err := validateItems(reconciled); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range reconciled {
			note := fmt.Sprintf("Purchase %s", purchase.ID)
			if _, err := s.ledger.ApplyStockDelta(tx, line.ProductID, line.Quantity, database.StockEntryPurchase, note); err != nil {
				return err
			}
			if err := s.ledger.ApplyCostUpdate(tx, line.ProductID, line.UnitCost); err != nil {
				return err
			}
		}

		return s.replaceItems(tx, purchase, reconciled, database.PurchaseStatusReceived)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"purchase_id": purchase.ID,
		"items":       len(purchase.Items),
		"total":       purchase.Total,
	}).Info("purchase received")

	return purchase, nil
}

// Delete removes a purchase record. Stock already received stays untouched.
func (s *Service) Delete(purchaseID uuid.UUID) error {
	purchase, err := s.load(purchaseID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&database.PurchaseItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(purchase).Error
	})
}

func (s *Service) load(purchaseID uuid.UUID) (*database.Purchase, error) {
	var purchase database.Purchase
	if err := s.db.Preload("Items").Where("id = ?", purchaseID).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// replaceItems swaps the purchase's item rows for the given lines and
// persists the recomputed total and status. Mutates purchase on success.
func (s *Service) replaceItems(tx *gorm.DB, purchase *database.Purchase, items []ItemInput, status string) error {
	if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&database.PurchaseItem{}).Error; err != nil {
		return err
	}

	newItems := make([]database.PurchaseItem, 0, len(items))
	for _, line := range items {
		newItems = append(newItems, database.PurchaseItem{
			PurchaseID: purchase.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
		})
	}
	if err := tx.Create(&newItems).Error; err != nil {
		return err
	}

	total := itemsTotal(items)
	if err := tx.Model(purchase).Updates(map[string]interface{}{
		"total":  total,
		"status": status,
	}).Error; err != nil {
		return err
	}

	purchase.Items = newItems
	purchase.Total = total
	purchase.Status = status
	return nil
}
