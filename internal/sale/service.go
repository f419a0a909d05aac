package sale

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

// Service commits and cancels sales. All stock effects go through the ledger
// and every compound operation runs inside one database transaction.
type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
	log    *logrus.Logger
}

func NewService(db *gorm.DB, lg *ledger.Service, log *logrus.Logger) *Service {
	return &Service{db: db, ledger: lg, log: log}
}

type LineInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CommitInput struct {
	Items         []LineInput `json:"items" binding:"required"`
	ClientID      *uuid.UUID  `json:"client_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	PaymentMethod string      `json:"payment_method"`
	Origin        string      `json:"origin"`
}

// Commit converts cart lines into a completed sale. Each line snapshots the
// product's current cost price before any stock is touched, so later profit
// reports are immune to cost changes. Quantities are not checked against
// available stock; oversell drives stock negative.
func (s *Service) Commit(input CommitInput) (*database.Sale, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: sale needs at least one item", database.ErrValidation)
	}
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", database.ErrValidation)
		}
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}
	origin := input.Origin
	if origin == "" {
		origin = "pos"
	}

	var sale database.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []database.SaleItem
		total := decimal.Zero

		for _, line := range input.Items {
			var product database.Product
			if err := tx.Where("id = ?", line.ProductID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return database.ErrProductNotFound
				}
				return err
			}

			lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			items = append(items, database.SaleItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				CostPrice: product.CostPrice,
			})
			total = total.Add(lineTotal)
		}

		sale = database.Sale{
			Items:         items,
			Total:         total,
			ClientID:      input.ClientID,
			CustomerName:  input.CustomerName,
			CustomerPhone: input.CustomerPhone,
			PaymentMethod: paymentMethod,
			Origin:        origin,
			Status:        database.SaleStatusCompleted,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		for _, line := range input.Items {
			note := fmt.Sprintf("Sale %s", sale.ID)
			if _, err := s.ledger.ApplyStockDelta(tx, line.ProductID, -line.Quantity, database.StockEntrySale, note); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"sale_id": sale.ID,
		"items":   len(sale.Items),
		"total":   sale.Total,
		"origin":  sale.Origin,
	}).Info("sale committed")

	return &sale, nil
}

// Cancel reverses a completed sale's stock effect and marks it cancelled.
// Each original line's sold quantity is restored regardless of stock changes
// that happened in between. Lines whose product has since been deleted are
// skipped; the sale is still marked cancelled. Items, total and timestamps
// are never altered.
func (s *Service) Cancel(saleID uuid.UUID) (*database.Sale, error) {
	var sale database.Sale
	if err := s.db.Preload("Items").Where("id = ?", saleID).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrSaleNotFound
		}
		return nil, err
	}
	if sale.Status != database.SaleStatusCompleted {
		return nil, fmt.Errorf("%w: sale is %s", database.ErrInvalidState, sale.Status)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range sale.Items {
			note := fmt.Sprintf("Cancel of sale %s", sale.ID)
			_, err := s.ledger.ApplyStockDelta(tx, item.ProductID, item.Quantity, database.StockEntrySaleCancellation, note)
			if errors.Is(err, database.ErrProductNotFound) {
				// Product deleted after the sale: nothing to restore stock
				// to, but the cancellation itself still goes through.
				continue
			}
			if err != nil {
				return err
			}
		}

		return tx.Model(&sale).Update("status", database.SaleStatusCancelled).Error
	})
	if err != nil {
		return nil, err
	}
	sale.Status = database.SaleStatusCancelled

	s.log.WithFields(logrus.Fields{
		"sale_id": sale.ID,
		"items":   len(sale.Items),
	}).Info("sale cancelled")

	return &sale, nil
}
