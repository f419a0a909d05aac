package order

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jfarias/abarrotes-backend/internal/sale"
	"github.com/jfarias/abarrotes-backend/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service manages storefront orders. Orders hold cart lines until a
// confirmation turns them into a committed sale through the sale processor.
type Service struct {
	db    *gorm.DB
	sales *sale.Service
	log   *logrus.Logger
}

func NewService(db *gorm.DB, sales *sale.Service, log *logrus.Logger) *Service {
	return &Service{db: db, sales: sales, log: log}
}

type LineInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateInput struct {
	CustomerName  string      `json:"customer_name" binding:"required"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	Items         []LineInput `json:"items" binding:"required"`
}

// Create registers a pending order from the storefront cart. No stock moves
// until the order is confirmed.
func (s *Service) Create(input CreateInput) (*database.OnlineOrder, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", database.ErrValidation)
	}

	order := database.OnlineOrder{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Status:        database.OrderStatusPending,
	}
	total := decimal.Zero
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", database.ErrValidation)
		}
		order.Items = append(order.Items, database.OnlineOrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	order.Total = total

	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Confirm processes a pending order: the customer is matched to a registered
// client by email or phone (created when no match exists), the order lines
// are committed as an online sale, and the order is marked paid.
func (s *Service) Confirm(orderID uuid.UUID) (*database.OnlineOrder, error) {
	var order database.OnlineOrder
	if err := s.db.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != database.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", database.ErrInvalidState, order.Status)
	}

	client, err := s.findOrCreateClient(&order)
	if err != nil {
		return nil, err
	}

	lines := make([]sale.LineInput, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, sale.LineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	committed, err := s.sales.Commit(sale.CommitInput{
		Items:         lines,
		ClientID:      &client.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		PaymentMethod: "card",
		Origin:        "online",
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&order).Update("status", database.OrderStatusPaid).Error; err != nil {
		return nil, err
	}
	order.Status = database.OrderStatusPaid

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"sale_id":  committed.ID,
		"client":   client.ID,
	}).Info("online order confirmed")

	return &order, nil
}

// MarkShipped transitions a paid order to shipped.
func (s *Service) MarkShipped(orderID uuid.UUID) (*database.OnlineOrder, error) {
	var order database.OnlineOrder
	if err := s.db.Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != database.OrderStatusPaid {
		return nil, fmt.Errorf("%w: order is %s", database.ErrInvalidState, order.Status)
	}

	if err := s.db.Model(&order).Update("status", database.OrderStatusShipped).Error; err != nil {
		return nil, err
	}
	order.Status = database.OrderStatusShipped
	return &order, nil
}

func (s *Service) findOrCreateClient(order *database.OnlineOrder) (*database.Client, error) {
	var client database.Client
	err := s.db.Where("email = ? AND email <> ''", order.CustomerEmail).
		Or("phone = ? AND phone <> ''", order.CustomerPhone).
		First(&client).Error
	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = database.Client{
		Name:  order.CustomerName,
		Email: order.CustomerEmail,
		Phone: order.CustomerPhone,
	}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}
