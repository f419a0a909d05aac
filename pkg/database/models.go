package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale status values
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Purchase status values
const (
	PurchaseStatusPending  = "pending"
	PurchaseStatusReceived = "received"
)

// Online order status values
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusShipped = "shipped"
)

// Stock history entry types. Reporting depends on these exact strings.
const (
	StockEntrySale             = "sale"
	StockEntryPurchase         = "purchase"
	StockEntryManualAdjustment = "manual_adjustment"
	StockEntryInitialStock     = "initial_stock"
	StockEntrySaleCancellation = "sale_cancellation"
)

// Base model for all entities
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns an ID so inserts behave the same on postgres and the
// sqlite test database.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Supplier represents a product vendor
type Supplier struct {
	BaseModel
	Name        string `gorm:"not null" json:"name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// Category for products. Products store the category name, not its id, so a
// rename cascades over matching products.
type Category struct {
	BaseModel
	Name string `gorm:"not null" json:"name"`
}

// Client represents a registered buyer
type Client struct {
	BaseModel
	Name    string `gorm:"not null" json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	DNI     string `json:"dni"`
}

// Product represents a sellable item. Stock and CostPrice are written only by
// the ledger. Stock may go negative (backorder).
type Product struct {
	BaseModel
	Name              string          `gorm:"not null" json:"name"`
	SKU               string          `json:"sku"`
	Category          string          `json:"category"`
	SupplierID        *uuid.UUID      `gorm:"type:uuid" json:"supplier_id"`
	Supplier          *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Stock             int             `gorm:"default:0" json:"stock"`
	LowStockThreshold int             `gorm:"default:10" json:"low_stock_threshold"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"selling_price"`
	ImageURL          string          `json:"image_url"`
	Description       string          `json:"description"`
}

// Sale represents a committed sale, from the register or the storefront.
// Items and total are immutable after commit; Status is the only field the
// canceller may change.
type Sale struct {
	BaseModel
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	ClientID      *uuid.UUID      `gorm:"type:uuid" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	PaymentMethod string          `gorm:"default:'cash'" json:"payment_method"` // cash, card
	Origin        string          `gorm:"default:'pos'" json:"origin"`          // pos, online
	Status        string          `gorm:"default:'completed'" json:"status"`    // completed, cancelled
}

// SaleItem is a sale line. CostPrice is a snapshot of the product's cost at
// commit time so profit reports survive later cost changes.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_price"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Purchase represents an order to a supplier. Items and costs are editable
// while pending; reception replaces them with the reconciled delivery.
type Purchase struct {
	BaseModel
	SupplierID uuid.UUID       `gorm:"type:uuid;not null" json:"supplier_id"`
	Supplier   *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items      []PurchaseItem  `gorm:"foreignKey:PurchaseID" json:"items"`
	Total      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	Status     string          `gorm:"default:'pending'" json:"status"` // pending, received
}

// PurchaseItem is a purchase line
type PurchaseItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_cost"`
}

func (i *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OnlineOrder represents a storefront order awaiting confirmation
type OnlineOrder struct {
	BaseModel
	CustomerName  string            `gorm:"not null" json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone"`
	Items         []OnlineOrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Total         decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"total"`
	Status        string            `gorm:"default:'pending'" json:"status"` // pending, paid, shipped
}

// OnlineOrderItem is an order line captured from the cart
type OnlineOrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
}

func (i *OnlineOrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// StockHistory is an append-only audit record of a stock mutation. Entries
// are written only by the ledger and never updated or deleted. For a given
// product, each NewStockLevel equals the previous entry's NewStockLevel plus
// this entry's QuantityChange.
type StockHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Type           string    `gorm:"not null" json:"type"`
	QuantityChange int       `gorm:"not null" json:"quantity_change"`
	NewStockLevel  int       `gorm:"not null" json:"new_stock_level"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (h *StockHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Supplier{},
		&Category{},
		&Client{},
		&Product{},
		&Sale{},
		&SaleItem{},
		&Purchase{},
		&PurchaseItem{},
		&OnlineOrder{},
		&OnlineOrderItem{},
		&StockHistory{},
	)
}
