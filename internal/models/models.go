package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

const (
	OrderStatusNew        = "new"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	AvatarURL    string    `json:"avatar_url"`
	AvatarKey    string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name        string    `gorm:"not null"                  json:"name"`
	Description string    `gorm:"not null"                  json:"description"`
	Price       float64   `gorm:"not null;check:price >= 0" json:"price"`
	Category    string    `gorm:"index;not null"            json:"category"`
	Stock       uint      `json:"stock"`
	ImageURL    string    `json:"image_url"`
	ImageKey    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cart is the single mutable pre-checkout document of a user. Totals are
// recomputed in BeforeSave on every persist and never taken from the client.
type Cart struct {
	ID        uint       `gorm:"primaryKey"           json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey"                 json:"id"`
	CartID    uint    `gorm:"index;not null"             json:"cart_id"`
	ProductID uint    `gorm:"not null"                   json:"product_id"`
	Name      string  `gorm:"not null"                   json:"name"`
	UnitPrice float64 `gorm:"not null"                   json:"unit_price"`
	Quantity  uint    `gorm:"default:1;check:quantity>0" json:"quantity"`
	LineTotal float64 `json:"line_total"`
	ImageURL  string  `json:"image_url"`
}

func (i *CartItem) BeforeSave(tx *gorm.DB) error {
	i.LineTotal = float64(i.Quantity) * i.UnitPrice
	return nil
}

func (c *Cart) BeforeSave(tx *gorm.DB) error {
	var total float64
	for idx := range c.Items {
		c.Items[idx].LineTotal = float64(c.Items[idx].Quantity) * c.Items[idx].UnitPrice
		total += c.Items[idx].LineTotal
	}
	c.Total = total
	return nil
}

// Order is an immutable post-checkout snapshot. PaymentStatus moves
// pending -> paid or pending -> failed, both terminal.
type Order struct {
	ID            uint        `gorm:"primaryKey"               json:"id"`
	UserID        uint        `gorm:"index;not null"           json:"user_id"`
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	FirstName     string      `gorm:"not null" json:"first_name"`
	LastName      string      `gorm:"not null" json:"last_name"`
	Email         string      `gorm:"not null" json:"email"`
	Phone         string      `json:"phone"`
	Address       string      `gorm:"not null" json:"address"`
	City          string      `gorm:"not null" json:"city"`
	PostalCode    string      `json:"postal_code"`
	Country       string      `gorm:"not null" json:"country"`
	PaymentMethod string      `gorm:"not null"                 json:"payment_method"`
	PaymentStatus string      `gorm:"not null;default:pending" json:"payment_status"`
	Status        string      `gorm:"not null;default:new"     json:"status"`
	TotalAmount   float64     `gorm:"not null"                 json:"total_amount"`
	TransactionID string      `gorm:"index"                    json:"transaction_id"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                 json:"id"`
	OrderID   uint    `gorm:"index;not null"             json:"order_id"`
	ProductID uint    `gorm:"not null"                   json:"product_id"`
	Name      string  `gorm:"not null"                   json:"name"`
	UnitPrice float64 `gorm:"not null"                   json:"unit_price"`
	Quantity  uint    `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null"   json:"name"`
	Email     string    `gorm:"not null"   json:"email"`
	Subject   string    `gorm:"not null"   json:"subject"`
	Body      string    `gorm:"not null"   json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
