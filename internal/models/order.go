package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrderNumber     string          `json:"order_number" gorm:"unique;not null"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	User            *User           `json:"user,omitempty"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:numeric(14,2);not null"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" gorm:"type:numeric(14,2);not null;default:0"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	VoucherID       *uint           `json:"voucher_id"`
	PaymentMethod   string          `json:"payment_method" gorm:"not null"`
	PaymentCode     int64           `json:"payment_code" gorm:"unique;not null"`
	Status          string          `json:"status" gorm:"default:'unverified';index"`
	ShippingAddress string          `json:"shipping_address" gorm:"type:text;not null"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
}

type OrderStatus string

const (
	OrderUnverified OrderStatus = "unverified"
	OrderPending    OrderStatus = "pending"
	OrderShipping   OrderStatus = "shipping"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	OnlineBanking  PaymentMethod = "Online Banking"
	CashOnDelivery PaymentMethod = "Cash on Delivery"
)

func ValidPaymentMethod(m string) bool {
	return m == string(OnlineBanking) || m == string(CashOnDelivery)
}
