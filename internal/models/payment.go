package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Kind        string          `json:"kind" gorm:"not null"` // order, subscription
	ReferenceID uint            `json:"reference_id" gorm:"not null;index"`
	PaymentCode int64           `json:"payment_code" gorm:"unique;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Status      string          `json:"status" gorm:"default:'pending'"`
	CheckoutURL string          `json:"checkout_url"`
	QRCode      string          `json:"qr_code" gorm:"type:text"`
	PaidAt      *time.Time      `json:"paid_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type PaymentKind string

const (
	PaymentForOrder        PaymentKind = "order"
	PaymentForSubscription PaymentKind = "subscription"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)
