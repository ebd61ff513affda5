package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Subscription is a purchasable subscription plan.
type Subscription struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"unique;not null"`
	Description  string          `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(14,2);not null"`
	DurationDays int             `json:"duration_days" gorm:"not null"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `json:"-" gorm:"index"`
}

type SubscriptionOrder struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"not null;index"`
	User           *User           `json:"user,omitempty"`
	SubscriptionID uint            `json:"subscription_id" gorm:"not null"`
	Subscription   *Subscription   `json:"subscription,omitempty"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	PaymentMethod  string          `json:"payment_method" gorm:"not null"`
	PaymentCode    int64           `json:"payment_code" gorm:"unique;not null"`
	Status         string          `json:"status" gorm:"default:'unverified';index"`
	StartsAt       *time.Time      `json:"starts_at"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type SubscriptionOrderStatus string

const (
	SubscriptionUnverified SubscriptionOrderStatus = "unverified"
	SubscriptionPending    SubscriptionOrderStatus = "pending"
	SubscriptionActive     SubscriptionOrderStatus = "active"
	SubscriptionCancelled  SubscriptionOrderStatus = "cancelled"
)
