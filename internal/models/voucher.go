package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Voucher struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	Code               string          `json:"code" gorm:"unique;not null"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" gorm:"type:numeric(5,2);not null"`
	MaxDiscount        decimal.Decimal `json:"max_discount" gorm:"type:numeric(14,2);not null"`
	SubscriberOnly     bool            `json:"subscriber_only" gorm:"default:false"`
	ExpiresAt          time.Time       `json:"expires_at" gorm:"not null"`
	IsUsed             bool            `json:"is_used" gorm:"default:false"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (v *Voucher) Expired(now time.Time) bool {
	return !v.ExpiresAt.After(now)
}

// Usable is true while the voucher is unused and has not expired.
func (v *Voucher) Usable(now time.Time) bool {
	return !v.IsUsed && !v.Expired(now)
}

// DiscountFor returns min(percentage/100 * subtotal, max discount).
func (v *Voucher) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	discount := subtotal.Mul(v.DiscountPercentage).Div(decimal.NewFromInt(100))
	return decimal.Min(discount, v.MaxDiscount)
}
