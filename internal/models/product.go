package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	Name            string              `json:"name" gorm:"not null"`
	Description     string              `json:"description" gorm:"type:text"`
	Price           decimal.Decimal     `json:"price" gorm:"type:numeric(14,2);not null"`
	SubscriberPrice decimal.NullDecimal `json:"subscriber_price" gorm:"type:numeric(14,2)"`
	Stock           int                 `json:"stock" gorm:"not null;default:0"`
	CategoryID      *uint               `json:"category_id" gorm:"index"`
	Category        *Category           `json:"category,omitempty"`
	ImageURL        string              `json:"image_url"`
	Rating          float64             `json:"rating" gorm:"default:0"`
	ReviewCount     int                 `json:"review_count" gorm:"default:0"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `json:"-" gorm:"index"`
}

// PriceFor returns the unit price the given buyer pays. Active subscribers
// get the subscriber price when one is set.
func (p *Product) PriceFor(u *User, now time.Time) decimal.Decimal {
	if u != nil && p.SubscriberPrice.Valid && u.IsActiveSubscriber(now) {
		return p.SubscriberPrice.Decimal
	}
	return p.Price
}
