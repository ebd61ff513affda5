package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"unique;not null"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"cart_id" gorm:"not null;index"`
	ProductID uint      `json:"product_id" gorm:"not null"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// StockError reports a cart line that cannot be satisfied by current stock.
type StockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
	Missing   bool
}

func (e *StockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("product %d not found", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Name, e.Requested, e.Available)
}

// ProductLookup fetches the current state of a product. It must return
// gorm.ErrRecordNotFound when the product does not exist.
type ProductLookup func(id uint) (*Product, error)

// ValidateStock checks every line against freshly fetched products and stops
// at the first line that fails.
func (c *Cart) ValidateStock(lookup ProductLookup) error {
	for _, item := range c.Items {
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
		product, err := lookup(item.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &StockError{ProductID: item.ProductID, Requested: item.Quantity, Missing: true}
		}
		if err != nil {
			return fmt.Errorf("failed to load product %d: %w", item.ProductID, err)
		}
		if item.Quantity > product.Stock {
			return &StockError{
				ProductID: item.ProductID,
				Name:      product.Name,
				Requested: item.Quantity,
				Available: product.Stock,
			}
		}
	}
	return nil
}

// BeforeSave runs on every save of a cart, whatever field changed.
func (c *Cart) BeforeSave(tx *gorm.DB) error {
	db := tx.Session(&gorm.Session{NewDB: true, Context: tx.Statement.Context})
	return c.ValidateStock(func(id uint) (*Product, error) {
		var product Product
		if err := db.First(&product, id).Error; err != nil {
			return nil, err
		}
		return &product, nil
	})
}
