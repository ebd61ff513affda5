package services

import (
	"context"
	"errors"
	"storefront/internal/models"
	"storefront/internal/repository"
)

type CartService interface {
	GetCart(ctx context.Context, userID uint) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uint) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uint) error
}

type cartService struct {
	cartRepo repository.CartRepository
}

func NewCartService(cartRepo repository.CartRepository) CartService {
	return &cartService{cartRepo: cartRepo}
}

func (s *cartService) load(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID uint) (*models.Cart, error) {
	return s.load(ctx, userID)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrBadRequest(models.ErrInvalidQuantity.Error())
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	return s.save(ctx, cart)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, productID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrBadRequest(models.ErrInvalidQuantity.Error())
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			return s.save(ctx, cart)
		}
	}
	return nil, ErrNotFound("cart item")
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := cart.Items[:0]
	found := false
	for _, item := range cart.Items {
		if item.ProductID == productID {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return nil, ErrNotFound("cart item")
	}
	cart.Items = items
	return s.save(ctx, cart)
}

func (s *cartService) ClearCart(ctx context.Context, userID uint) error {
	return s.cartRepo.Clear(ctx, userID)
}

// save persists the cart through the stock-guarded repository save and
// reloads it with products attached.
func (s *cartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	for i := range cart.Items {
		cart.Items[i].Product = nil
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, cartError(err)
	}
	return s.load(ctx, cart.UserID)
}

func cartError(err error) error {
	var stockErr *models.StockError
	if errors.As(err, &stockErr) {
		if stockErr.Missing {
			return ErrNotFound("product")
		}
		return ErrBadRequest(stockErr.Error())
	}
	if errors.Is(err, models.ErrInvalidQuantity) {
		return ErrBadRequest(err.Error())
	}
	return err
}
