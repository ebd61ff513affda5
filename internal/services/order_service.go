package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront/internal/models"
	"storefront/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutInput struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ShippingAddress string `json:"shipping_address"`
	VoucherCode     string `json:"voucher_code"`
}

type CheckoutResult struct {
	Order   *models.Order   `json:"order"`
	Payment *models.Payment `json:"payment,omitempty"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, input CheckoutInput) (*CheckoutResult, error)
	GetMyOrders(ctx context.Context, userID uint) ([]models.Order, error)
	GetOrder(ctx context.Context, actor Actor, id uint) (*models.Order, error)
	GetAllOrders(ctx context.Context, status string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, actor Actor, id uint, status string) (*models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	vouchers    VoucherService
	payments    PaymentService
	notifier    NotificationService
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	vouchers VoucherService,
	payments PaymentService,
	notifier NotificationService,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		vouchers:    vouchers,
		payments:    payments,
		notifier:    notifier,
		now:         time.Now,
	}
}

func newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + id[:12]
}

// CreateOrder checks out the user's cart. Prices are captured per line,
// stock is taken atomically with the insert and the cart is emptied.
func (s *orderService) CreateOrder(ctx context.Context, userID uint, input CheckoutInput) (*CheckoutResult, error) {
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, ErrBadRequest(fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	address := strings.TrimSpace(input.ShippingAddress)
	if address == "" {
		address = strings.TrimSpace(user.Address)
	}
	if address == "" {
		return nil, ErrBadRequest("shipping address is required")
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrBadRequest("cart is empty")
	}

	now := s.now()
	order := &models.Order{
		OrderNumber:     newOrderNumber(),
		UserID:          user.ID,
		PaymentMethod:   input.PaymentMethod,
		PaymentCode:     newPaymentCode(),
		Status:          string(models.OrderUnverified),
		ShippingAddress: address,
		Subtotal:        decimal.Zero,
		DiscountAmount:  decimal.Zero,
	}
	for _, item := range cart.Items {
		product := item.Product
		if product == nil {
			return nil, ErrBadRequest(fmt.Sprintf("product %d is no longer available", item.ProductID))
		}
		if item.Quantity > product.Stock {
			return nil, ErrBadRequest(fmt.Sprintf("insufficient stock for %s", product.Name))
		}
		line := models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.PriceFor(user, now),
		}
		order.Items = append(order.Items, line)
		order.Subtotal = order.Subtotal.Add(line.LineTotal())
	}

	var quote *VoucherQuote
	if code := strings.TrimSpace(input.VoucherCode); code != "" {
		quote, err = s.vouchers.PrepareRedemption(ctx, user, code, order.Subtotal)
		if err != nil {
			return nil, err
		}
		order.VoucherID = &quote.Voucher.ID
		order.DiscountAmount = quote.Discount
	}
	order.TotalAmount = decimal.Max(order.Subtotal.Sub(order.DiscountAmount), decimal.Zero)

	if err := s.orderRepo.CreateWithStock(ctx, order); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, ErrBadRequest(err.Error())
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	result := &CheckoutResult{Order: order}
	if order.PaymentMethod == string(models.OnlineBanking) && order.TotalAmount.IsPositive() {
		payment, err := s.payments.CreatePaymentLink(ctx, models.PaymentForOrder, order.ID,
			order.PaymentCode, order.TotalAmount, "Order "+order.OrderNumber[4:])
		if err != nil {
			s.abort(ctx, order)
			return nil, err
		}
		result.Payment = payment
	}

	if quote != nil {
		if err := s.vouchers.Redeem(ctx, quote); err != nil {
			s.abort(ctx, order)
			return nil, err
		}
	}

	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		log.Printf("Warning: failed to clear cart for user %d: %v", userID, err)
	}

	log.Printf("Order %s created for user %d, total %s", order.OrderNumber, user.ID, order.TotalAmount.StringFixed(2))
	if err := s.notifier.OrderPlaced(user, order); err != nil {
		log.Printf("Warning: failed to send confirmation email for order %s: %v", order.OrderNumber, err)
	}
	return result, nil
}

// abort cancels an order whose checkout could not be completed and puts its
// stock back.
func (s *orderService) abort(ctx context.Context, order *models.Order) {
	from := order.Status
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, from, string(models.OrderCancelled)); err != nil {
		log.Printf("Warning: failed to cancel order %s after checkout error: %v", order.OrderNumber, err)
		return
	}
	order.Status = string(models.OrderCancelled)
	s.restoreStock(ctx, order)
	if err := s.payments.CancelPayment(ctx, order.PaymentCode); err != nil {
		log.Printf("Warning: failed to cancel payment %d: %v", order.PaymentCode, err)
	}
}

func (s *orderService) restoreStock(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		if err := s.productRepo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("Warning: failed to restore %d of product %d for order %s: %v",
				item.Quantity, item.ProductID, order.OrderNumber, err)
		}
	}
}

func (s *orderService) GetMyOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

func (s *orderService) GetOrder(ctx context.Context, actor Actor, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !actor.IsAdmin() && order.UserID != actor.UserID {
		return nil, ErrForbidden("you do not have access to this order")
	}
	return order, nil
}

func (s *orderService) GetAllOrders(ctx context.Context, status string) ([]models.Order, error) {
	if status != "" {
		if _, ok := orderTransitions[models.OrderStatus(status)]; !ok {
			return nil, ErrBadRequest(fmt.Sprintf("invalid order status %q", status))
		}
	}
	return s.orderRepo.GetAll(ctx, status)
}

// UpdateOrderStatus moves an order along the transition table. Admins may
// make any allowed move; a buyer may only cancel their own unverified order.
// The notification email is sent after the change is stored and its failure
// is only logged.
func (s *orderService) UpdateOrderStatus(ctx context.Context, actor Actor, id uint, status string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}

	if !actor.IsAdmin() {
		if order.UserID != actor.UserID {
			return nil, ErrForbidden("you do not have access to this order")
		}
		if status != string(models.OrderCancelled) || order.Status != string(models.OrderUnverified) {
			return nil, ErrForbidden("customers can only cancel unverified orders")
		}
	}

	if err := ValidateOrderTransition(order.Status, status); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, status); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrConflict("order status changed concurrently, reload and retry")
		}
		return nil, err
	}
	order.Status = status
	log.Printf("Order %s moved to %s", order.OrderNumber, status)

	if status == string(models.OrderCancelled) {
		s.restoreStock(ctx, order)
		if err := s.payments.CancelPayment(ctx, order.PaymentCode); err != nil {
			log.Printf("Warning: failed to cancel payment %d: %v", order.PaymentCode, err)
		}
	}

	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		log.Printf("Warning: failed to load user %d for order %s: %v", order.UserID, order.OrderNumber, err)
		return order, nil
	}
	if err := s.notifier.OrderStatusChanged(user, order); err != nil {
		log.Printf("Warning: failed to send status email for order %s: %v", order.OrderNumber, err)
	}
	return order, nil
}
