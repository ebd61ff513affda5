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

	"github.com/shopspring/decimal"
)

type PlanInput struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days" binding:"required,min=1"`
	IsActive     *bool           `json:"is_active"`
}

type SubscribeInput struct {
	SubscriptionID uint   `json:"subscription_id" binding:"required"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
}

type SubscribeResult struct {
	Order   *models.SubscriptionOrder `json:"order"`
	Payment *models.Payment           `json:"payment,omitempty"`
}

type SubscriptionService interface {
	CreatePlan(ctx context.Context, input PlanInput) (*models.Subscription, error)
	GetPlanByID(ctx context.Context, id uint) (*models.Subscription, error)
	GetPlans(ctx context.Context, includeInactive bool) ([]models.Subscription, error)
	UpdatePlan(ctx context.Context, id uint, input PlanInput) (*models.Subscription, error)
	DeletePlan(ctx context.Context, id uint) error

	Subscribe(ctx context.Context, userID uint, input SubscribeInput) (*SubscribeResult, error)
	GetMyOrders(ctx context.Context, userID uint) ([]models.SubscriptionOrder, error)
	GetAllOrders(ctx context.Context, status string) ([]models.SubscriptionOrder, error)
	UpdateSubscriptionOrderStatus(ctx context.Context, id uint, status string) (*models.SubscriptionOrder, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	payments         PaymentService
	notifier         NotificationService
	now              func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	payments PaymentService,
	notifier NotificationService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		payments:         payments,
		notifier:         notifier,
		now:              time.Now,
	}
}

func validatePlan(input PlanInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrBadRequest("name is required")
	}
	if !input.Price.IsPositive() {
		return ErrBadRequest("price must be positive")
	}
	if input.DurationDays < 1 {
		return ErrBadRequest("duration must be at least one day")
	}
	return nil
}

func (s *subscriptionService) CreatePlan(ctx context.Context, input PlanInput) (*models.Subscription, error) {
	if err := validatePlan(input); err != nil {
		return nil, err
	}
	plan := &models.Subscription{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Price:        input.Price,
		DurationDays: input.DurationDays,
		IsActive:     input.IsActive == nil || *input.IsActive,
	}
	if err := s.subscriptionRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *subscriptionService) GetPlanByID(ctx context.Context, id uint) (*models.Subscription, error) {
	plan, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "subscription plan")
	}
	return plan, nil
}

func (s *subscriptionService) GetPlans(ctx context.Context, includeInactive bool) ([]models.Subscription, error) {
	return s.subscriptionRepo.GetAll(ctx, !includeInactive)
}

func (s *subscriptionService) UpdatePlan(ctx context.Context, id uint, input PlanInput) (*models.Subscription, error) {
	plan, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "subscription plan")
	}
	if err := validatePlan(input); err != nil {
		return nil, err
	}
	plan.Name = strings.TrimSpace(input.Name)
	plan.Description = input.Description
	plan.Price = input.Price
	plan.DurationDays = input.DurationDays
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}
	if err := s.subscriptionRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *subscriptionService) DeletePlan(ctx context.Context, id uint) error {
	if _, err := s.subscriptionRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "subscription plan")
	}
	return s.subscriptionRepo.Delete(ctx, id)
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID uint, input SubscribeInput) (*SubscribeResult, error) {
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, ErrBadRequest(fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	plan, err := s.subscriptionRepo.GetByID(ctx, input.SubscriptionID)
	if err != nil {
		return nil, notFound(err, "subscription plan")
	}
	if !plan.IsActive {
		return nil, ErrBadRequest("subscription plan is not available")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	order := &models.SubscriptionOrder{
		UserID:         user.ID,
		SubscriptionID: plan.ID,
		Amount:         plan.Price,
		PaymentMethod:  input.PaymentMethod,
		PaymentCode:    newPaymentCode(),
		Status:         string(models.SubscriptionUnverified),
	}
	if err := s.subscriptionRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create subscription order: %w", err)
	}
	order.Subscription = plan

	result := &SubscribeResult{Order: order}
	if order.PaymentMethod == string(models.OnlineBanking) {
		payment, err := s.payments.CreatePaymentLink(ctx, models.PaymentForSubscription, order.ID,
			order.PaymentCode, order.Amount, fmt.Sprintf("Subscription %d", order.ID))
		if err != nil {
			order.Status = string(models.SubscriptionCancelled)
			if cancelErr := s.subscriptionRepo.UpdateOrderStatus(ctx, order, string(models.SubscriptionUnverified)); cancelErr != nil {
				log.Printf("Warning: failed to cancel subscription order %d: %v", order.ID, cancelErr)
			}
			return nil, err
		}
		result.Payment = payment
	}

	log.Printf("Subscription order %d created for user %d (%s)", order.ID, user.ID, plan.Name)
	return result, nil
}

func (s *subscriptionService) GetMyOrders(ctx context.Context, userID uint) ([]models.SubscriptionOrder, error) {
	return s.subscriptionRepo.GetOrdersByUser(ctx, userID)
}

func (s *subscriptionService) GetAllOrders(ctx context.Context, status string) ([]models.SubscriptionOrder, error) {
	if status != "" {
		if _, ok := subscriptionTransitions[models.SubscriptionOrderStatus(status)]; !ok {
			return nil, ErrBadRequest(fmt.Sprintf("invalid subscription order status %q", status))
		}
	}
	return s.subscriptionRepo.GetAllOrders(ctx, status)
}

// remainingSubscription returns the expiry left once order skip is
// removed: the unused time of every other active order, laid end to end
// from now. Nil when nothing is left.
func remainingSubscription(orders []models.SubscriptionOrder, skip uint, now time.Time) *time.Time {
	var left time.Duration
	for _, o := range orders {
		if o.ID == skip || o.Status != string(models.SubscriptionActive) || o.ExpiresAt == nil {
			continue
		}
		start := now
		if o.StartsAt != nil && o.StartsAt.After(now) {
			start = *o.StartsAt
		}
		if o.ExpiresAt.After(start) {
			left += o.ExpiresAt.Sub(start)
		}
	}
	if left <= 0 {
		return nil
	}
	expires := now.Add(left)
	return &expires
}

// UpdateSubscriptionOrderStatus moves a subscription order along the
// transition table. Activation grants the subscriber flag for the plan's
// duration, extending a subscription that is still running. Cancelling an
// active order takes its time back and keeps whatever other active orders
// still cover.
func (s *subscriptionService) UpdateSubscriptionOrderStatus(ctx context.Context, id uint, status string) (*models.SubscriptionOrder, error) {
	order, err := s.subscriptionRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "subscription order")
	}
	from := order.Status
	if err := ValidateSubscriptionTransition(from, status); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}

	now := s.now()
	if status == string(models.SubscriptionActive) {
		plan := order.Subscription
		if plan == nil {
			if plan, err = s.subscriptionRepo.GetByID(ctx, order.SubscriptionID); err != nil {
				return nil, notFound(err, "subscription plan")
			}
		}
		start := now
		if user.IsActiveSubscriber(now) && user.SubscriptionExpiresAt != nil {
			start = *user.SubscriptionExpiresAt
		}
		expires := start.AddDate(0, 0, plan.DurationDays)
		order.StartsAt = &start
		order.ExpiresAt = &expires
	}

	order.Status = status
	if err := s.subscriptionRepo.UpdateOrderStatus(ctx, order, from); err != nil {
		order.Status = from
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrConflict("subscription order status changed concurrently, reload and retry")
		}
		return nil, err
	}
	log.Printf("Subscription order %d moved from %s to %s", order.ID, from, status)

	switch {
	case status == string(models.SubscriptionActive):
		user.IsSubscriber = true
		user.SubscriptionExpiresAt = order.ExpiresAt
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to grant subscription: %w", err)
		}
	case from == string(models.SubscriptionActive) && status == string(models.SubscriptionCancelled):
		others, err := s.subscriptionRepo.GetOrdersByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load subscription orders: %w", err)
		}
		user.SubscriptionExpiresAt = remainingSubscription(others, order.ID, now)
		user.IsSubscriber = user.SubscriptionExpiresAt != nil
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to revoke subscription: %w", err)
		}
	case status == string(models.SubscriptionCancelled):
		if err := s.payments.CancelPayment(ctx, order.PaymentCode); err != nil {
			log.Printf("Warning: failed to cancel payment %d: %v", order.PaymentCode, err)
		}
	}

	if err := s.notifier.SubscriptionStatusChanged(user, order); err != nil {
		log.Printf("Warning: failed to send status email for subscription order %d: %v", order.ID, err)
	}
	return order, nil
}
