package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/pkg/qrpay"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway is the QR payment provider.
type PaymentGateway interface {
	CreatePaymentLink(ctx context.Context, req qrpay.PaymentRequest) (*qrpay.PaymentLink, error)
	VerifyWebhook(w *qrpay.Webhook) (*qrpay.WebhookData, error)
}

// newPaymentCode returns a numeric code unique enough to identify a payment
// at the provider, which only accepts integers.
var newPaymentCode = func() int64 {
	return time.Now().UnixMilli()*1000 + int64(uuid.New().ID()%1000)
}

type PaymentService interface {
	CreatePaymentLink(ctx context.Context, kind models.PaymentKind, referenceID uint, code int64, amount decimal.Decimal, description string) (*models.Payment, error)
	CancelPayment(ctx context.Context, code int64) error
	HandleWebhook(ctx context.Context, webhook *qrpay.Webhook) error
}

type paymentService struct {
	gateway          PaymentGateway
	paymentRepo      repository.PaymentRepository
	orderRepo        repository.OrderRepository
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	notifier         NotificationService
	returnURL        string
	cancelURL        string
}

func NewPaymentService(
	gateway PaymentGateway,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	notifier NotificationService,
	returnURL, cancelURL string,
) PaymentService {
	return &paymentService{
		gateway:          gateway,
		paymentRepo:      paymentRepo,
		orderRepo:        orderRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		returnURL:        returnURL,
		cancelURL:        cancelURL,
	}
}

func (s *paymentService) CreatePaymentLink(ctx context.Context, kind models.PaymentKind, referenceID uint, code int64, amount decimal.Decimal, description string) (*models.Payment, error) {
	if s.gateway == nil {
		return nil, errors.New("online payment is not configured")
	}
	// The provider limits descriptions to 25 characters.
	if len(description) > 25 {
		description = description[:25]
	}

	link, err := s.gateway.CreatePaymentLink(ctx, qrpay.PaymentRequest{
		OrderCode:   code,
		Amount:      amount.Round(0).IntPart(),
		Description: description,
		ReturnURL:   s.returnURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	payment := &models.Payment{
		Kind:        string(kind),
		ReferenceID: referenceID,
		PaymentCode: code,
		Amount:      amount,
		Status:      string(models.PaymentPending),
		CheckoutURL: link.CheckoutURL,
		QRCode:      link.QRCode,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) CancelPayment(ctx context.Context, code int64) error {
	payment, err := s.paymentRepo.GetByCode(ctx, code)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if payment.Status != string(models.PaymentPending) {
		return nil
	}
	return s.paymentRepo.UpdateStatus(ctx, payment.ID, string(models.PaymentCancelled))
}

// HandleWebhook records a successful payment and moves the paid order or
// subscription order from unverified to pending. Unknown codes and repeat
// deliveries are acknowledged without changes.
func (s *paymentService) HandleWebhook(ctx context.Context, webhook *qrpay.Webhook) error {
	if s.gateway == nil {
		return errors.New("online payment is not configured")
	}
	data, err := s.gateway.VerifyWebhook(webhook)
	if err != nil {
		if errors.Is(err, qrpay.ErrInvalidSignature) {
			return ErrBadRequest(err.Error())
		}
		return ErrBadRequest(fmt.Sprintf("invalid webhook: %v", err))
	}

	if !webhook.Success || data.Code != "00" {
		log.Printf("Payment %d reported %s: %s", data.OrderCode, data.Code, data.Desc)
		return nil
	}

	payment, err := s.paymentRepo.GetByCode(ctx, data.OrderCode)
	if err != nil {
		if isNotFound(err) {
			log.Printf("Webhook for unknown payment code %d ignored", data.OrderCode)
			return nil
		}
		return err
	}
	if payment.Status == string(models.PaymentPaid) {
		return nil
	}

	// The referenced order moves first. The payment stays unpaid until that
	// succeeds so a redelivered webhook retries the transition.
	switch models.PaymentKind(payment.Kind) {
	case models.PaymentForOrder:
		err = s.confirmOrder(ctx, payment.ReferenceID)
	case models.PaymentForSubscription:
		err = s.confirmSubscription(ctx, payment.ReferenceID)
	default:
		err = fmt.Errorf("unknown payment kind %q", payment.Kind)
	}
	if err != nil {
		return err
	}

	if err := s.paymentRepo.MarkPaid(ctx, payment.ID, time.Now()); err != nil {
		return err
	}
	log.Printf("Payment %d paid (%s %d)", payment.PaymentCode, payment.Kind, payment.ReferenceID)
	return nil
}

func (s *paymentService) confirmOrder(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return notFound(err, "order")
	}
	next := string(models.OrderPending)
	if err := ValidateOrderTransition(order.Status, next); err != nil {
		log.Printf("Warning: paid order %d left as %s: %v", order.ID, order.Status, err)
		return nil
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, next); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return ErrConflict("order status changed concurrently")
		}
		return err
	}
	order.Status = next

	if user, err := s.userRepo.GetByID(ctx, order.UserID); err != nil {
		log.Printf("Warning: failed to load user %d for order %d: %v", order.UserID, order.ID, err)
	} else if err := s.notifier.OrderStatusChanged(user, order); err != nil {
		log.Printf("Warning: failed to send status email for order %d: %v", order.ID, err)
	}
	return nil
}

func (s *paymentService) confirmSubscription(ctx context.Context, orderID uint) error {
	order, err := s.subscriptionRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return notFound(err, "subscription order")
	}
	from := order.Status
	next := string(models.SubscriptionPending)
	if err := ValidateSubscriptionTransition(from, next); err != nil {
		log.Printf("Warning: paid subscription order %d left as %s: %v", order.ID, from, err)
		return nil
	}
	order.Status = next
	if err := s.subscriptionRepo.UpdateOrderStatus(ctx, order, from); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return ErrConflict("subscription order status changed concurrently")
		}
		return err
	}

	if user, err := s.userRepo.GetByID(ctx, order.UserID); err != nil {
		log.Printf("Warning: failed to load user %d for subscription order %d: %v", order.UserID, order.ID, err)
	} else if err := s.notifier.SubscriptionStatusChanged(user, order); err != nil {
		log.Printf("Warning: failed to send status email for subscription order %d: %v", order.ID, err)
	}
	return nil
}
