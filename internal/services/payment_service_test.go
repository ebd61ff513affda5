package services

import (
	"context"
	"errors"
	"storefront/internal/models"
	"storefront/pkg/qrpay"
	"testing"
)

type paymentFixture struct {
	orders   *fakeOrderRepo
	subs     *fakeSubscriptionRepo
	payments *fakePaymentRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
	svc      PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orders:   newFakeOrderRepo(newFakeProductRepo()),
		subs:     newFakeSubscriptionRepo(&models.Subscription{ID: 1, Name: "Monthly", Price: dec("99000"), DurationDays: 30, IsActive: true}),
		payments: newFakePaymentRepo(),
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
	}
	users := newFakeUserRepo(&models.User{ID: 1, Name: "Alice", Email: "alice@example.com"})
	f.svc = NewPaymentService(f.gateway, f.payments, f.orders, f.subs, users, f.notifier, "", "")
	return f
}

func paidWebhook() *qrpay.Webhook {
	return &qrpay.Webhook{Code: "00", Success: true}
}

func TestWebhookConfirmsOrder(t *testing.T) {
	f := newPaymentFixture()
	order := f.orders.put(&models.Order{UserID: 1, Status: "unverified", PaymentCode: 777})
	_ = f.payments.Create(context.Background(), &models.Payment{Kind: "order", ReferenceID: order.ID, PaymentCode: 777, Amount: dec("1000"), Status: "pending"})
	f.gateway.data = &qrpay.WebhookData{OrderCode: 777, Amount: 1000, Code: "00"}

	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if got := f.orders.status(order.ID); got != string(models.OrderPending) {
		t.Fatalf("order status = %q, want pending", got)
	}
	if got := f.payments.payments[1].Status; got != string(models.PaymentPaid) {
		t.Fatalf("payment status = %q, want paid", got)
	}

	// A repeated delivery changes nothing.
	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); err != nil {
		t.Fatalf("repeat HandleWebhook() error = %v", err)
	}
	if len(f.notifier.orderStatus) != 1 {
		t.Fatalf("status emails = %d, want 1", len(f.notifier.orderStatus))
	}
}

func TestWebhookRedeliveryAfterFailedTransition(t *testing.T) {
	f := newPaymentFixture()
	order := f.orders.put(&models.Order{UserID: 1, Status: "unverified", PaymentCode: 778})
	_ = f.payments.Create(context.Background(), &models.Payment{Kind: "order", ReferenceID: order.ID, PaymentCode: 778, Amount: dec("1000"), Status: "pending"})
	f.gateway.data = &qrpay.WebhookData{OrderCode: 778, Amount: 1000, Code: "00"}
	f.orders.updateErr = errors.New("connection reset")

	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); err == nil {
		t.Fatal("first delivery error = nil, want failure")
	}
	if got := f.payments.payments[1].Status; got != "pending" {
		t.Fatalf("payment status after failed delivery = %q, want pending", got)
	}

	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); err != nil {
		t.Fatalf("redelivery error = %v", err)
	}
	if got := f.orders.status(order.ID); got != string(models.OrderPending) {
		t.Fatalf("order status = %q, want pending", got)
	}
	if got := f.payments.payments[1].Status; got != string(models.PaymentPaid) {
		t.Fatalf("payment status = %q, want paid", got)
	}
}

func TestWebhookConfirmsSubscriptionOrder(t *testing.T) {
	f := newPaymentFixture()
	order := f.subs.putOrder(&models.SubscriptionOrder{UserID: 1, SubscriptionID: 1, Status: "unverified", PaymentCode: 42})
	_ = f.payments.Create(context.Background(), &models.Payment{Kind: "subscription", ReferenceID: order.ID, PaymentCode: 42, Status: "pending"})
	f.gateway.data = &qrpay.WebhookData{OrderCode: 42, Code: "00"}

	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if got := f.subs.orders[order.ID].Status; got != string(models.SubscriptionPending) {
		t.Fatalf("subscription order status = %q, want pending", got)
	}
}

func TestWebhookLeavesCancelledOrder(t *testing.T) {
	f := newPaymentFixture()
	order := f.orders.put(&models.Order{UserID: 1, Status: "cancelled", PaymentCode: 5})
	_ = f.payments.Create(context.Background(), &models.Payment{Kind: "order", ReferenceID: order.ID, PaymentCode: 5, Status: "pending"})
	f.gateway.data = &qrpay.WebhookData{OrderCode: 5, Code: "00"}

	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if got := f.orders.status(order.ID); got != string(models.OrderCancelled) {
		t.Fatalf("order status = %q, want cancelled", got)
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.verifyErr = qrpay.ErrInvalidSignature

	var br ErrBadRequest
	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); !errors.As(err, &br) {
		t.Fatalf("error = %v, want ErrBadRequest", err)
	}
}

func TestWebhookUnknownCodeAcknowledged(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.data = &qrpay.WebhookData{OrderCode: 123, Code: "00"}

	if err := f.svc.HandleWebhook(context.Background(), paidWebhook()); err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
}
