package services

import (
	"fmt"
	"html"
	"log"
	"storefront/internal/models"
	"strings"
)

// Mailer delivers an HTML email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type NotificationService interface {
	OrderPlaced(user *models.User, order *models.Order) error
	OrderStatusChanged(user *models.User, order *models.Order) error
	SubscriptionStatusChanged(user *models.User, order *models.SubscriptionOrder) error
}

type notificationService struct {
	mailer Mailer
}

// NewNotificationService returns a notifier that drops every message when
// mailer is nil.
func NewNotificationService(mailer Mailer) NotificationService {
	return &notificationService{mailer: mailer}
}

var orderStatusText = map[string]string{
	string(models.OrderUnverified): "is awaiting payment confirmation",
	string(models.OrderPending):    "has been confirmed and is being prepared",
	string(models.OrderShipping):   "is on its way",
	string(models.OrderDelivered):  "has been delivered",
	string(models.OrderCancelled):  "has been cancelled",
}

var subscriptionStatusText = map[string]string{
	string(models.SubscriptionUnverified): "is awaiting payment confirmation",
	string(models.SubscriptionPending):    "has been paid and is awaiting activation",
	string(models.SubscriptionActive):     "is now active",
	string(models.SubscriptionCancelled):  "has been cancelled",
}

func (s *notificationService) OrderPlaced(user *models.User, order *models.Order) error {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(item.Name), item.Quantity, item.LineTotal().StringFixed(2))
	}

	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Thank you for your order <strong>%s</strong>.</p>
<table><tr><th>Product</th><th>Qty</th><th>Amount</th></tr>%s</table>
<p>Subtotal: %s<br>Discount: %s<br>Total: <strong>%s</strong></p>
<p>Payment method: %s<br>Shipping to: %s</p>`,
		html.EscapeString(user.Name), order.OrderNumber, rows.String(),
		order.Subtotal.StringFixed(2), order.DiscountAmount.StringFixed(2), order.TotalAmount.StringFixed(2),
		html.EscapeString(order.PaymentMethod), html.EscapeString(order.ShippingAddress))

	return s.send(user.Email, "Order "+order.OrderNumber+" received", body)
}

func (s *notificationService) OrderStatusChanged(user *models.User, order *models.Order) error {
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your order <strong>%s</strong> %s.</p>",
		html.EscapeString(user.Name), order.OrderNumber, orderStatusText[order.Status])
	return s.send(user.Email, fmt.Sprintf("Order %s is %s", order.OrderNumber, order.Status), body)
}

func (s *notificationService) SubscriptionStatusChanged(user *models.User, order *models.SubscriptionOrder) error {
	plan := "subscription"
	if order.Subscription != nil {
		plan = order.Subscription.Name
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your %s order #%d %s.</p>",
		html.EscapeString(user.Name), html.EscapeString(plan), order.ID, subscriptionStatusText[order.Status])
	if order.Status == string(models.SubscriptionActive) && order.ExpiresAt != nil {
		body += fmt.Sprintf("<p>It is valid until %s.</p>", order.ExpiresAt.Format("2006-01-02"))
	}
	return s.send(user.Email, fmt.Sprintf("Subscription %s", order.Status), body)
}

func (s *notificationService) send(to, subject, body string) error {
	if s.mailer == nil {
		log.Printf("Mail disabled, skipping %q to %s", subject, to)
		return nil
	}
	return s.mailer.Send(to, subject, body)
}
