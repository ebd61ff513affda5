package services

import (
	"fmt"
	"storefront/internal/models"
)

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderUnverified: {models.OrderPending, models.OrderCancelled},
	models.OrderPending:    {models.OrderShipping},
	models.OrderShipping:   {models.OrderDelivered},
	models.OrderDelivered:  {},
	models.OrderCancelled:  {},
}

var subscriptionTransitions = map[models.SubscriptionOrderStatus][]models.SubscriptionOrderStatus{
	models.SubscriptionUnverified: {models.SubscriptionPending, models.SubscriptionCancelled},
	models.SubscriptionPending:    {models.SubscriptionActive, models.SubscriptionCancelled},
	models.SubscriptionActive:     {models.SubscriptionCancelled},
	models.SubscriptionCancelled:  {},
}

// ValidateOrderTransition reports whether an order may move from current to
// next. Unknown statuses and no-op transitions are errors.
func ValidateOrderTransition(current, next string) error {
	if _, ok := orderTransitions[models.OrderStatus(next)]; !ok {
		return ErrBadRequest(fmt.Sprintf("invalid order status %q", next))
	}
	if current == next {
		return ErrBadRequest(fmt.Sprintf("order is already %s", current))
	}
	for _, s := range orderTransitions[models.OrderStatus(current)] {
		if string(s) == next {
			return nil
		}
	}
	return ErrBadRequest(fmt.Sprintf("cannot change order status from %s to %s", current, next))
}

// ValidateSubscriptionTransition is the subscription order counterpart of
// ValidateOrderTransition.
func ValidateSubscriptionTransition(current, next string) error {
	if _, ok := subscriptionTransitions[models.SubscriptionOrderStatus(next)]; !ok {
		return ErrBadRequest(fmt.Sprintf("invalid subscription order status %q", next))
	}
	if current == next {
		return ErrBadRequest(fmt.Sprintf("subscription order is already %s", current))
	}
	for _, s := range subscriptionTransitions[models.SubscriptionOrderStatus(current)] {
		if string(s) == next {
			return nil
		}
	}
	return ErrBadRequest(fmt.Sprintf("cannot change subscription order status from %s to %s", current, next))
}
