package handlers

import (
	"net/http"
	"storefront/internal/services"
	"storefront/pkg/qrpay"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService   services.OrderService
	paymentService services.PaymentService
}

func NewOrderHandler(orderService services.OrderService, paymentService services.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

// Checkout turns the caller's cart into an order.
func (h *OrderHandler) Checkout(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var input services.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), a.UserID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"order": result.Order}
	if result.Payment != nil {
		response["payment"] = result.Payment
		response["checkout_url"] = result.Payment.CheckoutURL
	}
	c.JSON(http.StatusCreated, response)
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	orders, err := h.orderService.GetMyOrders(c.Request.Context(), a.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// List returns every order, optionally filtered by ?status=.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), a, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// PaymentWebhook receives payment provider callbacks for both product and
// subscription orders.
func (h *OrderHandler) PaymentWebhook(c *gin.Context) {
	var webhook qrpay.Webhook
	if err := c.ShouldBindJSON(&webhook); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), &webhook); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
