package handlers

import (
	"net/http"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type VoucherHandler struct {
	voucherService services.VoucherService
	userService    services.UserService
}

func NewVoucherHandler(voucherService services.VoucherService, userService services.UserService) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
		userService:    userService,
	}
}

type voucherRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Apply redeems a voucher for the caller.
func (h *VoucherHandler) Apply(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req voucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	quote, err := h.voucherService.ApplyVoucher(c.Request.Context(), a.UserID, req.Code, req.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// Quote previews the discount without redeeming.
func (h *VoucherHandler) Quote(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req voucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), a.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	quote, err := h.voucherService.Quote(c.Request.Context(), user, req.Code, req.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *VoucherHandler) List(c *gin.Context) {
	vouchers, err := h.voucherService.GetAllVouchers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vouchers)
}

func (h *VoucherHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, voucher)
}

func (h *VoucherHandler) Create(c *gin.Context) {
	var input services.VoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, voucher)
}

func (h *VoucherHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.voucherService.DeleteVoucher(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Voucher deleted"})
}

func (h *VoucherHandler) Assign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.voucherService.AssignToUser(c.Request.Context(), id, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
