package main

import (
	"net/http"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/services"
	"storefront/internal/storage"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	tokens     services.TokenService
	enforcer   *casbin.Enforcer
	uploadsDir string

	user           *handlers.UserHandler
	category       *handlers.CategoryHandler
	product        *handlers.ProductHandler
	cart           *handlers.CartHandler
	order          *handlers.OrderHandler
	subscription   *handlers.SubscriptionHandler
	voucher        *handlers.VoucherHandler
	review         *handlers.ReviewHandler
	promptCategory *handlers.PromptCategoryHandler
	chat           *handlers.ChatHandler
}

func setupRouter(d routeDeps) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20
	router.Static(storage.URLPrefix, d.uploadsDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(d.tokens)
	can := func(obj, act string) gin.HandlerFunc {
		return middleware.RequirePermission(d.enforcer, obj, act)
	}
	manage := func(obj string) gin.HandlerFunc {
		return can(obj, middleware.ActionManage)
	}

	api := router.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/register", d.user.Register)
		user.POST("/login", d.user.Login)
		user.GET("/profile", auth, can(middleware.ResourceProfile, middleware.ActionRead), d.user.GetProfile)
		user.PUT("/profile", auth, can(middleware.ResourceProfile, middleware.ActionWrite), d.user.UpdateProfile)
		user.PUT("/password", auth, can(middleware.ResourceProfile, middleware.ActionWrite), d.user.ChangePassword)
		user.GET("/vouchers", auth, can(middleware.ResourceVoucher, middleware.ActionWrite), d.user.GetMyVouchers)
		user.GET("", auth, manage(middleware.ResourceUser), d.user.GetAllUsers)
		user.DELETE("/:id", auth, manage(middleware.ResourceUser), d.user.DeleteUser)
	}

	category := api.Group("/category")
	{
		category.GET("", d.category.List)
		category.GET("/:id", d.category.Get)
		category.POST("", auth, manage(middleware.ResourceCatalog), d.category.Create)
		category.PUT("/:id", auth, manage(middleware.ResourceCatalog), d.category.Update)
		category.DELETE("/:id", auth, manage(middleware.ResourceCatalog), d.category.Delete)
	}

	product := api.Group("/product")
	{
		product.GET("", d.product.List)
		product.GET("/:id", d.product.Get)
		product.POST("", auth, manage(middleware.ResourceCatalog), d.product.Create)
		product.PUT("/:id", auth, manage(middleware.ResourceCatalog), d.product.Update)
		product.DELETE("/:id", auth, manage(middleware.ResourceCatalog), d.product.Delete)
		product.POST("/:id/image", auth, manage(middleware.ResourceCatalog), d.product.UploadImage)
	}

	cart := api.Group("/cart", auth, can(middleware.ResourceCart, middleware.ActionWrite))
	{
		cart.GET("", d.cart.Get)
		cart.POST("/items", d.cart.AddItem)
		cart.PUT("/items/:productId", d.cart.UpdateItem)
		cart.DELETE("/items/:productId", d.cart.RemoveItem)
		cart.DELETE("", d.cart.Clear)
	}

	order := api.Group("/order")
	{
		order.POST("/payment/webhook", d.order.PaymentWebhook)
		order.POST("", auth, can(middleware.ResourceOrder, middleware.ActionWrite), d.order.Checkout)
		order.GET("/my", auth, can(middleware.ResourceOrder, middleware.ActionRead), d.order.GetMyOrders)
		order.GET("/:id", auth, can(middleware.ResourceOrder, middleware.ActionRead), d.order.Get)
		order.GET("", auth, manage(middleware.ResourceOrder), d.order.List)
		order.PUT("/:id/status", auth, can(middleware.ResourceOrder, middleware.ActionWrite), d.order.UpdateStatus)
	}

	subscription := api.Group("/subscription")
	{
		subscription.GET("/plans", d.subscription.ListPlans)
		subscription.GET("/plans/:id", d.subscription.GetPlan)
		subscription.POST("/plans", auth, manage(middleware.ResourceSubscription), d.subscription.CreatePlan)
		subscription.PUT("/plans/:id", auth, manage(middleware.ResourceSubscription), d.subscription.UpdatePlan)
		subscription.DELETE("/plans/:id", auth, manage(middleware.ResourceSubscription), d.subscription.DeletePlan)
		subscription.POST("/subscribe", auth, can(middleware.ResourceSubscription, middleware.ActionWrite), d.subscription.Subscribe)
		subscription.GET("/orders/my", auth, can(middleware.ResourceSubscription, middleware.ActionWrite), d.subscription.GetMyOrders)
		subscription.GET("/orders", auth, manage(middleware.ResourceSubscription), d.subscription.ListOrders)
		subscription.PUT("/orders/:id/status", auth, manage(middleware.ResourceSubscription), d.subscription.UpdateOrderStatus)
	}

	voucher := api.Group("/voucher", auth)
	{
		voucher.POST("/apply", can(middleware.ResourceVoucher, middleware.ActionWrite), d.voucher.Apply)
		voucher.POST("/quote", can(middleware.ResourceVoucher, middleware.ActionWrite), d.voucher.Quote)
		voucher.GET("", manage(middleware.ResourceVoucher), d.voucher.List)
		voucher.POST("", manage(middleware.ResourceVoucher), d.voucher.Create)
		voucher.GET("/:id", manage(middleware.ResourceVoucher), d.voucher.Get)
		voucher.DELETE("/:id", manage(middleware.ResourceVoucher), d.voucher.Delete)
		voucher.POST("/:id/assign", manage(middleware.ResourceVoucher), d.voucher.Assign)
	}

	review := api.Group("/review")
	{
		review.GET("/product/:productId", d.review.ListForProduct)
		review.POST("", auth, can(middleware.ResourceReview, middleware.ActionWrite), d.review.Create)
		review.DELETE("/:id", auth, can(middleware.ResourceReview, middleware.ActionWrite), d.review.Delete)
	}

	prompt := api.Group("/promptCategory")
	{
		prompt.GET("", d.promptCategory.List)
		prompt.GET("/:id", d.promptCategory.Get)
		prompt.POST("", auth, manage(middleware.ResourcePrompt), d.promptCategory.Create)
		prompt.PUT("/:id", auth, manage(middleware.ResourcePrompt), d.promptCategory.Update)
		prompt.DELETE("/:id", auth, manage(middleware.ResourcePrompt), d.promptCategory.Delete)
	}

	chat := api.Group("/geminiAI", auth, can(middleware.ResourceChat, middleware.ActionWrite))
	{
		chat.POST("/chat", d.chat.Chat)
		chat.GET("/session/:id", d.chat.GetSession)
		chat.DELETE("/session/:id", d.chat.DeleteSession)
	}

	return router
}
