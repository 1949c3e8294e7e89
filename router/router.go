package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/controllers"
	"github.com/yeremiapane/cafe-pos/middlewares"
	"github.com/yeremiapane/cafe-pos/services"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi services
	checkoutSvc := services.NewCheckoutService(db)
	if gw := services.NewMidtransGateway(); gw != nil {
		checkoutSvc.Gateway = gw
	}
	cancelSvc := services.NewCancelService(db, services.NewPasscodeValidator(db))
	couponSvc := services.NewCouponValidator()

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	branchCtrl := controllers.NewBranchController(db)
	tableCtrl := controllers.NewTableController(db)
	orderCtrl := controllers.NewOrderController(db, couponSvc, cancelSvc)
	paymentCtrl := controllers.NewPaymentController(db, checkoutSvc)
	receiptCtrl := controllers.NewReceiptController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Staff dashboard WebSocket (token lewat query string)
	r.GET("/ws/staff", middlewares.WebSocketAuthMiddleware(), controllers.StaffEventsHandler)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", userCtrl.GetProfile)

		// Branches
		api.POST("/branches", branchCtrl.CreateBranch)
		api.GET("/branches/:branch_id/tax-profile", branchCtrl.GetTaxProfile)

		// Tables
		api.POST("/tables", tableCtrl.CreateTable)
		api.GET("/tables", tableCtrl.GetAllTables)
		api.GET("/tables/status/:status", tableCtrl.FindTablesByStatus)
		api.GET("/tables/:table_id", tableCtrl.GetTableByID)
		api.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
		api.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		// Orders
		api.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.PATCH("/orders/:order_id", orderCtrl.UpdateOrder)
		api.PUT("/orders/:order_id/save", orderCtrl.SaveOrder)

		// Order items
		api.POST("/orders/:order_id/items", orderCtrl.AddItem)
		api.PATCH("/orders/:order_id/items/:item_id", orderCtrl.UpdateItemQuantity)
		api.DELETE("/orders/:order_id/items/:item_id", orderCtrl.RemoveItem)

		// Cancellation (dua langkah: minta token, lalu konfirmasi)
		api.POST("/orders/:order_id/cancel/request", orderCtrl.RequestCancel)
		api.POST("/orders/:order_id/cancel", orderCtrl.Cancel)

		// Payments
		api.GET("/orders/:order_id/payments", paymentCtrl.ListPayments)
		api.POST("/orders/:order_id/payments", paymentCtrl.AddSplitPayment)
		api.DELETE("/orders/:order_id/payments/:reference", paymentCtrl.RemoveSplitPayment)

		checkout := api.Group("/")
		checkout.Use(middlewares.CheckoutRateLimiter())
		{
			checkout.POST("/orders/:order_id/checkout", paymentCtrl.CheckoutOrder)
		}

		// Receipts
		api.POST("/orders/:order_id/receipt", receiptCtrl.GenerateReceipt)
		api.GET("/orders/:order_id/receipt", receiptCtrl.GetReceiptByOrder)
		api.GET("/receipts/:receipt_id", receiptCtrl.GetReceiptByID)
	}

	return r
}
