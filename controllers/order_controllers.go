package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/events"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

type OrderController struct {
	DB      *gorm.DB
	Coupons services.CouponValidator
	Cancels *services.CancelService
}

func NewOrderController(db *gorm.DB, coupons services.CouponValidator, cancels *services.CancelService) *OrderController {
	return &OrderController{DB: db, Coupons: coupons, Cancels: cancels}
}

type itemReq struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	TaxRate  float64 `json:"tax_rate"`
	Source   string  `json:"source"`
	MenuRef  *uint   `json:"menu_ref"`
	Notes    string  `json:"notes"`
}

func (ir *itemReq) validate() error {
	if ir.Source == "" {
		ir.Source = models.ItemSourceCatalog
	}
	if !models.ValidItemSource(ir.Source) {
		return services.NewValidationError(fmt.Sprintf("unknown item source %q", ir.Source))
	}
	if ir.Source == models.ItemSourceCatalog && ir.MenuRef == nil {
		return services.NewValidationError("catalog items need a menu reference")
	}
	if ir.Name == "" {
		return services.NewValidationError("item name is required")
	}
	if ir.Price < 0 {
		return services.NewValidationError("item price cannot be negative")
	}
	if ir.Quantity < 1 {
		return services.NewValidationError("item quantity must be at least 1")
	}
	return nil
}

// CreateOrder -> an order comes into existence with its first items,
// snapshotting the branch tax rates.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := oc.DB.Preload("Branch").First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var body struct {
		Items []itemReq `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(body.Items) == 0 {
		respondServiceError(c, services.NewValidationError("order needs at least one item"))
		return
	}
	for i := range body.Items {
		if err := body.Items[i].validate(); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	order := models.Order{
		TableID:       table.ID,
		BranchID:      table.BranchID,
		CGSTRate:      table.Branch.CGSTRate,
		SGSTRate:      table.Branch.SGSTRate,
		Status:        models.OrderStatusOpen,
		PaymentStatus: models.PaymentStatusUnpaid,
		Version:       1,
	}
	if err := oc.DB.Create(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	for _, ir := range body.Items {
		item := models.OrderItem{
			OrderID:  order.ID,
			Name:     ir.Name,
			Price:    ir.Price,
			Quantity: ir.Quantity,
			TaxRate:  ir.TaxRate,
			Source:   ir.Source,
			MenuRef:  ir.MenuRef,
			Notes:    ir.Notes,
		}
		if err := oc.DB.Create(&item).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		order.Items = append(order.Items, item)
	}

	services.Recalculate(&order)
	if err := services.SaveOrder(oc.DB, &order, 0); err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastOrderUpdate(order)
	utils.InfoLogger.Printf("Order %d opened on table %s (total=%.2f)", order.ID, table.TableNumber, order.TotalAmount)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> one order with items and payment entries
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.Preload("Items").Preload("Payments").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// loadOpenOrder fetches an order with items and rejects terminal ones.
func (oc *OrderController) loadOpenOrder(c *gin.Context) (*models.Order, bool) {
	var order models.Order
	if err := oc.DB.Preload("Items").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return nil, false
	}
	if order.IsTerminal() {
		respondServiceError(c, services.ErrInvalidState)
		return nil, false
	}
	return &order, true
}

// recalcAndRespond persists the recomputed totals after a mutation and
// echoes the new state.
func (oc *OrderController) recalcAndRespond(c *gin.Context, order *models.Order, message string) {
	if err := oc.DB.Preload("Items").First(order, order.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	services.Recalculate(order)
	if err := services.SaveOrder(oc.DB, order, 0); err != nil {
		respondServiceError(c, err)
		return
	}
	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, message, order)
}

// AddItem -> append a line item to an open order
func (oc *OrderController) AddItem(c *gin.Context) {
	order, ok := oc.loadOpenOrder(c)
	if !ok {
		return
	}

	var ir itemReq
	if err := c.ShouldBindJSON(&ir); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := ir.validate(); err != nil {
		respondServiceError(c, err)
		return
	}

	item := models.OrderItem{
		OrderID:  order.ID,
		Name:     ir.Name,
		Price:    ir.Price,
		Quantity: ir.Quantity,
		TaxRate:  ir.TaxRate,
		Source:   ir.Source,
		MenuRef:  ir.MenuRef,
		Notes:    ir.Notes,
	}
	if err := oc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.recalcAndRespond(c, order, "Item added")
}

// UpdateItemQuantity -> apply a signed delta; quantity zero removes the
// item from the order.
func (oc *OrderController) UpdateItemQuantity(c *gin.Context) {
	order, ok := oc.loadOpenOrder(c)
	if !ok {
		return
	}

	var item models.OrderItem
	if err := oc.DB.Where("order_id = ?", order.ID).First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var body struct {
		Delta int `json:"delta" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	newQty := item.Quantity + body.Delta
	if newQty < 0 {
		newQty = 0
	}

	if newQty == 0 {
		if err := oc.DB.Delete(&item).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	} else {
		item.Quantity = newQty
		if err := oc.DB.Save(&item).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	oc.recalcAndRespond(c, order, "Quantity updated")
}

// RemoveItem -> drop a line item outright
func (oc *OrderController) RemoveItem(c *gin.Context) {
	order, ok := oc.loadOpenOrder(c)
	if !ok {
		return
	}

	res := oc.DB.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}, c.Param("item_id"))
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}

	oc.recalcAndRespond(c, order, "Item removed")
}

// UpdateOrder -> discount, customer info, complementary flag and coupon
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	order, ok := oc.loadOpenOrder(c)
	if !ok {
		return
	}

	var req struct {
		Discount *struct {
			Type      string   `json:"type"`
			Value     float64  `json:"value"`
			MaxAmount *float64 `json:"max_amount"`
		} `json:"discount"`
		Customer *struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
			TaxID string `json:"tax_id"`
		} `json:"customer"`
		Complementary *struct {
			Enabled bool   `json:"enabled"`
			Reason  string `json:"reason"`
		} `json:"complementary"`
		CouponCode *string `json:"coupon_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Discount != nil {
		if req.Discount.Type != "" &&
			req.Discount.Type != models.DiscountTypeAmount &&
			req.Discount.Type != models.DiscountTypePercentage {
			respondServiceError(c, services.NewValidationError("discount type must be amount or percentage"))
			return
		}
		if req.Discount.Value < 0 {
			respondServiceError(c, services.NewValidationError("discount value cannot be negative"))
			return
		}
		order.DiscountType = req.Discount.Type
		order.DiscountValue = req.Discount.Value
		order.MaxDiscountAmount = req.Discount.MaxAmount
	}

	if req.Customer != nil {
		order.CustomerName = req.Customer.Name
		order.CustomerPhone = req.Customer.Phone
		order.CustomerTaxID = req.Customer.TaxID
	}

	if req.Complementary != nil {
		if req.Complementary.Enabled && req.Complementary.Reason == "" {
			respondServiceError(c, services.NewValidationError("complementary orders need a reason"))
			return
		}
		order.Complementary = req.Complementary.Enabled
		order.ComplementaryReason = req.Complementary.Reason
	}

	if req.CouponCode != nil {
		if err := oc.Coupons.Validate(*req.CouponCode, order.TotalAmount); err != nil {
			respondServiceError(c, err)
			return
		}
		order.CouponCode = *req.CouponCode
	}

	services.Recalculate(order)
	if err := services.SaveOrder(oc.DB, order, 0); err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

// SaveOrder -> the explicit save: recomputes totals server-side and
// rejects a stale version so two terminals cannot overwrite each other.
func (oc *OrderController) SaveOrder(c *gin.Context) {
	order, ok := oc.loadOpenOrder(c)
	if !ok {
		return
	}

	var body struct {
		Version uint `json:"version" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if len(order.Items) == 0 {
		respondServiceError(c, services.NewValidationError("order has no items"))
		return
	}

	totals := services.Recalculate(order)
	if err := services.SaveOrder(oc.DB, order, body.Version); err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order saved", gin.H{
		"order":   order,
		"totals":  totals,
		"version": order.Version,
	})
}

// RequestCancel -> first half of the two-step void guard
func (oc *OrderController) RequestCancel(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	token, err := oc.Cancels.RequestCancellation(order.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cancellation requested", gin.H{
		"token": token,
	})
}

// Cancel -> commits the void with reason + manager credential
func (oc *OrderController) Cancel(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var body struct {
		Token      string `json:"token"`
		Credential string `json:"credential"`
		Reason     string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	cancelled, err := oc.Cancels.Cancel(order.ID, body.Token, body.Credential, body.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastOrderCancelled(*cancelled)
	utils.InfoLogger.Printf("Order %d cancelled (reason=%s)", cancelled.ID, cancelled.CancelReason)
	utils.RespondJSON(c, http.StatusOK, "Order cancelled", cancelled)
}
