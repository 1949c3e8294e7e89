package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/billing"
	"github.com/yeremiapane/cafe-pos/events"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

type PaymentController struct {
	DB       *gorm.DB
	Checkout *services.CheckoutService
}

func NewPaymentController(db *gorm.DB, checkout *services.CheckoutService) *PaymentController {
	return &PaymentController{DB: db, Checkout: checkout}
}

// reconcilerFor rebuilds the split reconciler from the order's pending
// payment entries against its authoritative total.
func (pc *PaymentController) reconcilerFor(order *models.Order) (*billing.SplitReconciler, []models.Payment, error) {
	var pending []models.Payment
	if err := pc.DB.Where("order_id = ? AND status = ?", order.ID, models.PaymentEntryPending).
		Order("id asc").Find(&pending).Error; err != nil {
		return nil, nil, err
	}

	rec := billing.NewSplitReconciler(order.TotalAmount)
	entries := make([]billing.PaymentEntry, 0, len(pending))
	for _, p := range pending {
		entries = append(entries, billing.PaymentEntry{ID: p.Reference, Method: p.Method, Amount: p.Amount})
	}
	rec.Restore(entries)
	return rec, pending, nil
}

// AddSplitPayment -> record one method/amount pair toward the total.
// Over-tender is clamped to the outstanding remainder.
func (pc *PaymentController) AddSplitPayment(c *gin.Context) {
	var order models.Order
	if err := pc.DB.Preload("Items").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if order.IsTerminal() {
		respondServiceError(c, services.ErrInvalidState)
		return
	}

	var body struct {
		Method string  `json:"method" binding:"required"`
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidPaymentMethod(body.Method) {
		respondServiceError(c, services.NewValidationError("unknown payment method"))
		return
	}

	// Keep the target in step with the current cart.
	services.Recalculate(&order)
	if err := services.SaveOrder(pc.DB, &order, 0); err != nil {
		respondServiceError(c, err)
		return
	}

	rec, _, err := pc.reconcilerFor(&order)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if rec.IsSettled() {
		respondServiceError(c, services.NewValidationError("order is already fully covered"))
		return
	}

	entry, err := rec.AddPayment(body.Method, body.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	payment := models.Payment{
		OrderID:   order.ID,
		Method:    entry.Method,
		Amount:    entry.Amount,
		IsSplit:   true,
		Reference: entry.ID,
		Status:    models.PaymentEntryPending,
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", gin.H{
		"entry":      payment,
		"remaining":  rec.Remaining(),
		"is_settled": rec.IsSettled(),
	})
}

// RemoveSplitPayment -> drop a pending entry by its reference
func (pc *PaymentController) RemoveSplitPayment(c *gin.Context) {
	var order models.Order
	if err := pc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if order.IsTerminal() {
		respondServiceError(c, services.ErrInvalidState)
		return
	}

	res := pc.DB.Where("order_id = ? AND reference = ? AND status = ?",
		order.ID, c.Param("reference"), models.PaymentEntryPending).
		Delete(&models.Payment{})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}

	rec, _, err := pc.reconcilerFor(&order)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment entry removed", gin.H{
		"remaining":  rec.Remaining(),
		"split_mode": rec.InSplitMode(),
	})
}

// ListPayments -> entries plus settlement state for the terminal
func (pc *PaymentController) ListPayments(c *gin.Context) {
	var order models.Order
	if err := pc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var payments []models.Payment
	if err := pc.DB.Where("order_id = ?", order.ID).Order("id asc").Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rec, _, err := pc.reconcilerFor(&order)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order payments", gin.H{
		"payments":   payments,
		"remaining":  rec.Remaining(),
		"is_settled": rec.IsSettled(),
	})
}

// CheckoutOrder -> run the save/settle/finalize sequence. The table is
// not touched; turning it over stays a separate staff action.
func (pc *PaymentController) CheckoutOrder(c *gin.Context) {
	var order models.Order
	if err := pc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var body struct {
		PaymentMethod string  `json:"payment_method"`
		AmountPaid    float64 `json:"amount_paid"`
		IsSplit       bool    `json:"is_split"`
		Version       uint    `json:"version"`
		SplitPayments []struct {
			Method string  `json:"method"`
			Amount float64 `json:"amount"`
		} `json:"split_payments"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Entries submitted inline are recorded before the orchestrator runs,
	// same as entries added one by one.
	if len(body.SplitPayments) > 0 && !order.IsTerminal() {
		rec, _, err := pc.reconcilerFor(&order)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		for _, sp := range body.SplitPayments {
			if !models.ValidPaymentMethod(sp.Method) {
				respondServiceError(c, services.NewValidationError("unknown payment method"))
				return
			}
			entry, err := rec.AddPayment(sp.Method, sp.Amount)
			if err != nil {
				respondServiceError(c, err)
				return
			}
			payment := models.Payment{
				OrderID:   order.ID,
				Method:    entry.Method,
				Amount:    entry.Amount,
				IsSplit:   true,
				Reference: entry.ID,
				Status:    models.PaymentEntryPending,
			}
			if err := pc.DB.Create(&payment).Error; err != nil {
				utils.RespondError(c, http.StatusInternalServerError, err)
				return
			}
		}
		body.IsSplit = true
	}

	paid, err := pc.Checkout.Checkout(order.ID, services.CheckoutRequest{
		PaymentMethod: body.PaymentMethod,
		AmountPaid:    body.AmountPaid,
		IsSplit:       body.IsSplit,
		Version:       body.Version,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	events.BroadcastPaymentSuccess(*paid)
	utils.InfoLogger.Printf("Order %d settled (%s, total=%.2f)", paid.ID, paid.PaymentMethod, paid.TotalAmount)
	utils.RespondJSON(c, http.StatusOK, "Checkout complete", paid)
}
