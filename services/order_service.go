package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/billing"
	"github.com/yeremiapane/cafe-pos/models"
)

// BillingItems maps persisted line items to the calculator's value shape.
func BillingItems(items []models.OrderItem) []billing.Item {
	out := make([]billing.Item, 0, len(items))
	for _, it := range items {
		out = append(out, billing.Item{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			TaxRate:  it.TaxRate,
		})
	}
	return out
}

// Recalculate recomputes the authoritative totals onto the order from
// its current items, discount and tax snapshot. Whatever totals the
// client showed are discarded here.
func Recalculate(order *models.Order) billing.Totals {
	discount := billing.Discount{
		Type:      order.DiscountType,
		Value:     order.DiscountValue,
		MaxAmount: order.MaxDiscountAmount,
	}
	totals := billing.Compute(BillingItems(order.Items), discount,
		order.CGSTRate, order.SGSTRate, order.Complementary)

	order.Subtotal = totals.Subtotal
	order.CGSTAmount = totals.CGST
	order.SGSTAmount = totals.SGST
	order.TaxAmount = totals.Tax
	order.DiscountAmount = totals.DiscountAmount
	order.RoundOff = totals.RoundOff
	order.TotalAmount = totals.Total
	order.ComplementaryAmount = totals.ComplementaryAmount
	return totals
}

// SaveOrder persists the order's scalar state guarded by its version
// column. expectedVersion 0 skips the caller-side check (server-driven
// mutations); the row-level guard still applies.
func SaveOrder(db *gorm.DB, order *models.Order, expectedVersion uint) error {
	if expectedVersion != 0 && expectedVersion != order.Version {
		return ErrVersionConflict
	}

	prev := order.Version
	updates := map[string]interface{}{
		"customer_name":        order.CustomerName,
		"customer_phone":       order.CustomerPhone,
		"customer_tax_id":      order.CustomerTaxID,
		"discount_type":        order.DiscountType,
		"discount_value":       order.DiscountValue,
		"max_discount_amount":  order.MaxDiscountAmount,
		"coupon_code":          order.CouponCode,
		"complementary":        order.Complementary,
		"complementary_reason": order.ComplementaryReason,
		"cgst_rate":            order.CGSTRate,
		"sgst_rate":            order.SGSTRate,
		"subtotal":             order.Subtotal,
		"cgst_amount":          order.CGSTAmount,
		"sgst_amount":          order.SGSTAmount,
		"tax_amount":           order.TaxAmount,
		"discount_amount":      order.DiscountAmount,
		"round_off":            order.RoundOff,
		"total_amount":         order.TotalAmount,
		"complementary_amount": order.ComplementaryAmount,
		"status":               order.Status,
		"payment_status":       order.PaymentStatus,
		"payment_method":       order.PaymentMethod,
		"cancel_reason":        order.CancelReason,
		"cancelled_at":         order.CancelledAt,
		"version":              prev + 1,
		"updated_at":           time.Now(),
	}

	res := db.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, prev).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	order.Version = prev + 1
	return nil
}
