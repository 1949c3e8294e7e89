package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/billing"
	"github.com/yeremiapane/cafe-pos/models"
)

// PaymentFinalizer is the external payment-finalization collaborator.
// Finalize must be replay-safe for the same reference.
type PaymentFinalizer interface {
	Finalize(order *models.Order, method string, amount float64, reference string) error
}

// CheckoutRequest carries the staff terminal's checkout intent. The
// submitted amount is advisory; totals are recomputed server-side.
type CheckoutRequest struct {
	PaymentMethod string
	AmountPaid    float64
	IsSplit       bool
	Version       uint
}

// CheckoutService runs the save -> settle -> finalize sequence. A
// finalization failure after save leaves the order open/unpaid for a
// manual retry; the stored payment reference keeps the retry from
// charging twice.
type CheckoutService struct {
	DB *gorm.DB
	// Gateway finalizes card/QR payments. Cash settles locally. A nil
	// gateway finalizes everything locally (dev/test mode).
	Gateway PaymentFinalizer
}

func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{DB: db}
}

func (s *CheckoutService) Checkout(orderID uint, req CheckoutRequest) (*models.Order, error) {
	var order models.Order
	if err := s.DB.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	// Replaying a finished checkout is a success, not an error.
	if order.Status == models.OrderStatusPaid {
		return &order, nil
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, ErrInvalidState
	}
	if req.Version != 0 && req.Version != order.Version {
		return nil, ErrVersionConflict
	}
	if len(order.Items) == 0 {
		return nil, NewValidationError("order has no items")
	}

	// Phase 1: authoritative recompute + save.
	Recalculate(&order)
	if err := SaveOrder(s.DB, &order, 0); err != nil {
		return nil, err
	}

	var entries []models.Payment
	method := req.PaymentMethod

	if !order.Complementary {
		if err := s.DB.Where("order_id = ? AND status = ?", order.ID, models.PaymentEntryPending).
			Order("id asc").Find(&entries).Error; err != nil {
			return nil, err
		}

		rec := billing.NewSplitReconciler(order.TotalAmount)
		restored := make([]billing.PaymentEntry, 0, len(entries))
		for _, p := range entries {
			restored = append(restored, billing.PaymentEntry{ID: p.Reference, Method: p.Method, Amount: p.Amount})
		}
		rec.Restore(restored)

		switch {
		case rec.InSplitMode() || req.IsSplit:
			if !rec.IsSettled() {
				return nil, billing.ErrSettlementIncomplete
			}
			method = models.PaymentMethodMixed
			if len(entries) == 1 {
				method = entries[0].Method
			}
		default:
			// Outside split mode a single (method, target) pair is implied.
			if !models.ValidPaymentMethod(method) {
				return nil, NewValidationError("unknown payment method")
			}
			entry := models.Payment{
				OrderID:   order.ID,
				Method:    method,
				Amount:    order.TotalAmount,
				Reference: uuid.New().String(),
				Status:    models.PaymentEntryPending,
			}
			if err := s.DB.Create(&entry).Error; err != nil {
				return nil, err
			}
			entries = []models.Payment{entry}
		}

		// Phase 2: external finalization. The first entry's reference is
		// stable across retries, so a replay does not double-charge.
		if err := s.finalize(&order, entries, method); err != nil {
			return nil, err
		}
	}

	// Commit the paid state in one transaction.
	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			entries[i].Status = models.PaymentEntrySuccess
			entries[i].PaidAt = &now
			entries[i].IsSplit = len(entries) > 1
			if err := tx.Save(&entries[i]).Error; err != nil {
				return err
			}
		}
		order.Status = models.OrderStatusPaid
		order.PaymentStatus = models.PaymentStatusPaid
		if !order.Complementary {
			order.PaymentMethod = method
		}
		return SaveOrder(tx, &order, 0)
	})
	if err != nil {
		return nil, err
	}

	// Table status is deliberately not touched here; turning the table
	// over is a separate staff action.
	return &order, nil
}

func (s *CheckoutService) finalize(order *models.Order, entries []models.Payment, method string) error {
	if s.Gateway == nil {
		return nil
	}
	for _, entry := range entries {
		if entry.Method == models.PaymentMethodCash {
			continue
		}
		if err := s.Gateway.Finalize(order, entry.Method, entry.Amount, entry.Reference); err != nil {
			return err
		}
	}
	return nil
}
