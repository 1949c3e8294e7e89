package models

import "time"

// Order lifecycle statuses. paid and cancelled are terminal.
const (
	OrderStatusOpen      = "open"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Payment status of an order's bill.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// Discount descriptor types.
const (
	DiscountTypeAmount     = "amount"
	DiscountTypePercentage = "percentage"
)

type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TableID  uint   `gorm:"not null;index" json:"table_id"`
	Table    Table  `gorm:"foreignKey:TableID" json:"-"`
	BranchID uint   `gorm:"not null;index" json:"branch_id"`
	Branch   Branch `gorm:"foreignKey:BranchID" json:"-"`

	// Customer info is optional and advisory only.
	CustomerName  string `gorm:"type:varchar(100)" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerTaxID string `gorm:"type:varchar(30)" json:"customer_tax_id"`

	DiscountType      string   `gorm:"type:varchar(20)" json:"discount_type"`
	DiscountValue     float64  `gorm:"type:decimal(10,2);default:0.00" json:"discount_value"`
	MaxDiscountAmount *float64 `gorm:"type:decimal(10,2)" json:"max_discount_amount,omitempty"`
	CouponCode        string   `gorm:"type:varchar(50)" json:"coupon_code"`

	Complementary       bool   `gorm:"not null;default:false" json:"complementary"`
	ComplementaryReason string `gorm:"type:varchar(255)" json:"complementary_reason"`

	// Tax snapshot copied from the branch profile at edit time.
	CGSTRate float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"cgst_rate"`
	SGSTRate float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"sgst_rate"`

	// Computed totals. Recomputed server-side on every save/checkout;
	// client-submitted figures are never trusted.
	Subtotal            float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	CGSTAmount          float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"cgst_amount"`
	SGSTAmount          float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"sgst_amount"`
	TaxAmount           float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax_amount"`
	DiscountAmount      float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"discount_amount"`
	RoundOff            float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"round_off"`
	TotalAmount         float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	ComplementaryAmount float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"complementary_amount"`

	Status        string `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	PaymentStatus string `gorm:"type:varchar(20);not null;default:'unpaid'" json:"payment_status"`
	PaymentMethod string `gorm:"type:varchar(20)" json:"payment_method"`

	// Cancellation audit. The approving credential is never persisted.
	CancelReason string     `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	// Version is bumped on every save; saves against a stale version
	// are rejected so two terminals cannot silently overwrite each other.
	Version uint `gorm:"not null;default:1" json:"version"`

	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"payments"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// IsTerminal reports whether the order reached a final status.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusCancelled
}
