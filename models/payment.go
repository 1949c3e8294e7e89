package models

import "time"

// Payment methods accepted at the counter.
const (
	PaymentMethodCash  = "cash"
	PaymentMethodCard  = "card"
	PaymentMethodQRIS  = "qris"
	PaymentMethodMixed = "mixed"
)

// Payment entry states. Split entries are recorded as pending and
// flipped to success in one transaction when checkout finalizes.
const (
	PaymentEntryPending = "pending"
	PaymentEntrySuccess = "success"
	PaymentEntryFailed  = "failed"
)

// Payment represents one recorded payment entry against an order. A
// split settlement carries several rows; a plain settlement one.
type Payment struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `gorm:"not null;index" json:"order_id"`
	Order   Order `gorm:"foreignKey:OrderID" json:"-"`

	Method  string  `gorm:"type:varchar(20);not null;default:'cash'" json:"method"`
	Amount  float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	IsSplit bool    `gorm:"not null;default:false" json:"is_split"`

	// Reference is the replay-safe idempotency key forwarded to the
	// payment gateway.
	Reference string     `gorm:"type:varchar(64);uniqueIndex" json:"reference"`
	Status    string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// ValidPaymentMethod reports whether m can be used for a payment entry.
func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodCash || m == PaymentMethodCard || m == PaymentMethodQRIS
}
