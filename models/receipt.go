package models

import "time"

// Receipt is the printable record of a settled bill.
type Receipt struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `gorm:"not null;uniqueIndex" json:"order_id"`
	Order   Order `gorm:"foreignKey:OrderID" json:"-"`

	ReceiptNumber string `gorm:"type:varchar(50);uniqueIndex;not null" json:"receipt_number"`
	GSTNumber     string `gorm:"type:varchar(30)" json:"gst_number"`

	Subtotal       float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	CGSTAmount     float64 `gorm:"type:decimal(10,2);not null" json:"cgst_amount"`
	SGSTAmount     float64 `gorm:"type:decimal(10,2);not null" json:"sgst_amount"`
	DiscountAmount float64 `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	RoundOff       float64 `gorm:"type:decimal(10,2);not null" json:"round_off"`
	Total          float64 `gorm:"type:decimal(10,2);not null" json:"total"`

	PaymentMethod string `gorm:"type:varchar(20);not null" json:"payment_method"`
	PDFPath       string `gorm:"type:varchar(255)" json:"pdf_path"`

	ReceiptItems []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"receipt_items"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type ReceiptItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ReceiptID uint    `gorm:"not null" json:"receipt_id"`
	Receipt   Receipt `gorm:"-" json:"-"`

	Name      string  `gorm:"type:varchar(100);not null" json:"name"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
