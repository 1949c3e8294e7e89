package models

import "time"

// Line item provenance. Catalog items reference a menu id, custom items
// are typed in free-form, quick items come from the packed/quick-add list.
const (
	ItemSourceCatalog = "catalog"
	ItemSourceCustom  = "custom"
	ItemSourceQuick   = "quick"
)

type OrderItem struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OrderID uint  `gorm:"not null;index" json:"order_id"`
	Order   Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Name string `gorm:"type:varchar(100);not null" json:"name"`
	// Price is a snapshot of the unit price at order time, not a live
	// link to the catalog.
	Price    float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity int     `gorm:"not null" json:"quantity"`
	TaxRate  float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"tax_rate"`

	Source  string `gorm:"type:varchar(20);not null;default:'catalog'" json:"source"`
	MenuRef *uint  `gorm:"index" json:"menu_ref,omitempty"`
	Notes   string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// ValidItemSource reports whether s is a known provenance tag.
func ValidItemSource(s string) bool {
	return s == ItemSourceCatalog || s == ItemSourceCustom || s == ItemSourceQuick
}
