package models

import "time"

// Branch holds the outlet's GST profile. Orders snapshot the rates at
// edit time; changing the branch profile never rewrites past bills.
type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	GSTNumber string    `gorm:"type:varchar(30)" json:"gst_number"`
	CGSTRate  float64   `gorm:"type:decimal(5,2);not null;default:2.50" json:"cgst_rate"`
	SGSTRate  float64   `gorm:"type:decimal(5,2);not null;default:2.50" json:"sgst_rate"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
