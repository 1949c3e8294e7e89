// Package billing is the single authority for bill arithmetic. The same
// Compute runs for the live preview and again at save/checkout, so a
// client-submitted total is never trusted.
package billing

import "math"

// Item is the value shape Compute works on, independent of persistence.
type Item struct {
	Name     string
	Price    float64
	Quantity int
	TaxRate  float64
}

// Discount describes an order-level discount. For percentage discounts
// MaxAmount, when set, caps the computed amount.
type Discount struct {
	Type      string // "amount" or "percentage", empty for none
	Value     float64
	MaxAmount *float64
}

const (
	DiscountTypeAmount     = "amount"
	DiscountTypePercentage = "percentage"
)

// Totals is the full bill breakdown. Sub-amounts carry 2-decimal
// precision; Total is rounded half-up to a whole currency unit and
// RoundOff is the signed adjustment applied to get there.
type Totals struct {
	Subtotal            float64 `json:"subtotal"`
	CGST                float64 `json:"cgst_amount"`
	SGST                float64 `json:"sgst_amount"`
	Tax                 float64 `json:"tax_amount"`
	DiscountAmount      float64 `json:"discount_amount"`
	PreRoundTotal       float64 `json:"pre_round_total"`
	RoundOff            float64 `json:"round_off"`
	Total               float64 `json:"total_amount"`
	ComplementaryAmount float64 `json:"complementary_amount"`
}

// Compute derives the bill totals from the current line items, discount
// descriptor, tax-rate snapshot and complementary flag. Pure and
// deterministic, no side effects.
func Compute(items []Item, discount Discount, cgstRate, sgstRate float64, complementary bool) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
	}
	subtotal = round2(subtotal)

	cgst := round2(subtotal * cgstRate / 100)
	sgst := round2(subtotal * sgstRate / 100)
	tax := round2(cgst + sgst)

	var discountAmount float64
	switch discount.Type {
	case DiscountTypePercentage:
		discountAmount = subtotal * discount.Value / 100
		if discount.MaxAmount != nil && discountAmount > *discount.MaxAmount {
			discountAmount = *discount.MaxAmount
		}
	case DiscountTypeAmount:
		discountAmount = discount.Value
	}
	discountAmount = round2(discountAmount)

	preRound := round2(subtotal + tax - discountAmount)
	if preRound < 0 {
		// A discount larger than subtotal+tax never produces a
		// negative payable.
		preRound = 0
	}

	t := Totals{
		Subtotal:       subtotal,
		CGST:           cgst,
		SGST:           sgst,
		Tax:            tax,
		DiscountAmount: discountAmount,
		PreRoundTotal:  preRound,
	}

	if complementary {
		// Billed at zero; the would-be amount is retained for audit.
		t.ComplementaryAmount = preRound
		t.Total = 0
		t.RoundOff = 0
		return t
	}

	t.Total = math.Floor(preRound + 0.5)
	t.RoundOff = round2(t.Total - preRound)
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
