package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleCart() []Item {
	return []Item{
		{Name: "Burger", Price: 150, Quantity: 2, TaxRate: 5},
		{Name: "Fries", Price: 80, Quantity: 1, TaxRate: 5},
	}
}

func TestComputePlainCart(t *testing.T) {
	totals := Compute(sampleCart(), Discount{}, 2.5, 2.5, false)

	assert.Equal(t, 380.0, totals.Subtotal)
	assert.Equal(t, 9.5, totals.CGST)
	assert.Equal(t, 9.5, totals.SGST)
	assert.Equal(t, 19.0, totals.Tax)
	assert.Equal(t, 0.0, totals.DiscountAmount)
	assert.Equal(t, 399.0, totals.PreRoundTotal)
	assert.Equal(t, 399.0, totals.Total)
	assert.Equal(t, 0.0, totals.RoundOff)
}

func TestComputePercentageDiscountWithCap(t *testing.T) {
	cap := 30.0
	discount := Discount{Type: DiscountTypePercentage, Value: 10, MaxAmount: &cap}
	totals := Compute(sampleCart(), discount, 2.5, 2.5, false)

	// min(10% of 380 = 38, cap 30) = 30
	assert.Equal(t, 30.0, totals.DiscountAmount)
	assert.Equal(t, 369.0, totals.PreRoundTotal)
	assert.Equal(t, 369.0, totals.Total)
	assert.Equal(t, 0.0, totals.RoundOff)
}

func TestComputePercentageDiscountUncapped(t *testing.T) {
	discount := Discount{Type: DiscountTypePercentage, Value: 10}
	totals := Compute(sampleCart(), discount, 2.5, 2.5, false)

	assert.Equal(t, 38.0, totals.DiscountAmount)
	assert.Equal(t, 361.0, totals.Total)
}

func TestComputeComplementary(t *testing.T) {
	totals := Compute(sampleCart(), Discount{}, 2.5, 2.5, true)

	assert.Equal(t, 0.0, totals.Total)
	assert.Equal(t, 399.0, totals.ComplementaryAmount)
	assert.Equal(t, 0.0, totals.RoundOff)
	// Sub-amounts are still reported for the audit trail.
	assert.Equal(t, 380.0, totals.Subtotal)
}

func TestComputeRoundOffHalfUp(t *testing.T) {
	items := []Item{{Name: "Chai", Price: 10.25, Quantity: 1, TaxRate: 5}}
	totals := Compute(items, Discount{}, 2.5, 2.5, false)

	// 10.25 + 0.26 + 0.26 = 10.77 -> rounds to 11
	assert.Equal(t, 10.77, totals.PreRoundTotal)
	assert.Equal(t, 11.0, totals.Total)
	assert.Equal(t, 0.23, totals.RoundOff)

	items = []Item{{Name: "Cookie", Price: 10.10, Quantity: 1}}
	totals = Compute(items, Discount{}, 0, 0, false)
	assert.Equal(t, 10.0, totals.Total)
	assert.Equal(t, -0.1, totals.RoundOff)

	// Exactly .50 goes up.
	items = []Item{{Name: "Half", Price: 10.50, Quantity: 1}}
	totals = Compute(items, Discount{}, 0, 0, false)
	assert.Equal(t, 11.0, totals.Total)
}

func TestComputeDiscountExceedsBillClampsAtZero(t *testing.T) {
	items := []Item{{Name: "Espresso", Price: 50, Quantity: 1}}
	discount := Discount{Type: DiscountTypeAmount, Value: 500}
	totals := Compute(items, discount, 2.5, 2.5, false)

	assert.Equal(t, 0.0, totals.PreRoundTotal)
	assert.Equal(t, 0.0, totals.Total)
	assert.Equal(t, 0.0, totals.RoundOff)
}

func TestComputeEmptyCart(t *testing.T) {
	totals := Compute(nil, Discount{}, 2.5, 2.5, false)
	assert.Equal(t, 0.0, totals.Subtotal)
	assert.Equal(t, 0.0, totals.Total)
}

func TestComputeTotalInvariant(t *testing.T) {
	carts := [][]Item{
		{{Name: "A", Price: 33.33, Quantity: 3}},
		{{Name: "B", Price: 149.99, Quantity: 1}, {Name: "C", Price: 0.01, Quantity: 7}},
		{{Name: "D", Price: 75.50, Quantity: 2}, {Name: "E", Price: 12.80, Quantity: 5}},
	}
	for _, items := range carts {
		totals := Compute(items, Discount{Type: DiscountTypeAmount, Value: 10}, 2.5, 2.5, false)
		// total == round(subtotal + tax - discount), roundOff == total - preRound
		assert.InDelta(t, totals.PreRoundTotal+totals.RoundOff, totals.Total, 0.001)
		assert.InDelta(t, totals.Subtotal+totals.Tax-totals.DiscountAmount, totals.PreRoundTotal, 0.001)
	}
}
