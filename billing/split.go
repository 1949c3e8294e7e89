package billing

import (
	"errors"

	"github.com/google/uuid"
)

// SettlementEpsilon absorbs floating-point dust when deciding whether
// recorded payments cover the target.
const SettlementEpsilon = 0.01

var (
	// ErrInvalidAmount rejects zero or negative payment amounts.
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")
	// ErrSettlementIncomplete blocks checkout while recorded payments
	// do not cover the payable total.
	ErrSettlementIncomplete = errors.New("recorded payments do not cover the payable total")
)

// PaymentEntry is one method/amount pair in a split settlement.
type PaymentEntry struct {
	ID     string  `json:"id"`
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// SplitReconciler tracks partial payments against a target total.
// Outside split mode a single (method, target) pair is implied.
type SplitReconciler struct {
	target    float64
	entries   []PaymentEntry
	splitMode bool
}

func NewSplitReconciler(target float64) *SplitReconciler {
	return &SplitReconciler{target: round2(target)}
}

// Restore seeds the reconciler from previously persisted entries.
func (r *SplitReconciler) Restore(entries []PaymentEntry) {
	r.entries = append(r.entries[:0], entries...)
	r.splitMode = len(r.entries) > 0
}

// AddPayment records an entry. Amounts above the outstanding remainder
// are clamped, so the entry sum can never exceed the target.
func (r *SplitReconciler) AddPayment(method string, amount float64) (PaymentEntry, error) {
	if amount <= 0 {
		return PaymentEntry{}, ErrInvalidAmount
	}
	if remaining := r.Remaining(); amount > remaining {
		amount = remaining
	}
	entry := PaymentEntry{
		ID:     uuid.New().String(),
		Method: method,
		Amount: round2(amount),
	}
	r.entries = append(r.entries, entry)
	r.splitMode = true
	return entry, nil
}

// RemovePayment drops the entry with the given id. Emptying the list
// turns split mode off.
func (r *SplitReconciler) RemovePayment(entryID string) bool {
	for i, e := range r.entries {
		if e.ID == entryID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			if len(r.entries) == 0 {
				r.splitMode = false
			}
			return true
		}
	}
	return false
}

// Paid is the sum of recorded entries.
func (r *SplitReconciler) Paid() float64 {
	var sum float64
	for _, e := range r.entries {
		sum += e.Amount
	}
	return round2(sum)
}

// Remaining is the outstanding amount against the target.
func (r *SplitReconciler) Remaining() float64 {
	return round2(r.target - r.Paid())
}

// IsSettled reports whether payments cover the target within epsilon.
func (r *SplitReconciler) IsSettled() bool {
	return r.Remaining() <= SettlementEpsilon
}

func (r *SplitReconciler) Target() float64 { return r.target }

func (r *SplitReconciler) Entries() []PaymentEntry { return append([]PaymentEntry(nil), r.entries...) }

func (r *SplitReconciler) InSplitMode() bool { return r.splitMode }
