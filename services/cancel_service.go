package services

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/models"
)

// CredentialValidator verifies a manager credential. The cancel service
// only checks presence and forwards the value; it never evaluates or
// stores the secret itself.
type CredentialValidator interface {
	Validate(credential string) error
}

// PasscodeValidator compares the credential against the bcrypt passcode
// hashes of manager/admin users.
type PasscodeValidator struct {
	DB *gorm.DB
}

func NewPasscodeValidator(db *gorm.DB) *PasscodeValidator {
	return &PasscodeValidator{DB: db}
}

func (v *PasscodeValidator) Validate(credential string) error {
	var users []models.User
	if err := v.DB.Where("role IN ? AND passcode_hash <> ''", []string{"admin", "manager"}).
		Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		if bcrypt.CompareHashAndPassword([]byte(u.PasscodeHash), []byte(credential)) == nil {
			return nil
		}
	}
	// Generic rejection; which check failed is not surfaced.
	return ErrNotAuthorized
}

// cancelTokenTTL bounds how long an issued confirmation stays valid.
const cancelTokenTTL = 2 * time.Minute

type cancelRequest struct {
	OrderID   uint
	ExpiresAt time.Time
}

// CancelService gates voiding an order behind an explicit two-call
// guard: RequestCancellation issues a confirmation token, Cancel
// consumes it together with a reason and a manager credential.
type CancelService struct {
	DB        *gorm.DB
	Validator CredentialValidator

	mu     sync.Mutex
	tokens map[string]cancelRequest
}

func NewCancelService(db *gorm.DB, validator CredentialValidator) *CancelService {
	return &CancelService{
		DB:        db,
		Validator: validator,
		tokens:    make(map[string]cancelRequest),
	}
}

// RequestCancellation issues a short-lived confirmation token for an
// open order.
func (s *CancelService) RequestCancellation(orderID uint) (string, error) {
	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		return "", err
	}
	if order.Status != models.OrderStatusOpen {
		return "", ErrInvalidState
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.tokens[token] = cancelRequest{OrderID: orderID, ExpiresAt: time.Now().Add(cancelTokenTTL)}
	s.mu.Unlock()
	return token, nil
}

// Cancel voids an open order. Failure at any check leaves the order
// untouched; cancellation is whole-order, never per-item.
func (s *CancelService) Cancel(orderID uint, token, credential, reason string) (*models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, NewValidationError("cancellation reason is required")
	}
	if strings.TrimSpace(credential) == "" {
		return nil, NewValidationError("manager credential is required")
	}

	if err := s.Validator.Validate(credential); err != nil {
		return nil, err
	}

	if !s.consumeToken(orderID, token) {
		return nil, NewValidationError("cancellation request missing or expired")
	}

	var order models.Order
	if err := s.DB.First(&order, orderID).Error; err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusOpen {
		return nil, ErrInvalidState
	}

	now := time.Now()
	order.Status = models.OrderStatusCancelled
	order.CancelReason = reason
	order.CancelledAt = &now

	if err := SaveOrder(s.DB, &order, 0); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *CancelService) consumeToken(orderID uint, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.tokens[token]
	if !ok {
		return false
	}
	if req.OrderID != orderID || time.Now().After(req.ExpiresAt) {
		delete(s.tokens, token)
		return false
	}
	delete(s.tokens, token)
	return true
}
