package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// CouponValidator checks an opaque coupon code with the coupon backend.
// Coupon authoring lives elsewhere; this side only validates.
type CouponValidator interface {
	Validate(code string, orderTotal float64) error
}

// HTTPCouponValidator posts the code to the coupon service configured
// via COUPON_SERVICE_URL.
type HTTPCouponValidator struct {
	BaseURL    string
	httpClient *http.Client
}

// NewCouponValidator returns the HTTP validator, or an accept-all
// validator when no coupon service is configured.
func NewCouponValidator() CouponValidator {
	baseURL := os.Getenv("COUPON_SERVICE_URL")
	if baseURL == "" {
		return acceptAllCoupons{}
	}
	return &HTTPCouponValidator{
		BaseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (v *HTTPCouponValidator) Validate(code string, orderTotal float64) error {
	payload, err := json.Marshal(map[string]interface{}{
		"code":   code,
		"amount": orderTotal,
	})
	if err != nil {
		return err
	}

	resp, err := v.httpClient.Post(v.BaseURL+"/coupons/validate", "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil && body.Message != "" {
			return fmt.Errorf("coupon rejected: %s", body.Message)
		}
		return fmt.Errorf("coupon rejected (status %d)", resp.StatusCode)
	}
	return nil
}

type acceptAllCoupons struct{}

func (acceptAllCoupons) Validate(code string, orderTotal float64) error {
	if code == "" {
		return NewValidationError("coupon code is required")
	}
	return nil
}
