package services

import (
	"fmt"
	"os"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
)

// MidtransGateway finalizes QR payments through the Midtrans Core API.
// Card payments settle on the EDC terminal; the gateway only verifies a
// known transaction for them. Satisfies PaymentFinalizer.
type MidtransGateway struct {
	client coreapi.Client
}

// NewMidtransGateway builds a gateway from MIDTRANS_SERVER_KEY and
// MIDTRANS_ENV. Returns nil when no server key is configured, in which
// case checkout finalizes locally.
func NewMidtransGateway() *MidtransGateway {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		return nil
	}

	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}

	g := &MidtransGateway{}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) Finalize(order *models.Order, method string, amount float64, reference string) error {
	// Replay guard: a reference already settled upstream is a success.
	status, midErr := g.client.CheckTransaction(reference)
	if midErr == nil && status != nil {
		switch status.TransactionStatus {
		case "settlement", "capture":
			return nil
		}
	}

	if method != models.PaymentMethodQRIS {
		// Card entries are captured on the EDC terminal out-of-band.
		return nil
	}

	chargeReq := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  reference,
			GrossAmt: int64(amount),
		},
	}

	resp, chargeErr := g.client.ChargeTransaction(chargeReq)
	if chargeErr != nil {
		// Gateway message passes through verbatim for the operator.
		return fmt.Errorf("payment gateway: %s", chargeErr.Message)
	}

	utils.InfoLogger.Printf("Gateway charge accepted for order %d (ref=%s, status=%s)",
		order.ID, reference, resp.TransactionStatus)
	return nil
}
