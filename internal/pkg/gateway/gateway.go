// Package gateway models the external payment capture boundary. The checkout
// widget runs entirely outside this system: we hand it an order, and on
// success it calls back once with a capture reference and a signature. No
// callback ever arrives for abandoned or failed attempts.
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/rsinghal/paperroute/internal/pkg/env"
)

// Order is the descriptor handed to the checkout widget. AmountMinor is in the
// smallest currency unit; converting from whole units is done here, on our
// side of the boundary.
type Order struct {
	OrderID     string `json:"order_id"`
	AmountMinor int    `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	KeyID       string `json:"key_id"`
}

// CreateOrder builds an order for the given whole-unit amount.
func CreateOrder(amount int, currency, receipt string) Order {
	return Order{
		OrderID:     "order_" + uuid.NewString(),
		AmountMinor: amount * 100,
		Currency:    currency,
		Receipt:     receipt,
		KeyID:       env.GetEnv("GATEWAY_KEY_ID", ""),
	}
}

// VerifySignature checks the capture callback signature: HMAC-SHA256 over
// "orderID|paymentID" with the gateway secret, hex encoded.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	sig := strings.TrimSpace(signature)
	if sig == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(sig)))
}
