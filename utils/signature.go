package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// VerifyPaymentSignature checks a gateway payment confirmation. The gateway
// signs "orderID|paymentID" with HMAC-SHA256 over the shared secret and sends
// the hex digest. Comparison is constant time; a mismatch returns false, not
// an error. An empty secret is a configuration fault.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) (bool, error) {
	if secret == "" {
		return false, errors.New("payment secret is not configured")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature)), nil
}
