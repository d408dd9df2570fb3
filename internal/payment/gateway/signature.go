package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns hex(HMAC-SHA256(secret, gatewayOrderID + "|" + gatewayPaymentID)),
// the signature the gateway attaches to a completed checkout.
func Sign(secret []byte, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time; the match is exact, including case.
func VerifySignature(secret []byte, gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := Sign(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
