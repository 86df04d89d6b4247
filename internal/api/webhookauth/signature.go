// Package webhookauth verifies the HMAC signature the upstream automation
// attaches to webhook calls. Verification is optional: it activates only
// when a shared secret is configured.
package webhookauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HeaderName is the request header carrying the signature.
const HeaderName = "X-Webhook-Signature"

// Sign computes the signature for a request body.
// Format: "sha256=<hex of HMAC-SHA256(secret, body)>".
func Sign(secret string, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// Verify checks a received signature against the body. Comparison is
// constant-time.
func Verify(secret string, body []byte, signature string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
