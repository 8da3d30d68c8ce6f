// Package signature verifies webhook payload signatures of the
// X-Hub-Signature-256 form (sha256=<hex>).
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const prefix = "sha256="

// Verify reports whether header carries a valid HMAC-SHA256 of body
// under secret. The comparison is constant-time. A missing, malformed
// or mismatching header yields false; Verify never fails.
func Verify(body []byte, header, secret string) bool {
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	received, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil || len(received) != sha256.Size {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(received, mac.Sum(nil))
}

// Sign computes the header value for body under secret. Primarily for
// tests and local tooling.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}
