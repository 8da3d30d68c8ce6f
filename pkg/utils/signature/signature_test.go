package signature_test

import (
	"strings"
	"testing"

	"github.com/collie-dev/collie/pkg/utils/signature"
	"github.com/m-mizutani/gt"
)

func TestVerify(t *testing.T) {
	body := []byte(`{"action":"opened"}`)
	secret := "test-secret"
	header := signature.Sign(body, secret)

	t.Run("valid signature", func(t *testing.T) {
		gt.True(t, signature.Verify(body, header, secret))
	})

	t.Run("any body mutation invalidates", func(t *testing.T) {
		for i := range body {
			mutated := append([]byte{}, body...)
			mutated[i] ^= 0x01
			gt.True(t, !signature.Verify(mutated, header, secret))
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		gt.True(t, !signature.Verify(body, header, "other-secret"))
	})

	t.Run("digest mutation invalidates", func(t *testing.T) {
		mutated := []byte(header)
		last := len(mutated) - 1
		if mutated[last] == '0' {
			mutated[last] = '1'
		} else {
			mutated[last] = '0'
		}
		gt.True(t, !signature.Verify(body, string(mutated), secret))
	})

	t.Run("malformed headers", func(t *testing.T) {
		digest := strings.TrimPrefix(header, "sha256=")
		headers := []string{
			"",
			digest,              // missing scheme prefix
			"sha1=" + digest,    // wrong scheme
			"sha256=zzzz",       // not hex
			"sha256=deadbeef",   // wrong length
			"SHA256=" + digest,  // scheme is case-sensitive
			" sha256=" + digest, // leading whitespace
		}
		for _, h := range headers {
			gt.True(t, !signature.Verify(body, h, secret))
		}
	})

	t.Run("empty body still signs", func(t *testing.T) {
		h := signature.Sign(nil, secret)
		gt.True(t, signature.Verify(nil, h, secret))
		gt.True(t, !signature.Verify([]byte("x"), h, secret))
	})
}
