package payments

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(payload []byte, secret string, h func() hash.Hash) string {
	mac := hmac.New(h, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"item_id":"subscription:silver","txn_id":"t1"}`)
	secret := "s3cr3t"

	t.Run("md5 accepted", func(t *testing.T) {
		sig := sign(payload, secret, md5.New)
		assert.True(t, VerifyWebhookSignature(payload, sig, secret))
	})

	t.Run("sha256 accepted", func(t *testing.T) {
		sig := sign(payload, secret, sha256.New)
		assert.True(t, VerifyWebhookSignature(payload, sig, secret))
	})

	t.Run("uppercase hex accepted", func(t *testing.T) {
		sig := strings.ToUpper(sign(payload, secret, sha256.New))
		assert.True(t, VerifyWebhookSignature(payload, sig, secret))
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		sig := sign(payload, "other", sha256.New)
		assert.False(t, VerifyWebhookSignature(payload, sig, secret))
	})

	t.Run("tampered payload rejected", func(t *testing.T) {
		sig := sign(payload, secret, sha256.New)
		assert.False(t, VerifyWebhookSignature([]byte(`{}`), sig, secret))
	})

	t.Run("empty signature rejected", func(t *testing.T) {
		assert.False(t, VerifyWebhookSignature(payload, "", secret))
	})

	t.Run("empty secret rejected", func(t *testing.T) {
		sig := sign(payload, secret, sha256.New)
		assert.False(t, VerifyWebhookSignature(payload, sig, ""))
	})

	t.Run("non-hex signature rejected", func(t *testing.T) {
		assert.False(t, VerifyWebhookSignature(payload, "not-hex!", secret))
	})
}
