package platform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// Webhook headers set by the platform on every delivery.
const (
	HeaderHMAC       = "X-Platform-Hmac-Sha256"
	HeaderShopDomain = "X-Platform-Shop-Domain"
	HeaderWebhookID  = "X-Platform-Webhook-Id"
	HeaderTopic      = "X-Platform-Topic"
)

// ErrInvalidSignature is returned by VerifyWebhook for a missing or wrong
// signature header.
var ErrInvalidSignature = errors.New("platform: invalid webhook signature")

/// VerifyWebhook checks the platform's webhook signature: a base64-encoded
// HMAC-SHA256 of the exact raw request body, keyed with the app's shared
// webhook secret. Callers must pass the body bytes as read off the wire,
// before any decoding. The comparison is constant-time.
func VerifyWebhook(payload []byte, signature, secret string) error {
	if signature == "" {
		return ErrInvalidSignature
	}
	if secret == "" {
		return fmt.Errorf("platform: webhook secret is not configured")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(expected, got) {
		return ErrInvalidSignature
	}
	return nil
}

// SignWebhook computes the signature header value for a payload. Used by
// tests and the local delivery tool to produce valid deliveries.
func SignWebhook(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
