package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPayload(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestConstructWebhookEvent(t *testing.T) {
	service := NewStripeService(StripeConfig{WebhookSecret: "whsec_test"})

	payload := []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_123",
				"amount": 3000,
				"status": "succeeded",
				"metadata": {"checkout_session_id": "sess-abc"}
			}
		}
	}`)

	timestamp := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", timestamp, signPayload("whsec_test", timestamp, payload))

	event, err := service.ConstructWebhookEvent(payload, header)
	require.NoError(t, err)

	assert.Equal(t, EventPaymentSucceeded, event.Type)
	assert.Equal(t, "pi_123", event.Data.Object.ID)
	assert.Equal(t, 3000, event.Data.Object.Amount)
	assert.Equal(t, "sess-abc", event.Data.Object.SessionID())
}

func TestConstructWebhookEventBadSignature(t *testing.T) {
	service := NewStripeService(StripeConfig{WebhookSecret: "whsec_test"})

	payload := []byte(`{"id": "evt_1"}`)
	timestamp := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", timestamp, signPayload("wrong_secret", timestamp, payload))

	_, err := service.ConstructWebhookEvent(payload, header)
	assert.Error(t, err)
}

func TestConstructWebhookEventTamperedPayload(t *testing.T) {
	service := NewStripeService(StripeConfig{WebhookSecret: "whsec_test"})

	payload := []byte(`{"id": "evt_1"}`)
	timestamp := time.Now().Unix()
	header := fmt.Sprintf("t=%d,v1=%s", timestamp, signPayload("whsec_test", timestamp, payload))

	_, err := service.ConstructWebhookEvent([]byte(`{"id": "evt_2"}`), header)
	assert.Error(t, err)
}

func TestConstructWebhookEventStaleTimestamp(t *testing.T) {
	service := NewStripeService(StripeConfig{WebhookSecret: "whsec_test"})

	payload := []byte(`{"id": "evt_1"}`)
	timestamp := time.Now().Add(-10 * time.Minute).Unix()
	header := fmt.Sprintf("t=%d,v1=%s", timestamp, signPayload("whsec_test", timestamp, payload))

	_, err := service.ConstructWebhookEvent(payload, header)
	assert.Error(t, err)
}

func TestConstructWebhookEventMissingHeader(t *testing.T) {
	service := NewStripeService(StripeConfig{WebhookSecret: "whsec_test"})

	_, err := service.ConstructWebhookEvent([]byte(`{}`), "")
	assert.Error(t, err)
}

func TestParseSignatureHeader(t *testing.T) {
	timestamp, signatures, err := parseSignatureHeader("t=1712000000,v1=abc123,v1=def456")
	require.NoError(t, err)

	assert.Equal(t, int64(1712000000), timestamp)
	assert.Equal(t, []string{"abc123", "def456"}, signatures)
}

func TestParseSignatureHeaderMalformed(t *testing.T) {
	for _, header := range []string{"", "v1=abc", "t=123", "t=notanumber,v1=abc"} {
		_, _, err := parseSignatureHeader(header)
		assert.Error(t, err, "header %q should be rejected", header)
	}
}

func TestPaymentIntentSessionID(t *testing.T) {
	intent := &PaymentIntent{Metadata: map[string]string{MetadataSessionKey: "sess-1"}}
	assert.Equal(t, "sess-1", intent.SessionID())

	empty := &PaymentIntent{}
	assert.Equal(t, "", empty.SessionID())
}
