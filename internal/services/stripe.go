package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MetadataSessionKey is the provider metadata key carrying the checkout
// session ID. The session ID is the only order detail round-tripped through
// a provider; everything else is re-loaded server-side at verification time.
const MetadataSessionKey = "checkout_session_id"

// Webhook signatures older than this are rejected
const webhookTolerance = 5 * time.Minute

// StripeConfig represents card payment provider configuration
type StripeConfig struct {
	SecretKey     string
	PublicKey     string
	WebhookSecret string
	Currency      string
}

// StripeService handles card payments via the Stripe API
type StripeService struct {
	config  StripeConfig
	client  *http.Client
	baseURL string
}

// NewStripeService creates a new card payment service
func NewStripeService(config StripeConfig) *StripeService {
	if config.Currency == "" {
		config.Currency = "usd"
	}

	return &StripeService{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.stripe.com",
	}
}

// PaymentIntent is the provider-side transaction for a card checkout
type PaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int               `json:"amount"` // in the currency's minor unit
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

// SessionID returns the checkout session ID attached at intent creation
func (p *PaymentIntent) SessionID() string {
	return p.Metadata[MetadataSessionKey]
}

// StripeError represents an error response from the provider
type StripeError struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *StripeError) Error() string {
	return fmt.Sprintf("stripe error: %s", e.Message)
}

type stripeErrorResponse struct {
	Error StripeError `json:"error"`
}

// StripeWebhookEvent is the provider event payload received on the webhook
type StripeWebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntent `json:"object"`
	} `json:"data"`
}

// EventPaymentSucceeded is the only event type that triggers recording
const EventPaymentSucceeded = "payment_intent.succeeded"

// CreateIntent creates a payment intent for the given amount, attaching the
// checkout session ID as metadata. Returns the intent with its client secret.
func (s *StripeService) CreateIntent(amountCents int, sessionID string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.Itoa(amountCents))
	form.Set("currency", s.config.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set(fmt.Sprintf("metadata[%s]", MetadataSessionKey), sessionID)

	req, err := http.NewRequest("POST", s.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create intent request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send intent request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleAPIError(resp.StatusCode, bodyBytes)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(bodyBytes, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode intent response: %w", err)
	}

	return &intent, nil
}

// GetIntent fetches the current state of a payment intent
func (s *StripeService) GetIntent(intentID string) (*PaymentIntent, error) {
	req, err := http.NewRequest("GET", s.baseURL+"/v1/payment_intents/"+intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create intent fetch request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intent: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent fetch body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleAPIError(resp.StatusCode, bodyBytes)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(bodyBytes, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode intent: %w", err)
	}

	return &intent, nil
}

// ConstructWebhookEvent verifies the Stripe-Signature header against the raw
// payload and returns the parsed event. Unsigned or stale payloads are
// rejected in every environment.
func (s *StripeService) ConstructWebhookEvent(payload []byte, sigHeader string) (*StripeWebhookEvent, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if time.Since(time.Unix(timestamp, 0)) > webhookTolerance {
		return nil, fmt.Errorf("webhook timestamp outside tolerance")
	}

	signedPayload := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	valid := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("webhook signature verification failed")
	}

	var event StripeWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}

	return &event, nil
}

// parseSignatureHeader parses the "t=<unix>,v1=<hex>[,v1=...]" header scheme
func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("missing signature header")
	}

	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			ts, err := strconv.ParseInt(pair[1], 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid signature timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, pair[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("malformed signature header")
	}

	return timestamp, signatures, nil
}

// handleAPIError maps provider error responses onto typed errors
func (s *StripeService) handleAPIError(statusCode int, body []byte) error {
	var errResp stripeErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return fmt.Errorf("stripe API error (status %d): %s", statusCode, string(body))
	}
	return &errResp.Error
}
