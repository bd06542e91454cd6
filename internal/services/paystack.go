package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaystackConfig represents Paystack payment service configuration
type PaystackConfig struct {
	SecretKey   string
	PublicKey   string
	Environment string // "test" or "live"
	CallbackURL string
}

// PaystackService handles the popup/redirect payment rail via the Paystack API
type PaystackService struct {
	config  PaystackConfig
	client  *http.Client
	baseURL string
}

// NewPaystackService creates a new Paystack payment service
func NewPaystackService(config PaystackConfig) *PaystackService {
	return &PaystackService{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.paystack.co",
	}
}

// TransactionRequest represents a payment initialization request
type TransactionRequest struct {
	Email       string            `json:"email"`
	Amount      int               `json:"amount"`    // Amount in the currency's minor unit
	Currency    string            `json:"currency"`  // NGN, GHS, KES, ZAR, USD
	Reference   string            `json:"reference"` // Unique transaction reference
	CallbackURL string            `json:"callback_url"`
	Metadata    map[string]string `json:"metadata"`
	Channels    []string          `json:"channels"` // card, bank, ussd, mobile_money
}

// TransactionResponse represents the response from transaction initialization
type TransactionResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    TransactionData `json:"data"`
}

// TransactionData contains the transaction initialization data
type TransactionData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// TransactionVerification represents transaction verification response
type TransactionVerification struct {
	Status  bool               `json:"status"`
	Message string             `json:"message"`
	Data    TransactionDetails `json:"data"`
}

// TransactionDetails contains detailed transaction information
type TransactionDetails struct {
	ID        int               `json:"id"`
	Status    string            `json:"status"`
	Reference string            `json:"reference"`
	Amount    int               `json:"amount"`
	Currency  string            `json:"currency"`
	PaidAt    string            `json:"paid_at"`
	Channel   string            `json:"channel"`
	Metadata  map[string]string `json:"metadata"`
}

// SessionID returns the checkout session ID carried in transaction metadata.
// Falls back to the transaction reference, which is set to the session ID at
// initialization time.
func (d *TransactionDetails) SessionID() string {
	if id, ok := d.Metadata[MetadataSessionKey]; ok && id != "" {
		return id
	}
	return d.Reference
}

// PaystackError represents an error response from Paystack
type PaystackError struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *PaystackError) Error() string {
	return fmt.Sprintf("paystack error: %s", e.Message)
}

// IsNotFound reports whether the API said the resource does not exist, as
// opposed to a transport or auth failure
func (e *PaystackError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// InitializeTransaction initializes a payment transaction with Paystack.
// The amount is already in minor units; the reference and metadata both
// carry the checkout session ID.
func (s *PaystackService) InitializeTransaction(req *TransactionRequest) (*TransactionResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", s.baseURL+"/transaction/initialize", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send transaction request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleAPIError(resp.StatusCode, bodyBytes)
	}

	var transactionResp TransactionResponse
	if err := json.Unmarshal(bodyBytes, &transactionResp); err != nil {
		return nil, fmt.Errorf("failed to decode transaction response: %w", err)
	}

	if !transactionResp.Status {
		return nil, fmt.Errorf("transaction initialization failed: %s", transactionResp.Message)
	}

	return &transactionResp, nil
}

// VerifyTransaction re-fetches transaction status from Paystack. The client's
// claim of success is never trusted; recording requires this server-side
// fetch to report status "success".
func (s *PaystackService) VerifyTransaction(reference string) (*TransactionVerification, error) {
	verifyURL := fmt.Sprintf("%s/transaction/verify/%s", s.baseURL, reference)
	httpReq, err := http.NewRequest("GET", verifyURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send verification request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read verification response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleAPIError(resp.StatusCode, bodyBytes)
	}

	var verification TransactionVerification
	if err := json.Unmarshal(bodyBytes, &verification); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}

	if !verification.Status {
		return nil, fmt.Errorf("transaction verification failed: %s", verification.Message)
	}

	return &verification, nil
}

// VerifyWebhookSignature verifies a Paystack webhook signature
func (s *PaystackService) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(s.config.SecretKey))
	mac.Write(payload)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// handleAPIError handles Paystack API errors. The response stays typed so
// callers can tell a definitive not-found from a transient failure.
func (s *PaystackService) handleAPIError(statusCode int, body []byte) error {
	var paystackErr PaystackError
	if err := json.Unmarshal(body, &paystackErr); err != nil {
		return fmt.Errorf("paystack API error (status %d): %s", statusCode, string(body))
	}

	paystackErr.StatusCode = statusCode

	switch statusCode {
	case http.StatusBadRequest:
		paystackErr.Message = "bad request: " + paystackErr.Message
	case http.StatusUnauthorized:
		paystackErr.Message = "unauthorized: check API keys - " + paystackErr.Message
	case http.StatusUnprocessableEntity:
		paystackErr.Message = "validation error: " + paystackErr.Message
	}

	return &paystackErr
}
