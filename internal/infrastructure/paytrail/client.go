// Package paytrail implements the subset of the Paytrail payment API the
// checkout flow needs: creating a hosted payment session and verifying
// redirect signatures.
package paytrail

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"kaluste-backend/pkg/logger"
)

const (
	headerAccount   = "checkout-account"
	headerAlgorithm = "checkout-algorithm"
	headerMethod    = "checkout-method"
	headerNonce     = "checkout-nonce"
	headerTimestamp = "checkout-timestamp"
	headerSignature = "signature"

	algorithmHMACSHA256 = "sha256"

	maxAttempts = 3
)

// Item is one payment row. Amounts are in minor units (cents).
type Item struct {
	UnitPrice     int64  `json:"unitPrice"`
	Units         int64  `json:"units"`
	VatPercentage int64  `json:"vatPercentage"`
	ProductCode   string `json:"productCode"`
	Description   string `json:"description,omitempty"`
}

type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type CallbackURLs struct {
	Success string `json:"success"`
	Cancel  string `json:"cancel"`
}

// CreatePaymentRequest is the payload for POST /payments. Amount must equal
// the sum of item rows.
type CreatePaymentRequest struct {
	Stamp        string       `json:"stamp"`
	Reference    string       `json:"reference"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	Language     string       `json:"language"`
	Items        []Item       `json:"items"`
	Customer     Customer     `json:"customer"`
	RedirectURLs CallbackURLs `json:"redirectUrls"`
}

// Provider is one payment method button on the hosted page.
type Provider struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Icon string `json:"icon,omitempty"`
}

// PaymentSession is the provider's answer: a transaction id plus the hosted
// payment page the customer is sent to.
type PaymentSession struct {
	TransactionID string     `json:"transactionId"`
	Href          string     `json:"href"`
	Reference     string     `json:"reference"`
	Providers     []Provider `json:"providers,omitempty"`
}

type Client struct {
	httpClient *http.Client
	apiURL     string
	merchantID string
	secret     string
}

func NewClient(apiURL, merchantID, secret string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     strings.TrimRight(apiURL, "/"),
		merchantID: merchantID,
		secret:     secret,
	}
}

// CreatePayment opens a payment session. Transient failures (network errors,
// 5xx) are retried a bounded number of times; 4xx responses are returned to
// the caller immediately.
func (c *Client) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentSession, error) {
	if c.merchantID == "" || c.secret == "" {
		return nil, fmt.Errorf("payment provider credentials are not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		session, retryable, err := c.doCreate(ctx, body)
		if err == nil {
			return session, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		logger.WithContext(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Msg("payment session creation failed, retrying")
	}
	return nil, fmt.Errorf("create payment after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) doCreate(ctx context.Context, body []byte) (*PaymentSession, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}

	headers := map[string]string{
		headerAccount:   c.merchantID,
		headerAlgorithm: algorithmHMACSHA256,
		headerMethod:    http.MethodPost,
		headerNonce:     uuid.NewString(),
		headerTimestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set(headerSignature, c.sign(headers, body))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, true, fmt.Errorf("payment request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, fmt.Errorf("read payment response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, respBody)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("payment provider rejected the request (%d): %s", resp.StatusCode, respBody)
	}

	var session PaymentSession
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, false, fmt.Errorf("decode payment response: %w", err)
	}
	if session.Href == "" {
		return nil, false, fmt.Errorf("payment response missing redirect href")
	}
	return &session, false, nil
}

// sign computes the request signature: all checkout-* headers sorted by name,
// rendered "name:value\n", followed by the raw body, HMAC-SHA256 under the
// merchant secret, hex encoded.
func (c *Client) sign(headers map[string]string, body []byte) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		if strings.HasPrefix(k, "checkout-") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(headers[k])
		b.WriteString("\n")
	}
	b.Write(body)

	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyRedirect checks the signature on a success/cancel redirect from the
// hosted payment page. Query parameters prefixed checkout- are signed the
// same way as request headers, with an empty body.
func (c *Client) VerifyRedirect(query url.Values) error {
	headers := make(map[string]string)
	for k := range query {
		if strings.HasPrefix(k, "checkout-") {
			headers[k] = query.Get(k)
		}
	}
	expected := c.sign(headers, nil)
	if !hmac.Equal([]byte(expected), []byte(query.Get(headerSignature))) {
		return fmt.Errorf("redirect signature mismatch")
	}
	return nil
}

// EuroCents converts a euro amount to minor units, rounding half up.
func EuroCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
