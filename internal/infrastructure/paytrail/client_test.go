package paytrail

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "SAIPPUAKAUPPIAS"

func signFixture(secret string, params map[string]string, body []byte) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.HasPrefix(k, "checkout-") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k + ":" + params[k] + "\n")
	}
	b.Write(body)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func samplePayment() *CreatePaymentRequest {
	return &CreatePaymentRequest{
		Stamp:     "order-123",
		Reference: "ref-123",
		Amount:    13000,
		Currency:  "EUR",
		Language:  "FI",
		Items: []Item{
			{UnitPrice: 12000, Units: 1, VatPercentage: 24, ProductCode: "p-sofa"},
			{UnitPrice: 1000, Units: 1, VatPercentage: 24, ProductCode: "shipping"},
		},
		Customer: Customer{Email: "aino@example.fi"},
		RedirectURLs: CallbackURLs{
			Success: "https://shop.example.fi/checkout/success",
			Cancel:  "https://shop.example.fi/checkout/cancel",
		},
	}
}

func TestCreatePayment_SignsAndDecodes(t *testing.T) {
	assertions := assert.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertions.Equal("/payments", r.URL.Path)
		assertions.Equal("merchant-1", r.Header.Get("checkout-account"))
		assertions.Equal("sha256", r.Header.Get("checkout-algorithm"))
		assertions.NotEmpty(r.Header.Get("checkout-nonce"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// The server recomputes the signature over the signed headers + body
		headers := map[string]string{}
		for _, name := range []string{"checkout-account", "checkout-algorithm", "checkout-method", "checkout-nonce", "checkout-timestamp"} {
			headers[name] = r.Header.Get(name)
		}
		assertions.Equal(signFixture(testSecret, headers, body), r.Header.Get("signature"))

		var req CreatePaymentRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assertions.Equal(int64(13000), req.Amount)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PaymentSession{
			TransactionID: "tx-1",
			Href:          "https://pay.example.fi/tx-1",
			Reference:     req.Reference,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "merchant-1", testSecret, 5*time.Second)
	session, err := client.CreatePayment(context.Background(), samplePayment())
	require.NoError(t, err)
	assertions.Equal("tx-1", session.TransactionID)
	assertions.Equal("https://pay.example.fi/tx-1", session.Href)
}

func TestCreatePayment_RetriesServerErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(PaymentSession{TransactionID: "tx-2", Href: "https://pay.example.fi/tx-2"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "merchant-1", testSecret, 5*time.Second)
	session, err := client.CreatePayment(context.Background(), samplePayment())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, "tx-2", session.TransactionID)
}

func TestCreatePayment_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "merchant-1", testSecret, 5*time.Second)
	_, err := client.CreatePayment(context.Background(), samplePayment())
	assert.Error(t, err)
	assert.Equal(t, 1, attempts, "a 4xx never succeeds on retry")
}

func TestCreatePayment_MissingCredentials(t *testing.T) {
	client := NewClient("https://services.paytrail.com", "", "", time.Second)
	_, err := client.CreatePayment(context.Background(), samplePayment())
	assert.Error(t, err)
}

func TestVerifyRedirect(t *testing.T) {
	assertions := assert.New(t)
	client := NewClient("https://services.paytrail.com", "merchant-1", testSecret, time.Second)

	params := map[string]string{
		"checkout-account":        "merchant-1",
		"checkout-algorithm":      "sha256",
		"checkout-transaction-id": "tx-1",
		"checkout-status":         "ok",
	}
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("signature", signFixture(testSecret, params, nil))

	assertions.NoError(client.VerifyRedirect(query))

	query.Set("checkout-status", "fail")
	assertions.Error(client.VerifyRedirect(query), "tampered parameters break the signature")
}

func TestEuroCents(t *testing.T) {
	assert.Equal(t, int64(1000), EuroCents(10))
	assert.Equal(t, int64(1999), EuroCents(19.99))
	assert.Equal(t, int64(10), EuroCents(0.1))
	assert.Equal(t, int64(0), EuroCents(0))
}
