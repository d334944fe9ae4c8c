// Package payment integrates with a Stripe-compatible checkout provider:
// creating hosted checkout sessions for the book purchase and verifying the
// signed webhook deliveries that confirm completed payments.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/getcoveredlife/studio/internal/config"
	"github.com/getcoveredlife/studio/model"
)

// ProductMetadata tags every checkout session so the webhook can tell book
// purchases apart from anything else billed on the same account.
const ProductMetadata = "insurogram-book"

// CheckoutSession is the subset of the provider's session object we use.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client creates hosted checkout sessions.
type Client interface {
	// CreateCheckoutSession creates a payment session for the book and
	// returns the session with its hosted checkout URL.
	CreateCheckoutSession(ctx context.Context, email string) (CheckoutSession, error)
}

// HTTPClient is a Client backed by the provider's form-encoded REST API.
type HTTPClient struct {
	cfg       config.PaymentConfig
	secretKey string
	http      *http.Client
}

// NewHTTPClient creates a checkout client. The secret key is passed in by the
// caller, which reads it from the configured environment variable.
func NewHTTPClient(cfg config.PaymentConfig, secretKey string) *HTTPClient {
	return &HTTPClient{
		cfg:       cfg,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateCheckoutSession creates a payment session for the book.
func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, email string) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.cfg.SuccessURL)
	form.Set("cancel_url", c.cfg.CancelURL)
	if email != "" {
		form.Set("customer_email", email)
	}
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", c.cfg.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(c.cfg.BookPriceCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", "The Insurogram Book")
	form.Set("metadata[product]", ProductMetadata)

	endpoint := strings.TrimSuffix(c.cfg.APIBaseURL, "/") + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return CheckoutSession{}, model.NewPaymentError(fmt.Sprintf("checkout request failed: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("read checkout response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return CheckoutSession{}, model.NewPaymentError(
			fmt.Sprintf("checkout provider returned %d: %s", resp.StatusCode, truncate(body, 200)),
		)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return CheckoutSession{}, fmt.Errorf("decode checkout response: %w", err)
	}
	if session.ID == "" || session.URL == "" {
		return CheckoutSession{}, model.NewPaymentError("checkout provider returned an incomplete session")
	}
	return session, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
