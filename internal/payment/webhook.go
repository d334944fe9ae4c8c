package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/getcoveredlife/studio/model"
)

// EventCheckoutCompleted is the event type that confirms a paid session.
const EventCheckoutCompleted = "checkout.session.completed"

// DefaultSignatureTolerance bounds how old a signed delivery may be.
const DefaultSignatureTolerance = 5 * time.Minute

// Event is a webhook delivery envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object SessionObject `json:"object"`
	} `json:"data"`
}

// SessionObject is the checkout session carried by a completed-payment event.
type SessionObject struct {
	ID              string            `json:"id"`
	PaymentIntent   string            `json:"payment_intent"`
	PaymentStatus   string            `json:"payment_status"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails *CustomerDetails  `json:"customer_details"`
	Metadata        map[string]string `json:"metadata"`
}

// CustomerDetails carries the buyer's details when customer_email is unset.
type CustomerDetails struct {
	Email string `json:"email"`
}

// Email returns the buyer's email, preferring the top-level field.
func (s SessionObject) Email() string {
	if s.CustomerEmail != "" {
		return s.CustomerEmail
	}
	if s.CustomerDetails != nil {
		return s.CustomerDetails.Email
	}
	return ""
}

// Verifier checks webhook signatures and decodes event payloads.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier creates a Verifier with the given signing secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{
		secret:    secret,
		tolerance: DefaultSignatureTolerance,
		now:       time.Now,
	}
}

// VerifyAndParse checks the signature header against the raw body and decodes
// the event. The header format is "t=<unix>,v1=<hex>"; the signed payload is
// "<t>.<body>" under HMAC-SHA256. Comparison is constant-time, and deliveries
// older than the tolerance window are rejected to blunt replay.
func (v *Verifier) VerifyAndParse(body []byte, sigHeader string) (Event, error) {
	ts, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return Event{}, err
	}

	issued := time.Unix(ts, 0)
	if v.now().Sub(issued) > v.tolerance || issued.Sub(v.now()) > v.tolerance {
		return Event{}, model.NewInvalidSignatureError("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	expected := mac.Sum(nil)

	matched := false
	for _, sig := range sigs {
		raw, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(raw, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return Event{}, model.NewInvalidSignatureError("signature mismatch")
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, model.NewBadRequestError(fmt.Sprintf("invalid event payload: %v", err))
	}
	if event.Type == "" {
		return Event{}, model.NewBadRequestError("event type is missing")
	}
	return event, nil
}

// Sign produces a signature header for a payload. Used by tests and by the
// local development webhook replayer.
func (v *Verifier) Sign(body []byte, at time.Time) string {
	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// parseSignatureHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]".
func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, model.NewInvalidSignatureError("signature header is missing")
	}

	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, model.NewInvalidSignatureError("invalid signature timestamp")
			}
			ts = parsed
		case "v1":
			sigs = append(sigs, value)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return 0, nil, model.NewInvalidSignatureError("malformed signature header")
	}
	return ts, sigs, nil
}
