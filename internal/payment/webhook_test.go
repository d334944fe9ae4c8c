package payment

import (
	"strings"
	"testing"
	"time"
)

const webhookSecret = "whsec_test_secret"

func completedEventBody() []byte {
	return []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_123",
			"payment_intent": "pi_1",
			"payment_status": "paid",
			"amount_total": 1999,
			"currency": "usd",
			"customer_details": {"email": "buyer@example.com"},
			"metadata": {"product": "insurogram-book"}
		}}
	}`)
}

func newTestVerifier(now time.Time) *Verifier {
	v := NewVerifier([]byte(webhookSecret))
	v.now = func() time.Time { return now }
	return v
}

func TestVerifyAndParse_validSignature(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(now)
	body := completedEventBody()

	event, err := v.VerifyAndParse(body, v.Sign(body, now))
	if err != nil {
		t.Fatalf("VerifyAndParse: %v", err)
	}
	if event.Type != EventCheckoutCompleted {
		t.Errorf("type = %q", event.Type)
	}
	obj := event.Data.Object
	if obj.ID != "cs_test_123" || obj.AmountTotal != 1999 {
		t.Errorf("object = %+v", obj)
	}
	if obj.Email() != "buyer@example.com" {
		t.Errorf("email = %q", obj.Email())
	}
	if obj.Metadata["product"] != ProductMetadata {
		t.Errorf("metadata = %v", obj.Metadata)
	}
}

func TestVerifyAndParse_rejectsWrongSecret(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(now)
	other := NewVerifier([]byte("whsec_other"))
	body := completedEventBody()

	if _, err := v.VerifyAndParse(body, other.Sign(body, now)); err == nil {
		t.Fatal("signature from a different secret should be rejected")
	}
}

func TestVerifyAndParse_rejectsTamperedBody(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(now)
	body := completedEventBody()
	sig := v.Sign(body, now)

	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_evil","amount_total":1}}}`)
	if _, err := v.VerifyAndParse(tampered, sig); err == nil {
		t.Fatal("tampered body should be rejected")
	}
}

func TestVerifyAndParse_rejectsStaleTimestamp(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(now)
	body := completedEventBody()

	stale := v.Sign(body, now.Add(-10*time.Minute))
	if _, err := v.VerifyAndParse(body, stale); err == nil {
		t.Fatal("stale delivery should be rejected")
	}
}

func TestVerifyAndParse_rejectsMalformedHeaders(t *testing.T) {
	v := newTestVerifier(time.Now())
	body := completedEventBody()

	for _, header := range []string{
		"",
		"garbage",
		"t=notanumber,v1=abc",
		"t=1700000000",
		"v1=deadbeef",
	} {
		if _, err := v.VerifyAndParse(body, header); err == nil {
			t.Errorf("header %q should be rejected", header)
		}
	}
}

func TestVerifyAndParse_acceptsRotatedSignatures(t *testing.T) {
	// Providers send multiple v1 entries during secret rotation; any
	// matching entry passes.
	now := time.Now()
	v := newTestVerifier(now)
	body := completedEventBody()

	parts := strings.SplitN(v.Sign(body, now), ",", 2)
	header := parts[0] + ",v1=deadbeef," + parts[1]

	if _, err := v.VerifyAndParse(body, header); err != nil {
		t.Fatalf("rotated header rejected: %v", err)
	}
}
