package transport

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/internal/payment"
	"github.com/getcoveredlife/studio/model"
)

// downloadWindow is how long a completed book order may download the file.
const downloadWindow = 30 * 24 * time.Hour

// paymentWebhook processes provider event deliveries. The signature is
// verified over the raw body before anything is parsed or acted on; a
// delivery that fails verification gets a 400 and no further processing.
func (h *handlers) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	log := observability.LoggerFrom(r.Context(), h.deps.Log)

	if h.deps.Webhooks == nil {
		WriteError(w, model.NewPaymentError("webhooks are not configured"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, model.NewBadRequestError("unreadable webhook body"))
		return
	}

	event, err := h.deps.Webhooks.VerifyAndParse(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.recordWebhook("unverified", "rejected")
		log.Warn("webhook rejected", zap.Error(err))
		WriteError(w, err)
		return
	}

	if event.Type != payment.EventCheckoutCompleted {
		h.recordWebhook(event.Type, "ignored")
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	obj := event.Data.Object
	if obj.Metadata["product"] != payment.ProductMetadata {
		h.recordWebhook(event.Type, "ignored")
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	expires := time.Now().UTC().Add(downloadWindow)
	order := model.BookOrder{
		ID:                uuid.NewString(),
		Email:             obj.Email(),
		CheckoutSessionID: obj.ID,
		PaymentIntentID:   obj.PaymentIntent,
		Amount:            obj.AmountTotal,
		Currency:          obj.Currency,
		Status:            model.OrderStatusCompleted,
		DownloadExpiresAt: &expires,
		CreatedAt:         time.Now().UTC(),
	}

	if err := h.deps.Store.CreateOrder(r.Context(), order); err != nil {
		var env *model.ErrorEnvelope
		if errors.As(err, &env) && env.Code == model.ErrConflict {
			// Redelivery of an event we already recorded.
			h.recordWebhook(event.Type, "duplicate")
			WriteJSON(w, http.StatusOK, map[string]string{"status": "already_processed"})
			return
		}
		h.recordWebhook(event.Type, "error")
		WriteError(w, err)
		return
	}

	h.recordWebhook(event.Type, "processed")
	log.Info("book order recorded",
		zap.String("order_id", order.ID),
		zap.String("checkout_session_id", order.CheckoutSessionID),
		zap.Int64("amount", order.Amount),
	)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

func (h *handlers) recordWebhook(eventType, status string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordWebhookEvent(eventType, status)
	}
}
