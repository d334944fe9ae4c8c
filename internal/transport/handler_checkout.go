package transport

import (
	"net/http"
	"net/mail"

	"github.com/getcoveredlife/studio/model"
)

type checkoutRequest struct {
	Email string `json:"email"`
}

type checkoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// createCheckout starts a hosted checkout for the book purchase.
func (h *handlers) createCheckout(w http.ResponseWriter, r *http.Request) {
	if h.deps.Payments == nil {
		WriteError(w, model.NewPaymentError("checkout is not configured"))
		return
	}

	var req checkoutRequest
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Email == "" {
		WriteError(w, model.NewBadRequestError("email is required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		WriteError(w, model.NewBadRequestError("email is not a valid address"))
		return
	}

	session, err := h.deps.Payments.CreateCheckoutSession(r.Context(), req.Email)
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordCheckoutSession(err)
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, checkoutResponse{SessionID: session.ID, URL: session.URL})
}
