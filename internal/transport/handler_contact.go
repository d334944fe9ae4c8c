package transport

import (
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/getcoveredlife/studio/model"
)

type contactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// createContact records a contact-form message.
func (h *handlers) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	var details []model.FieldError
	requireField(&details, "first_name", req.FirstName)
	requireField(&details, "last_name", req.LastName)
	requireField(&details, "subject", req.Subject)
	requireField(&details, "message", req.Message)
	if req.Email == "" {
		requireField(&details, "email", req.Email)
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		details = append(details, model.FieldError{
			Field: "email", Code: "invalid", Message: "email is not a valid address",
		})
	}
	if len(details) > 0 {
		WriteValidationError(w, details)
		return
	}

	sub := model.ContactSubmission{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.deps.Store.CreateContact(r.Context(), sub); err != nil {
		WriteError(w, err)
		return
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordContactSubmission()
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"id": sub.ID})
}
