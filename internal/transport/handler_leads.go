package transport

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/model"
)

// leadRequest is the quote-form submission payload. CoverageAmount and
// TermLength accept both numbers and numeric strings since form frontends
// send either.
type leadRequest struct {
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	DateOfBirth    string          `json:"date_of_birth"`
	Gender         string          `json:"gender"`
	State          string          `json:"state"`
	TobaccoUser    bool            `json:"tobacco_user"`
	HealthRating   int             `json:"health_rating"`
	ProductType    string          `json:"product_type"`
	CoverageAmount json.RawMessage `json:"coverage_amount"`
	TermLength     json.RawMessage `json:"term_length"`
	Source         string          `json:"source"`
	UTMSource      string          `json:"utm_source"`
	UTMMedium      string          `json:"utm_medium"`
	UTMCampaign    string          `json:"utm_campaign"`
}

// createLead records a quote request from the public funnel.
func (h *handlers) createLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	var details []model.FieldError
	requireField(&details, "first_name", req.FirstName)
	requireField(&details, "last_name", req.LastName)
	requireField(&details, "phone", req.Phone)
	requireField(&details, "product_type", req.ProductType)
	if req.Email == "" {
		requireField(&details, "email", req.Email)
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		details = append(details, model.FieldError{
			Field: "email", Code: "invalid", Message: "email is not a valid address",
		})
	}

	coverage, err := coerceInt(req.CoverageAmount)
	if err != nil {
		details = append(details, model.FieldError{
			Field: "coverage_amount", Code: "invalid", Message: "coverage_amount must be an integer",
		})
	}
	term, err := coerceInt(req.TermLength)
	if err != nil {
		details = append(details, model.FieldError{
			Field: "term_length", Code: "invalid", Message: "term_length must be an integer",
		})
	}
	if len(details) > 0 {
		h.recordLead(req.ProductType, model.NewValidationError(details))
		WriteValidationError(w, details)
		return
	}

	source := req.Source
	if source == "" {
		source = "website"
	}
	now := time.Now().UTC()
	lead := model.Lead{
		ID:             uuid.NewString(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		DateOfBirth:    req.DateOfBirth,
		Gender:         req.Gender,
		State:          req.State,
		TobaccoUser:    req.TobaccoUser,
		HealthRating:   req.HealthRating,
		ProductType:    req.ProductType,
		CoverageAmount: coverage,
		TermLength:     term,
		Status:         model.LeadStatusNew,
		Source:         source,
		UTMSource:      req.UTMSource,
		UTMMedium:      req.UTMMedium,
		UTMCampaign:    req.UTMCampaign,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.deps.Store.CreateLead(r.Context(), lead); err != nil {
		h.recordLead(req.ProductType, err)
		WriteError(w, err)
		return
	}
	h.recordLead(req.ProductType, nil)

	observability.LoggerFrom(r.Context(), h.deps.Log).Info("lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("product_type", lead.ProductType),
		zap.String("source", lead.Source),
	)
	WriteJSON(w, http.StatusCreated, map[string]string{"id": lead.ID})
}

// listLeads serves the admin lead pipeline with pagination and an optional
// status filter.
func (h *handlers) listLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteError(w, model.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = min(n, 200)
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, model.NewBadRequestError("offset must be a non-negative integer"))
			return
		}
		offset = n
	}

	page, err := h.deps.Store.ListLeads(r.Context(), model.LeadFilters{
		Status: model.LeadStatus(q.Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// updateLeadStatus moves a lead through the sales pipeline.
func (h *handlers) updateLeadStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.LeadStatus `json:"status"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if !req.Status.Valid() {
		WriteError(w, model.NewBadRequestError("unknown lead status"))
		return
	}

	id := chi.URLParam(r, "leadID")
	if err := h.deps.Store.UpdateLeadStatus(r.Context(), id, req.Status); err != nil {
		WriteError(w, err)
		return
	}

	observability.LoggerFrom(r.Context(), h.deps.Log).Info("lead status updated",
		zap.String("lead_id", id),
		zap.String("status", string(req.Status)),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) recordLead(productType string, err error) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordLeadSubmission(productType, err)
	}
}

func requireField(details *[]model.FieldError, field, value string) {
	if strings.TrimSpace(value) == "" {
		*details = append(*details, model.FieldError{
			Field: field, Code: "required", Message: field + " is required",
		})
	}
}

// coerceInt accepts a JSON number or a numeric string, returning nil for an
// absent or empty value.
func coerceInt(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	s := strings.Trim(string(raw), `"`)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, ".0"))
	if err != nil {
		return nil, err
	}
	return &n, nil
}
