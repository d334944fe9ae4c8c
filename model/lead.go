package model

import "time"

// LeadStatus tracks where a lead is in the sales pipeline.
type LeadStatus string

// Lead statuses.
const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusSold      LeadStatus = "sold"
	LeadStatusLost      LeadStatus = "lost"
)

// Valid reports whether s is one of the known pipeline statuses.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusQuoted, LeadStatusSold, LeadStatusLost:
		return true
	}
	return false
}

// ProductType identifies an insurance product line.
type ProductType string

// Product lines quoted through the site.
const (
	ProductFinalExpense    ProductType = "final-expense"
	ProductIndexedUL       ProductType = "indexed-universal-life"
	ProductTermLife        ProductType = "term-life"
	ProductReturnOfPremium ProductType = "return-of-premium"
	ProductWholeLife       ProductType = "whole-life"
	ProductAnnuity         ProductType = "annuity"
	ProductMedicare        ProductType = "medicare"
)

// Lead is a quote request captured from the website funnel.
type Lead struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	DateOfBirth    string     `json:"date_of_birth,omitempty"`
	Gender         string     `json:"gender,omitempty"`
	State          string     `json:"state,omitempty"`
	TobaccoUser    bool       `json:"tobacco_user"`
	HealthRating   int        `json:"health_rating,omitempty"`
	ProductType    string     `json:"product_type"`
	CoverageAmount *int       `json:"coverage_amount,omitempty"`
	TermLength     *int       `json:"term_length,omitempty"`
	Status         LeadStatus `json:"status"`
	Source         string     `json:"source"`
	UTMSource      string     `json:"utm_source,omitempty"`
	UTMMedium      string     `json:"utm_medium,omitempty"`
	UTMCampaign    string     `json:"utm_campaign,omitempty"`
	AssignedAgent  string     `json:"assigned_agent,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LeadFilters narrows and pages a lead listing.
type LeadFilters struct {
	Status LeadStatus
	Limit  int
	Offset int
}

// LeadPage is one page of a lead listing.
type LeadPage struct {
	Items  []Lead `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// ContactSubmission is a message from the contact form.
type ContactSubmission struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderStatus tracks a book purchase.
type OrderStatus string

// Order statuses.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// BookOrder records a completed book purchase and its download entitlement.
// DownloadExpiresAt is cleared once the entitlement lapses.
type BookOrder struct {
	ID                string      `json:"id"`
	Email             string      `json:"email"`
	CheckoutSessionID string      `json:"checkout_session_id"`
	PaymentIntentID   string      `json:"payment_intent_id,omitempty"`
	Amount            int64       `json:"amount"`
	Currency          string      `json:"currency"`
	Status            OrderStatus `json:"status"`
	DownloadCount     int         `json:"download_count"`
	DownloadExpiresAt *time.Time  `json:"download_expires_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}
