// Package storage defines the persistence boundary for pages, design tokens,
// leads, contact submissions, and book orders, with in-memory, PostgreSQL,
// and SQLite implementations selected by configuration.
package storage

import (
	"context"
	"time"

	"github.com/getcoveredlife/studio/model"
)

// PageStore persists pages keyed by slug.
type PageStore interface {
	// UpsertPage inserts the page or replaces the existing page with the
	// same slug.
	UpsertPage(ctx context.Context, page model.Page) error

	// GetPage retrieves a page by slug. Returns NOT_FOUND if no page has
	// that slug.
	GetPage(ctx context.Context, slug string) (model.Page, error)

	// ListPages returns summaries of every page, ordered by slug.
	ListPages(ctx context.Context) ([]model.PageSummary, error)

	// DeletePage removes a page by slug. Returns NOT_FOUND if no page has
	// that slug.
	DeletePage(ctx context.Context, slug string) error
}

// TokenStore persists the single active design token set.
type TokenStore interface {
	// SaveTokens replaces the stored token set.
	SaveTokens(ctx context.Context, tokens model.DesignTokens) error

	// GetTokens retrieves the stored token set. Returns NOT_FOUND if no
	// tokens have been saved yet; callers fall back to the defaults.
	GetTokens(ctx context.Context) (model.DesignTokens, error)
}

// LeadStore persists quote-request leads.
type LeadStore interface {
	// CreateLead persists a new lead.
	CreateLead(ctx context.Context, lead model.Lead) error

	// ListLeads returns one page of leads matching the filters, newest
	// first, along with the total matching count.
	ListLeads(ctx context.Context, filters model.LeadFilters) (model.LeadPage, error)

	// UpdateLeadStatus moves a lead through the pipeline. Returns
	// NOT_FOUND if the lead doesn't exist.
	UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error
}

// ContactStore persists contact-form submissions.
type ContactStore interface {
	// CreateContact persists a new contact submission.
	CreateContact(ctx context.Context, sub model.ContactSubmission) error
}

// OrderStore persists book orders created by the payment webhook.
type OrderStore interface {
	// CreateOrder persists a new order. Returns CONFLICT if an order for
	// the same checkout session already exists, which is how replayed
	// webhook deliveries are deduplicated.
	CreateOrder(ctx context.Context, order model.BookOrder) error

	// GetOrderBySession retrieves an order by its checkout session id.
	// Returns NOT_FOUND if no such order exists.
	GetOrderBySession(ctx context.Context, sessionID string) (model.BookOrder, error)

	// ExpireDownloads clears the download entitlement on completed orders
	// whose expiry is before cutoff, returning how many were touched.
	ExpireDownloads(ctx context.Context, cutoff time.Time) (int, error)
}

// Store is the full persistence boundary.
type Store interface {
	PageStore
	TokenStore
	LeadStore
	ContactStore
	OrderStore

	// HealthCheck verifies the backing database is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the underlying connection pool or file handle.
	Close()
}
