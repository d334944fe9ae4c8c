package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/getcoveredlife/studio/model"
)

// MemoryStore is an in-memory Store for development and testing.
type MemoryStore struct {
	mu       sync.RWMutex
	pages    map[string]model.Page // key: slug
	tokens   *model.DesignTokens
	leads    map[string]model.Lead // key: lead ID
	contacts []model.ContactSubmission
	orders   map[string]model.BookOrder // key: checkout session ID
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pages:  make(map[string]model.Page),
		leads:  make(map[string]model.Lead),
		orders: make(map[string]model.BookOrder),
	}
}

// UpsertPage inserts or replaces the page with the same slug.
func (s *MemoryStore) UpsertPage(_ context.Context, page model.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.Slug] = page.Clone()
	return nil
}

// GetPage retrieves a page by slug.
func (s *MemoryStore) GetPage(_ context.Context, slug string) (model.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, exists := s.pages[slug]
	if !exists {
		return model.Page{}, model.NewNotFoundError(fmt.Sprintf("page %q not found", slug))
	}
	return page.Clone(), nil
}

// ListPages returns summaries of every page, ordered by slug.
func (s *MemoryStore) ListPages(_ context.Context) ([]model.PageSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.PageSummary, 0, len(s.pages))
	for _, page := range s.pages {
		result = append(result, page.Summary())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Slug < result[j].Slug
	})
	return result, nil
}

// DeletePage removes a page by slug.
func (s *MemoryStore) DeletePage(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pages[slug]; !exists {
		return model.NewNotFoundError(fmt.Sprintf("page %q not found", slug))
	}
	delete(s.pages, slug)
	return nil
}

// SaveTokens replaces the stored token set.
func (s *MemoryStore) SaveTokens(_ context.Context, tokens model.DesignTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := tokens.Clone()
	s.tokens = &clone
	return nil
}

// GetTokens retrieves the stored token set.
func (s *MemoryStore) GetTokens(_ context.Context) (model.DesignTokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tokens == nil {
		return model.DesignTokens{}, model.NewNotFoundError("no design tokens saved")
	}
	return s.tokens.Clone(), nil
}

// CreateLead persists a new lead.
func (s *MemoryStore) CreateLead(_ context.Context, lead model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leads[lead.ID]; exists {
		return model.NewConflictError(fmt.Sprintf("lead %q already exists", lead.ID))
	}
	s.leads[lead.ID] = lead
	return nil
}

// ListLeads returns one page of leads matching the filters, newest first.
func (s *MemoryStore) ListLeads(_ context.Context, filters model.LeadFilters) (model.LeadPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []model.Lead
	for _, lead := range s.leads {
		if filters.Status != "" && lead.Status != filters.Status {
			continue
		}
		matched = append(matched, lead)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := model.LeadPage{
		Total:  len(matched),
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			page.Items = []model.Lead{}
			return page, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}
	if matched == nil {
		matched = []model.Lead{}
	}
	page.Items = matched
	return page, nil
}

// UpdateLeadStatus moves a lead through the pipeline.
func (s *MemoryStore) UpdateLeadStatus(_ context.Context, id string, status model.LeadStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, exists := s.leads[id]
	if !exists {
		return model.NewNotFoundError(fmt.Sprintf("lead %q not found", id))
	}
	lead.Status = status
	lead.UpdatedAt = time.Now().UTC()
	s.leads[id] = lead
	return nil
}

// CreateContact persists a new contact submission.
func (s *MemoryStore) CreateContact(_ context.Context, sub model.ContactSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, sub)
	return nil
}

// CreateOrder persists a new order, deduplicating on checkout session.
func (s *MemoryStore) CreateOrder(_ context.Context, order model.BookOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.CheckoutSessionID]; exists {
		return model.NewConflictError(
			fmt.Sprintf("order for checkout session %q already exists", order.CheckoutSessionID),
		)
	}
	s.orders[order.CheckoutSessionID] = order
	return nil
}

// GetOrderBySession retrieves an order by its checkout session id.
func (s *MemoryStore) GetOrderBySession(_ context.Context, sessionID string) (model.BookOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[sessionID]
	if !exists {
		return model.BookOrder{}, model.NewNotFoundError(
			fmt.Sprintf("order for checkout session %q not found", sessionID),
		)
	}
	return order, nil
}

// ExpireDownloads clears lapsed download entitlements.
func (s *MemoryStore) ExpireDownloads(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for key, order := range s.orders {
		if order.Status != model.OrderStatusCompleted {
			continue
		}
		if order.DownloadExpiresAt == nil || !order.DownloadExpiresAt.Before(cutoff) {
			continue
		}
		order.DownloadExpiresAt = nil
		s.orders[key] = order
		expired++
	}
	return expired, nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *MemoryStore) HealthCheck(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() {}

// ContactCount returns the number of stored submissions. For testing.
func (s *MemoryStore) ContactCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contacts)
}
