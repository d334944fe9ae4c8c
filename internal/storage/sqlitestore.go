package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/getcoveredlife/studio/model"
)

// SqliteStore is a single-file Store for small deployments, using the pure-Go
// sqlite driver. One writer connection keeps the serialization simple.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database file and ensures the schema.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SqliteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqliteStore) migrate() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			slug         TEXT PRIMARY KEY,
			id           TEXT NOT NULL,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			sections     TEXT NOT NULL DEFAULT '[]',
			seo          TEXT NOT NULL DEFAULT '{}',
			status       TEXT NOT NULL,
			created_at   TIMESTAMP NOT NULL,
			updated_at   TIMESTAMP NOT NULL,
			published_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS design_tokens (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			tokens     TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id              TEXT PRIMARY KEY,
			first_name      TEXT NOT NULL,
			last_name       TEXT NOT NULL,
			email           TEXT NOT NULL,
			phone           TEXT NOT NULL,
			date_of_birth   TEXT NOT NULL DEFAULT '',
			gender          TEXT NOT NULL DEFAULT '',
			state           TEXT NOT NULL DEFAULT '',
			tobacco_user    INTEGER NOT NULL DEFAULT 0,
			health_rating   INTEGER NOT NULL DEFAULT 0,
			product_type    TEXT NOT NULL,
			coverage_amount INTEGER,
			term_length     INTEGER,
			status          TEXT NOT NULL,
			source          TEXT NOT NULL,
			utm_source      TEXT NOT NULL DEFAULT '',
			utm_medium      TEXT NOT NULL DEFAULT '',
			utm_campaign    TEXT NOT NULL DEFAULT '',
			assigned_agent  TEXT NOT NULL DEFAULT '',
			notes           TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMP NOT NULL,
			updated_at      TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS leads_status_created_idx
			ON leads (status, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS contact_submissions (
			id         TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			email      TEXT NOT NULL,
			phone      TEXT NOT NULL DEFAULT '',
			subject    TEXT NOT NULL,
			message    TEXT NOT NULL,
			read       INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS book_orders (
			id                  TEXT PRIMARY KEY,
			email               TEXT NOT NULL,
			checkout_session_id TEXT NOT NULL UNIQUE,
			payment_intent_id   TEXT NOT NULL DEFAULT '',
			amount              INTEGER NOT NULL,
			currency            TEXT NOT NULL,
			status              TEXT NOT NULL,
			download_count      INTEGER NOT NULL DEFAULT 0,
			download_expires_at TIMESTAMP,
			created_at          TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// UpsertPage inserts or replaces the page with the same slug.
func (s *SqliteStore) UpsertPage(ctx context.Context, page model.Page) error {
	sectionsJSON, err := json.Marshal(page.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	seoJSON, err := json.Marshal(page.SEO)
	if err != nil {
		return fmt.Errorf("marshal seo: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pages (
			slug, id, title, description, sections, seo, status,
			created_at, updated_at, published_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			id = excluded.id,
			title = excluded.title,
			description = excluded.description,
			sections = excluded.sections,
			seo = excluded.seo,
			status = excluded.status,
			updated_at = excluded.updated_at,
			published_at = excluded.published_at`,
		page.Slug, page.ID, page.Title, page.Description, string(sectionsJSON),
		string(seoJSON), page.Status, page.CreatedAt, page.UpdatedAt, page.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}
	return nil
}

// GetPage retrieves a page by slug.
func (s *SqliteStore) GetPage(ctx context.Context, slug string) (model.Page, error) {
	var page model.Page
	var sectionsJSON, seoJSON string

	err := s.db.QueryRowContext(ctx, `
		SELECT slug, id, title, description, sections, seo, status,
		       created_at, updated_at, published_at
		FROM pages
		WHERE slug = ?`,
		slug,
	).Scan(
		&page.Slug, &page.ID, &page.Title, &page.Description, &sectionsJSON,
		&seoJSON, &page.Status, &page.CreatedAt, &page.UpdatedAt, &page.PublishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, model.NewNotFoundError(fmt.Sprintf("page %q not found", slug))
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("query page: %w", err)
	}

	if err := json.Unmarshal([]byte(sectionsJSON), &page.Sections); err != nil {
		return model.Page{}, fmt.Errorf("unmarshal sections: %w", err)
	}
	if err := json.Unmarshal([]byte(seoJSON), &page.SEO); err != nil {
		return model.Page{}, fmt.Errorf("unmarshal seo: %w", err)
	}
	return page, nil
}

// ListPages returns summaries of every page, ordered by slug.
func (s *SqliteStore) ListPages(ctx context.Context) ([]model.PageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, title, status, sections, updated_at
		FROM pages
		ORDER BY slug ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var result []model.PageSummary
	for rows.Next() {
		var sum model.PageSummary
		var sectionsJSON string
		if err := rows.Scan(
			&sum.ID, &sum.Slug, &sum.Title, &sum.Status, &sectionsJSON, &sum.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan page summary: %w", err)
		}
		var sections []json.RawMessage
		if err := json.Unmarshal([]byte(sectionsJSON), &sections); err != nil {
			return nil, fmt.Errorf("unmarshal sections: %w", err)
		}
		sum.Sections = len(sections)
		result = append(result, sum)
	}
	return result, rows.Err()
}

// DeletePage removes a page by slug.
func (s *SqliteStore) DeletePage(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NewNotFoundError(fmt.Sprintf("page %q not found", slug))
	}
	return nil
}

// SaveTokens replaces the single stored token set.
func (s *SqliteStore) SaveTokens(ctx context.Context, tokens model.DesignTokens) error {
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO design_tokens (id, tokens, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			tokens = excluded.tokens,
			updated_at = excluded.updated_at`,
		string(tokensJSON), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// GetTokens retrieves the stored token set.
func (s *SqliteStore) GetTokens(ctx context.Context) (model.DesignTokens, error) {
	var tokensJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT tokens FROM design_tokens WHERE id = 1`,
	).Scan(&tokensJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DesignTokens{}, model.NewNotFoundError("no design tokens saved")
	}
	if err != nil {
		return model.DesignTokens{}, fmt.Errorf("query tokens: %w", err)
	}

	var tokens model.DesignTokens
	if err := json.Unmarshal([]byte(tokensJSON), &tokens); err != nil {
		return model.DesignTokens{}, fmt.Errorf("unmarshal tokens: %w", err)
	}
	return tokens, nil
}

// CreateLead persists a new lead.
func (s *SqliteStore) CreateLead(ctx context.Context, lead model.Lead) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leads (
			id, first_name, last_name, email, phone,
			date_of_birth, gender, state, tobacco_user, health_rating,
			product_type, coverage_amount, term_length, status, source,
			utm_source, utm_medium, utm_campaign, assigned_agent, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone,
		lead.DateOfBirth, lead.Gender, lead.State, lead.TobaccoUser, lead.HealthRating,
		lead.ProductType, lead.CoverageAmount, lead.TermLength, lead.Status, lead.Source,
		lead.UTMSource, lead.UTMMedium, lead.UTMCampaign, lead.AssignedAgent, lead.Notes,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if isSqliteConstraint(err) {
		return model.NewConflictError(fmt.Sprintf("lead %q already exists", lead.ID))
	}
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// ListLeads returns one page of leads matching the filters, newest first.
func (s *SqliteStore) ListLeads(ctx context.Context, filters model.LeadFilters) (model.LeadPage, error) {
	where := ""
	countArgs := []any{}
	if filters.Status != "" {
		where = " WHERE status = ?"
		countArgs = append(countArgs, filters.Status)
	}

	page := model.LeadPage{
		Items:  []model.Lead{},
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads"+where, countArgs...).Scan(&page.Total)
	if err != nil {
		return model.LeadPage{}, fmt.Errorf("count leads: %w", err)
	}

	query := `SELECT id, first_name, last_name, email, phone,
	                 date_of_birth, gender, state, tobacco_user, health_rating,
	                 product_type, coverage_amount, term_length, status, source,
	                 utm_source, utm_medium, utm_campaign, assigned_agent, notes,
	                 created_at, updated_at
	          FROM leads` + where + " ORDER BY created_at DESC"
	args := countArgs

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}
	if filters.Offset > 0 {
		if filters.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, filters.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return model.LeadPage{}, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lead model.Lead
		if err := rows.Scan(
			&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
			&lead.DateOfBirth, &lead.Gender, &lead.State, &lead.TobaccoUser, &lead.HealthRating,
			&lead.ProductType, &lead.CoverageAmount, &lead.TermLength, &lead.Status, &lead.Source,
			&lead.UTMSource, &lead.UTMMedium, &lead.UTMCampaign, &lead.AssignedAgent, &lead.Notes,
			&lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return model.LeadPage{}, fmt.Errorf("scan lead: %w", err)
		}
		page.Items = append(page.Items, lead)
	}
	return page, rows.Err()
}

// UpdateLeadStatus moves a lead through the pipeline.
func (s *SqliteStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.NewNotFoundError(fmt.Sprintf("lead %q not found", id))
	}
	return nil
}

// CreateContact persists a new contact submission.
func (s *SqliteStore) CreateContact(ctx context.Context, sub model.ContactSubmission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_submissions (
			id, first_name, last_name, email, phone, subject, message, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.FirstName, sub.LastName, sub.Email, sub.Phone,
		sub.Subject, sub.Message, sub.Read, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}

// CreateOrder persists a new order, deduplicating on checkout session.
func (s *SqliteStore) CreateOrder(ctx context.Context, order model.BookOrder) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_orders (
			id, email, checkout_session_id, payment_intent_id,
			amount, currency, status, download_count, download_expires_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.Email, order.CheckoutSessionID, order.PaymentIntentID,
		order.Amount, order.Currency, order.Status, order.DownloadCount,
		order.DownloadExpiresAt, order.CreatedAt,
	)
	if isSqliteConstraint(err) {
		return model.NewConflictError(
			fmt.Sprintf("order for checkout session %q already exists", order.CheckoutSessionID),
		)
	}
	if err != nil {
		return fmt.Errorf("insert book order: %w", err)
	}
	return nil
}

// GetOrderBySession retrieves an order by its checkout session id.
func (s *SqliteStore) GetOrderBySession(ctx context.Context, sessionID string) (model.BookOrder, error) {
	var order model.BookOrder
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, checkout_session_id, payment_intent_id,
		       amount, currency, status, download_count, download_expires_at, created_at
		FROM book_orders
		WHERE checkout_session_id = ?`,
		sessionID,
	).Scan(
		&order.ID, &order.Email, &order.CheckoutSessionID, &order.PaymentIntentID,
		&order.Amount, &order.Currency, &order.Status, &order.DownloadCount,
		&order.DownloadExpiresAt, &order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BookOrder{}, model.NewNotFoundError(
			fmt.Sprintf("order for checkout session %q not found", sessionID),
		)
	}
	if err != nil {
		return model.BookOrder{}, fmt.Errorf("query book order: %w", err)
	}
	return order, nil
}

// ExpireDownloads clears lapsed download entitlements.
func (s *SqliteStore) ExpireDownloads(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE book_orders
		SET download_expires_at = NULL
		WHERE status = 'completed'
		  AND download_expires_at IS NOT NULL
		  AND download_expires_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("expire downloads: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// HealthCheck pings the database file.
func (s *SqliteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle.
func (s *SqliteStore) Close() {
	s.db.Close()
}

// isSqliteConstraint reports whether err is a unique constraint violation.
// The pure-Go driver exposes these only through the error string.
func isSqliteConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint")
}
