package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/getcoveredlife/studio/model"
)

// PgStore is a PostgreSQL-backed Store using pgx/v5.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore connects a pool and ensures the schema exists.
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PgStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the tables if they don't exist.
func (s *PgStore) migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			slug         TEXT PRIMARY KEY,
			id           TEXT NOT NULL,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			sections     JSONB NOT NULL DEFAULT '[]',
			seo          JSONB NOT NULL DEFAULT '{}',
			status       TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL,
			published_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS design_tokens (
			id         INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			tokens     JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
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
			tobacco_user    BOOLEAN NOT NULL DEFAULT FALSE,
			health_rating   INT NOT NULL DEFAULT 0,
			product_type    TEXT NOT NULL,
			coverage_amount INT,
			term_length     INT,
			status          TEXT NOT NULL,
			source          TEXT NOT NULL,
			utm_source      TEXT NOT NULL DEFAULT '',
			utm_medium      TEXT NOT NULL DEFAULT '',
			utm_campaign    TEXT NOT NULL DEFAULT '',
			assigned_agent  TEXT NOT NULL DEFAULT '',
			notes           TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
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
			read       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS book_orders (
			id                  TEXT PRIMARY KEY,
			email               TEXT NOT NULL,
			checkout_session_id TEXT NOT NULL UNIQUE,
			payment_intent_id   TEXT NOT NULL DEFAULT '',
			amount              BIGINT NOT NULL,
			currency            TEXT NOT NULL,
			status              TEXT NOT NULL,
			download_count      INT NOT NULL DEFAULT 0,
			download_expires_at TIMESTAMPTZ,
			created_at          TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// UpsertPage inserts or replaces the page with the same slug.
func (s *PgStore) UpsertPage(ctx context.Context, page model.Page) error {
	sectionsJSON, err := json.Marshal(page.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	seoJSON, err := json.Marshal(page.SEO)
	if err != nil {
		return fmt.Errorf("marshal seo: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO pages (
			slug, id, title, description, sections, seo, status,
			created_at, updated_at, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			id = EXCLUDED.id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			sections = EXCLUDED.sections,
			seo = EXCLUDED.seo,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at`,
		page.Slug, page.ID, page.Title, page.Description, sectionsJSON, seoJSON,
		page.Status, page.CreatedAt, page.UpdatedAt, page.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}
	return nil
}

// GetPage retrieves a page by slug.
func (s *PgStore) GetPage(ctx context.Context, slug string) (model.Page, error) {
	var page model.Page
	var sectionsJSON, seoJSON []byte

	err := s.pool.QueryRow(ctx, `
		SELECT slug, id, title, description, sections, seo, status,
		       created_at, updated_at, published_at
		FROM pages
		WHERE slug = $1`,
		slug,
	).Scan(
		&page.Slug, &page.ID, &page.Title, &page.Description, &sectionsJSON,
		&seoJSON, &page.Status, &page.CreatedAt, &page.UpdatedAt, &page.PublishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Page{}, model.NewNotFoundError(fmt.Sprintf("page %q not found", slug))
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("query page: %w", err)
	}

	if err := json.Unmarshal(sectionsJSON, &page.Sections); err != nil {
		return model.Page{}, fmt.Errorf("unmarshal sections: %w", err)
	}
	if err := json.Unmarshal(seoJSON, &page.SEO); err != nil {
		return model.Page{}, fmt.Errorf("unmarshal seo: %w", err)
	}
	return page, nil
}

// ListPages returns summaries of every page, ordered by slug.
func (s *PgStore) ListPages(ctx context.Context) ([]model.PageSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, slug, title, status, jsonb_array_length(sections), updated_at
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
		if err := rows.Scan(
			&sum.ID, &sum.Slug, &sum.Title, &sum.Status, &sum.Sections, &sum.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan page summary: %w", err)
		}
		result = append(result, sum)
	}
	return result, rows.Err()
}

// DeletePage removes a page by slug.
func (s *PgStore) DeletePage(ctx context.Context, slug string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pages WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError(fmt.Sprintf("page %q not found", slug))
	}
	return nil
}

// SaveTokens replaces the single stored token set.
func (s *PgStore) SaveTokens(ctx context.Context, tokens model.DesignTokens) error {
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO design_tokens (id, tokens, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			tokens = EXCLUDED.tokens,
			updated_at = EXCLUDED.updated_at`,
		tokensJSON, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// GetTokens retrieves the stored token set.
func (s *PgStore) GetTokens(ctx context.Context) (model.DesignTokens, error) {
	var tokensJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT tokens FROM design_tokens WHERE id = 1`,
	).Scan(&tokensJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DesignTokens{}, model.NewNotFoundError("no design tokens saved")
	}
	if err != nil {
		return model.DesignTokens{}, fmt.Errorf("query tokens: %w", err)
	}

	var tokens model.DesignTokens
	if err := json.Unmarshal(tokensJSON, &tokens); err != nil {
		return model.DesignTokens{}, fmt.Errorf("unmarshal tokens: %w", err)
	}
	return tokens, nil
}

// CreateLead persists a new lead.
func (s *PgStore) CreateLead(ctx context.Context, lead model.Lead) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leads (
			id, first_name, last_name, email, phone,
			date_of_birth, gender, state, tobacco_user, health_rating,
			product_type, coverage_amount, term_length, status, source,
			utm_source, utm_medium, utm_campaign, assigned_agent, notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22
		)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone,
		lead.DateOfBirth, lead.Gender, lead.State, lead.TobaccoUser, lead.HealthRating,
		lead.ProductType, lead.CoverageAmount, lead.TermLength, lead.Status, lead.Source,
		lead.UTMSource, lead.UTMMedium, lead.UTMCampaign, lead.AssignedAgent, lead.Notes,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.NewConflictError(fmt.Sprintf("lead %q already exists", lead.ID))
	}
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// ListLeads returns one page of leads matching the filters, newest first.
func (s *PgStore) ListLeads(ctx context.Context, filters model.LeadFilters) (model.LeadPage, error) {
	where := ""
	countArgs := []any{}
	if filters.Status != "" {
		where = " WHERE status = $1"
		countArgs = append(countArgs, filters.Status)
	}

	page := model.LeadPage{
		Items:  []model.Lead{},
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads"+where, countArgs...).Scan(&page.Total)
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
	argIdx := len(args) + 1

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
		argIdx++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filters.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
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
func (s *PgStore) UpdateLeadStatus(ctx context.Context, id string, status model.LeadStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError(fmt.Sprintf("lead %q not found", id))
	}
	return nil
}

// CreateContact persists a new contact submission.
func (s *PgStore) CreateContact(ctx context.Context, sub model.ContactSubmission) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_submissions (
			id, first_name, last_name, email, phone, subject, message, read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sub.ID, sub.FirstName, sub.LastName, sub.Email, sub.Phone,
		sub.Subject, sub.Message, sub.Read, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}

// CreateOrder persists a new order, deduplicating on checkout session.
func (s *PgStore) CreateOrder(ctx context.Context, order model.BookOrder) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO book_orders (
			id, email, checkout_session_id, payment_intent_id,
			amount, currency, status, download_count, download_expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.Email, order.CheckoutSessionID, order.PaymentIntentID,
		order.Amount, order.Currency, order.Status, order.DownloadCount,
		order.DownloadExpiresAt, order.CreatedAt,
	)
	if isUniqueViolation(err) {
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
func (s *PgStore) GetOrderBySession(ctx context.Context, sessionID string) (model.BookOrder, error) {
	var order model.BookOrder
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, checkout_session_id, payment_intent_id,
		       amount, currency, status, download_count, download_expires_at, created_at
		FROM book_orders
		WHERE checkout_session_id = $1`,
		sessionID,
	).Scan(
		&order.ID, &order.Email, &order.CheckoutSessionID, &order.PaymentIntentID,
		&order.Amount, &order.Currency, &order.Status, &order.DownloadCount,
		&order.DownloadExpiresAt, &order.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PgStore) ExpireDownloads(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE book_orders
		SET download_expires_at = NULL
		WHERE status = 'completed'
		  AND download_expires_at IS NOT NULL
		  AND download_expires_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("expire downloads: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// HealthCheck pings the database.
func (s *PgStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PgStore) Close() {
	s.pool.Close()
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
