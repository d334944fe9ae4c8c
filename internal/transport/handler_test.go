package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/config"
	"github.com/getcoveredlife/studio/internal/editor"
	"github.com/getcoveredlife/studio/internal/media"
	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/internal/payment"
	"github.com/getcoveredlife/studio/internal/storage"
	"github.com/getcoveredlife/studio/model"
)

// --- Test helpers ---

const testWebhookSecret = "whsec_test_secret"

// stubAuth injects admin claims without verifying a token.
func stubAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClaims(r.Context(), map[string]any{
			"sub":   "admin-1",
			"email": "admin@getcoveredlife.com",
			"roles": []any{"admin"},
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// stubPayments returns a fixed checkout session.
type stubPayments struct {
	err  error
	last string
}

func (s *stubPayments) CreateCheckoutSession(_ context.Context, email string) (payment.CheckoutSession, error) {
	if s.err != nil {
		return payment.CheckoutSession{}, s.err
	}
	s.last = email
	return payment.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
}

type testEnv struct {
	router   chi.Router
	store    *storage.MemoryStore
	sessions *editor.Manager
	payments *stubPayments
	verifier *payment.Verifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Defaults()
	store := storage.NewMemoryStore()
	sessions := editor.NewManager()
	payments := &stubPayments{}
	verifier := payment.NewVerifier([]byte(testWebhookSecret))

	uploader, err := media.NewDiskUploader(t.TempDir(), cfg.Media.PublicPath, cfg.Media.MaxSizeMB)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		Config:       cfg,
		Log:          zap.NewNop(),
		Metrics:      observability.InitMetrics(prometheus.NewRegistry()),
		Store:        store,
		Sessions:     sessions,
		Payments:     payments,
		Webhooks:     verifier,
		Uploader:     uploader,
		Authenticate: stubAuth,
		SeedsLoaded:  func() bool { return true },
	})
	return &testEnv{
		router:   router,
		store:    store,
		sessions: sessions,
		payments: payments,
		verifier: verifier,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error *model.ErrorEnvelope `json:"error"`
	}
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func publishedPage(slug string) model.Page {
	now := time.Now().UTC()
	return model.Page{
		ID:     "page-" + slug,
		Slug:   slug,
		Title:  "Page " + slug,
		Status: model.PageStatusPublished,
		Sections: []model.Section{
			{ID: "s1", Type: model.SectionHero, Order: 0,
				Data: map[string]any{"headline": "Coverage that fits"}, IsVisible: true},
			{ID: "s2", Type: model.SectionFeatures, Order: 1,
				Data: map[string]any{"title": "Why us"}, IsVisible: true},
		},
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: &now,
	}
}

// --- Public routes ---

func TestGetPage_servesPublishedOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.UpsertPage(ctx, publishedPage("home")))

	draft := publishedPage("draft-page")
	draft.Status = model.PageStatusDraft
	draft.PublishedAt = nil
	require.NoError(t, env.store.UpsertPage(ctx, draft))

	rec := env.do(t, http.MethodGet, "/api/pages/home", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.Page
	decodeBody(t, rec, &page)
	require.Equal(t, "home", page.Slug)
	require.Len(t, page.Sections, 2)

	rec = env.do(t, http.MethodGet, "/api/pages/draft-page", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, model.ErrNotFound, errorCode(t, rec))

	rec = env.do(t, http.MethodGet, "/api/pages/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLead_capturesWithDefaults(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/leads", map[string]any{
		"first_name":      "Ada",
		"last_name":       "Okafor",
		"email":           "ada@example.com",
		"phone":           "555-0101",
		"product_type":    "term-life",
		"coverage_amount": "250000",
		"term_length":     20,
		"utm_source":      "newsletter",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)

	page, err := env.store.ListLeads(context.Background(), model.LeadFilters{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	lead := page.Items[0]
	require.Equal(t, model.LeadStatusNew, lead.Status)
	require.Equal(t, "website", lead.Source)
	require.NotNil(t, lead.CoverageAmount)
	require.Equal(t, 250000, *lead.CoverageAmount)
	require.NotNil(t, lead.TermLength)
	require.Equal(t, 20, *lead.TermLength)
}

func TestCreateLead_validation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/leads", map[string]any{
		"first_name":      "Ada",
		"email":           "not-an-email",
		"coverage_amount": "a quarter million",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error *model.ErrorEnvelope `json:"error"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, model.ErrValidationError, resp.Error.Code)

	fields := make(map[string]string)
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Code
	}
	require.Equal(t, "required", fields["last_name"])
	require.Equal(t, "required", fields["phone"])
	require.Equal(t, "required", fields["product_type"])
	require.Equal(t, "invalid", fields["email"])
	require.Equal(t, "invalid", fields["coverage_amount"])
}

func TestCreateContact(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/contact", map[string]any{
		"first_name": "Sam",
		"last_name":  "Reyes",
		"email":      "sam@example.com",
		"subject":    "Policy question",
		"message":    "Does term convert to whole life?",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, env.store.ContactCount())

	rec = env.do(t, http.MethodPost, "/api/contact", map[string]any{
		"first_name": "Sam",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCheckout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/checkout", map[string]any{
		"email": "reader@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp checkoutResponse
	decodeBody(t, rec, &resp)
	require.Equal(t, "cs_test_1", resp.SessionID)
	require.Equal(t, "https://checkout.test/cs_test_1", resp.URL)
	require.Equal(t, "reader@example.com", env.payments.last)

	rec = env.do(t, http.MethodPost, "/api/checkout", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/checkout", map[string]any{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env.payments.err = model.NewPaymentError("declined")
	rec = env.do(t, http.MethodPost, "/api/checkout", map[string]any{"email": "reader@example.com"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

// --- Webhook ---

func completedCheckoutBody(sessionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": %q,
			"payment_intent": "pi_1",
			"payment_status": "paid",
			"amount_total": 1999,
			"currency": "usd",
			"customer_email": "reader@example.com",
			"metadata": {"product": "insurogram-book"}
		}}
	}`, sessionID))
}

func (e *testEnv) deliverWebhook(t *testing.T, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestPaymentWebhook_recordsOrder(t *testing.T) {
	env := newTestEnv(t)
	body := completedCheckoutBody("cs_100")
	sig := env.verifier.Sign(body, time.Now())

	rec := env.deliverWebhook(t, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)

	order, err := env.store.GetOrderBySession(context.Background(), "cs_100")
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusCompleted, order.Status)
	require.Equal(t, "reader@example.com", order.Email)
	require.Equal(t, int64(1999), order.Amount)
	require.NotNil(t, order.DownloadExpiresAt)
	require.WithinDuration(t,
		time.Now().UTC().Add(downloadWindow), *order.DownloadExpiresAt, time.Minute)
}

func TestPaymentWebhook_duplicateDeliveryIsAcknowledged(t *testing.T) {
	env := newTestEnv(t)
	body := completedCheckoutBody("cs_200")
	sig := env.verifier.Sign(body, time.Now())

	require.Equal(t, http.StatusOK, env.deliverWebhook(t, body, sig).Code)

	rec := env.deliverWebhook(t, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	decodeBody(t, rec, &resp)
	require.Equal(t, "already_processed", resp["status"])
}

func TestPaymentWebhook_rejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	body := completedCheckoutBody("cs_300")

	forged := payment.NewVerifier([]byte("wrong-secret")).Sign(body, time.Now())
	rec := env.deliverWebhook(t, body, forged)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.deliverWebhook(t, body, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := env.store.GetOrderBySession(context.Background(), "cs_300")
	require.Error(t, err)
}

func TestPaymentWebhook_ignoresOtherEvents(t *testing.T) {
	env := newTestEnv(t)
	body := []byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
	sig := env.verifier.Sign(body, time.Now())

	rec := env.deliverWebhook(t, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	decodeBody(t, rec, &resp)
	require.Equal(t, "ignored", resp["status"])
}

// --- Admin: leads and pages ---

func TestListLeads_paginationAndFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		status := model.LeadStatusNew
		if i%2 == 1 {
			status = model.LeadStatusContacted
		}
		require.NoError(t, env.store.CreateLead(ctx, model.Lead{
			ID:          fmt.Sprintf("lead-%d", i),
			FirstName:   "Lead",
			LastName:    fmt.Sprintf("%d", i),
			Email:       fmt.Sprintf("lead%d@example.com", i),
			Phone:       "555-0100",
			ProductType: "term-life",
			Status:      status,
			Source:      "website",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	rec := env.do(t, http.MethodGet, "/api/leads?limit=2&offset=0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.LeadPage
	decodeBody(t, rec, &page)
	require.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, "lead-4", page.Items[0].ID)

	rec = env.do(t, http.MethodGet, "/api/leads?status=contacted", nil)
	decodeBody(t, rec, &page)
	require.Equal(t, 2, page.Total)

	rec = env.do(t, http.MethodGet, "/api/leads?limit=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLeadStatus_movesThroughPipeline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, env.store.CreateLead(ctx, model.Lead{
		ID: "lead-1", FirstName: "Lead", LastName: "One",
		Email: "lead1@example.com", Phone: "555-0100",
		ProductType: "term-life", Status: model.LeadStatusNew,
		Source: "website", CreatedAt: now, UpdatedAt: now,
	}))

	rec := env.do(t, http.MethodPatch, "/api/leads/lead-1/status", map[string]string{
		"status": "qualified",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	page, err := env.store.ListLeads(ctx, model.LeadFilters{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, model.LeadStatusQualified, page.Items[0].Status)

	rec = env.do(t, http.MethodPatch, "/api/leads/lead-1/status", map[string]string{
		"status": "closed-won",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/leads/no-such-lead/status", map[string]string{
		"status": "contacted",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPages_includesDrafts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.UpsertPage(ctx, publishedPage("home")))
	draft := publishedPage("pending")
	draft.Status = model.PageStatusDraft
	require.NoError(t, env.store.UpsertPage(ctx, draft))

	rec := env.do(t, http.MethodGet, "/admin/pages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []model.PageSummary `json:"items"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Items, 2)
}

func TestDeletePage_removesFromListing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.UpsertPage(ctx, publishedPage("retired")))

	rec := env.do(t, http.MethodDelete, "/admin/pages/retired", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/pages/retired", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/pages/retired", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes_rejectedWithoutAuthenticator(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.UpsertPage(context.Background(), publishedPage("home")))

	router := NewRouter(Dependencies{
		Config:      config.Defaults(),
		Log:         zap.NewNop(),
		Store:       store,
		Sessions:    editor.NewManager(),
		SeedsLoaded: func() bool { return true },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/pages", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/editor/sessions", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Public routes stay reachable.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pages/home", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

// --- Admin: editor sessions ---

func (e *testEnv) openSession(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/admin/editor/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp stateResponse
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestEditorSession_editSaveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.UpsertPage(ctx, publishedPage("home")))

	sid := env.openSession(t)
	base := "/admin/editor/sessions/" + sid

	rec := env.do(t, http.MethodPost, base+"/page/load", map[string]any{"slug": "home"})
	require.Equal(t, http.StatusOK, rec.Code)
	var state stateResponse
	decodeBody(t, rec, &state)
	require.NotNil(t, state.State.Page)
	require.Len(t, state.State.Page.Sections, 2)
	require.False(t, state.State.CanUndo)

	rec = env.do(t, http.MethodPatch, base+"/sections/s1", map[string]any{
		"data": map[string]any{"headline": "A new headline"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &state)
	require.True(t, state.State.Dirty)
	require.True(t, state.State.CanUndo)
	require.Equal(t, "A new headline", state.State.Page.Sections[0].Data["headline"])

	rec = env.do(t, http.MethodPost, base+"/page/save", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	saved, err := env.store.GetPage(ctx, "home")
	require.NoError(t, err)
	require.Equal(t, "A new headline", saved.Sections[0].Data["headline"])
}

func TestEditorSession_sectionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.UpsertPage(ctx, publishedPage("home")))

	sid := env.openSession(t)
	base := "/admin/editor/sessions/" + sid
	env.do(t, http.MethodPost, base+"/page/load", map[string]any{"slug": "home"})

	// Add with starter content after the hero.
	rec := env.do(t, http.MethodPost, base+"/sections", map[string]any{
		"type":     "faq",
		"after_id": "s1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var state stateResponse
	decodeBody(t, rec, &state)
	require.Len(t, state.State.Page.Sections, 3)
	require.Equal(t, model.SectionFAQ, state.State.Page.Sections[1].Type)
	require.NotEmpty(t, state.State.Page.Sections[1].Data)

	// Unknown payload key is rejected before the store changes.
	rec = env.do(t, http.MethodPost, base+"/sections", map[string]any{
		"type": "hero",
		"data": map[string]any{"headline": "x", "bogus": true},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate lands adjacent with a fresh id.
	rec = env.do(t, http.MethodPost, base+"/sections/s1/duplicate", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var dup struct {
		SectionID string       `json:"section_id"`
		State     editor.State `json:"state"`
	}
	decodeBody(t, rec, &dup)
	require.NotEmpty(t, dup.SectionID)
	require.Equal(t, dup.SectionID, dup.State.Page.Sections[1].ID)

	// Reorder, then remove.
	rec = env.do(t, http.MethodPost, base+"/sections/reorder", map[string]any{
		"from": 0, "to": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, base+"/sections/"+dup.SectionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/sections/reorder", map[string]any{
		"from": 0, "to": 99,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditorSession_undoRedo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.UpsertPage(ctx, publishedPage("home")))

	sid := env.openSession(t)
	base := "/admin/editor/sessions/" + sid
	env.do(t, http.MethodPost, base+"/page/load", map[string]any{"slug": "home"})
	env.do(t, http.MethodDelete, base+"/sections/s2", nil)

	rec := env.do(t, http.MethodPost, base+"/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist historyResponse
	decodeBody(t, rec, &hist)
	require.True(t, hist.Stepped)
	require.Len(t, hist.State.Page.Sections, 2)

	// Undo at the seed is a no-op, not an error.
	rec = env.do(t, http.MethodPost, base+"/undo", nil)
	decodeBody(t, rec, &hist)
	require.False(t, hist.Stepped)

	rec = env.do(t, http.MethodPost, base+"/redo", nil)
	decodeBody(t, rec, &hist)
	require.True(t, hist.Stepped)
	require.Len(t, hist.State.Page.Sections, 1)
}

func TestEditorSession_viewState(t *testing.T) {
	env := newTestEnv(t)
	sid := env.openSession(t)
	base := "/admin/editor/sessions/" + sid

	rec := env.do(t, http.MethodPut, base+"/mode", map[string]any{"edit_mode": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, base+"/panel", map[string]any{"panel": "styles"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, base+"/panel", map[string]any{"panel": "nonsense"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, base+"/viewport", map[string]any{"mode": "mobile"})
	require.Equal(t, http.StatusOK, rec.Code)
	var state stateResponse
	decodeBody(t, rec, &state)
	require.True(t, state.State.EditMode)
	require.Equal(t, editor.PanelStyles, state.State.ActivePanel)
	require.Equal(t, editor.PreviewMobile, state.State.PreviewMode)
}

func TestEditorSession_tokensPatch(t *testing.T) {
	env := newTestEnv(t)
	sid := env.openSession(t)
	base := "/admin/editor/sessions/" + sid

	rec := env.do(t, http.MethodPatch, base+"/tokens", map[string]any{
		"colors": map[string]any{"primary": "#000000"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var state stateResponse
	decodeBody(t, rec, &state)
	require.Equal(t, "#000000", state.State.Tokens.Colors.Primary)
	require.True(t, state.State.Dirty)
}

func TestEditorSession_unknownSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/editor/sessions/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, model.ErrSessionNotFound, errorCode(t, rec))
}

func TestEditorSession_close(t *testing.T) {
	env := newTestEnv(t)
	sid := env.openSession(t)

	rec := env.do(t, http.MethodDelete, "/admin/editor/sessions/"+sid, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/editor/sessions/"+sid, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Admin: media ---

func TestUploadMedia(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="hero.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("png bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var asset media.Asset
	decodeBody(t, rec, &asset)
	require.True(t, strings.HasPrefix(asset.URL, "/media/"))
	require.True(t, strings.HasSuffix(asset.URL, ".png"))
}

// --- Health ---

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ready observability.ReadinessResponse
	decodeBody(t, rec, &ready)
	require.Equal(t, "ready", ready.Status)
	require.Equal(t, "ok", ready.Checks["pages"].Status)
	require.Equal(t, "ok", ready.Checks["storage"].Status)
}
