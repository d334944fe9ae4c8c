package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/config"
	"github.com/getcoveredlife/studio/internal/editor"
	"github.com/getcoveredlife/studio/internal/media"
	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/internal/payment"
	"github.com/getcoveredlife/studio/internal/storage"
	"github.com/getcoveredlife/studio/model"
)

// Dependencies holds all injected collaborators for the HTTP layer.
type Dependencies struct {
	Config   *config.Config
	Log      *zap.Logger
	Metrics  *observability.Metrics
	Store    storage.Store
	Sessions *editor.Manager
	Payments payment.Client
	Webhooks *payment.Verifier
	Uploader media.Uploader

	// Authenticate guards the admin routes. Injected so tests can swap in
	// a stub; when nil every admin request is rejected with 401.
	Authenticate func(http.Handler) http.Handler

	// SeedsLoaded reports whether startup seeding finished, for readiness.
	SeedsLoaded func() bool
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics bypass authentication,
// as do the public site endpoints.
func NewRouter(deps Dependencies) chi.Router {
	h := &handlers{deps: deps}
	r := chi.NewRouter()

	r.Use(Recovery(deps.Log))
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(RequestID)
	r.Use(SecurityHeaders)
	if deps.Config.Observability.Tracing.Enabled {
		r.Use(observability.TracingMiddleware)
	}
	if deps.Metrics != nil {
		r.Use(deps.Metrics.MetricsMiddleware)
	}
	r.Use(RequestLogging(deps.Log))

	r.Get("/health", observability.HandleHealth())
	r.Get("/ready", observability.HandleReady(observability.ReadinessChecks{
		SeedsLoaded: deps.SeedsLoaded,
		Storage:     storageChecker(deps.Store),
	}))
	if deps.Config.Observability.Metrics.Enabled {
		r.Method(http.MethodGet, deps.Config.Observability.Metrics.Path, observability.Handler())
	}

	// Public site routes.
	r.Group(func(r chi.Router) {
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))

		r.Get("/api/pages/{slug}", h.getPage)
		r.Post("/api/leads", h.createLead)
		r.Post("/api/contact", h.createContact)
		r.Post("/api/checkout", h.createCheckout)
		r.Post("/api/webhooks/payment", h.paymentWebhook)
	})

	if du, ok := deps.Uploader.(*media.DiskUploader); ok {
		fileServer := http.StripPrefix(
			deps.Config.Media.PublicPath+"/",
			http.FileServer(http.Dir(du.Dir())),
		)
		r.Get(deps.Config.Media.PublicPath+"/*", fileServer.ServeHTTP)
	}

	// Admin routes. Without an authenticator the group fails closed.
	auth := deps.Authenticate
	if auth == nil {
		auth = rejectUnauthenticated
	}

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(BuildRequestContext)

		// Long-lived connection; no handler deadline.
		r.Get("/admin/editor/sessions/{sessionID}/ws", h.editorSocket)

		r.Group(func(r chi.Router) {
			r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))

			r.Get("/api/leads", h.listLeads)
			r.Patch("/api/leads/{leadID}/status", h.updateLeadStatus)
			r.Get("/admin/pages", h.listPages)
			r.Delete("/admin/pages/{slug}", h.deletePage)
			r.Post("/admin/media", h.uploadMedia)

			r.Route("/admin/editor/sessions", func(r chi.Router) {
				r.Post("/", h.createSession)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", h.getSession)
					r.Delete("/", h.closeSession)
					r.Put("/mode", h.setMode)
					r.Put("/selection", h.setSelection)
					r.Put("/element", h.setElement)
					r.Put("/panel", h.setPanel)
					r.Put("/viewport", h.setViewport)
					r.Post("/page/load", h.loadPage)
					r.Post("/page/save", h.savePage)
					r.Patch("/tokens", h.patchTokens)
					r.Post("/sections", h.addSection)
					r.Post("/sections/reorder", h.reorderSections)
					r.Patch("/sections/{sectionID}", h.updateSection)
					r.Delete("/sections/{sectionID}", h.removeSection)
					r.Post("/sections/{sectionID}/duplicate", h.duplicateSection)
					r.Post("/undo", h.undo)
					r.Post("/redo", h.redo)
				})
			})
		})
	})

	return r
}

// handlers carries the shared dependencies for every route handler.
type handlers struct {
	deps Dependencies
}

// session resolves the session id from the URL to its editor store.
func (h *handlers) session(w http.ResponseWriter, r *http.Request) (*editor.Store, bool) {
	store, err := h.deps.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return store, true
}

func rejectUnauthenticated(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, model.NewUnauthorizedError("no authenticator configured"))
	})
}

func storageChecker(store storage.Store) observability.HealthChecker {
	if store == nil {
		return nil
	}
	return store
}
