package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/getcoveredlife/studio/model"
)

// getPage serves a published page to the public site. Draft pages are
// indistinguishable from missing ones.
func (h *handlers) getPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.deps.Store.GetPage(r.Context(), slug)
	if err != nil {
		WriteError(w, err)
		return
	}
	if page.Status != model.PageStatusPublished {
		WriteError(w, model.NewNotFoundError("page \""+slug+"\" not found"))
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// listPages serves page summaries to the admin UI, drafts included.
func (h *handlers) listPages(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.deps.Store.ListPages(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	if summaries == nil {
		summaries = []model.PageSummary{}
	}

	type listResponse struct {
		Items []model.PageSummary `json:"items"`
	}
	WriteJSON(w, http.StatusOK, listResponse{Items: summaries})
}

// deletePage removes a page permanently. Editing sessions that still hold
// the page keep their in-memory copy until closed.
func (h *handlers) deletePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.deps.Store.DeletePage(r.Context(), slug); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
