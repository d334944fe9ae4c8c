package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/getcoveredlife/studio/internal/content"
	"github.com/getcoveredlife/studio/internal/editor"
	"github.com/getcoveredlife/studio/internal/observability"
	"github.com/getcoveredlife/studio/model"
)

// stateResponse is the envelope returned by every editor mutation so the
// client can reconcile without a follow-up read.
type stateResponse struct {
	SessionID string       `json:"session_id,omitempty"`
	State     editor.State `json:"state"`
}

// createSession opens a new editing session seeded with the persisted design
// tokens, or the defaults when none are saved yet.
func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.deps.Store.GetTokens(r.Context())
	if err != nil {
		tokens = model.DefaultTokens()
	}

	id, store := h.deps.Sessions.Create(tokens)
	if h.deps.Metrics != nil {
		h.deps.Metrics.SetEditorSessions(float64(h.deps.Sessions.Len()))
	}

	observability.LoggerFrom(r.Context(), h.deps.Log).Info("editor session opened",
		zap.String("session_id", id))
	WriteJSON(w, http.StatusCreated, stateResponse{SessionID: id, State: store.State()})
}

// getSession returns the full session state.
func (h *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

// closeSession discards the session. Unsaved changes are lost.
func (h *handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	h.deps.Sessions.Close(chi.URLParam(r, "sessionID"))
	if h.deps.Metrics != nil {
		h.deps.Metrics.SetEditorSessions(float64(h.deps.Sessions.Len()))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) setMode(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		EditMode bool `json:"edit_mode"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	store.SetEditMode(req.EditMode)
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

func (h *handlers) setSelection(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		SectionID string `json:"section_id"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	store.SetSelectedSection(req.SectionID)
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

func (h *handlers) setElement(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		ElementID string `json:"element_id"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	store.SetSelectedElement(req.ElementID)
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

func (h *handlers) setPanel(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Panel editor.PanelKind `json:"panel"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := store.SetActivePanel(req.Panel); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

func (h *handlers) setViewport(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Mode editor.PreviewMode `json:"mode"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := store.SetPreviewMode(req.Mode); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

// loadPage pulls a page out of storage into the session, resetting history.
func (h *handlers) loadPage(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Slug string `json:"slug"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Slug == "" {
		WriteError(w, model.NewBadRequestError("slug is required"))
		return
	}

	page, err := h.deps.Store.GetPage(r.Context(), req.Slug)
	if err != nil {
		WriteError(w, err)
		return
	}
	store.LoadPage(page)
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

// savePage persists the working page and the session's design tokens, then
// clears the dirty flag. A failed save leaves the flag set.
func (h *handlers) savePage(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	page, loaded := store.Page()
	if !loaded {
		WriteError(w, model.NewNoPageLoadedError())
		return
	}

	start := time.Now()
	page.UpdatedAt = time.Now().UTC()
	err := h.deps.Store.UpsertPage(r.Context(), page)
	if err == nil {
		err = h.deps.Store.SaveTokens(r.Context(), store.Tokens())
	}
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordPageSave(err, time.Since(start))
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	store.MarkSaved()
	observability.LoggerFrom(r.Context(), h.deps.Log).Info("page saved",
		zap.String("slug", page.Slug),
		zap.Int("sections", len(page.Sections)))
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

// patchTokens merges a partial design-token update into the session.
func (h *handlers) patchTokens(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch model.TokenPatch
	if err := readJSON(w, r, &patch); err != nil {
		WriteError(w, err)
		return
	}
	store.UpdateTokens(patch)
	h.recordMutation("update_tokens", nil)
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

type addSectionRequest struct {
	ID      string              `json:"id"`
	Type    model.SectionType   `json:"type"`
	Data    map[string]any      `json:"data"`
	Styles  model.SectionStyles `json:"styles"`
	AfterID string              `json:"after_id"`
}

// addSection inserts a new section, filling in starter content when the
// request carries no payload.
func (h *handlers) addSection(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addSectionRequest
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	data := req.Data
	if len(data) == 0 {
		data = content.DefaultData(req.Type)
	}
	if err := content.Decode(req.Type, data); err != nil {
		h.recordMutation("add_section", err)
		WriteError(w, err)
		return
	}
	if details := content.Validate(req.Type, data); len(details) > 0 {
		h.recordMutation("add_section", model.NewValidationError(details))
		WriteValidationError(w, details)
		return
	}

	sec := model.Section{
		ID:        req.ID,
		Type:      req.Type,
		Data:      data,
		Styles:    req.Styles,
		IsVisible: true,
	}
	if sec.ID == "" {
		sec.ID = string(req.Type) + "-" + uuid.NewString()[:8]
	}

	err := store.AddSection(sec, req.AfterID)
	h.recordMutation("add_section", err)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, stateResponse{State: store.State()})
}

// updateSection merges a partial edit into one section. The patched payload
// is validated against the section type before the store is touched.
func (h *handlers) updateSection(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	sectionID := chi.URLParam(r, "sectionID")

	var patch editor.SectionPatch
	if err := readJSON(w, r, &patch); err != nil {
		WriteError(w, err)
		return
	}

	if len(patch.Data) > 0 {
		page, loaded := store.Page()
		if !loaded {
			WriteError(w, model.NewNoPageLoadedError())
			return
		}
		sec, found := findSection(page.Sections, sectionID)
		if !found {
			WriteError(w, model.NewNotFoundError("section \""+sectionID+"\" not found"))
			return
		}

		merged := make(map[string]any, len(sec.Data)+len(patch.Data))
		for k, v := range sec.Data {
			merged[k] = v
		}
		for k, v := range patch.Data {
			merged[k] = v
		}
		if err := content.Decode(sec.Type, merged); err != nil {
			h.recordMutation("update_section", err)
			WriteError(w, err)
			return
		}
		if details := content.Validate(sec.Type, merged); len(details) > 0 {
			h.recordMutation("update_section", model.NewValidationError(details))
			WriteValidationError(w, details)
			return
		}
	}

	err := store.UpdateSection(sectionID, patch)
	h.recordMutation("update_section", err)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

func (h *handlers) removeSection(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	err := store.RemoveSection(chi.URLParam(r, "sectionID"))
	h.recordMutation("remove_section", err)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

func (h *handlers) duplicateSection(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	newID, err := store.DuplicateSection(chi.URLParam(r, "sectionID"))
	h.recordMutation("duplicate_section", err)
	if err != nil {
		WriteError(w, err)
		return
	}

	type duplicateResponse struct {
		SectionID string       `json:"section_id"`
		State     editor.State `json:"state"`
	}
	WriteJSON(w, http.StatusCreated, duplicateResponse{SectionID: newID, State: store.State()})
}

func (h *handlers) reorderSections(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := readJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	err := store.ReorderSections(req.From, req.To)
	h.recordMutation("reorder_sections", err)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stateResponse{State: store.State()})
}

type historyResponse struct {
	Stepped bool         `json:"stepped"`
	State   editor.State `json:"state"`
}

// undo steps the session history back one snapshot. At the oldest entry it
// reports stepped=false rather than an error.
func (h *handlers) undo(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	stepped := store.Undo()
	if stepped && h.deps.Metrics != nil {
		h.deps.Metrics.RecordHistoryStep("undo")
	}
	WriteJSON(w, http.StatusOK, historyResponse{Stepped: stepped, State: store.State()})
}

func (h *handlers) redo(w http.ResponseWriter, r *http.Request) {
	store, ok := h.session(w, r)
	if !ok {
		return
	}
	stepped := store.Redo()
	if stepped && h.deps.Metrics != nil {
		h.deps.Metrics.RecordHistoryStep("redo")
	}
	WriteJSON(w, http.StatusOK, historyResponse{Stepped: stepped, State: store.State()})
}

func (h *handlers) recordMutation(op string, err error) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordEditorMutation(op, err)
	}
}

func findSection(sections []model.Section, id string) (model.Section, bool) {
	for _, sec := range sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return model.Section{}, false
}
