// Package editor holds the in-memory state for one page-editing session:
// design tokens, the loaded page and its sections, selection and view state,
// and a bounded linear undo/redo history. All mutations funnel through the
// Store; callers outside this package never touch page or token structures
// directly.
package editor

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/getcoveredlife/studio/model"
)

// PanelKind identifies the active editor side panel.
type PanelKind string

// Side panels. The empty string means no panel is open.
const (
	PanelNone       PanelKind = ""
	PanelStyles     PanelKind = "styles"
	PanelComponents PanelKind = "components"
	PanelSettings   PanelKind = "settings"
	PanelMedia      PanelKind = "media"
)

// Valid reports whether p names a known panel (or none).
func (p PanelKind) Valid() bool {
	switch p {
	case PanelNone, PanelStyles, PanelComponents, PanelSettings, PanelMedia:
		return true
	}
	return false
}

// PreviewMode is the preview viewport.
type PreviewMode string

// Preview viewports.
const (
	PreviewDesktop PreviewMode = "desktop"
	PreviewTablet  PreviewMode = "tablet"
	PreviewMobile  PreviewMode = "mobile"
)

// Valid reports whether m names a known viewport.
func (m PreviewMode) Valid() bool {
	switch m {
	case PreviewDesktop, PreviewTablet, PreviewMobile:
		return true
	}
	return false
}

// DefaultHistoryLimit bounds the undo history to the most recent entries.
const DefaultHistoryLimit = 50

// SectionPatch is a partial update to a single section. Data keys are merged
// into the section's payload one by one; Styles replaces the style block
// wholesale when non-nil; Visible toggles visibility when non-nil.
type SectionPatch struct {
	Data    map[string]any       `json:"data,omitempty"`
	Styles  *model.SectionStyles `json:"styles,omitempty"`
	Visible *bool                `json:"is_visible,omitempty"`
}

// State is a consistent, deep-copied snapshot of the session for transport.
type State struct {
	EditMode          bool               `json:"edit_mode"`
	SelectedSectionID string             `json:"selected_section_id,omitempty"`
	SelectedElementID string             `json:"selected_element_id,omitempty"`
	ActivePanel       PanelKind          `json:"active_panel,omitempty"`
	PreviewMode       PreviewMode        `json:"preview_mode"`
	Dirty             bool               `json:"has_unsaved_changes"`
	CanUndo           bool               `json:"can_undo"`
	CanRedo           bool               `json:"can_redo"`
	Revision          uint64             `json:"revision"`
	Tokens            model.DesignTokens `json:"design_tokens"`
	Page              *model.Page        `json:"page,omitempty"`
}

// Store is the single source of truth for one editing session. Operations are
// synchronous and atomic; each content mutation records a full deep snapshot
// of the page so that history[historyIndex] is always the live page.
type Store struct {
	mu sync.Mutex

	editMode          bool
	selectedSectionID string
	selectedElementID string
	activePanel       PanelKind
	previewMode       PreviewMode
	dirty             bool
	revision          uint64

	tokens model.DesignTokens

	page         *model.Page
	history      []model.Page
	historyIndex int
	limit        int
}

// Option configures a Store.
type Option func(*Store)

// WithHistoryLimit overrides the undo history bound. Values below 2 are
// clamped to 2 (the current entry plus at least one undo target).
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n < 2 {
			n = 2
		}
		s.limit = n
	}
}

// New creates a Store seeded with the given design tokens.
func New(tokens model.DesignTokens, opts ...Option) *Store {
	s := &Store{
		tokens:       tokens.Normalize(),
		previewMode:  PreviewDesktop,
		historyIndex: -1,
		limit:        DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEditMode toggles edit mode. View state only; no history entry.
func (s *Store) SetEditMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editMode = enabled
	s.revision++
}

// SetSelectedSection updates the advisory section selection. An empty id
// clears the selection.
func (s *Store) SetSelectedSection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedSectionID = id
	s.revision++
}

// SetSelectedElement updates the advisory element selection.
func (s *Store) SetSelectedElement(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedElementID = id
	s.revision++
}

// SetActivePanel switches the active side panel.
func (s *Store) SetActivePanel(p PanelKind) error {
	if !p.Valid() {
		return model.NewBadRequestError(fmt.Sprintf("unknown panel %q", p))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePanel = p
	s.revision++
	return nil
}

// SetPreviewMode switches the preview viewport.
func (s *Store) SetPreviewMode(m PreviewMode) error {
	if !m.Valid() {
		return model.NewBadRequestError(fmt.Sprintf("unknown preview mode %q", m))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewMode = m
	s.revision++
	return nil
}

// LoadPage replaces the working page with a deep copy of p, clears the
// selection and dirty flag, and reseeds the history with the loaded state as
// its single entry. The seed entry is what the first undo target restores.
func (s *Store) LoadPage(p model.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := p.Clone()
	reindex(clone.Sections)
	s.page = &clone

	seed := clone.Clone()
	s.history = []model.Page{seed}
	s.historyIndex = 0
	s.selectedSectionID = ""
	s.selectedElementID = ""
	s.dirty = false
	s.revision++
}

// Page returns a deep copy of the working page, or false if none is loaded.
func (s *Store) Page() (model.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.page == nil {
		return model.Page{}, false
	}
	return s.page.Clone(), true
}

// Tokens returns a deep copy of the active design tokens.
func (s *Store) Tokens() model.DesignTokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.Clone()
}

// UpdateTokens merges a partial token update into the active set, replacing
// provided categories wholesale. Tokens are versioned independently of page
// content, so no history entry is recorded. An empty patch is a no-op and
// does not mark the session dirty.
func (s *Store) UpdateTokens(patch model.TokenPatch) {
	if patch.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = patch.Apply(s.tokens)
	s.dirty = true
	s.revision++
}

// UpdateSection merges a partial update into the section with the given id.
// A patch that changes nothing is a no-op: it records no history entry and
// does not mark the session dirty, so a commit of an unchanged edit buffer
// has no effect.
func (s *Store) UpdateSection(sectionID string, patch SectionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return model.NewNoPageLoadedError()
	}
	idx := indexOf(s.page.Sections, sectionID)
	if idx < 0 {
		return model.NewNotFoundError(fmt.Sprintf("section %q not found", sectionID))
	}

	sec := &s.page.Sections[idx]
	changed := false

	for k, v := range patch.Data {
		if !reflect.DeepEqual(sec.Data[k], v) {
			changed = true
			break
		}
	}
	if patch.Styles != nil && *patch.Styles != sec.Styles {
		changed = true
	}
	if patch.Visible != nil && *patch.Visible != sec.IsVisible {
		changed = true
	}
	if !changed {
		return nil
	}

	if len(patch.Data) > 0 && sec.Data == nil {
		sec.Data = make(map[string]any, len(patch.Data))
	}
	for k, v := range patch.Data {
		sec.Data[k] = v
	}
	if patch.Styles != nil {
		sec.Styles = *patch.Styles
	}
	if patch.Visible != nil {
		sec.IsVisible = *patch.Visible
	}

	s.record()
	return nil
}

// AddSection inserts a section at the end of the page, or immediately after
// the section with id afterID. An afterID that does not match any section
// falls back to appending.
func (s *Store) AddSection(sec model.Section, afterID string) error {
	if sec.ID == "" {
		return model.NewBadRequestError("section id is required")
	}
	if !sec.Type.Valid() {
		return model.NewBadRequestError(fmt.Sprintf("unknown section type %q", sec.Type))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return model.NewNoPageLoadedError()
	}
	if indexOf(s.page.Sections, sec.ID) >= 0 {
		return model.NewConflictError(fmt.Sprintf("section %q already exists", sec.ID))
	}

	insert := sec.Clone()
	at := len(s.page.Sections)
	if afterID != "" {
		if i := indexOf(s.page.Sections, afterID); i >= 0 {
			at = i + 1
		}
	}
	s.page.Sections = splice(s.page.Sections, at, insert)
	reindex(s.page.Sections)

	s.record()
	return nil
}

// RemoveSection deletes the section with the given id and clears the
// selection if it pointed at the removed section.
func (s *Store) RemoveSection(sectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return model.NewNoPageLoadedError()
	}
	idx := indexOf(s.page.Sections, sectionID)
	if idx < 0 {
		return model.NewNotFoundError(fmt.Sprintf("section %q not found", sectionID))
	}

	s.page.Sections = append(s.page.Sections[:idx], s.page.Sections[idx+1:]...)
	reindex(s.page.Sections)
	if s.selectedSectionID == sectionID {
		s.selectedSectionID = ""
	}

	s.record()
	return nil
}

// ReorderSections removes the section at fromIndex and re-inserts it at
// toIndex (splice semantics, not a swap). Out-of-range indices are rejected;
// a move to the same position is a no-op.
func (s *Store) ReorderSections(fromIndex, toIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return model.NewNoPageLoadedError()
	}
	n := len(s.page.Sections)
	if fromIndex < 0 || fromIndex >= n {
		return model.NewBadRequestError(fmt.Sprintf("from index %d out of range [0,%d)", fromIndex, n))
	}
	if toIndex < 0 || toIndex >= n {
		return model.NewBadRequestError(fmt.Sprintf("to index %d out of range [0,%d)", toIndex, n))
	}
	if fromIndex == toIndex {
		return nil
	}

	moved := s.page.Sections[fromIndex]
	rest := append(s.page.Sections[:fromIndex:fromIndex], s.page.Sections[fromIndex+1:]...)
	s.page.Sections = splice(rest, toIndex, moved)
	reindex(s.page.Sections)

	s.record()
	return nil
}

// DuplicateSection deep-copies the section with the given id, assigns the
// copy a fresh id derived from the original, and inserts it immediately
// after the original. It returns the new section's id.
func (s *Store) DuplicateSection(sectionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page == nil {
		return "", model.NewNoPageLoadedError()
	}
	idx := indexOf(s.page.Sections, sectionID)
	if idx < 0 {
		return "", model.NewNotFoundError(fmt.Sprintf("section %q not found", sectionID))
	}

	dup := s.page.Sections[idx].Clone()
	dup.ID = s.copyID(sectionID)
	s.page.Sections = splice(s.page.Sections, idx+1, dup)
	reindex(s.page.Sections)

	s.record()
	return dup.ID, nil
}

// Undo steps the history cursor back one entry and restores that snapshot as
// the working page. It reports whether a step was taken; at the oldest entry
// it is a no-op, not an error.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.historyIndex <= 0 {
		return false
	}
	s.historyIndex--
	s.restoreLocked()
	return true
}

// Redo steps the history cursor forward one entry. No-op at the tail.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.historyIndex >= len(s.history)-1 {
		return false
	}
	s.historyIndex++
	s.restoreLocked()
	return true
}

// CanUndo reports whether an undo step is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyIndex > 0
}

// CanRedo reports whether a redo step is available.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyIndex < len(s.history)-1
}

// HistoryLen returns the number of snapshots currently retained.
func (s *Store) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Dirty reports whether the working copy differs from the last save.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkSaved clears the dirty flag. Called only after the persistence
// boundary confirms a successful save; a failed save leaves the flag set.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
	s.revision++
}

// State returns a deep-copied snapshot of the full session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		EditMode:          s.editMode,
		SelectedSectionID: s.selectedSectionID,
		SelectedElementID: s.selectedElementID,
		ActivePanel:       s.activePanel,
		PreviewMode:       s.previewMode,
		Dirty:             s.dirty,
		CanUndo:           s.historyIndex > 0,
		CanRedo:           s.historyIndex < len(s.history)-1,
		Revision:          s.revision,
		Tokens:            s.tokens.Clone(),
	}
	if s.page != nil {
		p := s.page.Clone()
		st.Page = &p
	}
	return st
}

// record captures the current page into the history at historyIndex+1,
// pruning any redo branch, then truncates the stack to the retention limit.
// Callers hold s.mu.
func (s *Store) record() {
	s.history = append(s.history[:s.historyIndex+1], s.page.Clone())
	if excess := len(s.history) - s.limit; excess > 0 {
		s.history = append(s.history[:0:0], s.history[excess:]...)
	}
	s.historyIndex = len(s.history) - 1
	s.dirty = true
	s.revision++
}

// restoreLocked replaces the working page with a deep copy of the snapshot at
// the cursor and drops a selection that no longer resolves. Callers hold s.mu.
func (s *Store) restoreLocked() {
	clone := s.history[s.historyIndex].Clone()
	s.page = &clone
	if s.selectedSectionID != "" && indexOf(s.page.Sections, s.selectedSectionID) < 0 {
		s.selectedSectionID = ""
	}
	s.dirty = true
	s.revision++
}

// copyID derives a fresh id for a duplicated section, retrying on the
// (unlikely) suffix collision within the page.
func (s *Store) copyID(base string) string {
	for {
		id := fmt.Sprintf("%s-copy-%s", base, uuid.NewString()[:8])
		if indexOf(s.page.Sections, id) < 0 {
			return id
		}
	}
}

// indexOf returns the position of the section with the given id, or -1.
func indexOf(sections []model.Section, id string) int {
	for i := range sections {
		if sections[i].ID == id {
			return i
		}
	}
	return -1
}

// splice inserts sec at position at, shifting later sections right.
func splice(sections []model.Section, at int, sec model.Section) []model.Section {
	sections = append(sections, model.Section{})
	copy(sections[at+1:], sections[at:])
	sections[at] = sec
	return sections
}

// reindex re-derives the contiguous zero-based order after every structural
// change.
func reindex(sections []model.Section) {
	for i := range sections {
		sections[i].Order = i
	}
}
