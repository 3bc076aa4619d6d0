package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/ytsum/internal/types"
)

// HistoryState encapsulates all history-related UI state
type HistoryState struct {
	mu sync.RWMutex

	// History data and navigation
	entries    []types.HistoryEntry
	allEntries []types.HistoryEntry // Unfiltered entries for search
	index      int

	// Viewport for preview pane
	previewView viewport.Model

	// UI state
	previewVisible bool   // Toggle for showing/hiding the summary preview pane
	searchActive   bool   // True when search input is active
	searchQuery    string // Fuzzy query over url, video id and summary
}

// NewHistoryState creates a new history state
func NewHistoryState() *HistoryState {
	return &HistoryState{
		entries:        []types.HistoryEntry{},
		allEntries:     []types.HistoryEntry{},
		previewView:    viewport.New(80, 20),
		previewVisible: true,
	}
}

// Load replaces all entries, resets the filter and selection
func (s *HistoryState) Load(entries []types.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allEntries = entries
	s.entries = entries
	s.index = 0
	s.searchQuery = ""
	s.searchActive = false
}

// GetEntries returns a copy of the visible entries
func (s *HistoryState) GetEntries() []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.HistoryEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// GetAllEntries returns a copy of the unfiltered entries
func (s *HistoryState) GetAllEntries() []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.HistoryEntry, len(s.allEntries))
	copy(result, s.allEntries)
	return result
}

// GetIndex returns the current index
func (s *HistoryState) GetIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Navigate moves the selection by delta
func (s *HistoryState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return
	}

	s.index += delta

	// Wrap around
	if s.index < 0 {
		s.index = len(s.entries) - 1
	} else if s.index >= len(s.entries) {
		s.index = 0
	}
}

// GetCurrentEntry returns the currently selected history entry
func (s *HistoryState) GetCurrentEntry() *types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || s.index < 0 || s.index >= len(s.entries) {
		return nil
	}

	entry := s.entries[s.index]
	return &entry
}

// Remove drops the entry with id from both lists
func (s *HistoryState) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allEntries = removeEntry(s.allEntries, id)
	s.entries = removeEntry(s.entries, id)
	if s.index >= len(s.entries) {
		s.index = max(0, len(s.entries)-1)
	}
}

func removeEntry(entries []types.HistoryEntry, id int64) []types.HistoryEntry {
	out := make([]types.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// GetPreviewView returns a copy of the preview viewport
func (s *HistoryState) GetPreviewView() viewport.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previewView
}

// SetPreviewView sets the preview viewport
func (s *HistoryState) SetPreviewView(v viewport.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewView = v
}

// GetPreviewVisible returns the preview visibility state
func (s *HistoryState) GetPreviewVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previewVisible
}

// TogglePreview toggles the preview visibility
func (s *HistoryState) TogglePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewVisible = !s.previewVisible
}

// GetSearchActive returns the search active state
func (s *HistoryState) GetSearchActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchActive
}

// ActivateSearch activates the search mode
func (s *HistoryState) ActivateSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchActive = true
}

// DeactivateSearch stops editing the query but keeps the filter applied
func (s *HistoryState) DeactivateSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchActive = false
}

// GetSearchQuery returns the search query
func (s *HistoryState) GetSearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetSearchQuery sets the query and refilters the entries
func (s *HistoryState) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
	s.applyFilterLocked()
}

// ClearSearch clears the search query and deactivates search
func (s *HistoryState) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = ""
	s.searchActive = false
	s.applyFilterLocked()
}

// historySource adapts entries to fuzzy.Source
type historySource []types.HistoryEntry

func (h historySource) String(i int) string {
	e := h[i]
	return e.VideoID + " " + e.URL + " " + e.Summary + " " + e.ErrorMessage
}

func (h historySource) Len() int { return len(h) }

// applyFilterLocked ranks allEntries by fuzzy match against the query. Caller holds mu.
func (s *HistoryState) applyFilterLocked() {
	s.index = 0
	if s.searchQuery == "" {
		s.entries = s.allEntries
		return
	}

	matches := fuzzy.FindFrom(s.searchQuery, historySource(s.allEntries))
	filtered := make([]types.HistoryEntry, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, s.allEntries[match.Index])
	}
	s.entries = filtered
}
