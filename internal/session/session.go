// Package session holds the ephemeral per-connection state of an
// authenticated user: their identity and the most recent search result.
// A session is owned by exactly one logical connection and is never
// shared across connections; requests from a session are sequential,
// but the registry itself is accessed by many sessions concurrently.
package session

import (
	"sync"

	"github.com/iliyamo/flight-reservation/internal/model"
)

// SearchResult is the numbered itinerary list produced by the most
// recent search. Generation increments on every search so that a
// booking request can only address itineraries from the list it was
// shown; indices from an earlier search are invalid once a new search
// has replaced the list.
type SearchResult struct {
	Generation uint64
	Items      []model.Itinerary
}

// Session is the per-connection mutable context created at login.
type Session struct {
	Username string

	mu     sync.Mutex
	result SearchResult
}

// New returns a session bound to the authenticated username.
func New(username string) *Session {
	return &Session{Username: username}
}

// SetSearchResult replaces the current search result and bumps the
// generation. Every search replaces the prior list, even an empty one,
// and display indices restart at 0.
func (s *Session) SetSearchResult(items []model.Itinerary) SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = SearchResult{Generation: s.result.Generation + 1, Items: items}
	return s.result
}

// SearchResult returns a snapshot of the current search result.
func (s *Session) SearchResult() SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ItineraryAt returns the itinerary at the given display index of the
// current generation, or false when the index does not address the
// current search (out of range, or no search has run yet).
func (s *Session) ItineraryAt(i int) (model.Itinerary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.result.Items) {
		return model.Itinerary{}, false
	}
	return s.result.Items[i], true
}
