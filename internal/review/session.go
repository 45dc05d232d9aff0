package review

import (
	"strings"
	"sync"
	"time"
)

// Session holds the suggestions returned for one audited page together with
// each suggestion's review status, user edit overlays and tag annotations.
// Suggestion order is arrival order from the engine and is never resorted.
//
// The review lifecycle per suggestion is pending <-> accepted and
// pending <-> rejected, with accept and reject overriding each other
// directly. Accept and Reject are idempotent sets; UnsetStatus is the only
// way back to pending. No status is terminal.
type Session struct {
	mu sync.Mutex

	ID        string `json:"id"`
	Shop      string `json:"shop"`
	URL       string `json:"url"`
	Goal      string `json:"goal"`
	Status    string `json:"status"` // draft, reviewed
	Rationale string `json:"rationale,omitempty"`

	// OriginalDocument is the raw page content returned by the crawl.
	OriginalDocument string `json:"original_document"`

	Suggestions []Suggestion      `json:"suggestions"`
	ReviewState map[string]Status `json:"review_state"`
	// Overlays holds user- or regeneration-supplied replacement descriptions,
	// keyed by suggestion id. An overlay supersedes the original description
	// for display and for the applied-document composite.
	Overlays map[string]string `json:"overlays"`

	CreatedAt   time.Time  `json:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// NewSession creates a draft session with every suggestion pending.
func NewSession(id, shop, url, goal, rationale, originalDocument string, suggestions []Suggestion) *Session {
	s := &Session{
		ID:               id,
		Shop:             shop,
		URL:              url,
		Goal:             goal,
		Status:           AuditDraft,
		Rationale:        rationale,
		OriginalDocument: originalDocument,
		Suggestions:      suggestions,
		ReviewState:      make(map[string]Status, len(suggestions)),
		Overlays:         make(map[string]string),
		CreatedAt:        time.Now().UTC(),
	}
	for i := range suggestions {
		s.ReviewState[suggestions[i].ID] = StatusPending
	}
	return s
}

func (s *Session) find(id string) *Suggestion {
	for i := range s.Suggestions {
		if s.Suggestions[i].ID == id {
			return &s.Suggestions[i]
		}
	}
	return nil
}

func (s *Session) checkMutable(id string) error {
	if s.Status == AuditReviewed {
		return ErrAuditFinalized
	}
	if id != "" && s.find(id) == nil {
		return ErrSuggestionNotFound
	}
	return nil
}

// Accept marks the suggestion accepted, clearing a prior rejection.
// Accepting an already-accepted suggestion is a no-op.
func (s *Session) Accept(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(id); err != nil {
		return err
	}
	s.ReviewState[id] = StatusAccepted
	return nil
}

// Reject marks the suggestion rejected, clearing a prior acceptance.
func (s *Session) Reject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(id); err != nil {
		return err
	}
	s.ReviewState[id] = StatusRejected
	return nil
}

// UnsetStatus returns the suggestion to pending. This is the explicit
// toggle-off path; Accept and Reject never clear on repeat calls.
func (s *Session) UnsetStatus(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(id); err != nil {
		return err
	}
	s.ReviewState[id] = StatusPending
	return nil
}

// Edit installs or overwrites the edit overlay for the suggestion. The
// review status is untouched; if the suggestion is accepted the new text is
// reflected immediately in the applied document.
func (s *Session) Edit(id, newDescription string) error {
	if strings.TrimSpace(newDescription) == "" {
		return ErrEmptyDescription
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(id); err != nil {
		return err
	}
	if s.Overlays == nil {
		s.Overlays = make(map[string]string)
	}
	s.Overlays[id] = newDescription
	return nil
}

// InstallOverlay records a regenerated description for the suggestion. The
// text behaves exactly like a manual edit afterwards.
func (s *Session) InstallOverlay(id, description string) error {
	return s.Edit(id, description)
}

// ToggleTag adds tagID to the suggestion's tag set if absent and removes it
// if present. Independent of review status and overlays.
func (s *Session) ToggleTag(id, tagID string) error {
	if !KnownTag(tagID) {
		return ErrUnknownTag
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkMutable(id); err != nil {
		return err
	}
	sug := s.find(id)
	if sug.HasTag(tagID) {
		kept := sug.Tags[:0]
		for _, t := range sug.Tags {
			if t != tagID {
				kept = append(kept, t)
			}
		}
		sug.Tags = kept
		return nil
	}
	sug.Tags = append(sug.Tags, tagID)
	return nil
}

// EffectiveDescription returns the overlay text when present, else the
// original description.
func (s *Session) EffectiveDescription(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sug := s.find(id)
	if sug == nil {
		return "", ErrSuggestionNotFound
	}
	if text, ok := s.Overlays[id]; ok {
		return text, nil
	}
	return sug.Description, nil
}

// StatusOf returns the review status for the suggestion.
func (s *Session) StatusOf(id string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(id) == nil {
		return "", ErrSuggestionNotFound
	}
	return s.ReviewState[id], nil
}

// AppliedDocument composites the currently accepted suggestions' effective
// text into the original document, in suggestion order. Pure function of the
// session state: same inputs, same output.
func (s *Session) AppliedDocument() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	for i := range s.Suggestions {
		sug := &s.Suggestions[i]
		if s.ReviewState[sug.ID] != StatusAccepted {
			continue
		}
		text := sug.Description
		if overlay, ok := s.Overlays[sug.ID]; ok {
			text = overlay
		}
		b.WriteString(`<div data-suggestion-id="`)
		b.WriteString(sug.ID)
		b.WriteString(`">`)
		b.WriteString(text)
		b.WriteString("</div>")
	}
	if b.Len() == 0 {
		return s.OriginalDocument
	}

	// Splice before the closing body tag when one exists, otherwise append.
	if idx := strings.LastIndex(s.OriginalDocument, "</body>"); idx >= 0 {
		return s.OriginalDocument[:idx] + b.String() + s.OriginalDocument[idx:]
	}
	return s.OriginalDocument + b.String()
}

// Counts aggregates review statuses. The three buckets always sum to
// len(Suggestions).
func (s *Session) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Counts
	for i := range s.Suggestions {
		switch s.ReviewState[s.Suggestions[i].ID] {
		case StatusAccepted:
			c.Accepted++
		case StatusRejected:
			c.Rejected++
		default:
			c.Pending++
		}
	}
	return c
}

// AcceptedSuggestions returns the accepted suggestions in arrival order,
// with overlays applied to their descriptions.
func (s *Session) AcceptedSuggestions() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Suggestion
	for i := range s.Suggestions {
		sug := s.Suggestions[i]
		if s.ReviewState[sug.ID] != StatusAccepted {
			continue
		}
		if overlay, ok := s.Overlays[sug.ID]; ok {
			sug.Description = overlay
		}
		out = append(out, sug)
	}
	return out
}

// ResetAll replaces the suggestion set wholesale and resets every review
// status and overlay to defaults. Used by regenerate-all.
func (s *Session) ResetAll(suggestions []Suggestion, rationale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status == AuditReviewed {
		return ErrAuditFinalized
	}
	s.Suggestions = suggestions
	s.Rationale = rationale
	s.ReviewState = make(map[string]Status, len(suggestions))
	s.Overlays = make(map[string]string)
	for i := range suggestions {
		s.ReviewState[suggestions[i].ID] = StatusPending
	}
	return nil
}

// Finalize marks the audit reviewed. Requires at least one accepted
// suggestion; further mutation is refused afterwards.
func (s *Session) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status == AuditReviewed {
		return ErrAuditFinalized
	}
	accepted := false
	for i := range s.Suggestions {
		if s.ReviewState[s.Suggestions[i].ID] == StatusAccepted {
			accepted = true
			break
		}
	}
	if !accepted {
		return ErrNothingAccepted
	}
	now := time.Now().UTC()
	s.Status = AuditReviewed
	s.FinalizedAt = &now
	return nil
}
