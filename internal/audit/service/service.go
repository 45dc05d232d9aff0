package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/audit-ai/cro-backend/internal/audit/domain"
	"github.com/audit-ai/cro-backend/internal/engine"
	"github.com/audit-ai/cro-backend/internal/review"
	"github.com/audit-ai/cro-backend/internal/shop"
)

var (
	ErrMissingURL  = errors.New("page url is required")
	ErrMissingGoal = errors.New("goal is required")
)

// EngineClient is the slice of the insight engine the audit flow needs.
type EngineClient interface {
	Crawl(ctx context.Context, domain shop.Domain, url string) (*engine.PageData, error)
	Suggest(ctx context.Context, domain shop.Domain, html, goal string) (string, []review.Suggestion, error)
	Variants(ctx context.Context, domain shop.Domain, suggestionID, originalText string) (*engine.Variant, error)
}

// SessionStore persists review sessions between requests.
type SessionStore interface {
	Save(ctx context.Context, sess *review.Session) error
	Get(ctx context.Context, sessionID string) (*review.Session, error)
	ListByShop(ctx context.Context, shopDomain string) ([]string, error)
	Delete(ctx context.Context, sessionID string) error
}

// RecordStore keeps the audit history rows.
type RecordStore interface {
	Insert(ctx context.Context, rec *domain.Record) error
	ListByShop(ctx context.Context, shopDomain string, limit int) ([]domain.Record, error)
	MarkFinalized(ctx context.Context, shopDomain, id string, at time.Time) error
}

// Service orchestrates audits: crawl + suggest round-trips against the
// engine, session lifecycle, and the per-suggestion review operations.
type Service struct {
	engine   EngineClient
	sessions SessionStore
	records  RecordStore // optional; nil disables audit history
}

// NewService creates a new audit Service.
func NewService(engineClient EngineClient, sessions SessionStore, records RecordStore) *Service {
	return &Service{
		engine:   engineClient,
		sessions: sessions,
		records:  records,
	}
}

// StartAudit runs one crawl + suggest round trip for a page URL and creates
// a review session from the result. Any engine failure aborts the whole
// operation: no session is stored.
func (s *Service) StartAudit(ctx context.Context, sh shop.Domain, pageURL, goal string) (*review.Session, error) {
	if strings.TrimSpace(pageURL) == "" {
		return nil, ErrMissingURL
	}
	if strings.TrimSpace(goal) == "" {
		return nil, ErrMissingGoal
	}

	page, err := s.engine.Crawl(ctx, sh, pageURL)
	if err != nil {
		return nil, err
	}
	rationale, suggestions, err := s.engine.Suggest(ctx, sh, page.HTML, goal)
	if err != nil {
		return nil, err
	}

	sess := review.NewSession(uuid.New().String(), sh.String(), pageURL, goal, rationale, page.HTML, suggestions)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	if s.records != nil {
		rec := &domain.Record{
			ID:        sess.ID,
			Shop:      sess.Shop,
			URL:       sess.URL,
			Goal:      sess.Goal,
			Status:    sess.Status,
			Rationale: sess.Rationale,
			CreatedAt: sess.CreatedAt,
		}
		if err := s.records.Insert(ctx, rec); err != nil {
			// History is best-effort; the session itself is already live.
			log.Printf("[warn] operation=start_audit session=%s record insert failed: %v", sess.ID, err)
		}
	}
	return sess, nil
}

// Session loads a session, enforcing shop ownership.
func (s *Service) Session(ctx context.Context, sh shop.Domain, sessionID string) (*review.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Shop != sh.String() {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Discard drops a session. Finalization state in the audit history is
// unaffected.
func (s *Service) Discard(ctx context.Context, sh shop.Domain, sessionID string) error {
	if _, err := s.Session(ctx, sh, sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

// mutate loads the session, applies op, and saves the result. The saved
// state is last-writer-wins, matching the UI's single-actor model.
func (s *Service) mutate(ctx context.Context, sh shop.Domain, sessionID string, op func(*review.Session) error) (*review.Session, error) {
	sess, err := s.Session(ctx, sh, sessionID)
	if err != nil {
		return nil, err
	}
	if err := op(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Accept marks a suggestion accepted.
func (s *Service) Accept(ctx context.Context, sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
	return s.mutate(ctx, sh, sessionID, func(sess *review.Session) error {
		return sess.Accept(suggestionID)
	})
}

// Reject marks a suggestion rejected.
func (s *Service) Reject(ctx context.Context, sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
	return s.mutate(ctx, sh, sessionID, func(sess *review.Session) error {
		return sess.Reject(suggestionID)
	})
}

// UnsetStatus returns a suggestion to pending.
func (s *Service) UnsetStatus(ctx context.Context, sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
	return s.mutate(ctx, sh, sessionID, func(sess *review.Session) error {
		return sess.UnsetStatus(suggestionID)
	})
}

// Edit installs a user-supplied replacement description.
func (s *Service) Edit(ctx context.Context, sh shop.Domain, sessionID, suggestionID, description string) (*review.Session, error) {
	return s.mutate(ctx, sh, sessionID, func(sess *review.Session) error {
		return sess.Edit(suggestionID, description)
	})
}

// ToggleTag flips a tag on a suggestion.
func (s *Service) ToggleTag(ctx context.Context, sh shop.Domain, sessionID, suggestionID, tagID string) (*review.Session, error) {
	return s.mutate(ctx, sh, sessionID, func(sess *review.Session) error {
		return sess.ToggleTag(suggestionID, tagID)
	})
}

// Regenerate requests a variant for one suggestion, seeding the engine with
// the currently displayed text. A successful variant lands as an edit
// overlay; on failure the session is left untouched.
func (s *Service) Regenerate(ctx context.Context, sh shop.Domain, sessionID, suggestionID string) (*review.Session, error) {
	sess, err := s.Session(ctx, sh, sessionID)
	if err != nil {
		return nil, err
	}
	seed, err := sess.EffectiveDescription(suggestionID)
	if err != nil {
		return nil, err
	}

	variant, err := s.engine.Variants(ctx, sh, suggestionID, seed)
	if err != nil {
		return nil, err
	}
	if err := sess.InstallOverlay(suggestionID, variant.Description); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// RegenerateAll replaces the suggestion set with a fresh suggest round trip
// against the already-crawled document. Review state and overlays reset to
// defaults; on engine failure the session is left untouched.
func (s *Service) RegenerateAll(ctx context.Context, sh shop.Domain, sessionID string) (*review.Session, error) {
	sess, err := s.Session(ctx, sh, sessionID)
	if err != nil {
		return nil, err
	}

	rationale, suggestions, err := s.engine.Suggest(ctx, sh, sess.OriginalDocument, sess.Goal)
	if err != nil {
		return nil, err
	}
	if err := sess.ResetAll(suggestions, rationale); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Export bundles the accepted suggestions with their effective text.
func (s *Service) Export(ctx context.Context, sh shop.Domain, sessionID string) (*domain.Export, error) {
	sess, err := s.Session(ctx, sh, sessionID)
	if err != nil {
		return nil, err
	}
	return &domain.Export{
		URL:         sess.URL,
		Goal:        sess.Goal,
		Timestamp:   time.Now().UTC(),
		Suggestions: sess.AcceptedSuggestions(),
	}, nil
}

// Finalize marks the audit reviewed and locks the session against further
// mutation.
func (s *Service) Finalize(ctx context.Context, sh shop.Domain, sessionID string) (*review.Session, error) {
	sess, err := s.mutate(ctx, sh, sessionID, func(sess *review.Session) error {
		return sess.Finalize()
	})
	if err != nil {
		return nil, err
	}
	if s.records != nil && sess.FinalizedAt != nil {
		if err := s.records.MarkFinalized(ctx, sh.String(), sessionID, *sess.FinalizedAt); err != nil {
			log.Printf("[warn] operation=finalize session=%s record update failed: %v", sessionID, err)
		}
	}
	return sess, nil
}

// ActiveSessions lists the shop's live (unexpired) session ids.
func (s *Service) ActiveSessions(ctx context.Context, sh shop.Domain) ([]string, error) {
	return s.sessions.ListByShop(ctx, sh.String())
}

// History lists the shop's past audit records, newest first.
func (s *Service) History(ctx context.Context, sh shop.Domain, limit int) ([]domain.Record, error) {
	if s.records == nil {
		return nil, nil
	}
	return s.records.ListByShop(ctx, sh.String(), limit)
}
