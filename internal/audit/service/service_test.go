package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audit-ai/cro-backend/internal/audit/domain"
	"github.com/audit-ai/cro-backend/internal/audit/repository"
	"github.com/audit-ai/cro-backend/internal/engine"
	"github.com/audit-ai/cro-backend/internal/review"
	"github.com/audit-ai/cro-backend/internal/shop"
)

const testShop = shop.Domain("test-store.myshopify.com")

type stubEngine struct {
	crawlHTML   string
	crawlErr    error
	rationale   string
	suggestions []review.Suggestion
	suggestErr  error
	variant     *engine.Variant
	variantsErr error
	variantSeed string
}

func (s *stubEngine) Crawl(ctx context.Context, d shop.Domain, url string) (*engine.PageData, error) {
	if s.crawlErr != nil {
		return nil, s.crawlErr
	}
	return &engine.PageData{URL: url, HTML: s.crawlHTML}, nil
}

func (s *stubEngine) Suggest(ctx context.Context, d shop.Domain, html, goal string) (string, []review.Suggestion, error) {
	if s.suggestErr != nil {
		return "", nil, s.suggestErr
	}
	return s.rationale, s.suggestions, nil
}

func (s *stubEngine) Variants(ctx context.Context, d shop.Domain, suggestionID, originalText string) (*engine.Variant, error) {
	s.variantSeed = originalText
	if s.variantsErr != nil {
		return nil, s.variantsErr
	}
	return s.variant, nil
}

type recordingStore struct {
	inserted  []domain.Record
	finalized []string
}

func (r *recordingStore) Insert(ctx context.Context, rec *domain.Record) error {
	r.inserted = append(r.inserted, *rec)
	return nil
}

func (r *recordingStore) ListByShop(ctx context.Context, shopDomain string, limit int) ([]domain.Record, error) {
	return r.inserted, nil
}

func (r *recordingStore) MarkFinalized(ctx context.Context, shopDomain, id string, at time.Time) error {
	r.finalized = append(r.finalized, id)
	return nil
}

func newTestService(t *testing.T, eng *stubEngine) (*Service, *recordingStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	records := &recordingStore{}
	return NewService(eng, repository.NewSessionRepository(client, time.Hour), records), records
}

func defaultEngine() *stubEngine {
	return &stubEngine{
		crawlHTML: "<html><body></body></html>",
		rationale: "heatmap analysis",
		suggestions: []review.Suggestion{
			{ID: "suggestion-0", Title: "Trust badge", Description: "Design - .cta", Impact: review.ImpactHigh},
			{ID: "suggestion-1", Title: "Urgency copy", Description: "Copy - .pdp", Impact: review.ImpactMedium},
		},
		variant: &engine.Variant{ID: "v1", Title: "Variant", Description: "Regenerated copy", Impact: "medium"},
	}
}

func TestStartAudit_CreatesSessionAndRecord(t *testing.T) {
	svc, records := newTestService(t, defaultEngine())
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "signups")
	require.NoError(t, err)
	assert.Equal(t, review.Counts{Pending: 2}, sess.Counts())
	assert.Equal(t, "heatmap analysis", sess.Rationale)

	got, err := svc.Session(ctx, testShop, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	require.Len(t, records.inserted, 1)
	assert.Equal(t, sess.ID, records.inserted[0].ID)
	assert.Equal(t, review.AuditDraft, records.inserted[0].Status)
}

func TestStartAudit_Validation(t *testing.T) {
	svc, _ := newTestService(t, defaultEngine())

	_, err := svc.StartAudit(context.Background(), testShop, "", "goal")
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = svc.StartAudit(context.Background(), testShop, "https://shop/p", "  ")
	assert.ErrorIs(t, err, ErrMissingGoal)
}

func TestStartAudit_EngineFailureLeavesNothing(t *testing.T) {
	eng := defaultEngine()
	eng.suggestErr = &engine.Error{Operation: "suggest", Status: http.StatusInternalServerError}
	svc, records := newTestService(t, eng)

	_, err := svc.StartAudit(context.Background(), testShop, "https://shop/p", "goal")
	require.Error(t, err)
	assert.Empty(t, records.inserted)
}

func TestActiveSessions_PerShop(t *testing.T) {
	svc, _ := newTestService(t, defaultEngine())
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)

	ids, err := svc.ActiveSessions(ctx, testShop)
	require.NoError(t, err)
	assert.Equal(t, []string{sess.ID}, ids)

	ids, err = svc.ActiveSessions(ctx, shop.Domain("other-store.myshopify.com"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSession_ShopOwnership(t *testing.T) {
	svc, _ := newTestService(t, defaultEngine())
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)

	_, err = svc.Session(ctx, shop.Domain("other-store.myshopify.com"), sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestReviewOperations_Persist(t *testing.T) {
	svc, _ := newTestService(t, defaultEngine())
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)

	_, err = svc.Accept(ctx, testShop, sess.ID, "suggestion-0")
	require.NoError(t, err)
	_, err = svc.Reject(ctx, testShop, sess.ID, "suggestion-1")
	require.NoError(t, err)
	_, err = svc.Edit(ctx, testShop, sess.ID, "suggestion-0", "edited copy")
	require.NoError(t, err)
	_, err = svc.ToggleTag(ctx, testShop, sess.ID, "suggestion-0", review.TagQuickWin)
	require.NoError(t, err)

	got, err := svc.Session(ctx, testShop, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Counts{Accepted: 1, Rejected: 1}, got.Counts())
	assert.Contains(t, got.AppliedDocument(), "edited copy")
	assert.True(t, got.Suggestions[0].HasTag(review.TagQuickWin))

	_, err = svc.UnsetStatus(ctx, testShop, sess.ID, "suggestion-1")
	require.NoError(t, err)
	got, err = svc.Session(ctx, testShop, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Counts{Accepted: 1, Pending: 1}, got.Counts())
}

func TestRegenerate_SeedsEffectiveText(t *testing.T) {
	eng := defaultEngine()
	svc, _ := newTestService(t, eng)
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)

	// First regenerate seeds with the original description.
	_, err = svc.Regenerate(ctx, testShop, sess.ID, "suggestion-0")
	require.NoError(t, err)
	assert.Equal(t, "Design - .cta", eng.variantSeed)

	// The next one seeds with the installed overlay.
	_, err = svc.Regenerate(ctx, testShop, sess.ID, "suggestion-0")
	require.NoError(t, err)
	assert.Equal(t, "Regenerated copy", eng.variantSeed)

	got, err := svc.Session(ctx, testShop, sess.ID)
	require.NoError(t, err)
	text, err := got.EffectiveDescription("suggestion-0")
	require.NoError(t, err)
	assert.Equal(t, "Regenerated copy", text)
}

func TestRegenerate_FailureLeavesSessionUntouched(t *testing.T) {
	eng := defaultEngine()
	svc, _ := newTestService(t, eng)
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, testShop, sess.ID, "suggestion-0")
	require.NoError(t, err)
	_, err = svc.Edit(ctx, testShop, sess.ID, "suggestion-0", "my edit")
	require.NoError(t, err)

	before, err := svc.Session(ctx, testShop, sess.ID)
	require.NoError(t, err)
	beforeJSON, err := json.Marshal(before)
	require.NoError(t, err)

	eng.variantsErr = &engine.Error{Operation: "variants", Status: http.StatusBadGateway}
	_, err = svc.Regenerate(ctx, testShop, sess.ID, "suggestion-0")
	require.Error(t, err)

	after, err := svc.Session(ctx, testShop, sess.ID)
	require.NoError(t, err)
	afterJSON, err := json.Marshal(after)
	require.NoError(t, err)
	assert.JSONEq(t, string(beforeJSON), string(afterJSON))
}

func TestRegenerateAll_ResetsState(t *testing.T) {
	eng := defaultEngine()
	svc, _ := newTestService(t, eng)
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, testShop, sess.ID, "suggestion-0")
	require.NoError(t, err)

	eng.rationale = "fresh look"
	eng.suggestions = []review.Suggestion{{ID: "suggestion-0", Title: "New idea", Description: "Copy - .hero", Impact: review.ImpactLow}}

	got, err := svc.RegenerateAll(ctx, testShop, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, review.Counts{Pending: 1}, got.Counts())
	assert.Equal(t, "fresh look", got.Rationale)
	assert.Empty(t, got.Overlays)
}

func TestExport_AcceptedWithEffectiveText(t *testing.T) {
	svc, _ := newTestService(t, defaultEngine())
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)
	_, err = svc.Accept(ctx, testShop, sess.ID, "suggestion-0")
	require.NoError(t, err)
	_, err = svc.Edit(ctx, testShop, sess.ID, "suggestion-0", "final copy")
	require.NoError(t, err)

	export, err := svc.Export(ctx, testShop, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://shop/p", export.URL)

	accepted, ok := export.Suggestions.([]review.Suggestion)
	require.True(t, ok)
	require.Len(t, accepted, 1)
	assert.Equal(t, "final copy", accepted[0].Description)
}

func TestFinalize_LocksSession(t *testing.T) {
	svc, records := newTestService(t, defaultEngine())
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, testShop, sess.ID)
	assert.ErrorIs(t, err, review.ErrNothingAccepted)

	_, err = svc.Accept(ctx, testShop, sess.ID, "suggestion-0")
	require.NoError(t, err)

	got, err := svc.Finalize(ctx, testShop, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, review.AuditReviewed, got.Status)
	assert.Equal(t, []string{sess.ID}, records.finalized)

	_, err = svc.Accept(ctx, testShop, sess.ID, "suggestion-1")
	assert.ErrorIs(t, err, review.ErrAuditFinalized)
}

func TestDiscard(t *testing.T) {
	svc, _ := newTestService(t, defaultEngine())
	ctx := context.Background()

	sess, err := svc.StartAudit(ctx, testShop, "https://shop/p", "goal")
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, testShop, sess.ID))
	_, err = svc.Session(ctx, testShop, sess.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestHistory_NilStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := NewService(defaultEngine(), repository.NewSessionRepository(client, time.Hour), nil)
	records, err := svc.History(context.Background(), testShop, 10)
	require.NoError(t, err)
	assert.Nil(t, records)

	// StartAudit still works without a history store.
	_, err = svc.StartAudit(context.Background(), testShop, "https://shop/p", "goal")
	assert.NoError(t, err)
}
