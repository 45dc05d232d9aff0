package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/audit-ai/cro-backend/internal/audit/domain"
	"github.com/audit-ai/cro-backend/internal/review"
)

const (
	sessionKeyPrefix = "audit:session:" // Session data: audit:session:{session_id}
	shopSetPrefix    = "audit:shop:"    // Set of session IDs per shop: audit:shop:{shop}:sessions

	// DefaultSessionTTL bounds how long an unvisited session survives.
	// Sessions are discardable working state, never long-lived records.
	DefaultSessionTTL = 24 * time.Hour
)

// SessionRepository handles Redis operations for review sessions.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new SessionRepository. A zero ttl falls
// back to DefaultSessionTTL.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepository{client: client, ttl: ttl}
}

// Save stores the session and refreshes its TTL.
func (r *SessionRepository) Save(ctx context.Context, sess *review.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	shopKey := r.shopSetKey(sess.Shop)
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.sessionKey(sess.ID), data, r.ttl)
	pipe.SAdd(ctx, shopKey, sess.ID)
	pipe.Expire(ctx, shopKey, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get retrieves a session by id.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*review.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess review.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	// Older payloads omitted empty maps; mutators expect both to exist.
	if sess.ReviewState == nil {
		sess.ReviewState = make(map[string]review.Status, len(sess.Suggestions))
	}
	if sess.Overlays == nil {
		sess.Overlays = make(map[string]string)
	}
	return &sess, nil
}

// ListByShop returns the live session IDs for a shop. IDs whose sessions
// already expired are pruned from the set as a side effect.
func (r *SessionRepository) ListByShop(ctx context.Context, shopDomain string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.shopSetKey(shopDomain)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions for shop: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		exists, err := r.client.Exists(ctx, r.sessionKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("check session: %w", err)
		}
		if exists == 0 {
			r.client.SRem(ctx, r.shopSetKey(shopDomain), id)
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// Delete discards a session.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	sess, err := r.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.sessionKey(sessionID))
	pipe.SRem(ctx, r.shopSetKey(sess.Shop), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func (r *SessionRepository) shopSetKey(shopDomain string) string {
	return fmt.Sprintf("%s%s:sessions", shopSetPrefix, shopDomain)
}
