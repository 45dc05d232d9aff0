package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audit-ai/cro-backend/internal/engine"
	"github.com/audit-ai/cro-backend/internal/shop"
	"github.com/audit-ai/cro-backend/internal/strategy/repository"
)

const testShop = shop.Domain("test-store.myshopify.com")

type stubPlanner struct {
	plan *engine.PlanResult
	err  error
	goal string
}

func (p *stubPlanner) Plan(ctx context.Context, d shop.Domain, goal string) (*engine.PlanResult, error) {
	p.goal = goal
	if p.err != nil {
		return nil, p.err
	}
	return p.plan, nil
}

type memoryPrompts struct {
	saved   []repository.Prompt
	saveErr error
}

func (m *memoryPrompts) Save(ctx context.Context, shopDomain, text string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, repository.Prompt{Shop: shopDomain, Text: text, CreatedAt: time.Now()})
	return nil
}

func (m *memoryPrompts) Recent(ctx context.Context, shopDomain string, limit int) ([]repository.Prompt, error) {
	return m.saved, nil
}

func TestGeneratePlan(t *testing.T) {
	planner := &stubPlanner{plan: &engine.PlanResult{
		Reasoning: "mobile traffic dominates",
		Ideas:     []engine.PlanIdea{{Title: "Sticky add to cart", Description: "Pin the CTA on scroll"}},
	}}
	prompts := &memoryPrompts{}
	svc := NewService(planner, prompts)

	plan, err := svc.GeneratePlan(context.Background(), testShop, "lift mobile conversion")
	require.NoError(t, err)
	assert.Equal(t, "mobile traffic dominates", plan.Reasoning)
	assert.Equal(t, "lift mobile conversion", planner.goal)

	require.Len(t, prompts.saved, 1)
	assert.Equal(t, testShop.String(), prompts.saved[0].Shop)
	assert.Equal(t, "lift mobile conversion", prompts.saved[0].Text)
}

func TestGeneratePlan_EmptyGoal(t *testing.T) {
	svc := NewService(&stubPlanner{}, nil)
	_, err := svc.GeneratePlan(context.Background(), testShop, "   ")
	assert.ErrorIs(t, err, ErrMissingGoal)
}

func TestGeneratePlan_PlannerError(t *testing.T) {
	planner := &stubPlanner{err: errors.New("engine down")}
	prompts := &memoryPrompts{}
	svc := NewService(planner, prompts)

	_, err := svc.GeneratePlan(context.Background(), testShop, "goal")
	require.Error(t, err)
	assert.Empty(t, prompts.saved)
}

func TestGeneratePlan_PromptSaveBestEffort(t *testing.T) {
	planner := &stubPlanner{plan: &engine.PlanResult{Reasoning: "ok"}}
	prompts := &memoryPrompts{saveErr: errors.New("db down")}
	svc := NewService(planner, prompts)

	plan, err := svc.GeneratePlan(context.Background(), testShop, "goal")
	require.NoError(t, err)
	assert.Equal(t, "ok", plan.Reasoning)
}

func TestRecentPrompts_NilStore(t *testing.T) {
	svc := NewService(&stubPlanner{}, nil)
	got, err := svc.RecentPrompts(context.Background(), testShop, 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}
