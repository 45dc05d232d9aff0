package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/audit-ai/cro-backend/internal/engine"
	"github.com/audit-ai/cro-backend/internal/shop"
	"github.com/audit-ai/cro-backend/internal/strategy/repository"
)

var ErrMissingGoal = errors.New("goal is required")

// Planner is the slice of the insight engine the strategy flow needs.
type Planner interface {
	Plan(ctx context.Context, domain shop.Domain, goal string) (*engine.PlanResult, error)
}

// PromptStore keeps previously submitted goal strings. It is a convenience
// cache: the flow works identically without one.
type PromptStore interface {
	Save(ctx context.Context, shopDomain, text string) error
	Recent(ctx context.Context, shopDomain string, limit int) ([]repository.Prompt, error)
}

// Service drives the strategy assistant conversational flow.
type Service struct {
	planner Planner
	prompts PromptStore // optional; nil disables prompt history
}

// NewService creates a new strategy Service.
func NewService(planner Planner, prompts PromptStore) *Service {
	return &Service{planner: planner, prompts: prompts}
}

// GeneratePlan asks the engine for a strategy plan and records the goal in
// the prompt history.
func (s *Service) GeneratePlan(ctx context.Context, sh shop.Domain, goal string) (*engine.PlanResult, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, ErrMissingGoal
	}

	plan, err := s.planner.Plan(ctx, sh, goal)
	if err != nil {
		return nil, err
	}

	if s.prompts != nil {
		if err := s.prompts.Save(ctx, sh.String(), goal); err != nil {
			log.Printf("[warn] operation=generate_plan shop=%s prompt save failed: %v", sh, err)
		}
	}
	return plan, nil
}

// RecentPrompts returns the shop's recent goals, newest first.
func (s *Service) RecentPrompts(ctx context.Context, sh shop.Domain, limit int) ([]repository.Prompt, error) {
	if s.prompts == nil {
		return nil, nil
	}
	return s.prompts.Recent(ctx, sh.String(), limit)
}
