package engine

import (
	"fmt"

	"github.com/audit-ai/cro-backend/internal/review"
)

// normalizeSuggestions maps raw engine suggest items 1:1 into canonical
// suggestions: ids are synthesized as suggestion-<index>, the title comes
// from the suggestion text, the description from type and target, and the
// impact is lower-cased with a medium fallback.
func normalizeSuggestions(raw suggestResponse) (string, []review.Suggestion) {
	rationale := raw.Rationale
	if rationale == "" {
		rationale = "No rationale provided"
	}

	suggestions := make([]review.Suggestion, 0, len(raw.Suggestions))
	for i, item := range raw.Suggestions {
		title := item.Text
		if title == "" {
			title = "Suggestion"
		}
		suggestions = append(suggestions, review.Suggestion{
			ID:          fmt.Sprintf("suggestion-%d", i),
			Title:       title,
			Description: fmt.Sprintf("%s - %s", item.Type, item.Target),
			Impact:      review.NormalizeImpact(item.Impact),
		})
	}
	return rationale, suggestions
}

// normalizePlan reconciles the engine's duck-typed plan shapes into one
// canonical result.
func normalizePlan(raw planResponse) *PlanResult {
	reasoning := raw.Reasoning
	if reasoning == "" {
		reasoning = raw.Rationale
	}

	ideas := make([]PlanIdea, 0, len(raw.Suggestions))
	for _, item := range raw.Suggestions {
		title := item.Title
		if title == "" {
			title = item.Text
		}
		if title == "" {
			continue
		}
		description := item.Description
		if description == "" {
			description = item.Rationale
		}
		ideas = append(ideas, PlanIdea{
			Title:       title,
			Description: description,
			Impact:      item.Impact,
			Category:    item.Category,
		})
	}

	return &PlanResult{
		Plan:      raw.Plan,
		Reasoning: reasoning,
		Ideas:     ideas,
	}
}
