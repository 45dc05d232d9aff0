package engine

import "fmt"

// PageData is the crawl result for one page URL. HTML is the raw page
// content used as the session's original document.
type PageData struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	HTML          string   `json:"html,omitempty"`
	PageType      string   `json:"page_type,omitempty"`
	ScreenshotURL string   `json:"screenshot_url,omitempty"`
	Headings      []string `json:"headings,omitempty"`
	CTAs          []string `json:"ctas,omitempty"`
	Forms         []string `json:"forms,omitempty"`
}

type crawlRequest struct {
	URL  string `json:"url"`
	Shop string `json:"shop"`
}

type suggestRequest struct {
	HTML string `json:"html"`
	Goal string `json:"goal"`
	Shop string `json:"shop,omitempty"`
}

// suggestResponse is the raw engine shape; items are normalized into
// review.Suggestion at this boundary.
type suggestResponse struct {
	Rationale   string `json:"rationale"`
	Suggestions []struct {
		Text   string `json:"text"`
		Type   string `json:"type"`
		Target string `json:"target"`
		Impact string `json:"impact"`
	} `json:"suggestions"`
}

type variantRequest struct {
	SuggestionID string `json:"suggestion_id"`
	OriginalText string `json:"original_text"`
	Shop         string `json:"shop,omitempty"`
}

// Variant is a regenerated alternative for one suggestion.
type Variant struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

type planRequest struct {
	Goal string `json:"goal"`
	Shop string `json:"shop,omitempty"`
}

// planResponse tolerates the engine's two observed shapes: reasoning vs
// rationale, and suggestion items carrying either text or title/description.
type planResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Plan        string `json:"plan,omitempty"`
	Reasoning   string `json:"reasoning,omitempty"`
	Rationale   string `json:"rationale,omitempty"`
	Suggestions []struct {
		Text        string `json:"text,omitempty"`
		Title       string `json:"title,omitempty"`
		Description string `json:"description,omitempty"`
		Rationale   string `json:"rationale,omitempty"`
		Impact      string `json:"impact,omitempty"`
		Category    string `json:"category,omitempty"`
	} `json:"suggestions,omitempty"`
}

// PlanIdea is one normalized idea from a strategy plan.
type PlanIdea struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Category    string `json:"category,omitempty"`
}

// PlanResult is the normalized strategy plan.
type PlanResult struct {
	Plan      string     `json:"plan,omitempty"`
	Reasoning string     `json:"reasoning,omitempty"`
	Ideas     []PlanIdea `json:"ideas,omitempty"`
}

// Error is a non-success response from the insight engine. The triggering
// operation is aborted and prior state is left unchanged.
type Error struct {
	Operation string
	Status    int
	Body      string
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine %s failed with status %d", e.Operation, e.Status)
}
