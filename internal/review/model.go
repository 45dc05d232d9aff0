package review

import "strings"

// Impact is the informational weight of a suggestion. It never affects the
// review lifecycle.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// NormalizeImpact lower-cases an engine-provided impact value and falls back
// to medium for anything outside the known set.
func NormalizeImpact(v string) Impact {
	switch Impact(strings.ToLower(strings.TrimSpace(v))) {
	case ImpactHigh:
		return ImpactHigh
	case ImpactLow:
		return ImpactLow
	default:
		return ImpactMedium
	}
}

// Status is the per-suggestion review status
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// AuditStatus constants
const (
	AuditDraft    = "draft"
	AuditReviewed = "reviewed"
)

// Tag vocabulary for suggestion annotations
const (
	TagQuickWin   = "quick-win"
	TagNeedsDev   = "needs-dev"
	TagCopyChange = "copy-change"
	TagDesign     = "design"
)

// KnownTag reports whether id belongs to the fixed tag vocabulary.
func KnownTag(id string) bool {
	switch id {
	case TagQuickWin, TagNeedsDev, TagCopyChange, TagDesign:
		return true
	}
	return false
}

// Suggestion is one recommended change to a page
type Suggestion struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      Impact   `json:"impact"`
	Tags        []string `json:"tags,omitempty"`
}

// HasTag reports whether the suggestion carries tagID.
func (s *Suggestion) HasTag(tagID string) bool {
	for _, t := range s.Tags {
		if t == tagID {
			return true
		}
	}
	return false
}

// Counts aggregates review statuses over a session. Accepted + Rejected +
// Pending always equals the number of suggestions.
type Counts struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}
