package http

import (
	"github.com/audit-ai/cro-backend/internal/review"
)

type startAuditRequest struct {
	URL  string `json:"url"`
	Goal string `json:"goal"`
}

type editRequest struct {
	Description string `json:"description"`
}

// sessionResponse is the full snapshot the review UI renders from: the
// session itself plus the derived counts and applied-document preview.
type sessionResponse struct {
	Session         *review.Session `json:"session"`
	Counts          review.Counts   `json:"counts"`
	AppliedDocument string          `json:"applied_document"`
}

func newSessionResponse(sess *review.Session) sessionResponse {
	return sessionResponse{
		Session:         sess,
		Counts:          sess.Counts(),
		AppliedDocument: sess.AppliedDocument(),
	}
}
