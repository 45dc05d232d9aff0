package domain

import "time"

// Record is the persisted trace of one audit: who asked, which page, which
// goal, and how it ended. The working review state itself lives in the
// session store and expires; records survive for the dashboard's history.
type Record struct {
	ID          string     `json:"id"`
	Shop        string     `json:"shop"`
	URL         string     `json:"url"`
	Goal        string     `json:"goal"`
	Status      string     `json:"status"` // draft, reviewed
	Rationale   string     `json:"rationale,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

// Export is the downloadable bundle of accepted suggestions for one audit.
type Export struct {
	URL         string    `json:"url"`
	Goal        string    `json:"goal"`
	Timestamp   time.Time `json:"timestamp"`
	Suggestions any       `json:"suggestions"`
}
