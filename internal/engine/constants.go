package engine

import "time"

const (
	// DefaultTimeout is the standard timeout for suggest/variants/plan calls
	DefaultTimeout = 30 * time.Second

	// CrawlTimeout is for crawl operations, which render the page upstream
	// and can take considerably longer
	CrawlTimeout = 90 * time.Second
)
