package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/audit-ai/cro-backend/internal/audit/repository"
)

// Scheduler runs the nightly audit-record retention sweep. Session state in
// Redis expires on its own TTL; only the Postgres history needs purging.
type Scheduler struct {
	records   *repository.RecordRepository
	retention time.Duration
	cron      *cron.Cron
}

func NewScheduler(records *repository.RecordRepository, retentionDays int) *Scheduler {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Scheduler{
		records:   records,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start initializes cron tasks (nightly at 12:00AM)
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		s.runRetentionSweep()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Cron scheduler started (retention sweep nightly at 12:00AM)")
	c.Start()
	s.cron = c
}

// Stop halts scheduled jobs; the returned wait is ignored because the sweep
// is idempotent.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) runRetentionSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.retention)
	purged, err := s.records.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("Retention sweep failed: %v", err)
		return
	}
	log.Printf("Retention sweep completed: purged %d audit records older than %s", purged, cutoff.Format(time.RFC3339))
}
