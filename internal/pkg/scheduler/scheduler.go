// Package scheduler runs the recurring maintenance jobs. Today that is one
// job: sweeping the stored subscription status column so expired rows stop
// matching active-status queries. Reads never trust that column, the sweep
// only keeps the index honest.
package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rsinghal/paperroute/app/repository"
)

// expirySpec runs shortly after midnight, once the previous day is over.
const expirySpec = "15 0 * * *"

// Scheduler owns the cron runner and the repositories its jobs work on.
type Scheduler struct {
	cron  *cron.Cron
	repos *repository.Repositories
}

// New creates a scheduler on the given repositories.
func New(repos *repository.Repositories) *Scheduler {
	return &Scheduler{cron: cron.New(), repos: repos}
}

// Start registers the jobs and launches the cron runner. The expiry sweep
// also runs once immediately so a restart does not leave stale rows until
// the next midnight.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(expirySpec, s.sweepExpired); err != nil {
		return err
	}
	s.cron.Start()

	go s.sweepExpired()
	return nil
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweepExpired() {
	count, err := s.repos.Subscription.ExpireDue(time.Now())
	if err != nil {
		log.Printf("[Scheduler] expiry sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[Scheduler] expiry sweep: %d subscription(s) marked expired", count)
	}
}
