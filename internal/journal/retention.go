package journal

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// StartRetentionSweeper starts a cron-based sweeper that deletes journal
// rows older than retentionDays. The schedule is a standard 5-field cron
// expression (minute hour day-of-month month day-of-week),
// e.g. "0 3 * * *" (daily 3am) or "0 3 * * 0" (Sundays 3am).
// The returned stop function halts the sweeper and is safe to call more
// than once; callers should stop the sweeper before closing the store.
func (s *Store) StartRetentionSweeper(schedule string, retentionDays int) (stop func()) {
	noop := func() {}

	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Retention sweep disabled (retention_sweep_schedule not set)")
		return noop
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid retention_sweep_schedule '%s': %v, retention sweep disabled", schedule, err)
		return noop
	}

	log.Printf("Retention sweep scheduled (cron: %s), keeping %d days", schedule, retentionDays)

	done := make(chan struct{})
	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			log.Printf("Next retention sweep at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-done:
				timer.Stop()
				log.Println("Retention sweep stopped")
				return
			case <-timer.C:
			}

			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			deleted, err := s.DeleteOlderThan(cutoff)
			if err != nil {
				log.Printf("Retention sweep error: %v", err)
				continue
			}
			log.Printf("Retention sweep complete deleted=%d cutoff=%s", deleted, cutoff.Format("2006-01-02"))
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
