package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/config"
	"github.com/buddyai/buddy-server-go/internal/metrics"
)

// Expirer deletes rows whose expiry has passed and reports how many went.
type Expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type CleanupJob struct {
	sessionRepo      Expirer
	verificationRepo Expirer
	metrics          *metrics.Metrics
	interval         time.Duration
	done             chan struct{}
}

func NewCleanupJob(sessionRepo, verificationRepo Expirer, m *metrics.Metrics, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		sessionRepo:      sessionRepo,
		verificationRepo: verificationRepo,
		metrics:          m,
		interval:         interval,
		done:             make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), config.CleanupJobTimeout)
	defer cancel()

	errSessions := j.runCleanup(ctx, "sessions", j.sessionRepo)
	errVerifications := j.runCleanup(ctx, "verifications", j.verificationRepo)

	err := errSessions
	if err == nil {
		err = errVerifications
	}
	j.metrics.JobRun("cleanup", err)
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, repo Expirer) error {
	if repo == nil {
		return nil
	}
	count, err := repo.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
		return err
	}
	if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
	return nil
}
