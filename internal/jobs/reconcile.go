package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/config"
	"github.com/buddyai/buddy-server-go/internal/metrics"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/service"
)

type Reconciler interface {
	ReconcilePending(ctx context.Context) (service.ReconcileResult, error)
}

type IntentCounter interface {
	CountByStatus(ctx context.Context, status model.CallIntentStatus) (int, error)
}

// ReconcileJob retries call provisioning for meetings whose video call was
// never created. Overlapping runs are skipped.
type ReconcileJob struct {
	reconciler Reconciler
	intents    IntentCounter
	metrics    *metrics.Metrics
	schedule   string
	cron       *cron.Cron
}

func NewReconcileJob(reconciler Reconciler, intents IntentCounter, m *metrics.Metrics, schedule string) *ReconcileJob {
	logger := cronLogger{logger: log.Logger}
	return &ReconcileJob{
		reconciler: reconciler,
		intents:    intents,
		metrics:    m,
		schedule:   schedule,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

func (j *ReconcileJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return fmt.Errorf("schedule reconcile job %q: %w", j.schedule, err)
	}
	j.cron.Start()
	log.Info().Str("schedule", j.schedule).Msg("reconcile job started")
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (j *ReconcileJob) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
	log.Info().Msg("reconcile job stopped")
}

func (j *ReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), config.ReconcileTimeout)
	defer cancel()

	result, err := j.reconciler.ReconcilePending(ctx)
	j.metrics.JobRun("reconcile", err)
	if err != nil {
		log.Error().Err(err).Msg("reconcile sweep failed")
		return
	}
	if result.Scanned > 0 {
		log.Info().
			Int("scanned", result.Scanned).
			Int("completed", result.Completed).
			Int("failed", result.Failed).
			Msg("reconcile sweep finished")
	}

	j.recordBacklog(ctx)
}

func (j *ReconcileJob) recordBacklog(ctx context.Context) {
	if j.intents == nil {
		return
	}
	for _, status := range []model.CallIntentStatus{model.CallIntentPending, model.CallIntentFailed} {
		count, err := j.intents.CountByStatus(ctx, status)
		if err != nil {
			log.Warn().Err(err).Str("status", string(status)).Msg("failed to count call intents")
			continue
		}
		j.metrics.SetCallIntents(string(status), count)
	}
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
