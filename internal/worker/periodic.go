package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/service"
)

const lockPrefix = "workforce:job:"

// Job outcomes, also used as metric labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
	OutcomePanic   = "panic"
)

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Locker coordinates job runs across replicas.
type Locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// PeriodicDependencies bundles collaborators for the job runner.
type PeriodicDependencies struct {
	Locker  Locker
	LockTTL time.Duration
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Timeout time.Duration
}

// PeriodicJobs runs registered jobs on cron schedules. Overlapping runs of
// one job are skipped locally by the cron chain and across replicas by the
// locker. Errors and panics are logged and never unschedule a job.
type PeriodicJobs struct {
	cron    *cron.Cron
	locker  Locker
	lockTTL time.Duration
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPeriodicJobs constructs the runner.
func NewPeriodicJobs(deps PeriodicDependencies) *PeriodicJobs {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "periodic_jobs"))
	cronLogger := zapCronLogger{logger: logger.Sugar()}

	ctx, cancel := context.WithCancel(context.Background())
	return &PeriodicJobs{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		locker:  deps.Locker,
		lockTTL: deps.LockTTL,
		timeout: deps.Timeout,
		logger:  logger,
		metrics: deps.Metrics,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register schedules job.
func (p *PeriodicJobs) Register(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.Name)
	}
	if _, err := p.cron.AddFunc(job.Spec, func() { p.RunOnce(p.ctx, job) }); err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name, err)
	}
	p.logger.Info("job scheduled", zap.String("job", job.Name), zap.String("spec", job.Spec))
	return nil
}

// Start begins running scheduled jobs in the background.
func (p *PeriodicJobs) Start() {
	p.cron.Start()
}

// Stop cancels in-flight runs and waits for them to return or for ctx.
func (p *PeriodicJobs) Stop(ctx context.Context) {
	p.cancel()
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		p.logger.Warn("periodic jobs did not stop in time")
	}
}

// RunOnce executes job a single time and reports its outcome.
func (p *PeriodicJobs) RunOnce(ctx context.Context, job Job) (outcome string) {
	start := time.Now()
	logger := p.logger.With(zap.String("job", job.Name))
	defer func() {
		p.metrics.ObserveJob(job.Name, outcome, time.Since(start))
	}()

	if p.locker != nil {
		token := uuid.NewString()
		key := lockPrefix + job.Name
		acquired, err := p.locker.AcquireLock(ctx, key, token, p.lockTTL)
		if err != nil {
			logger.Warn("job lock unavailable", zap.Error(err))
			return OutcomeSkipped
		}
		if !acquired {
			logger.Info("job already running elsewhere")
			return OutcomeSkipped
		}
		defer func() {
			if err := p.locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
				logger.Warn("job lock release failed", zap.Error(err))
			}
		}()
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", zap.Any("panic", r))
			outcome = OutcomePanic
		}
	}()

	if err := job.Run(ctx); err != nil {
		logger.Error("job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return OutcomeFailure
	}
	logger.Info("job finished", zap.Duration("elapsed", time.Since(start)))
	return OutcomeSuccess
}

// ForecastRefreshJob refreshes today's and tomorrow's forecasts.
func ForecastRefreshJob(spec string, forecasts *service.ForecastService) Job {
	return Job{
		Name: "forecast-refresh",
		Spec: spec,
		Run: func(ctx context.Context) error {
			summary, err := forecasts.RefreshAll(ctx)
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d channel refreshes failed", summary.Failed, summary.Failed+summary.Succeeded)
			}
			return nil
		},
	}
}

// ScheduleReoptimizeJob reoptimizes every active schedule for today.
func ScheduleReoptimizeJob(spec string, schedules *service.ScheduleService) Job {
	return Job{
		Name: "schedule-reoptimize",
		Spec: spec,
		Run: func(ctx context.Context) error {
			summary, err := schedules.ReoptimizeActive(ctx)
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d schedules failed", summary.Failed, summary.Schedules)
			}
			return nil
		},
	}
}

type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
