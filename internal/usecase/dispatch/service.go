// Package dispatch is the orchestrator: it turns one queued notification
// job into independent, best-effort channel deliveries and writes the
// job's terminal status when the fan-out completes.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/observability/tracing"
	"rental-notify/internal/repository"
	"rental-notify/internal/usecase/delivery"

	"go.opentelemetry.io/otel/attribute"
)

const (
	workerPoolTimeout  = 5 * time.Second  // timeout for acquiring a fan-out slot
	channelSendTimeout = 30 * time.Second // timeout for one channel delivery
)

// urgentTopics bypass quiet-hours suppression.
var urgentTopics = map[string]bool{
	"system": true,
}

// Service dispatches persisted jobs to their channels.
type Service interface {
	// Dispatch runs the fan-out for jobID and blocks until every channel
	// delivery finished or timed out. A non-nil error means the job could
	// not even be loaded or its preferences fetched; per-channel failures
	// live in the ledger, not here.
	Dispatch(ctx context.Context, jobID string) error

	// Shutdown waits for in-flight channel deliveries to finish.
	Shutdown(ctx context.Context) error
}

type service struct {
	jobs   repository.JobRepository
	prefs  repository.PreferencesRepository
	worker delivery.Service

	pool chan struct{} // semaphore limiting concurrent channel deliveries
	wg   sync.WaitGroup
	now  func() time.Time
}

// NewService creates the dispatcher. maxConcurrent bounds simultaneous
// channel deliveries across all jobs.
func NewService(
	jobs repository.JobRepository,
	prefs repository.PreferencesRepository,
	worker delivery.Service,
	maxConcurrent int,
) Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &service{
		jobs:   jobs,
		prefs:  prefs,
		worker: worker,
		pool:   make(chan struct{}, maxConcurrent),
		now:    time.Now,
	}
}

func (s *service) Dispatch(ctx context.Context, jobID string) error {
	start := s.now()

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		recordJob("load_failed")
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	prefs, err := s.loadPreferences(ctx, job.Audience.UID)
	if err != nil {
		s.markJob(ctx, jobID, entity.JobStatusFailed)
		recordJob("prefs_failed")
		return fmt.Errorf("load preferences for job %s: %w", jobID, err)
	}

	channels := s.selectChannels(job, prefs)
	payload := renderPayload(job)

	ctx, span := tracing.StartSpan(ctx, "dispatch.fanout")
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.String("job.topic", job.Topic),
		attribute.Int("job.channels", len(channels)),
	)
	defer span.End()

	slog.Info("dispatching job",
		slog.String("job_id", job.ID),
		slog.String("uid", job.Audience.UID),
		slog.String("topic", job.Topic),
		slog.Int("channels", len(channels)))

	var jobWG sync.WaitGroup
	for _, ch := range channels {
		jobWG.Add(1)
		s.wg.Add(1)
		go func(ch entity.Channel) {
			defer jobWG.Done()
			defer s.wg.Done()
			s.deliverChannel(ctx, ch, job, payload)
		}(ch)
	}
	jobWG.Wait()

	s.markJob(ctx, jobID, entity.JobStatusProcessed)
	recordJob("processed")
	observeDispatch(s.now().Sub(start))
	return nil
}

// loadPreferences returns the stored record, lazily persisting defaults on
// first read so later preference edits start from a visible document.
func (s *service) loadPreferences(ctx context.Context, uid string) (*entity.Preferences, error) {
	p, err := s.prefs.Get(ctx, uid)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	p = entity.DefaultPreferences(uid)
	if upsertErr := s.prefs.Upsert(ctx, p); upsertErr != nil {
		slog.Warn("persist default preferences failed",
			slog.String("uid", uid),
			slog.Any("error", upsertErr))
	}
	return p, nil
}

// selectChannels computes requiredChannels ∩ channel opt-in ∩ topic opt-in,
// then applies quiet-hours suppression. In-app always survives suppression;
// urgent topics bypass it entirely.
func (s *service) selectChannels(job *entity.NotificationJob, prefs *entity.Preferences) []entity.Channel {
	quiet := prefs.InQuietHours(s.now()) && !urgentTopics[job.Topic]

	var selected []entity.Channel
	for _, ch := range job.CandidateChannels() {
		switch {
		case !prefs.ChannelEnabled(ch):
			recordSuppressed(ch, "opt_out")
		case !prefs.TopicEnabled(job.Topic):
			recordSuppressed(ch, "topic_opt_out")
		case quiet && ch != entity.ChannelInApp:
			recordSuppressed(ch, "quiet_hours")
		default:
			selected = append(selected, ch)
		}
	}
	return selected
}

// deliverChannel runs one channel delivery inside the shared worker pool.
// Failures are logged only: one channel must never abort the others.
// The delivery context derives from the dispatch context, so the consumer's
// dispatch deadline and cancellation reach in-flight sends; Dispatch waits
// on jobWG, which keeps ctx alive for the whole fan-out.
func (s *service) deliverChannel(ctx context.Context, ch entity.Channel, job *entity.NotificationJob, payload delivery.Payload) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in channel delivery",
				slog.String("job_id", job.ID),
				slog.String("channel", string(ch)),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.pool <- struct{}{}:
		defer func() { <-s.pool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("channel delivery dropped: worker pool full",
			slog.String("job_id", job.ID),
			slog.String("channel", string(ch)))
		recordSuppressed(ch, "pool_full")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, channelSendTimeout)
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "dispatch.deliver")
	span.SetAttributes(
		attribute.String("job.id", job.ID),
		attribute.String("delivery.channel", string(ch)),
	)
	defer span.End()

	out, err := s.worker.Deliver(ctx, ch, delivery.Input{
		JobID:   job.ID,
		UID:     job.Audience.UID,
		Topic:   job.Topic,
		Payload: payload,
	})
	if err != nil {
		slog.Error("channel delivery failed",
			slog.String("job_id", job.ID),
			slog.String("channel", string(ch)),
			slog.Any("error", err))
		return
	}

	slog.Info("channel delivery recorded",
		slog.String("job_id", job.ID),
		slog.String("channel", string(ch)),
		slog.String("delivery_id", out.DeliveryID),
		slog.Bool("ok", out.OK))
}

func (s *service) markJob(ctx context.Context, jobID, status string) {
	if err := s.jobs.UpdateStatus(ctx, jobID, status); err != nil {
		slog.Error("update job status failed",
			slog.String("job_id", jobID),
			slog.String("status", status),
			slog.Any("error", err))
	}
}

// Shutdown waits for in-flight deliveries or the context deadline.
func (s *service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("dispatcher shutdown timeout")
		return ctx.Err()
	}
}
