package seed

import (
	"context"
	"fmt"
	"time"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/common/metrics"
	"contact-seeder/internal/common/observability"
	"contact-seeder/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Service struct {
	fetcher  Fetcher
	store    Saver
	logger   logger.Logger
	metrics  *metrics.Metrics
	obs      *observability.Observability
	ledger   RunRecorder
	notifier Notifier
}

func NewService(deps ServiceDependencies) *Service {
	obs := deps.Observability
	if obs == nil {
		obs = observability.Noop()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Service{
		fetcher:  deps.Fetcher,
		store:    deps.Store,
		logger:   log,
		metrics:  deps.Metrics,
		obs:      obs,
		ledger:   deps.Ledger,
		notifier: deps.Notifier,
	}
}

// Run fetches input.Count records, transforms them and saves them in one batch.
// Fetch, transform and save run strictly in that order; nothing is saved when
// an earlier step fails.
func (s *Service) Run(ctx context.Context, input *Input) (*models.RunSummary, error) {
	start := time.Now()
	summary := &models.RunSummary{
		RunID:          uuid.NewString(),
		ClassName:      input.ClassName,
		RequestedCount: input.Count,
		Backend:        s.store.Name(),
		StartedAt:      start.UTC(),
	}

	log := s.logger.WithFields(map[string]interface{}{
		"runId":     summary.RunID,
		"className": input.ClassName,
		"backend":   summary.Backend,
	})
	log.Info(fmt.Sprintf("Creating %d %s objects", input.Count, input.ClassName), nil)

	err := s.execute(ctx, input, summary, log)

	summary.Duration = time.Since(start)
	if err != nil {
		summary.Status = models.RunStatusFailed
		summary.Error = err.Error()
	} else {
		summary.Status = models.RunStatusCompleted
	}

	s.recordMetrics(summary, err)
	s.afterRun(ctx, summary, log)

	return summary, err
}

func (s *Service) execute(ctx context.Context, input *Input, summary *models.RunSummary, log logger.Logger) error {
	if input.Count == 0 {
		log.Debug("Nothing to create", nil)
		return nil
	}

	var records []models.RawUserRecord
	err := s.step(ctx, "fetch", func(ctx context.Context) error {
		var err error
		records, err = s.fetcher.Fetch(ctx, input.Count)
		return err
	})
	if err != nil {
		return err
	}
	summary.FetchedCount = len(records)
	if s.metrics != nil {
		s.metrics.RecordsFetched.WithLabelValues(input.ClassName).Add(float64(len(records)))
	}

	if len(records) != input.Count {
		log.Warn("Upstream returned a different number of records", map[string]interface{}{
			"requested": input.Count,
			"received":  len(records),
		})
	}

	var objects []models.OutputObject
	err = s.step(ctx, "transform", func(ctx context.Context) error {
		var err error
		objects, err = TransformAll(input.ClassName, records)
		return err
	})
	if err != nil {
		return err
	}

	var results []models.SaveResult
	err = s.step(ctx, "save", func(ctx context.Context) error {
		var err error
		results, err = s.store.SaveAll(ctx, input.ClassName, objects)
		return err
	})
	if err != nil {
		return err
	}
	summary.SavedCount = len(results)
	if s.metrics != nil {
		s.metrics.ObjectsSaved.WithLabelValues(input.ClassName, summary.Backend).Add(float64(len(results)))
	}

	log.Debug("Batch saved", map[string]interface{}{
		"saved": len(results),
	})
	return nil
}

// step runs fn inside a "seed.<name>" span and records its outcome.
func (s *Service) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.obs.StartSpan(ctx, "seed."+name, attribute.String("seed.step", name))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.code", string(errors.CodeOf(err))))
	}
	s.obs.RecordStep(ctx, name, time.Since(start), status)
	return err
}

func (s *Service) recordMetrics(summary *models.RunSummary, err error) {
	if s.metrics == nil {
		return
	}
	code := ""
	if err != nil {
		code = string(errors.CodeOf(err))
	}
	s.metrics.Runs.WithLabelValues(summary.Status, code).Inc()
	s.metrics.RunDuration.WithLabelValues(summary.Backend).Observe(summary.Duration.Seconds())
}

// afterRun feeds the ledger and notifier. Their failures never change the run outcome.
func (s *Service) afterRun(ctx context.Context, summary *models.RunSummary, log logger.Logger) {
	if s.ledger != nil {
		if err := s.ledger.Record(ctx, summary); err != nil {
			log.Warn("Failed to record run", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, summary); err != nil {
			log.Warn("Failed to publish run notification", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
