package seed

import (
	"context"

	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/common/metrics"
	"contact-seeder/internal/common/observability"
	"contact-seeder/internal/models"
)

// Input is a resolved command line.
type Input struct {
	Count     int    `json:"count"`
	ClassName string `json:"className"`
}

// Fetcher retrieves count raw user records.
type Fetcher interface {
	Fetch(ctx context.Context, count int) ([]models.RawUserRecord, error)
}

// Saver persists a batch of objects.
type Saver interface {
	Name() string
	SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error)
}

// RunRecorder and Notifier are optional post-run hooks.
type RunRecorder interface {
	Record(ctx context.Context, summary *models.RunSummary) error
}

type Notifier interface {
	Notify(ctx context.Context, summary *models.RunSummary) error
}

// Runner executes one seeding run.
type Runner interface {
	Run(ctx context.Context, input *Input) (*models.RunSummary, error)
}

type ServiceDependencies struct {
	Fetcher       Fetcher
	Store         Saver
	Logger        logger.Logger
	Metrics       *metrics.Metrics
	Observability *observability.Observability
	Ledger        RunRecorder
	Notifier      Notifier
}
