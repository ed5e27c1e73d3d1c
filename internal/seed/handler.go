package seed

import (
	"context"
	"fmt"

	"contact-seeder/internal/common/config"
	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/models"
)

type Handler struct {
	config  *Config
	logger  logger.Logger
	service Runner
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	Service      Runner
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	seedConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := seedConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed configuration: %w", err)
	}
	if opts.Service == nil {
		return nil, fmt.Errorf("service is required")
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:  seedConfig,
		logger:  loggerInstance,
		service: opts.Service,
	}, nil
}

// Handle resolves args, runs the service and logs exactly one terminal line:
// "done" on success or "error: <reason>" on failure.
func (h *Handler) Handle(ctx context.Context, args []string) (*models.RunSummary, error) {
	input, err := ResolveArgs(args, h.config)
	if err != nil {
		h.fail(err, nil)
		return nil, err
	}

	summary, err := h.service.Run(ctx, input)
	if err != nil {
		h.fail(err, summary)
		return summary, err
	}

	fields := map[string]interface{}{}
	if summary != nil {
		fields["runId"] = summary.RunID
		fields["saved"] = summary.SavedCount
		fields["durationMs"] = summary.Duration.Milliseconds()
	}
	h.logger.Info("done", fields)
	return summary, nil
}

func (h *Handler) fail(err error, summary *models.RunSummary) {
	stdErr := errors.Normalize(err)
	fields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"category":  errors.GetErrorCategory(stdErr.Code),
	}
	if summary != nil {
		fields["runId"] = summary.RunID
	}
	h.logger.Error("error: "+err.Error(), fields)
}

func (h *Handler) GetConfig() *Config {
	return h.config
}
