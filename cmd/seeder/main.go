// cmd/seeder/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	awsnotify "contact-seeder/internal/common/aws"
	"contact-seeder/internal/common/config"
	"contact-seeder/internal/common/database"
	stderrors "contact-seeder/internal/common/errors"
	httpclient "contact-seeder/internal/common/http"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/common/metrics"
	"contact-seeder/internal/common/observability"
	"contact-seeder/internal/ledger"
	"contact-seeder/internal/randomuser"
	"contact-seeder/internal/seed"
	"contact-seeder/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("seeder", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to a YAML config file (default: ./configs/config.yaml)")
	logLevel := flags.String("log-level", "", "override logging.level")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seeder [flags] [count] [className]\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Error("error: " + stderrors.NewConfigInvalidError(err).Error())
		_ = bootLog.Sync()
		return 1
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	obs, closeObs := newObservability(cfg, m, zapLog)
	defer closeObs()
	// runs before Shutdown so the OTel instruments are still collectable
	defer pushMetrics(cfg, m, zapLog)

	st, err := store.New(ctx, cfg, log)
	if err != nil {
		log.Error("error: "+err.Error(), map[string]interface{}{
			"errorCode": string(stderrors.CodeOf(err)),
			"backend":   cfg.Store.Backend,
		})
		return exitCode(cfg)
	}
	defer st.Close()

	hc := httpclient.NewClient(config.GetDuration(cfg.RandomUser.Timeout), cfg.App.Name)
	deps := seed.ServiceDependencies{
		Fetcher: randomuser.NewClient(cfg.RandomUser.BaseURL, randomuser.Options{
			Seed:        cfg.RandomUser.Seed,
			Nationality: cfg.RandomUser.Nationality,
		}, hc, log),
		Store:         st,
		Logger:        log,
		Metrics:       m,
		Observability: obs,
	}

	if cfg.Ledger.Enabled {
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			zapLog.Warn("run ledger disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			deps.Ledger = ledger.New(rdb, time.Duration(cfg.Ledger.TTL)*time.Second)
		}
	}

	if cfg.Notifications.SNS.Enabled {
		notifier, err := awsnotify.NewSNSNotifier(ctx, cfg.Notifications.SNS.Region, cfg.Notifications.SNS.TopicARN)
		if err != nil {
			zapLog.Warn("sns notifications disabled", zap.Error(err))
		} else {
			deps.Notifier = notifier
		}
	}

	handler, err := seed.NewHandler(seed.HandlerOptions{
		AppConfig: cfg,
		Logger:    log,
		Service:   seed.NewService(deps),
	})
	if err != nil {
		log.Error("error: "+err.Error(), nil)
		return exitCode(cfg)
	}

	if _, err := handler.Handle(ctx, flags.Args()); err != nil {
		return exitCode(cfg)
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// exitCode keeps a failed run at status 0 unless seed.fail_exit_code is set.
func exitCode(cfg *config.Config) int {
	if cfg.Seed.FailExitCode {
		return 1
	}
	return 0
}

// newObservability builds the tracer and step meter. Spans go to the
// configured exporter through a batching processor; the returned func
// flushes them and closes the output file.
func newObservability(cfg *config.Config, m *metrics.Metrics, zapLog *zap.Logger) (*observability.Observability, func()) {
	if !cfg.Tracing.Enabled {
		return observability.Noop(), func() {}
	}

	var out io.Writer = os.Stderr
	var file *os.File
	if cfg.Tracing.Output != "" && cfg.Tracing.Exporter == config.TraceExporterStdout {
		f, err := os.OpenFile(cfg.Tracing.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			zapLog.Warn("observability disabled", zap.Error(err))
			return observability.Noop(), func() {}
		}
		file, out = f, f
	}
	closeFile := func() {
		if file != nil {
			_ = file.Close()
		}
	}

	exp, err := observability.NewTraceExporter(cfg.Tracing.Exporter, out)
	if err != nil {
		closeFile()
		zapLog.Warn("observability disabled", zap.Error(err))
		return observability.Noop(), func() {}
	}
	var opts []sdktrace.TracerProviderOption
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	obs, err := observability.New(cfg.Tracing.ServiceName, m.Registry, opts...)
	if err != nil {
		closeFile()
		zapLog.Warn("observability disabled", zap.Error(err))
		return observability.Noop(), func() {}
	}
	return obs, func() {
		obs.Shutdown(context.Background())
		closeFile()
	}
}

func pushMetrics(cfg *config.Config, m *metrics.Metrics, zapLog *zap.Logger) {
	if !cfg.Metrics.Enabled || cfg.Metrics.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.JobName); err != nil {
		zapLog.Warn("metrics push failed", zap.Error(err))
	}
}
