package store

import (
	"context"
	"fmt"

	"contact-seeder/internal/common/config"
	"contact-seeder/internal/common/database"
	"contact-seeder/internal/common/errors"
	httpclient "contact-seeder/internal/common/http"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/parse"
)

// New builds the backend selected by cfg.Store.Backend.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	backend := cfg.Store.Backend

	switch backend {
	case config.BackendParse:
		hc := httpclient.NewClient(config.GetDuration(cfg.Parse.Timeout), cfg.App.Name)
		client, err := parse.NewClient(parse.Config{
			ServerURL:   cfg.Parse.ServerURL,
			MountPath:   cfg.Parse.MountPath,
			AppID:       cfg.Parse.AppID,
			ClientKey:   cfg.Parse.ClientKey,
			RESTAPIKey:  cfg.Parse.RESTAPIKey,
			BatchSize:   cfg.Parse.BatchSize,
			Transaction: cfg.Parse.Transaction,
		}, hc, log)
		if err != nil {
			return nil, errors.NewStoreNotConfiguredError(backend, err)
		}
		return NewParseStore(client), nil

	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, errors.NewStoreNotConfiguredError(backend, err)
		}
		s, err := NewPostgresStore(db, cfg.Database.Postgres.Table)
		if err != nil {
			_ = db.Close()
			return nil, errors.NewStoreNotConfiguredError(backend, err)
		}
		return s, nil

	case config.BackendRedis:
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, errors.NewStoreNotConfiguredError(backend, err)
		}
		return NewRedisStore(rdb, cfg.Database.Redis.KeyPrefix), nil

	case config.BackendElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return nil, errors.NewStoreNotConfiguredError(backend, err)
		}
		if err := database.PingElasticsearch(ctx, es); err != nil {
			return nil, errors.NewStoreNotConfiguredError(backend, err)
		}
		return NewElasticsearchStore(es, cfg.Database.Elasticsearch.IndexPrefix), nil

	case config.BackendLevelDB:
		db, err := database.OpenLevelDB(cfg.Database.LevelDB)
		if err != nil {
			return nil, errors.NewStoreNotConfiguredError(backend, err)
		}
		return NewLevelDBStore(db), nil
	}

	return nil, errors.NewStoreNotConfiguredError(backend, fmt.Errorf("unknown backend %q", backend))
}
