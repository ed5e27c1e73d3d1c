// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/util"

	"contact-seeder/internal/common/config"
	"contact-seeder/internal/common/database"
	httpclient "contact-seeder/internal/common/http"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/ledger"
	"contact-seeder/internal/models"
	"contact-seeder/internal/randomuser"
	"contact-seeder/internal/seed"
	"contact-seeder/internal/store"
)

// These tests talk to the services in configs/config.yaml. Run them with
// SEEDER_E2E=1 once postgres, redis and elasticsearch are up.
func requireE2E(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv("SEEDER_E2E") == "" {
		t.Skip("Skipping E2E tests: set SEEDER_E2E=1 to run against live backends")
	}
}

func fakeRandomUser(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := 0
		_, _ = fmt.Sscanf(r.URL.Query().Get("results"), "%d", &n)
		results := make([]string, n)
		for i := range results {
			results[i] = fmt.Sprintf(`{"name":{"first":"person%d","last":"E2E"}}`, i)
		}
		_, _ = fmt.Fprintf(w, `{"results":[%s]}`, strings.Join(results, ","))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loadBackendConfig(t *testing.T, backend, ruURL string) *config.Config {
	t.Helper()
	t.Setenv("STORE_BACKEND", backend)
	if backend == config.BackendLevelDB {
		t.Setenv("DATABASE_LEVELDB_PATH", filepath.Join(t.TempDir(), "seed.db"))
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.RandomUser.BaseURL = ruURL
	return cfg
}

func TestSeedAllBackends(t *testing.T) {
	requireE2E(t)
	ru := fakeRandomUser(t)
	log := logger.NewTestLogger(t)

	backends := []string{
		config.BackendPostgres,
		config.BackendRedis,
		config.BackendElasticsearch,
		config.BackendLevelDB,
	}

	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			cfg := loadBackendConfig(t, backend, ru.URL)
			st, err := store.New(ctx, cfg, log)
			require.NoError(t, err)

			svc := seed.NewService(seed.ServiceDependencies{
				Fetcher: randomuser.NewClient(cfg.RandomUser.BaseURL, randomuser.Options{},
					httpclient.NewClient(10*time.Second, "contact-seeder-e2e"), log),
				Store:  st,
				Logger: log,
			})

			className := fmt.Sprintf("E2E%d", time.Now().UnixNano())
			summary, err := svc.Run(ctx, &seed.Input{Count: 5, ClassName: className})
			require.NoError(t, err)
			assert.Equal(t, 5, summary.SavedCount)

			assert.Equal(t, 5, countPersisted(t, ctx, cfg, st, className))
		})
	}
}

// countPersisted reads back through a separate connection. It closes st.
func countPersisted(t *testing.T, ctx context.Context, cfg *config.Config, st store.Store, className string) int {
	t.Helper()

	switch s := st.(type) {
	case *store.PostgresStore:
		require.NoError(t, st.Close())
		db, err := database.NewPostgres(ctx, cfg.Database.Postgres)
		require.NoError(t, err)
		defer db.Close()

		var n int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE class_name = $1`, cfg.Database.Postgres.Table)
		require.NoError(t, db.QueryRowContext(ctx, query, className).Scan(&n))
		return n

	case *store.RedisStore:
		defer st.Close()
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
		require.NoError(t, err)
		defer rdb.Close()

		n, err := rdb.SCard(ctx, s.IndexKey(className)).Result()
		require.NoError(t, err)
		return int(n)

	case *store.ElasticsearchStore:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		require.NoError(t, err)

		res, err := es.Count(es.Count.WithContext(ctx), es.Count.WithIndex(s.IndexName(className)))
		require.NoError(t, err)
		defer res.Body.Close()
		require.False(t, res.IsError(), res.String())

		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		return body.Count

	case *store.LevelDBStore:
		require.NoError(t, st.Close())
		db, err := database.OpenLevelDB(cfg.Database.LevelDB)
		require.NoError(t, err)
		defer db.Close()

		iter := db.NewIterator(util.BytesPrefix(store.Key(className, "")), nil)
		defer iter.Release()
		n := 0
		for iter.Next() {
			n++
		}
		require.NoError(t, iter.Error())
		return n
	}

	t.Fatalf("unexpected store %T", st)
	return 0
}

func TestLedgerRoundTrip(t *testing.T) {
	requireE2E(t)
	ctx := context.Background()

	cfg := loadBackendConfig(t, config.BackendRedis, "")
	rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	rdb.Del(ctx, ledger.Key("E2ELedger"))
	l := ledger.New(rdb, time.Minute)

	last, err := l.Last(ctx, "E2ELedger")
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, l.Record(ctx, &models.RunSummary{
		RunID:      "e2e",
		ClassName:  "E2ELedger",
		SavedCount: 2,
		Status:     models.RunStatusCompleted,
		StartedAt:  time.Now().UTC(),
	}))

	last, err = l.Last(ctx, "E2ELedger")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "E2ELedger", last.ClassName)
	assert.Equal(t, 2, last.SavedCount)
}
