package seed

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/common/metrics"
	"contact-seeder/internal/common/observability"
	"contact-seeder/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ==========================
// Mocks
// ==========================

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, count int) ([]models.RawUserRecord, error) {
	args := m.Called(ctx, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RawUserRecord), args.Error(1)
}

type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) Name() string { return "mock" }

func (m *MockSaver) SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	args := m.Called(ctx, className, objects)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SaveResult), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, summary *models.RunSummary) error {
	return m.Called(ctx, summary).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, summary *models.RunSummary) error {
	return m.Called(ctx, summary).Error(0)
}

// ==========================
// Helpers
// ==========================

func users(names ...string) []models.RawUserRecord {
	out := make([]models.RawUserRecord, 0, len(names)/2)
	for i := 0; i+1 < len(names); i += 2 {
		out = append(out, models.RawUserRecord{
			Name: &models.UserName{First: names[i], Last: names[i+1]},
		})
	}
	return out
}

func saved(n int) []models.SaveResult {
	out := make([]models.SaveResult, n)
	for i := range out {
		out[i] = models.SaveResult{ObjectID: "obj" + string(rune('a'+i)), CreatedAt: time.Now()}
	}
	return out
}

func newTestService(t *testing.T, fetcher Fetcher, saver Saver, extra func(*ServiceDependencies)) *Service {
	t.Helper()
	deps := ServiceDependencies{
		Fetcher: fetcher,
		Store:   saver,
		Logger:  logger.NewTestLogger(t),
	}
	if extra != nil {
		extra(&deps)
	}
	return NewService(deps)
}

// ==========================
// Tests
// ==========================

func TestService_Run_Success(t *testing.T) {
	fetcher := new(MockFetcher)
	saver := new(MockSaver)
	m := metrics.New()

	fetcher.On("Fetch", mock.Anything, 3).Return(users("jane", "doe", "JOHN", "SMITH", "élodie", "martin"), nil)
	saver.On("SaveAll", mock.Anything, "Contact", mock.MatchedBy(func(objs []models.OutputObject) bool {
		if len(objs) != 3 {
			return false
		}
		for _, o := range objs {
			if o.ClassName != "Contact" || o.Fields.Name == "" {
				return false
			}
		}
		return objs[0].Fields.Name == "Jane Doe" &&
			objs[1].Fields.Name == "John Smith" &&
			objs[2].Fields.Name == "éLodie Martin"
	})).Return(saved(3), nil).Once()

	svc := newTestService(t, fetcher, saver, func(d *ServiceDependencies) { d.Metrics = m })

	summary, err := svc.Run(context.Background(), &Input{Count: 3, ClassName: "Contact"})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.RequestedCount)
	assert.Equal(t, 3, summary.FetchedCount)
	assert.Equal(t, 3, summary.SavedCount)
	assert.Equal(t, "mock", summary.Backend)
	assert.NotEmpty(t, summary.RunID)
	assert.Empty(t, summary.Error)

	fetcher.AssertExpectations(t)
	saver.AssertExpectations(t)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsFetched.WithLabelValues("Contact")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ObjectsSaved.WithLabelValues("Contact", "mock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("completed", "")))
}

func TestService_Run_ZeroCount(t *testing.T) {
	fetcher := new(MockFetcher)
	saver := new(MockSaver)
	svc := newTestService(t, fetcher, saver, nil)

	summary, err := svc.Run(context.Background(), &Input{Count: 0, ClassName: "Contact"})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, summary.Status)
	assert.Zero(t, summary.SavedCount)

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	saver.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_FetchFails(t *testing.T) {
	fetcher := new(MockFetcher)
	saver := new(MockSaver)
	m := metrics.New()

	fetchErr := errors.NewUpstreamRequestError("randomuser", stderrors.New("status 503"))
	fetcher.On("Fetch", mock.Anything, 5).Return(nil, fetchErr)

	svc := newTestService(t, fetcher, saver, func(d *ServiceDependencies) { d.Metrics = m })

	summary, err := svc.Run(context.Background(), &Input{Count: 5, ClassName: "Contact"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamRequestFailed))
	assert.Equal(t, models.RunStatusFailed, summary.Status)
	assert.Contains(t, summary.Error, "status 503")

	saver.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("failed", "UPSTREAM_REQUEST_FAILED")))
}

func TestService_Run_MalformedRecordSkipsSave(t *testing.T) {
	fetcher := new(MockFetcher)
	saver := new(MockSaver)

	recs := append(users("jane", "doe"), models.RawUserRecord{})
	fetcher.On("Fetch", mock.Anything, 2).Return(recs, nil)

	svc := newTestService(t, fetcher, saver, nil)

	_, err := svc.Run(context.Background(), &Input{Count: 2, ClassName: "Contact"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamResponseInvalid))
	saver.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Run_SaveFails(t *testing.T) {
	fetcher := new(MockFetcher)
	saver := new(MockSaver)

	fetcher.On("Fetch", mock.Anything, 2).Return(users("jane", "doe", "john", "smith"), nil)
	saver.On("SaveAll", mock.Anything, "Contact", mock.Anything).
		Return(nil, errors.NewRemoteWriteError("parse", stderrors.New("unauthorized")))

	svc := newTestService(t, fetcher, saver, nil)

	summary, err := svc.Run(context.Background(), &Input{Count: 2, ClassName: "Contact"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeRemoteWriteFailed))
	assert.Equal(t, models.RunStatusFailed, summary.Status)
	assert.Equal(t, 2, summary.FetchedCount)
	assert.Zero(t, summary.SavedCount)
}

func TestService_Run_StepsInOrder(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs, err := observability.New("seed-test", prometheus.NewRegistry(), sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	fetcher := new(MockFetcher)
	saver := new(MockSaver)
	fetcher.On("Fetch", mock.Anything, 1).Return(users("ada", "lovelace"), nil)
	saver.On("SaveAll", mock.Anything, "Person", mock.Anything).Return(saved(1), nil)

	svc := newTestService(t, fetcher, saver, func(d *ServiceDependencies) { d.Observability = obs })

	_, err = svc.Run(context.Background(), &Input{Count: 1, ClassName: "Person"})
	require.NoError(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 3)
	assert.Equal(t, "seed.fetch", ended[0].Name())
	assert.Equal(t, "seed.transform", ended[1].Name())
	assert.Equal(t, "seed.save", ended[2].Name())
}

func TestService_Run_HookFailuresDoNotChangeOutcome(t *testing.T) {
	fetcher := new(MockFetcher)
	saver := new(MockSaver)
	ledger := new(MockRecorder)
	notifier := new(MockNotifier)

	fetcher.On("Fetch", mock.Anything, 1).Return(users("ada", "lovelace"), nil)
	saver.On("SaveAll", mock.Anything, "Contact", mock.Anything).Return(saved(1), nil)
	ledger.On("Record", mock.Anything, mock.MatchedBy(func(s *models.RunSummary) bool {
		return s.Status == models.RunStatusCompleted && s.SavedCount == 1
	})).Return(stderrors.New("redis down"))
	notifier.On("Notify", mock.Anything, mock.Anything).Return(stderrors.New("sns down"))

	svc := newTestService(t, fetcher, saver, func(d *ServiceDependencies) {
		d.Ledger = ledger
		d.Notifier = notifier
	})

	summary, err := svc.Run(context.Background(), &Input{Count: 1, ClassName: "Contact"})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, summary.Status)

	ledger.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_Run_HooksSeeFailedRuns(t *testing.T) {
	fetcher := new(MockFetcher)
	saver := new(MockSaver)
	ledger := new(MockRecorder)

	fetcher.On("Fetch", mock.Anything, 4).Return(nil, errors.NewUpstreamRequestError("randomuser", stderrors.New("timeout")))
	ledger.On("Record", mock.Anything, mock.MatchedBy(func(s *models.RunSummary) bool {
		return s.Status == models.RunStatusFailed && s.Error != ""
	})).Return(nil)

	svc := newTestService(t, fetcher, saver, func(d *ServiceDependencies) { d.Ledger = ledger })

	_, err := svc.Run(context.Background(), &Input{Count: 4, ClassName: "Contact"})
	require.Error(t, err)
	ledger.AssertExpectations(t)
}
