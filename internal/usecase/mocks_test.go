package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/optimization-report/internal/domain"
)

// MockSceneRepository is a mock of SceneRepository
type MockSceneRepository struct {
	mock.Mock
}

func (m *MockSceneRepository) FetchScenes(ctx context.Context, pointers []string) ([]domain.Scene, error) {
	args := m.Called(ctx, pointers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Scene), args.Error(1)
}

// MockWorldsRepository is a mock of WorldsRepository
type MockWorldsRepository struct {
	mock.Mock
}

func (m *MockWorldsRepository) FetchWorlds(ctx context.Context) ([]domain.World, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.World), args.Error(1)
}

// MockBundleLister is a mock of BundleLister
type MockBundleLister struct {
	mock.Mock
}

func (m *MockBundleLister) ListOptimizedSceneIDs(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

// MockAssetProber is a mock of AssetProber
type MockAssetProber struct {
	mock.Mock
}

func (m *MockAssetProber) HasOptimizedBundle(ctx context.Context, sceneID string) (bool, error) {
	args := m.Called(ctx, sceneID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssetProber) FetchReport(ctx context.Context, sceneID string) (*domain.OptimizationReport, error) {
	args := m.Called(ctx, sceneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OptimizationReport), args.Error(1)
}

// MockReportStore is a mock of ReportStore
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) Put(ctx context.Context, obj domain.Object) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *MockReportStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReportStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetMetadata(ctx context.Context) (*domain.ReportMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportMetadata), args.Error(1)
}

func (m *MockCacheRepository) SetMetadata(ctx context.Context, meta *domain.ReportMetadata, ttl time.Duration) error {
	args := m.Called(ctx, meta, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, owner, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) ReleaseLock(ctx context.Context, key, owner string) error {
	args := m.Called(ctx, key, owner)
	return args.Error(0)
}

// MockHistoryRepository is a mock of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Insert(ctx context.Context, entry *domain.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Prune(ctx context.Context, keep int) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, keep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

// MockMonitoringRepository is a mock of MonitoringRepository
type MockMonitoringRepository struct {
	mock.Mock
}

func (m *MockMonitoringRepository) UpsertHeartbeat(ctx context.Context, hb domain.Heartbeat) error {
	args := m.Called(ctx, hb)
	return args.Error(0)
}

func (m *MockMonitoringRepository) RecordCompletion(ctx context.Context, job domain.JobCompletion) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockMonitoringRepository) RecordQueueDepth(ctx context.Context, depth int, retain int) error {
	args := m.Called(ctx, depth, retain)
	return args.Error(0)
}

func (m *MockMonitoringRepository) LatestQueueSample(ctx context.Context) (*domain.QueueSample, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueSample), args.Error(1)
}

func (m *MockMonitoringRepository) QueueHistory(ctx context.Context, since time.Time) ([]domain.QueueSample, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QueueSample), args.Error(1)
}

func (m *MockMonitoringRepository) ListConsumers(ctx context.Context) ([]domain.Consumer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Consumer), args.Error(1)
}

func (m *MockMonitoringRepository) DeleteStaleConsumers(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMonitoringRepository) RecentProcesses(ctx context.Context, limit int) ([]domain.ProcessRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProcessRecord), args.Error(1)
}

func (m *MockMonitoringRepository) CountSucceededSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *MockMonitoringRepository) DeleteProcessesBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMonitoringRepository) SlowestSucceeded(ctx context.Context, limit int) ([]domain.ProcessRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProcessRecord), args.Error(1)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, maxCount int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, maxCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}
