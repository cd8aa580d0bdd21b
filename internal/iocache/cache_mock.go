package iocache

import (
	"time"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetLightCurveStore implements the CacheManager interface.
func (m *MockCacheManager) GetLightCurveStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetResultStore implements the CacheManager interface.
func (m *MockCacheManager) GetResultStore() contract.ResultStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ResultStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockResultStore is a mock implementation of ResultStore for testing.
type MockResultStore struct {
	mock.Mock
}

var _ contract.ResultStore = &MockResultStore{} // Compile-time check

// BeginRun implements the ResultStore interface.
func (m *MockResultStore) BeginRun(runID string, startTime time.Time, configParams map[string]any) error {
	args := m.Called(runID, startTime, configParams)
	return args.Error(0)
}

// EndRun implements the ResultStore interface.
func (m *MockResultStore) EndRun(runID string, endTime time.Time, attempted, processed, skipped int) error {
	args := m.Called(runID, endTime, attempted, processed, skipped)
	return args.Error(0)
}

// RecordResult implements the ResultStore interface.
func (m *MockResultStore) RecordResult(runID string, position int, row schema.ResultRow) error {
	args := m.Called(runID, position, row)
	return args.Error(0)
}

// RecordSkip implements the ResultStore interface.
func (m *MockResultStore) RecordSkip(runID string, position int, skip schema.SkipRecord) error {
	args := m.Called(runID, position, skip)
	return args.Error(0)
}

// GetStatus implements the ResultStore interface.
func (m *MockResultStore) GetStatus() (schema.ResultStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ResultStatus), args.Error(1)
}

// GetAllRuns implements the ResultStore interface.
func (m *MockResultStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllResults implements the ResultStore interface.
func (m *MockResultStore) GetAllResults() ([]schema.StarResultRecord, error) {
	args := m.Called()
	results, _ := args.Get(0).([]schema.StarResultRecord)
	return results, args.Error(1)
}

// GetRunResults implements the ResultStore interface.
func (m *MockResultStore) GetRunResults(runID string) ([]schema.StarResultRecord, error) {
	args := m.Called(runID)
	results, _ := args.Get(0).([]schema.StarResultRecord)
	return results, args.Error(1)
}

// GetAllSkips implements the ResultStore interface.
func (m *MockResultStore) GetAllSkips() ([]schema.SkipRecordRow, error) {
	args := m.Called()
	skips, _ := args.Get(0).([]schema.SkipRecordRow)
	return skips, args.Error(1)
}

// Close implements the ResultStore interface.
func (m *MockResultStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
