package contract

import (
	"context"

	"github.com/huangsam/starspin/schema"
	"github.com/stretchr/testify/mock"
)

// MockLightCurveProvider is a mock implementation of LightCurveProvider for testing.
type MockLightCurveProvider struct {
	mock.Mock
}

var _ LightCurveProvider = &MockLightCurveProvider{} // Compile-time check

// Fetch implements the LightCurveProvider interface.
func (m *MockLightCurveProvider) Fetch(ctx context.Context, query schema.LightCurveQuery) (*schema.TimeSeries, error) {
	args := m.Called(ctx, query)
	ts, _ := args.Get(0).(*schema.TimeSeries)
	return ts, args.Error(1)
}

// MockRenderer is a mock implementation of Renderer for testing.
type MockRenderer struct {
	mock.Mock
}

var _ Renderer = &MockRenderer{} // Compile-time check

// Render implements the Renderer interface.
func (m *MockRenderer) Render(ctx context.Context, result schema.StarResult, binned *schema.TimeSeries) (string, error) {
	args := m.Called(ctx, result, binned)
	return args.String(0), args.Error(1)
}

// MockArtifactSink is a mock implementation of ArtifactSink for testing.
type MockArtifactSink struct {
	mock.Mock
}

var _ ArtifactSink = &MockArtifactSink{} // Compile-time check

// Put implements the ArtifactSink interface.
func (m *MockArtifactSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, name, contentType, data)
	return args.String(0), args.Error(1)
}

// Describe implements the ArtifactSink interface.
func (m *MockArtifactSink) Describe() string {
	return m.Called().String(0)
}
