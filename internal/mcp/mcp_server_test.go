package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/internal/iocache"
	mcp_internal "github.com/huangsam/starspin/internal/mcp"
	"github.com/huangsam/starspin/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		MaxStars:         10,
		Workers:          1,
		RetrievalTimeout: time.Second,
		Provider:         schema.DirProvider,
		DataDir:          ".",
		Mission:          contract.DefaultMission,
		Sector:           contract.DefaultSector,
		Author:           contract.DefaultAuthor,
		TargetPrefix:     contract.DefaultTargetPrefix,
		Engine:           schema.DefaultEngineConfig(),
		Output:           schema.JSONOut,
		ArtifactBackend:  schema.NoArtifacts,
		CacheBackend:     schema.NoneBackend,
	}
}

func callTool(t *testing.T, cfg *contract.Config, mgr contract.CacheManager, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, mgr)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	// Validation runs before the manager is touched
	var mgr contract.CacheManager

	t.Run("estimate_period missing star_id", func(t *testing.T) {
		res := callTool(t, baseConfig(), mgr, "estimate_period", map[string]any{"star_id": ""})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "star_id is required")
	})

	t.Run("reconcile_periods missing ls_period", func(t *testing.T) {
		res := callTool(t, baseConfig(), mgr, "reconcile_periods", map[string]any{"acf_period": 4.0})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "ls_period is required")
	})

	t.Run("reconcile_periods negative period", func(t *testing.T) {
		res := callTool(t, baseConfig(), mgr, "reconcile_periods", map[string]any{"ls_period": -1.0})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid periods")
	})

	t.Run("results_status disabled", func(t *testing.T) {
		res := callTool(t, baseConfig(), mgr, "results_status", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "result tracking is disabled")
	})
}

func TestReconcilePeriodsTool(t *testing.T) {
	res := callTool(t, baseConfig(), nil, "reconcile_periods", map[string]any{"ls_period": 2.0, "acf_period": 4.0})
	require.False(t, res.IsError, text(res))

	var report schema.ReconcileReport
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	assert.Equal(t, schema.HarmonicCorrected, report.Reconciled.Flag)
	assert.Equal(t, 4.0, report.Reconciled.FinalPeriod)
	require.NotNil(t, report.Ratio)
	assert.Equal(t, 2.0, *report.Ratio)

	res = callTool(t, baseConfig(), nil, "reconcile_periods", map[string]any{"ls_period": 2.0})
	require.False(t, res.IsError, text(res))
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	assert.Equal(t, schema.LSOnly, report.Reconciled.Flag)
}

func TestEstimatePeriodTool(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("time,flux\n")
	for i := range 27 * 48 {
		tm := float64(i) / 48
		fmt.Fprintf(&b, "%.8f,%.8f\n", tm, 1+0.01*math.Sin(2*math.Pi*tm/3.0))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "123_s5.csv"), []byte(b.String()), 0o644))

	cfg := baseConfig()
	cfg.DataDir = dir
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetLightCurveStore").Return(nil)

	// Sector override selects the sector-specific file
	res := callTool(t, cfg, mgr, "estimate_period", map[string]any{"star_id": "123", "sector": 5.0})
	require.False(t, res.IsError, text(res))

	var report schema.EstimateReport
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	assert.Equal(t, 5, report.Query.Sector)
	require.NotNil(t, report.Result)
	assert.InDelta(t, 3.0, report.Result.Reconciled.FinalPeriod, 0.1)
	assert.Equal(t, contract.DefaultSector, cfg.Sector, "base config must not change")

	res = callTool(t, cfg, mgr, "estimate_period", map[string]any{"star_id": "123"})
	require.False(t, res.IsError, text(res))
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	require.NotNil(t, report.Skip)
	assert.Equal(t, schema.SkipNoData, report.Skip.Kind)
}

func TestResultsStatusTool(t *testing.T) {
	store := &iocache.MockResultStore{}
	store.On("GetStatus").Return(schema.ResultStatus{Backend: "sqlite", Connected: true, TotalRuns: 3}, nil).Once()
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(store)

	res := callTool(t, baseConfig(), mgr, "results_status", nil)
	require.False(t, res.IsError, text(res))

	var status schema.ResultStatus
	require.NoError(t, json.Unmarshal([]byte(text(res)), &status))
	assert.Equal(t, 3, status.TotalRuns)
	store.AssertExpectations(t)

	failing := &iocache.MockResultStore{}
	failing.On("GetStatus").Return(schema.ResultStatus{}, errors.New("connection refused"))
	mgr = &iocache.MockCacheManager{}
	mgr.On("GetResultStore").Return(failing)

	res = callTool(t, baseConfig(), mgr, "results_status", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "connection refused")
}
