package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/starspin/core"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleEstimatePeriod(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	starID := request.GetString("star_id", "")
	if starID == "" {
		return mcp.NewToolResultError("star_id is required"), nil
	}
	if h.mgr == nil {
		return mcp.NewToolResultError("light curve storage is not initialized"), nil
	}

	cfg := h.baseCfg.Clone()
	if m := request.GetString("mission", ""); m != "" {
		cfg.Mission = m
	}
	if s := request.GetInt("sector", 0); s > 0 {
		cfg.Sector = s
	}
	if a := request.GetString("author", ""); a != "" {
		cfg.Author = a
	}

	report, err := core.EstimateStar(core.WithSuppressHeader(ctx), cfg, h.mgr, starID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("estimate failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleReconcilePeriods(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if _, ok := args["ls_period"]; !ok {
		return mcp.NewToolResultError("ls_period is required"), nil
	}
	lsPeriod := request.GetFloat("ls_period", 0)

	var acfPeriod *float64
	if _, ok := args["acf_period"]; ok {
		v := request.GetFloat("acf_period", 0)
		acfPeriod = &v
	}

	report, err := core.ReconcilePeriods(lsPeriod, acfPeriod, h.baseCfg.Engine)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid periods: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleResultsStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.mgr == nil || h.mgr.GetResultStore() == nil {
		return mcp.NewToolResultError("result tracking is disabled. Set --result-backend to enable it"), nil
	}

	status, err := h.mgr.GetResultStore().GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read result status: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
