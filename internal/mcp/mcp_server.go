// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the starspin MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Starspin Rotation Period Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: estimate_period ---
	s.AddTool(mcp.NewTool("estimate_period",
		mcp.WithDescription("Estimate the rotation period of one star from its light curve, reconciling the Lomb-Scargle and autocorrelation estimates."),
		mcp.WithString("star_id", mcp.Description("Star identifier, e.g. a TIC number."), mcp.Required()),
		mcp.WithString("mission", mcp.Description("Survey mission of the light curve (defaults to the configured mission).")),
		mcp.WithNumber("sector", mcp.Description("Observing sector (defaults to the configured sector).")),
		mcp.WithString("author", mcp.Description("Pipeline that produced the light curve (defaults to the configured author).")),
	), h.handleEstimatePeriod)

	// --- 2. Tool: reconcile_periods ---
	s.AddTool(mcp.NewTool("reconcile_periods",
		mcp.WithDescription("Merge a spectral period and an optional autocorrelation period into one flagged period."),
		mcp.WithNumber("ls_period", mcp.Description("Lomb-Scargle period in days."), mcp.Required()),
		mcp.WithNumber("acf_period", mcp.Description("Autocorrelation period in days. Omit when the autocorrelation found no peak.")),
	), h.handleReconcilePeriods)

	// --- 3. Tool: results_status ---
	s.AddTool(mcp.NewTool("results_status",
		mcp.WithDescription("Report the batch runs and per-star outcomes recorded in the results store."),
	), h.handleResultsStatus)

	return s
}

// StartMCPServer starts the starspin MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
