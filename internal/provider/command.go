package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// CommandProvider runs an external fetcher for each star and parses the CSV it prints.
// The template is split on whitespace and each argument may reference {id}, {target},
// {mission}, {sector} and {author}. No shell is involved.
// Empty output means the archive has no data for the star.
type CommandProvider struct {
	args []string
}

var _ contract.LightCurveProvider = &CommandProvider{} // Compile-time check

// NewCommandProvider parses the command template.
func NewCommandProvider(template string) (*CommandProvider, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, fmt.Errorf("fetch command template is empty")
	}
	return &CommandProvider{args: args}, nil
}

// Args expands the template for a query.
func (p *CommandProvider) Args(query schema.LightCurveQuery) []string {
	replacer := strings.NewReplacer(
		"{id}", query.StarID,
		"{target}", query.Target,
		"{mission}", query.Mission,
		"{sector}", strconv.Itoa(query.Sector),
		"{author}", query.Author,
	)
	out := make([]string, len(p.args))
	for i, a := range p.args {
		out[i] = replacer.Replace(a)
	}
	return out
}

// Fetch implements the LightCurveProvider interface.
func (p *CommandProvider) Fetch(ctx context.Context, query schema.LightCurveQuery) (*schema.TimeSeries, error) {
	args := p.Args(query)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.Output()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("fetch command for %s interrupted: %w", query.Target, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("fetch command failed for %s (exit %d): %s", query.Target, exitErr.ExitCode(), stderr)
	} else if err != nil {
		return nil, fmt.Errorf("fetch command failed: %w. Ensure %q is installed and available on your PATH", err, args[0])
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}
	return ParseCSV(bytes.NewReader(out))
}
