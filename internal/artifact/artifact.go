// Package artifact stores rendered plots and exported tables on disk or in an object store.
package artifact

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
)

// New returns the sink selected by cfg. It returns nil, nil when artifacts are disabled.
func New(ctx context.Context, cfg *contract.Config) (contract.ArtifactSink, error) {
	switch cfg.ArtifactBackend {
	case schema.NoArtifacts:
		return nil, nil
	case schema.MinioArtifacts:
		sink, err := NewMinioSink(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case schema.LocalArtifacts, "":
		return NewLocalSink(cfg.ArtifactDir), nil
	default:
		return nil, fmt.Errorf("unsupported artifact backend: %s", cfg.ArtifactBackend)
	}
}

// cleanName rejects names that would escape the sink root.
func cleanName(name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if cleaned == "." || cleaned == "/" || strings.HasPrefix(cleaned, "../") || cleaned == ".." || path.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return cleaned, nil
}
