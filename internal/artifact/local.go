package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/starspin/internal/contract"
)

// LocalSink writes artifacts under a directory.
type LocalSink struct {
	Dir string
}

var _ contract.ArtifactSink = &LocalSink{} // Compile-time check

// NewLocalSink creates a sink rooted at dir. The directory is created on first write.
func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{Dir: dir}
}

// Put writes data to Dir/name and returns the file path.
func (s *LocalSink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.Dir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", target, err)
	}
	return target, nil
}

// Describe implements the ArtifactSink interface.
func (s *LocalSink) Describe() string {
	return "local:" + s.Dir
}
