package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/starspin/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainFlag(t *testing.T) {
	for _, flag := range schema.AllFlags {
		assert.Equal(t, string(flag), GetPlainFlag(flag))
	}
}

func TestGetColorFlag(t *testing.T) {
	for _, flag := range schema.AllFlags {
		t.Run(string(flag), func(t *testing.T) {
			// Should contain the plain flag regardless of terminal color support
			assert.Contains(t, GetColorFlag(flag), string(flag))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".starspin_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	resultPath := GetResultDBFilePath()
	assert.Contains(t, resultPath, ".starspin_results.db")
	assert.NotEqual(t, cachePath, resultPath)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", TruncateID("short", 10))
	assert.Equal(t, "abcdef...", TruncateID("abcdefghijklmnop", 9))
	assert.Equal(t, "abcdefgh", TruncateID("abcdefgh", 3))
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{" 0 ", false, false},
		{"maybe", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
