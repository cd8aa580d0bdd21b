package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/starspin/schema"
)

// Color variables for console output.
var (
	MatchColor       = color.New(color.FgGreen)               // MatchColor marks agreeing estimators.
	HarmonicColor    = color.New(color.FgMagenta, color.Bold) // HarmonicColor marks a doubled period.
	SubharmonicColor = color.New(color.FgYellow, color.Bold)  // SubharmonicColor marks a halved period.
	LSOnlyColor      = color.New(color.FgCyan)                // LSOnlyColor marks spectral-only results.
)

// GetPlainFlag returns the flag as plain text for CSV, JSON and table printing.
func GetPlainFlag(flag schema.Flag) string {
	return string(flag)
}

// GetColorFlag returns a colored flag for console output (table).
func GetColorFlag(flag schema.Flag) string {
	text := GetPlainFlag(flag)

	switch flag {
	case schema.Match:
		return MatchColor.Sprint(text)
	case schema.HarmonicCorrected:
		return HarmonicColor.Sprint(text)
	case schema.SubharmonicCorrected:
		return SubharmonicColor.Sprint(text)
	default: // LS_only
		return LSOnlyColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for light curve caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".starspin_cache.db"
	}
	return filepath.Join(homeDir, ".starspin_cache.db")
}

// GetResultDBFilePath returns the path to the SQLite DB file for batch results.
func GetResultDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".starspin_results.db"
	}
	return filepath.Join(homeDir, ".starspin_results.db")
}

// TruncateID shortens an identifier to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the "..." and at least one character.
func TruncateID(id string, maxWidth int) string {
	runes := []rune(id)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return id
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
