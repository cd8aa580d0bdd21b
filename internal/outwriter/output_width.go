package outwriter

import (
	"os"

	"github.com/huangsam/starspin/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableIDWidth calculates the maximum width for star identifiers in table output
// based on terminal width and the fixed numeric columns.
func GetMaxTableIDWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank, three stellar columns, five numeric columns and the flag
	baseWidth := 105

	// Reserve space for table borders, separators, and padding
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 12 {
		// Room for a full TIC number
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}
