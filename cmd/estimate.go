package cmd

import (
	"github.com/huangsam/starspin/core"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/spf13/cobra"
)

// estimateCmd analyzes a single star with full diagnostics.
var estimateCmd = &cobra.Command{
	Use:   "estimate <star-id>",
	Short: "Estimate the rotation period of one star with diagnostics.",
	Long: `Run the full period engine on one star and print every intermediate value:
sample counts before and after binning, cadence, baseline, the spectral peak,
the accepted autocorrelation peaks and the reconciled period.

When --sample is given, the star's temperature, gravity and magnitude are taken
from it.

Examples:
  # Estimate one star from a directory of light curves
  starspin estimate 150428135 --data-dir lightcurves

  # Use a different sector and write the fold plot
  starspin estimate 150428135 --sector 5 --render yes`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEstimate(rootCtx, cfg, cacheManager, input.StarIDStr); err != nil {
			contract.LogFatal("Cannot estimate period", err)
		}
	},
}
