package cmd

import (
	"errors"

	"github.com/huangsam/starspin/core"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/spf13/cobra"
)

// runCmd performs the batch rotation period analysis.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate rotation periods for every star in a sample.",
	Long: `Retrieve a light curve for each star in the sample, estimate its rotation period
two ways, reconcile the estimates and export one row per processed star.

For each star:
- The light curve is cleaned, normalized by its median and binned
- A Lomb-Scargle periodogram gives the spectral period
- The autocorrelation function gives a second, independent period
- The two are merged into one period with a flag (Match, LS_only,
  Harmonic_Corrected or Subharmonic_Corrected)

Stars without data or with too few samples are skipped and reported; they do not
count towards --max-stars.

Examples:
  # Analyze the first 100 stars with light curves in ./lightcurves
  starspin run --sample sample.csv --data-dir lightcurves

  # Use four workers and export CSV
  starspin run -s sample.xlsx -w 4 --output csv --output-file periods.csv

  # Fetch light curves with an external script and keep a result history
  starspin run -s sample.csv --provider command \
    --fetch-command "python fetch.py {target} {sector}" --result-backend sqlite

  # Plot folded light curves of variable stars to an object store
  starspin run -s sample.csv --render yes --artifact-backend minio --s3-bucket plots`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		if cfg.SampleFile == "" {
			return errors.New("--sample is required")
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBatch(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run batch", err)
		}
	},
}
