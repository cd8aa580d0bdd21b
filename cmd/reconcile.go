package cmd

import (
	"errors"

	"github.com/huangsam/starspin/core"
	"github.com/huangsam/starspin/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reconcileCmd runs the reconciler on two given periods.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Merge a spectral and an autocorrelation period into one flagged period.",
	Long: `Apply the reconciliation rule to periods computed elsewhere.

With ratio = acf / ls:
- No --acf                          -> ls, LS_only
- Harmonic band (1.8 < ratio < 2.2)   -> acf, Harmonic_Corrected
- Subharmonic band (0.45 < ratio < 0.55) -> acf, Subharmonic_Corrected
- Anything else                     -> ls, Match

Examples:
  starspin reconcile --ls 2.1 --acf 4.3
  starspin reconcile --ls 2.1
  starspin reconcile --ls 2.1 --acf 4.3 --harmonic-band 1.9,2.1 --output json`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		if !viper.IsSet("ls") {
			return errors.New("--ls is required")
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		var acf *float64
		if viper.IsSet("acf") {
			v := viper.GetFloat64("acf")
			acf = &v
		}
		if err := core.ExecuteReconcile(rootCtx, cfg, viper.GetFloat64("ls"), acf); err != nil {
			contract.LogFatal("Cannot reconcile periods", err)
		}
	},
}
