// Package cmd defines the command-line interface for starspin.
package cmd

import (
	"strings"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/huangsam/starspin/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the results subcommands to the parent results command
	resultsCmd.AddCommand(resultsClearCmd)
	resultsCmd.AddCommand(resultsStatusCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	resultsCmd.AddCommand(resultsInspectCmd)
	resultsCmd.AddCommand(resultsMigrateCmd)

	engine := schema.DefaultEngineConfig()

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")

	// Sample schema
	flags.StringP("sample", "s", "", "Path to the stellar sample (CSV or XLSX)")
	flags.String("id-columns", strings.Join(contract.DefaultIDColumns, ","), "Identifier column aliases tried in order")
	flags.String("teff-column", contract.DefaultTeffColumn, "Effective temperature column (empty to ignore)")
	flags.String("logg-column", contract.DefaultLoggColumn, "Surface gravity column (empty to ignore)")
	flags.String("tmag-column", contract.DefaultTmagColumn, "Magnitude column (empty to ignore)")

	// Light curve source
	flags.String("provider", string(schema.DirProvider), "Light curve provider: dir or command")
	flags.String("data-dir", ".", "Directory holding <id>.csv or <id>.parquet light curves (dir provider)")
	flags.String("fetch-command", "", "Fetcher command template using {id} {target} {mission} {sector} {author} (command provider)")
	flags.String("mission", contract.DefaultMission, "Survey mission of the light curves")
	flags.Int("sector", contract.DefaultSector, "Observing sector (0 = any)")
	flags.String("author", contract.DefaultAuthor, "Pipeline that produced the light curves")
	flags.String("target-prefix", contract.DefaultTargetPrefix, "Prefix joined to identifiers to name targets")
	flags.String("retrieval-timeout", contract.DefaultRetrievalTimeout.String(), "Time limit for retrieving one light curve")

	// Period engine
	flags.Float64("bin-width", engine.BinWidth, "Bin width in days")
	flags.Int("min-samples", engine.MinSamples, "Minimum samples after cleaning and after binning")
	flags.Float64("min-period", engine.MinPeriod, "Shortest period searched, in days")
	flags.Float64("max-period", engine.MaxPeriod, "Longest period searched, in days")
	flags.Float64("oversample", engine.Oversample, "Frequency grid oversampling factor")
	flags.Float64("acf-min-height", engine.ACFMinHeight, "Minimum autocorrelation peak height")
	flags.Int("acf-min-distance", engine.ACFMinDistance, "Minimum separation between autocorrelation peaks, in samples")
	flags.Float64("acf-min-lag", engine.ACFMinLag, "Autocorrelation peaks at or below this lag in days are ignored")
	flags.String("harmonic-band", "", "ACF/LS ratio band for harmonic correction as low,high (default 1.8,2.2)")
	flags.String("subharmonic-band", "", "ACF/LS ratio band for subharmonic correction as low,high (default 0.45,0.55)")
	flags.Float64("variability-cutoff", engine.VariabilityCutoff, "Variability at or above which a star is plotted")

	// Output and artifacts
	flags.StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or parquet")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("emoji", "no", "Enable emojis in progress headers (yes/no/true/false/1/0)")
	flags.String("render", "no", "Render fold plots for variable stars (yes/no/true/false/1/0)")
	flags.String("artifact-backend", string(schema.LocalArtifacts), "Where plots go: local or minio or none")
	flags.String("artifact-dir", contract.DefaultArtifactDir, "Directory for plots (local artifact backend)")
	flags.String("s3-endpoint", "", "Object store host[:port] (minio artifact backend)")
	flags.String("s3-bucket", "", "Object store bucket")
	flags.String("s3-region", "", "Object store region")
	flags.String("s3-prefix", "", "Key prefix for uploaded objects")
	flags.String("s3-use-ssl", "no", "Use TLS for the object store (yes/no/true/false/1/0)")
	flags.String("s3-access-key", "", "Object store access key (prefer STARSPIN_S3_ACCESS_KEY)")
	flags.String("s3-secret-key", "", "Object store secret key (prefer STARSPIN_S3_SECRET_KEY)")

	// Storage
	flags.String("cache-backend", string(schema.SQLiteBackend), "Light curve cache backend: sqlite or mysql or postgresql or none")
	flags.String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached light curves stay valid")
	flags.String("result-backend", "", "Result tracking backend: sqlite or mysql or postgresql or none")
	flags.String("result-db-connect", "", "Database connection string for result tracking (must differ from cache-db-connect)")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().IntP("max-stars", "n", contract.DefaultMaxStars, "Stop after this many stars produced a result")
	runCmd.Flags().IntP("workers", "w", contract.DefaultWorkers, "Number of stars processed concurrently")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of reconcileCmd to Viper
	reconcileCmd.Flags().Float64("ls", 0, "Lomb-Scargle period in days")
	reconcileCmd.Flags().Float64("acf", 0, "Autocorrelation period in days (omit when undefined)")
	if err := viper.BindPFlags(reconcileCmd.Flags()); err != nil {
		contract.LogFatal("Error binding reconcile flags", err)
	}

	// Bind all flags of resultsInspectCmd to Viper
	resultsInspectCmd.Flags().Int("match-sample", contract.DefaultMatchSample, "Number of Match stars drawn as a control group")
	resultsInspectCmd.Flags().Int64("seed", contract.DefaultInspectSeed, "Random seed for the control group")
	if err := viper.BindPFlags(resultsInspectCmd.Flags()); err != nil {
		contract.LogFatal("Error binding results inspect flags", err)
	}

	// Bind all flags of resultsMigrateCmd to Viper
	resultsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(resultsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding results migrate flags", err)
	}
}
