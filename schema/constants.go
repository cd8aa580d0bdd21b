package schema

// Custom string types for type safety.
type (
	// Flag classifies how the final period relates to the two estimates.
	Flag string

	// SkipKind names the reason a star produced no result.
	SkipKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and result tracking.
	DatabaseBackend string

	// ProviderKind selects where light curves come from.
	ProviderKind string

	// ArtifactBackend selects where rendered plots and exports are uploaded.
	ArtifactBackend string
)

// All reconciliation flags. The set is closed.
const (
	LSOnly               Flag = "LS_only"
	Match                Flag = "Match"
	HarmonicCorrected    Flag = "Harmonic_Corrected"
	SubharmonicCorrected Flag = "Subharmonic_Corrected"
)

// All skip kinds.
const (
	SkipNoData              SkipKind = "no_data"
	SkipInsufficientSamples SkipKind = "insufficient_samples"
	SkipProcessingFailure   SkipKind = "processing_failure"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All light curve providers supported.
const (
	DirProvider     ProviderKind = "dir" // default
	CommandProvider ProviderKind = "command"
)

// All artifact backends supported.
const (
	LocalArtifacts ArtifactBackend = "local" // default
	MinioArtifacts ArtifactBackend = "minio"
	NoArtifacts    ArtifactBackend = "none"
)

// AllFlags lists every flag in reporting order.
var AllFlags = []Flag{LSOnly, Match, HarmonicCorrected, SubharmonicCorrected}

// AllSkipKinds lists every skip kind in reporting order.
var AllSkipKinds = []SkipKind{SkipNoData, SkipInsufficientSamples, SkipProcessingFailure}

// ValidFlags lists all valid flags.
var ValidFlags = map[Flag]struct{}{
	LSOnly:               {},
	Match:                {},
	HarmonicCorrected:    {},
	SubharmonicCorrected: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviderKinds lists all valid light curve providers.
var ValidProviderKinds = map[ProviderKind]struct{}{
	DirProvider:     {},
	CommandProvider: {},
}

// ValidArtifactBackends lists all valid artifact backends.
var ValidArtifactBackends = map[ArtifactBackend]struct{}{
	LocalArtifacts: {},
	MinioArtifacts: {},
	NoArtifacts:    {},
}
