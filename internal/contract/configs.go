package contract

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/starspin/schema"
)

// Default values for configuration.
const (
	DefaultMaxStars         = 100
	MaxMaxStars             = 1_000_000
	DefaultWorkers          = 1
	DefaultRetrievalTimeout = 2 * time.Minute
	DefaultCacheTTL         = 30 * 24 * time.Hour
	DefaultMission          = "TESS"
	DefaultSector           = 18
	DefaultAuthor           = "SPOC"
	DefaultTargetPrefix     = "TIC"
	DefaultArtifactDir      = "plots"
	DefaultTeffColumn       = "Teff"
	DefaultLoggColumn       = "logg"
	DefaultTmagColumn       = "Tmag"
	DefaultMatchSample      = 15
	DefaultInspectSeed      = 42
)

// DefaultIDColumns lists the identifier column aliases tried, in order, when loading a sample.
var DefaultIDColumns = []string{"TIC_ID", "ticid", "TIC", "ID"}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ObjectStoreConfig holds S3-compatible upload settings.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Validate checks the settings needed to reach the object store.
func (c ObjectStoreConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("s3-endpoint is required for the minio artifact backend")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("s3-endpoint must be host[:port] without a scheme (got %q)", c.Endpoint)
	}
	if c.Bucket == "" {
		return fmt.Errorf("s3-bucket is required for the minio artifact backend")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("s3-access-key and s3-secret-key are required for the minio artifact backend")
	}
	return nil
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	SampleFile string   `yaml:"sample"`
	IDColumns  []string `yaml:"id_columns"`
	TeffColumn string   `yaml:"teff_column"`
	LoggColumn string   `yaml:"logg_column"`
	TmagColumn string   `yaml:"tmag_column"`

	MaxStars         int           `yaml:"max_stars"`
	Workers          int           `yaml:"workers"`
	RetrievalTimeout time.Duration `yaml:"retrieval_timeout"`

	Provider     schema.ProviderKind `yaml:"provider"`
	DataDir      string              `yaml:"data_dir"`
	FetchCommand string              `yaml:"fetch_command"`
	Mission      string              `yaml:"mission"`
	Sector       int                 `yaml:"sector"`
	Author       string              `yaml:"author"`
	TargetPrefix string              `yaml:"target_prefix"`

	Engine schema.EngineConfig `yaml:"engine"`

	Output     schema.OutputMode `yaml:"output"`
	OutputFile string            `yaml:"output_file"`
	Width      int               `yaml:"width"` // Terminal width override (0 = auto-detect)

	Render          bool                   `yaml:"render"`
	ArtifactBackend schema.ArtifactBackend `yaml:"artifact_backend"`
	ArtifactDir     string                 `yaml:"artifact_dir"`
	ObjectStore     ObjectStoreConfig      `yaml:"object_store"`

	CacheBackend   schema.DatabaseBackend `yaml:"cache_backend"`
	CacheDBConnect string                 `yaml:"-"` // Please use env var as this is plaintext
	CacheTTL       time.Duration          `yaml:"cache_ttl"`

	ResultBackend   schema.DatabaseBackend `yaml:"result_backend"`
	ResultDBConnect string                 `yaml:"-"` // Please use env var as this is plaintext

	UseEmojis bool `yaml:"emoji"` // Enable emojis in progress headers
	UseColors bool `yaml:"color"` // Enable colored flags in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	StarIDStr string

	Sample     string `mapstructure:"sample"`
	IDColumns  string `mapstructure:"id-columns"`
	TeffColumn string `mapstructure:"teff-column"`
	LoggColumn string `mapstructure:"logg-column"`
	TmagColumn string `mapstructure:"tmag-column"`

	MaxStars         int    `mapstructure:"max-stars"`
	Workers          int    `mapstructure:"workers"`
	RetrievalTimeout string `mapstructure:"retrieval-timeout"`

	Provider     string `mapstructure:"provider"`
	DataDir      string `mapstructure:"data-dir"`
	FetchCommand string `mapstructure:"fetch-command"`
	Mission      string `mapstructure:"mission"`
	Sector       int    `mapstructure:"sector"`
	Author       string `mapstructure:"author"`
	TargetPrefix string `mapstructure:"target-prefix"`

	BinWidth          float64 `mapstructure:"bin-width"`
	MinSamples        int     `mapstructure:"min-samples"`
	MinPeriod         float64 `mapstructure:"min-period"`
	MaxPeriod         float64 `mapstructure:"max-period"`
	Oversample        float64 `mapstructure:"oversample"`
	ACFMinHeight      float64 `mapstructure:"acf-min-height"`
	ACFMinDistance    int     `mapstructure:"acf-min-distance"`
	ACFMinLag         float64 `mapstructure:"acf-min-lag"`
	HarmonicBand      string  `mapstructure:"harmonic-band"`
	SubharmonicBand   string  `mapstructure:"subharmonic-band"`
	VariabilityCutoff float64 `mapstructure:"variability-cutoff"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`

	Render          string `mapstructure:"render"`
	ArtifactBackend string `mapstructure:"artifact-backend"`
	ArtifactDir     string `mapstructure:"artifact-dir"`
	S3Endpoint      string `mapstructure:"s3-endpoint"`
	S3AccessKey     string `mapstructure:"s3-access-key"`
	S3SecretKey     string `mapstructure:"s3-secret-key"`
	S3Bucket        string `mapstructure:"s3-bucket"`
	S3Region        string `mapstructure:"s3-region"`
	S3Prefix        string `mapstructure:"s3-prefix"`
	S3UseSSL        string `mapstructure:"s3-use-ssl"`

	CacheBackend    string `mapstructure:"cache-backend"`
	CacheDBConnect  string `mapstructure:"cache-db-connect"`
	CacheTTL        string `mapstructure:"cache-ttl"`
	ResultBackend   string `mapstructure:"result-backend"`
	ResultDBConnect string `mapstructure:"result-db-connect"`

	Emoji string `mapstructure:"emoji"`
	Color string `mapstructure:"color"`
}

// Clone creates a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.IDColumns = slices.Clone(c.IDColumns)
	return &clone
}

// Query builds the light curve query for a star from the provider selectors.
func (c *Config) Query(starID string) schema.LightCurveQuery {
	target := starID
	if c.TargetPrefix != "" {
		target = c.TargetPrefix + " " + starID
	}
	return schema.LightCurveQuery{
		StarID:  starID,
		Target:  target,
		Mission: c.Mission,
		Sector:  c.Sector,
		Author:  c.Author,
	}
}

// Params flattens the settings that influence results, for run bookkeeping.
func (c *Config) Params() map[string]any {
	params := map[string]any{
		"sample":             c.SampleFile,
		"max_stars":          c.MaxStars,
		"workers":            c.Workers,
		"provider":           string(c.Provider),
		"mission":            c.Mission,
		"sector":             c.Sector,
		"author":             c.Author,
		"bin_width":          c.Engine.BinWidth,
		"min_samples":        c.Engine.MinSamples,
		"min_period":         c.Engine.MinPeriod,
		"max_period":         c.Engine.MaxPeriod,
		"oversample":         c.Engine.Oversample,
		"acf_min_height":     c.Engine.ACFMinHeight,
		"acf_min_distance":   c.Engine.ACFMinDistance,
		"acf_min_lag":        c.Engine.ACFMinLag,
		"harmonic_band":      []float64{c.Engine.HarmonicBand.Low, c.Engine.HarmonicBand.High},
		"subharmonic_band":   []float64{c.Engine.SubharmonicBand.Low, c.Engine.SubharmonicBand.High},
		"variability_cutoff": c.Engine.VariabilityCutoff,
	}
	return maps.Clone(params)
}

// ProcessAndValidate populates cfg from the raw input, validating every field.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// All validation functions read from 'input' and populate 'cfg'.
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSampleSchema(cfg, input); err != nil {
		return err
	}
	if err := processProvider(cfg, input); err != nil {
		return err
	}
	if err := processEngine(cfg, input); err != nil {
		return err
	}
	if err := processArtifacts(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ProcessProfilingConfig enables profiling when a prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString checks the minimal shape of a connection string per backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			if _, err := url.Parse(connStr); err != nil {
				return fmt.Errorf("invalid PostgreSQL URL: %w", err)
			}
			return nil
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseBand parses "low,high" into an open ratio band.
func ParseBand(s string) (schema.Band, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return schema.Band{}, fmt.Errorf("band must be 'low,high' (got %q)", s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return schema.Band{}, fmt.Errorf("invalid band lower bound %q: %w", parts[0], err)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return schema.Band{}, fmt.Errorf("invalid band upper bound %q: %w", parts[1], err)
	}
	if !(low > 0) || !(high > low) || math.IsInf(high, 0) {
		return schema.Band{}, fmt.Errorf("band must satisfy 0 < low < high (got %v,%v)", low, high)
	}
	return schema.Band{Low: low, High: high}, nil
}

// ParseList splits a comma-separated list, trimming blanks.
func ParseList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.SampleFile = input.Sample
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Cap and worker validation ---
	if input.MaxStars <= 0 || input.MaxStars > MaxMaxStars {
		return fmt.Errorf("max-stars must be greater than 0 and cannot exceed %d (received %d)", MaxMaxStars, input.MaxStars)
	}
	cfg.MaxStars = input.MaxStars

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 2. Timeout validation ---
	cfg.RetrievalTimeout = DefaultRetrievalTimeout
	if input.RetrievalTimeout != "" {
		d, err := time.ParseDuration(input.RetrievalTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid retrieval-timeout %q: must be a positive duration like 90s or 2m", input.RetrievalTimeout)
		}
		cfg.RetrievalTimeout = d
	}

	// --- 3. Output validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}
	return nil
}

func processSampleSchema(cfg *Config, input *ConfigRawInput) error {
	cfg.IDColumns = ParseList(input.IDColumns)
	if len(cfg.IDColumns) == 0 {
		cfg.IDColumns = slices.Clone(DefaultIDColumns)
	}
	cfg.TeffColumn = strings.TrimSpace(input.TeffColumn)
	cfg.LoggColumn = strings.TrimSpace(input.LoggColumn)
	cfg.TmagColumn = strings.TrimSpace(input.TmagColumn)
	return nil
}

func processProvider(cfg *Config, input *ConfigRawInput) error {
	cfg.Provider = schema.ProviderKind(strings.ToLower(input.Provider))
	if _, ok := schema.ValidProviderKinds[cfg.Provider]; !ok {
		return fmt.Errorf("invalid provider '%s'. must be dir, command", input.Provider)
	}
	cfg.DataDir = input.DataDir
	cfg.FetchCommand = strings.TrimSpace(input.FetchCommand)
	if cfg.Provider == schema.CommandProvider && cfg.FetchCommand == "" {
		return fmt.Errorf("--fetch-command is required when provider is %s", cfg.Provider)
	}
	if cfg.Provider == schema.DirProvider && cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	cfg.Mission = input.Mission
	cfg.Author = input.Author
	cfg.TargetPrefix = input.TargetPrefix
	if input.Sector < 0 {
		return fmt.Errorf("sector cannot be negative (received %d)", input.Sector)
	}
	cfg.Sector = input.Sector
	return nil
}

func processEngine(cfg *Config, input *ConfigRawInput) error {
	engine := schema.EngineConfig{
		BinWidth:          input.BinWidth,
		MinSamples:        input.MinSamples,
		MinPeriod:         input.MinPeriod,
		MaxPeriod:         input.MaxPeriod,
		Oversample:        input.Oversample,
		ACFMinHeight:      input.ACFMinHeight,
		ACFMinDistance:    input.ACFMinDistance,
		ACFMinLag:         input.ACFMinLag,
		VariabilityCutoff: input.VariabilityCutoff,
	}

	if !(engine.BinWidth > 0) {
		return fmt.Errorf("bin-width must be positive (received %v)", input.BinWidth)
	}
	if engine.MinSamples < 2 {
		return fmt.Errorf("min-samples must be at least 2 (received %d)", input.MinSamples)
	}
	if !(engine.MinPeriod > 0) || !(engine.MaxPeriod > engine.MinPeriod) {
		return fmt.Errorf("period bounds must satisfy 0 < min-period < max-period (received %v, %v)", input.MinPeriod, input.MaxPeriod)
	}
	if !(engine.Oversample > 0) {
		return fmt.Errorf("oversample must be positive (received %v)", input.Oversample)
	}
	if engine.ACFMinDistance < 1 {
		return fmt.Errorf("acf-min-distance must be at least 1 (received %d)", input.ACFMinDistance)
	}
	if engine.ACFMinLag < 0 {
		return fmt.Errorf("acf-min-lag cannot be negative (received %v)", input.ACFMinLag)
	}
	if engine.VariabilityCutoff < 0 {
		return fmt.Errorf("variability-cutoff cannot be negative (received %v)", input.VariabilityCutoff)
	}

	var err error
	engine.HarmonicBand = schema.DefaultHarmonicBand
	if input.HarmonicBand != "" {
		if engine.HarmonicBand, err = ParseBand(input.HarmonicBand); err != nil {
			return fmt.Errorf("invalid harmonic-band: %w", err)
		}
	}
	engine.SubharmonicBand = schema.DefaultSubharmonicBand
	if input.SubharmonicBand != "" {
		if engine.SubharmonicBand, err = ParseBand(input.SubharmonicBand); err != nil {
			return fmt.Errorf("invalid subharmonic-band: %w", err)
		}
	}
	if engine.SubharmonicBand.High > engine.HarmonicBand.Low {
		return fmt.Errorf("subharmonic-band must lie below harmonic-band")
	}

	cfg.Engine = engine
	return nil
}

func processArtifacts(cfg *Config, input *ConfigRawInput) error {
	render, err := ParseBoolString(input.Render)
	if err != nil {
		return fmt.Errorf("invalid --render value: %w", err)
	}
	cfg.Render = render

	cfg.ArtifactBackend = schema.ArtifactBackend(strings.ToLower(input.ArtifactBackend))
	if _, ok := schema.ValidArtifactBackends[cfg.ArtifactBackend]; !ok {
		return fmt.Errorf("invalid artifact backend '%s'. must be local, minio, none", input.ArtifactBackend)
	}
	cfg.ArtifactDir = input.ArtifactDir
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = DefaultArtifactDir
	}

	useSSL := false
	if input.S3UseSSL != "" {
		if useSSL, err = ParseBoolString(input.S3UseSSL); err != nil {
			return fmt.Errorf("invalid --s3-use-ssl value: %w", err)
		}
	}
	cfg.ObjectStore = ObjectStoreConfig{
		Endpoint:  input.S3Endpoint,
		AccessKey: input.S3AccessKey,
		SecretKey: input.S3SecretKey,
		Bucket:    input.S3Bucket,
		Region:    input.S3Region,
		Prefix:    strings.Trim(input.S3Prefix, "/"),
		UseSSL:    useSSL,
	}
	if cfg.ArtifactBackend == schema.MinioArtifacts {
		return cfg.ObjectStore.Validate()
	}
	return nil
}

func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}
	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		d, err := time.ParseDuration(input.CacheTTL)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid cache-ttl %q: must be a positive duration like 720h", input.CacheTTL)
		}
		cfg.CacheTTL = d
	}

	// --- Result Backend Validation ---
	cfg.ResultBackend = schema.DatabaseBackend(strings.ToLower(input.ResultBackend))
	if cfg.ResultBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.ResultBackend]; !ok {
		return fmt.Errorf("invalid result backend '%s'. must be sqlite, mysql, postgresql, none", input.ResultBackend)
	}
	cfg.ResultDBConnect = input.ResultDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ResultBackend, cfg.ResultDBConnect); err != nil {
		return err
	}

	// Cache and results must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.ResultBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		resultPath := cfg.ResultDBConnect
		if resultPath == "" {
			resultPath = GetResultDBFilePath()
		}
		if cachePath == resultPath {
			return fmt.Errorf("cache and result storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}
