package contract

import (
	"testing"
	"time"

	"github.com/huangsam/starspin/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput mirrors the defaults registered by the CLI.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Sample:            "sample.csv",
		MaxStars:          DefaultMaxStars,
		Workers:           DefaultWorkers,
		Provider:          string(schema.DirProvider),
		DataDir:           "data",
		Mission:           DefaultMission,
		Sector:            DefaultSector,
		Author:            DefaultAuthor,
		TargetPrefix:      DefaultTargetPrefix,
		BinWidth:          schema.DefaultBinWidth,
		MinSamples:        schema.DefaultMinSamples,
		MinPeriod:         schema.DefaultMinPeriod,
		MaxPeriod:         schema.DefaultMaxPeriod,
		Oversample:        schema.DefaultOversample,
		ACFMinHeight:      schema.DefaultACFMinHeight,
		ACFMinDistance:    schema.DefaultACFMinDistance,
		ACFMinLag:         schema.DefaultACFMinLag,
		VariabilityCutoff: schema.DefaultVariabilityCutoff,
		Output:            "text",
		Render:            "false",
		ArtifactBackend:   string(schema.LocalArtifacts),
		CacheBackend:      string(schema.NoneBackend),
		Emoji:             "no",
		Color:             "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "zero max stars", mutate: func(in *ConfigRawInput) { in.MaxStars = 0 }, expectError: "max-stars"},
		{name: "too many max stars", mutate: func(in *ConfigRawInput) { in.MaxStars = MaxMaxStars + 1 }, expectError: "max-stars"},
		{name: "zero workers", mutate: func(in *ConfigRawInput) { in.Workers = 0 }, expectError: "workers"},
		{name: "bad output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "output format"},
		{name: "parquet needs file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: "--output-file"},
		{name: "bad provider", mutate: func(in *ConfigRawInput) { in.Provider = "ftp" }, expectError: "provider"},
		{name: "command needs template", mutate: func(in *ConfigRawInput) { in.Provider = "command" }, expectError: "--fetch-command"},
		{name: "negative sector", mutate: func(in *ConfigRawInput) { in.Sector = -1 }, expectError: "sector"},
		{name: "zero bin width", mutate: func(in *ConfigRawInput) { in.BinWidth = 0 }, expectError: "bin-width"},
		{name: "tiny min samples", mutate: func(in *ConfigRawInput) { in.MinSamples = 1 }, expectError: "min-samples"},
		{name: "inverted periods", mutate: func(in *ConfigRawInput) { in.MinPeriod = 20 }, expectError: "period bounds"},
		{name: "zero oversample", mutate: func(in *ConfigRawInput) { in.Oversample = 0 }, expectError: "oversample"},
		{name: "zero acf distance", mutate: func(in *ConfigRawInput) { in.ACFMinDistance = 0 }, expectError: "acf-min-distance"},
		{name: "negative cutoff", mutate: func(in *ConfigRawInput) { in.VariabilityCutoff = -1 }, expectError: "variability-cutoff"},
		{name: "bad harmonic band", mutate: func(in *ConfigRawInput) { in.HarmonicBand = "2.2" }, expectError: "harmonic-band"},
		{name: "overlapping bands", mutate: func(in *ConfigRawInput) { in.SubharmonicBand = "0.5,1.9" }, expectError: "subharmonic-band"},
		{name: "bad timeout", mutate: func(in *ConfigRawInput) { in.RetrievalTimeout = "soon" }, expectError: "retrieval-timeout"},
		{name: "bad emoji", mutate: func(in *ConfigRawInput) { in.Emoji = "maybe" }, expectError: "--emoji"},
		{name: "bad render", mutate: func(in *ConfigRawInput) { in.Render = "sometimes" }, expectError: "--render"},
		{name: "bad artifact backend", mutate: func(in *ConfigRawInput) { in.ArtifactBackend = "ftp" }, expectError: "artifact backend"},
		{name: "minio needs endpoint", mutate: func(in *ConfigRawInput) { in.ArtifactBackend = "minio" }, expectError: "s3-endpoint"},
		{name: "bad cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: "cache backend"},
		{name: "mysql needs conn", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: "connection string"},
		{name: "bad cache ttl", mutate: func(in *ConfigRawInput) { in.CacheTTL = "-1h" }, expectError: "cache-ttl"},
		{name: "bad result backend", mutate: func(in *ConfigRawInput) { in.ResultBackend = "redis" }, expectError: "result backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, DefaultIDColumns, cfg.IDColumns)
	assert.Equal(t, DefaultRetrievalTimeout, cfg.RetrievalTimeout)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultArtifactDir, cfg.ArtifactDir)
	assert.Equal(t, schema.DefaultEngineConfig(), cfg.Engine)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
	assert.False(t, cfg.Render)
}

func TestProcessAndValidate_Overrides(t *testing.T) {
	input := validInput()
	input.IDColumns = "KIC, kepid"
	input.RetrievalTimeout = "90s"
	input.HarmonicBand = "1.5,2.5"
	input.Render = "yes"
	input.ArtifactBackend = "MINIO"
	input.S3Endpoint = "localhost:9000"
	input.S3AccessKey = "ak"
	input.S3SecretKey = "sk"
	input.S3Bucket = "plots"
	input.S3Prefix = "/runs/"
	input.CacheBackend = "postgresql"
	input.CacheDBConnect = "host=localhost dbname=starspin"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, []string{"KIC", "kepid"}, cfg.IDColumns)
	assert.Equal(t, 90*time.Second, cfg.RetrievalTimeout)
	assert.Equal(t, schema.Band{Low: 1.5, High: 2.5}, cfg.Engine.HarmonicBand)
	assert.True(t, cfg.Render)
	assert.Equal(t, schema.MinioArtifacts, cfg.ArtifactBackend)
	assert.Equal(t, "runs", cfg.ObjectStore.Prefix)
	assert.Equal(t, schema.PostgreSQLBackend, cfg.CacheBackend)
}

func TestProcessAndValidate_SharedSQLiteFile(t *testing.T) {
	input := validInput()
	input.CacheBackend = "sqlite"
	input.ResultBackend = "sqlite"
	input.CacheDBConnect = "/tmp/same.db"
	input.ResultDBConnect = "/tmp/same.db"

	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")

	input.ResultDBConnect = "/tmp/other.db"
	assert.NoError(t, ProcessAndValidate(&Config{}, input))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/starspin", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/starspin", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=starspin", false},
		{"postgres url", schema.PostgreSQLBackend, "postgres://u:p@localhost:5432/starspin", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseBand(t *testing.T) {
	band, err := ParseBand(" 1.8 , 2.2 ")
	require.NoError(t, err)
	assert.Equal(t, schema.Band{Low: 1.8, High: 2.2}, band)

	for _, bad := range []string{"", "1.8", "a,b", "2.2,1.8", "0,1", "1,1"} {
		_, err := ParseBand(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseList(" a, ,b "))
	assert.Nil(t, ParseList(""))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{IDColumns: []string{"TIC"}, MaxStars: 5}
	clone := cfg.Clone()
	clone.IDColumns[0] = "KIC"
	clone.MaxStars = 10
	assert.Equal(t, "TIC", cfg.IDColumns[0])
	assert.Equal(t, 5, cfg.MaxStars)
}

func TestConfigQuery(t *testing.T) {
	cfg := &Config{Mission: "TESS", Sector: 18, Author: "SPOC", TargetPrefix: "TIC"}
	q := cfg.Query("123")
	assert.Equal(t, schema.LightCurveQuery{StarID: "123", Target: "TIC 123", Mission: "TESS", Sector: 18, Author: "SPOC"}, q)

	cfg.TargetPrefix = ""
	assert.Equal(t, "123", cfg.Query("123").Target)
}

func TestConfigParams(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))
	params := cfg.Params()
	assert.Equal(t, schema.DefaultVariabilityCutoff, params["variability_cutoff"])
	assert.Equal(t, []float64{1.8, 2.2}, params["harmonic_band"])
	assert.Equal(t, "dir", params["provider"])
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "prof"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "prof", profile.Prefix)
}
