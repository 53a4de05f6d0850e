package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Remote.Fetcher != FetcherS3 {
		t.Errorf("Expected default fetcher to be s3, got %s", config.Remote.Fetcher)
	}

	if config.Output.RootDirectory != "original-inaturalist-data" {
		t.Errorf("Expected default output directory to be original-inaturalist-data, got %s", config.Output.RootDirectory)
	}

	if len(config.Taxa) != 3 {
		t.Errorf("Expected 3 default taxa, got %d", len(config.Taxa))
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INATFETCH_OBSERVATIONS_PATH", "/data/observations.csv.gz")
	t.Setenv("INATFETCH_PHOTOS_PATH", "/data/photos.csv.gz")
	t.Setenv("INATFETCH_HAS_HEADER", "true")
	t.Setenv("INATFETCH_OUTPUT_DIR", "/tmp/images")
	t.Setenv("INATFETCH_TAXA", "47219=apis mellifera, 52155=dermacentor variabilis")
	t.Setenv("INATFETCH_FETCHER", "awscli")
	t.Setenv("INATFETCH_S3_REGION", "eu-west-1")
	t.Setenv("INATFETCH_LOG_LEVEL", "debug")
	t.Setenv("INATFETCH_REQUESTS_PER_SECOND", "4")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "/data/observations.csv.gz", config.Datasets.ObservationsPath)
	assert.Equal(t, "/data/photos.csv.gz", config.Datasets.PhotosPath)
	assert.True(t, config.Datasets.HasHeader)
	assert.Equal(t, "/tmp/images", config.Output.RootDirectory)
	assert.Equal(t, map[string]string{
		"47219": "apis mellifera",
		"52155": "dermacentor variabilis",
	}, config.Taxa)
	assert.Equal(t, FetcherAWSCLI, config.Remote.Fetcher)
	assert.Equal(t, "eu-west-1", config.Remote.Region)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, 4.0, config.Remote.RequestsPerSecond)
}

func TestLoadFromEnvRejectsBadRate(t *testing.T) {
	t.Setenv("INATFETCH_REQUESTS_PER_SECOND", "fast")

	config := DefaultConfig()
	assert.Error(t, config.LoadFromEnv())
}

func TestLoadFromEnvParsesBooleans(t *testing.T) {
	t.Setenv("INATFETCH_HAS_HEADER", "1")
	t.Setenv("INATFETCH_SAVE_METADATA", "TRUE")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())
	assert.True(t, config.Datasets.HasHeader)
	assert.True(t, config.Output.SaveMetadata)
}

func TestLoadFromEnvRejectsBadBooleans(t *testing.T) {
	for _, name := range []string{"INATFETCH_HAS_HEADER", "INATFETCH_SAVE_METADATA"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "maybe")

			config := DefaultConfig()
			err := config.LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadFromEnvRejectsBadTaxa(t *testing.T) {
	t.Setenv("INATFETCH_TAXA", "47219")

	config := DefaultConfig()
	err := config.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INATFETCH_TAXA")
}

func TestParseTaxa(t *testing.T) {
	taxa, err := ParseTaxa([]string{"1=spider", " 2 = tick ", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "spider", "2": "tick"}, taxa)

	_, err = ParseTaxa([]string{"=spider"})
	assert.Error(t, err)

	_, err = ParseTaxa([]string{"1="})
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inatfetch.yaml")
	content := `
datasets:
  observations_path: obs.tsv
  photos_path: photos.tsv
output:
  root_directory: out
taxa:
  "1": spider
remote:
  fetcher: http
  uri_template: https://example.org/photos/[photo_id]/small.[extension]
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, "obs.tsv", config.Datasets.ObservationsPath)
	assert.Equal(t, "photos.tsv", config.Datasets.PhotosPath)
	assert.Equal(t, "out", config.Output.RootDirectory)
	// taxa from the file replace the defaults entirely
	assert.Equal(t, map[string]string{"1": "spider"}, config.Taxa)
	assert.Equal(t, FetcherHTTP, config.Remote.Fetcher)
	assert.Equal(t, "us-east-1", config.Remote.Region)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.NoError(t, config.Validate())
}

func TestLoadFromFileKeepsDefaultTaxa(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inatfetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  root_directory: elsewhere\n"), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, "elsewhere", config.Output.RootDirectory)
	assert.Len(t, config.Taxa, 3)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("taxa: [unclosed"), 0644))

	config := DefaultConfig()
	assert.Error(t, config.LoadFromFile(path))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantError string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:      "missing observations path",
			modify:    func(c *Config) { c.Datasets.ObservationsPath = "" },
			wantError: "observations path is required",
		},
		{
			name:      "missing photos path",
			modify:    func(c *Config) { c.Datasets.PhotosPath = "" },
			wantError: "photos path is required",
		},
		{
			name:      "missing output directory",
			modify:    func(c *Config) { c.Output.RootDirectory = "" },
			wantError: "output root directory is required",
		},
		{
			name:      "empty taxa",
			modify:    func(c *Config) { c.Taxa = map[string]string{} },
			wantError: "at least one taxon id is required",
		},
		{
			name:      "label with separator",
			modify:    func(c *Config) { c.Taxa = map[string]string{"1": "a/b"} },
			wantError: "must not contain path separators",
		},
		{
			name:      "dot-dot label",
			modify:    func(c *Config) { c.Taxa = map[string]string{"1": ".."} },
			wantError: "must not be . or ..",
		},
		{
			name:      "dot label",
			modify:    func(c *Config) { c.Taxa = map[string]string{"1": "."} },
			wantError: "must not be . or ..",
		},
		{
			name:      "template without photo id",
			modify:    func(c *Config) { c.Remote.URITemplate = "s3://bucket/photos/small.[extension]" },
			wantError: "[photo_id]",
		},
		{
			name:      "template without extension",
			modify:    func(c *Config) { c.Remote.URITemplate = "s3://bucket/photos/[photo_id]/small.jpg" },
			wantError: "[extension]",
		},
		{
			name:      "unknown fetcher",
			modify:    func(c *Config) { c.Remote.Fetcher = "ftp" },
			wantError: "unknown fetcher",
		},
		{
			name:      "http fetcher with s3 template",
			modify:    func(c *Config) { c.Remote.Fetcher = FetcherHTTP },
			wantError: "http(s)://",
		},
		{
			name:      "negative rate",
			modify:    func(c *Config) { c.Remote.RequestsPerSecond = -1 },
			wantError: "requests per second",
		},
		{
			name:      "invalid log level",
			modify:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantError), "error %q should mention %q", err, tt.wantError)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"observations": "o.tsv",
		"photos":       "p.tsv",
		"header":       true,
		"output":       "imgs",
		"taxa":         map[string]string{"9": "nine"},
		"fetcher":      "awscli",
		"log-level":    "error",
	})

	assert.Equal(t, "o.tsv", config.Datasets.ObservationsPath)
	assert.Equal(t, "p.tsv", config.Datasets.PhotosPath)
	assert.True(t, config.Datasets.HasHeader)
	assert.Equal(t, "imgs", config.Output.RootDirectory)
	assert.Equal(t, map[string]string{"9": "nine"}, config.Taxa)
	assert.Equal(t, FetcherAWSCLI, config.Remote.Fetcher)
	assert.Equal(t, "error", config.Logging.Level)
}

func TestTaxonIDsSorted(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, []string{"52155", "60598", "83744"}, config.TaxonIDs())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "inatfetch.yaml")

	config := DefaultConfig()
	config.Output.RootDirectory = "saved"
	require.NoError(t, config.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, config, loaded)
}
