package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// PhotoIDPlaceholder and ExtensionPlaceholder are substituted into the URI template
	PhotoIDPlaceholder   = "[photo_id]"
	ExtensionPlaceholder = "[extension]"

	// DefaultURITemplate points at the small rendition in the iNaturalist open-data bucket
	DefaultURITemplate = "s3://inaturalist-open-data/photos/[photo_id]/small.[extension]"

	FetcherS3     = "s3"
	FetcherAWSCLI = "awscli"
	FetcherHTTP   = "http"
)

// Config holds all configuration options for a download run
type Config struct {
	// Input datasets
	Datasets DatasetsConfig `yaml:"datasets" json:"datasets"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Taxa maps a taxon id to the directory label its images are saved under.
	// Its keys are the allow-list.
	Taxa map[string]string `yaml:"taxa" json:"taxa"`

	// Remote object store settings
	Remote RemoteConfig `yaml:"remote" json:"remote"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DatasetsConfig locates the two tab-separated input files
type DatasetsConfig struct {
	ObservationsPath string `yaml:"observations_path" json:"observations_path"`
	PhotosPath       string `yaml:"photos_path" json:"photos_path"`
	HasHeader        bool   `yaml:"has_header" json:"has_header"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	RootDirectory string `yaml:"root_directory" json:"root_directory"`
	SaveMetadata  bool   `yaml:"save_metadata" json:"save_metadata"`
}

// RemoteConfig describes where images are fetched from
type RemoteConfig struct {
	URITemplate string `yaml:"uri_template" json:"uri_template"`
	Fetcher     string `yaml:"fetcher" json:"fetcher"`
	Region      string `yaml:"region" json:"region"`
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	AWSCLIPath  string `yaml:"aws_cli_path" json:"aws_cli_path"`

	// RequestsPerSecond paces fetches; zero disables pacing
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Datasets: DatasetsConfig{
			ObservationsPath: "observations.csv",
			PhotosPath:       "photos.csv",
			HasHeader:        false,
		},
		Output: OutputConfig{
			RootDirectory: "original-inaturalist-data",
		},
		Taxa: map[string]string{
			"83744": "amblyomma americanum",   // lone star tick
			"52155": "dermacentor variabilis", // american dog tick
			"60598": "ixodes scapularis",      // black-legged tick
		},
		Remote: RemoteConfig{
			URITemplate: DefaultURITemplate,
			Fetcher:     FetcherS3,
			Region:      "us-east-1",
			AWSCLIPath:  "aws",
			Burst:       1,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if path := os.Getenv("INATFETCH_OBSERVATIONS_PATH"); path != "" {
		c.Datasets.ObservationsPath = path
	}
	if path := os.Getenv("INATFETCH_PHOTOS_PATH"); path != "" {
		c.Datasets.PhotosPath = path
	}
	if header := os.Getenv("INATFETCH_HAS_HEADER"); header != "" {
		v, err := strconv.ParseBool(header)
		if err != nil {
			return fmt.Errorf("invalid INATFETCH_HAS_HEADER: %w", err)
		}
		c.Datasets.HasHeader = v
	}

	if outputDir := os.Getenv("INATFETCH_OUTPUT_DIR"); outputDir != "" {
		c.Output.RootDirectory = outputDir
	}

	if save := os.Getenv("INATFETCH_SAVE_METADATA"); save != "" {
		v, err := strconv.ParseBool(save)
		if err != nil {
			return fmt.Errorf("invalid INATFETCH_SAVE_METADATA: %w", err)
		}
		c.Output.SaveMetadata = v
	}

	if taxa := os.Getenv("INATFETCH_TAXA"); taxa != "" {
		parsed, err := ParseTaxa(strings.Split(taxa, ","))
		if err != nil {
			return fmt.Errorf("invalid INATFETCH_TAXA: %w", err)
		}
		c.Taxa = parsed
	}

	if tmpl := os.Getenv("INATFETCH_URI_TEMPLATE"); tmpl != "" {
		c.Remote.URITemplate = tmpl
	}
	if fetcher := os.Getenv("INATFETCH_FETCHER"); fetcher != "" {
		c.Remote.Fetcher = fetcher
	}
	if region := os.Getenv("INATFETCH_S3_REGION"); region != "" {
		c.Remote.Region = region
	}
	if endpoint := os.Getenv("INATFETCH_S3_ENDPOINT"); endpoint != "" {
		c.Remote.Endpoint = endpoint
	}

	if rps := os.Getenv("INATFETCH_REQUESTS_PER_SECOND"); rps != "" {
		parsed, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return fmt.Errorf("invalid INATFETCH_REQUESTS_PER_SECOND: %w", err)
		}
		c.Remote.RequestsPerSecond = parsed
	}

	if logLevel := os.Getenv("INATFETCH_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// ParseTaxa parses "id=label" pairs into a taxon-to-label mapping
func ParseTaxa(pairs []string) (map[string]string, error) {
	taxa := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, label, ok := strings.Cut(pair, "=")
		id, label = strings.TrimSpace(id), strings.TrimSpace(label)
		if !ok || id == "" || label == "" {
			return nil, fmt.Errorf("expected id=label, got %q", pair)
		}
		taxa[id] = label
	}
	return taxa, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// A taxa section in the file replaces the defaults rather than merging into them
	var present struct {
		Taxa map[string]string `yaml:"taxa"`
	}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if present.Taxa != nil {
		c.Taxa = nil
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		"inatfetch.yaml",
		"inatfetch.yml",
		".inatfetch.yaml",
		".inatfetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "inatfetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".inatfetch.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Datasets.ObservationsPath == "" {
		errs = append(errs, errors.New("observations path is required"))
	}
	if c.Datasets.PhotosPath == "" {
		errs = append(errs, errors.New("photos path is required"))
	}

	if c.Output.RootDirectory == "" {
		errs = append(errs, errors.New("output root directory is required"))
	}

	if len(c.Taxa) == 0 {
		errs = append(errs, errors.New("at least one taxon id is required"))
	}
	for id, label := range c.Taxa {
		if strings.TrimSpace(label) == "" {
			errs = append(errs, fmt.Errorf("taxon %s has an empty label", id))
		}
		if strings.ContainsAny(label, `/\`) {
			errs = append(errs, fmt.Errorf("taxon %s label %q must not contain path separators", id, label))
		}
		if label == "." || label == ".." {
			errs = append(errs, fmt.Errorf("taxon %s label %q must not be . or ..", id, label))
		}
	}

	tmpl := c.Remote.URITemplate
	if !strings.Contains(tmpl, PhotoIDPlaceholder) {
		errs = append(errs, fmt.Errorf("uri template must contain %s", PhotoIDPlaceholder))
	}
	if !strings.Contains(tmpl, ExtensionPlaceholder) {
		errs = append(errs, fmt.Errorf("uri template must contain %s", ExtensionPlaceholder))
	}

	switch strings.ToLower(c.Remote.Fetcher) {
	case FetcherS3, FetcherAWSCLI:
		if !strings.HasPrefix(tmpl, "s3://") {
			errs = append(errs, fmt.Errorf("fetcher %s needs an s3:// uri template", c.Remote.Fetcher))
		}
	case FetcherHTTP:
		if !strings.HasPrefix(tmpl, "http://") && !strings.HasPrefix(tmpl, "https://") {
			errs = append(errs, errors.New("fetcher http needs an http(s):// uri template"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown fetcher %q", c.Remote.Fetcher))
	}

	if c.Remote.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second must not be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// TaxonIDs returns the allow-list in sorted order
func (c *Config) TaxonIDs() []string {
	ids := make([]string, 0, len(c.Taxa))
	for id := range c.Taxa {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if path, ok := flags["observations"].(string); ok && path != "" {
		c.Datasets.ObservationsPath = path
	}
	if path, ok := flags["photos"].(string); ok && path != "" {
		c.Datasets.PhotosPath = path
	}
	if header, ok := flags["header"].(bool); ok {
		c.Datasets.HasHeader = header
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.RootDirectory = outputDir
	}
	if save, ok := flags["metadata"].(bool); ok {
		c.Output.SaveMetadata = save
	}
	if taxa, ok := flags["taxa"].(map[string]string); ok && len(taxa) > 0 {
		c.Taxa = taxa
	}
	if tmpl, ok := flags["template"].(string); ok && tmpl != "" {
		c.Remote.URITemplate = tmpl
	}
	if fetcher, ok := flags["fetcher"].(string); ok && fetcher != "" {
		c.Remote.Fetcher = fetcher
	}
	if rps, ok := flags["rate"].(float64); ok {
		c.Remote.RequestsPerSecond = rps
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".inatfetch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
