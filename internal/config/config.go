// Package config loads psibridge settings from a YAML file, an optional
// .env file and PSIBRIDGE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"psibridge/internal/blob"
	"psibridge/internal/convert"
	"psibridge/internal/core"
	"psibridge/internal/enrich"
	"psibridge/internal/enrich/webservice"
	"psibridge/internal/uniprotexport"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "psibridge.yaml"

// Config is the complete psibridge configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Blob       BlobConfig       `yaml:"blob"`
	Conversion ConversionConfig `yaml:"conversion"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Export     ExportConfig     `yaml:"export"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// StorageConfig selects the entry store.
type StorageConfig struct {
	Driver      string `yaml:"driver" validate:"oneof=memory sqlite postgres"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn" validate:"required_if=Driver postgres"`
}

// BlobConfig selects the artifact store.
type BlobConfig struct {
	Driver string   `yaml:"driver" validate:"oneof=fs s3 memory"`
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config configures the S3 blob driver.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	PathStyle       bool   `yaml:"path_style"`
}

// ConversionConfig controls PSI-MI XML output.
type ConversionConfig struct {
	CompactXML               bool     `yaml:"compact_xml"`
	ExcludedAnnotationTopics []string `yaml:"excluded_annotation_topics"`
}

// EnrichmentConfig selects the enrichment cascades and the remote services.
type EnrichmentConfig struct {
	UpdateCvTerms         bool          `yaml:"update_cv_terms"`
	UpdateOrganisms       bool          `yaml:"update_organisms"`
	UpdateProteins        bool          `yaml:"update_proteins"`
	RegenerateShortLabels bool          `yaml:"regenerate_short_labels"`
	TaxonomyURL           string        `yaml:"taxonomy_url" validate:"required,url"`
	OLSURL                string        `yaml:"ols_url" validate:"required,url"`
	UniProtURL            string        `yaml:"uniprot_url" validate:"required,url"`
	Timeout               time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxRetries            uint64        `yaml:"max_retries" validate:"lte=10"`
}

// ExportConfig controls the UniProt export.
type ExportConfig struct {
	IncludeSpokeExpanded bool   `yaml:"include_spoke_expanded"`
	AssignedBy           string `yaml:"assigned_by"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Metrics exporters and trace formats.
const (
	ExporterPrometheus = "prometheus"
	ExporterExpvar     = "expvar"
	TraceOTel          = "otel"
	TraceJSON          = "json"
)

// MetricsConfig configures metrics and trace output.
type MetricsConfig struct {
	// Exporter selects the recorder: Prometheus text format or an expvar
	// JSON snapshot.
	Exporter string `yaml:"exporter" validate:"oneof=prometheus expvar"`
	// Textfile receives the exporter output at exit when set.
	Textfile string `yaml:"textfile"`
	// Trace records a span per operation.
	Trace bool `yaml:"trace"`
	// TraceFormat is otel for OpenTelemetry spans logged at debug level or
	// json for one JSON line per span on stderr.
	TraceFormat string `yaml:"trace_format" validate:"oneof=otel json"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	ws := webservice.DefaultConfig()
	return &Config{
		Storage: StorageConfig{
			Driver:     string(core.StorageSQLite),
			SQLitePath: "psibridge.db",
		},
		Blob: BlobConfig{
			Driver: string(blob.DriverFilesystem),
			FSRoot: "blobdata",
		},
		Conversion: ConversionConfig{
			ExcludedAnnotationTopics: slices.Clone(convert.DefaultExcludedTopics),
		},
		Enrichment: EnrichmentConfig{
			UpdateCvTerms:         true,
			UpdateOrganisms:       true,
			UpdateProteins:        true,
			RegenerateShortLabels: true,
			TaxonomyURL:           ws.TaxonomyURL,
			OLSURL:                ws.OLSURL,
			UniProtURL:            ws.UniProtURL,
			Timeout:               ws.Timeout,
			MaxRetries:            ws.MaxRetries,
		},
		Export:  ExportConfig{AssignedBy: "IntAct"},
		Log:     LogConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Exporter: ExporterPrometheus, TraceFormat: TraceOTel},
	}
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes cfg as YAML, creating the directory when needed.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge copies the non-zero settings of other over c. Booleans can only be
// switched on.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	mergeString(&c.Storage.Driver, other.Storage.Driver)
	mergeString(&c.Storage.SQLitePath, other.Storage.SQLitePath)
	mergeString(&c.Storage.PostgresDSN, other.Storage.PostgresDSN)

	mergeString(&c.Blob.Driver, other.Blob.Driver)
	mergeString(&c.Blob.FSRoot, other.Blob.FSRoot)
	mergeString(&c.Blob.S3.Bucket, other.Blob.S3.Bucket)
	mergeString(&c.Blob.S3.Region, other.Blob.S3.Region)
	mergeString(&c.Blob.S3.Prefix, other.Blob.S3.Prefix)
	mergeString(&c.Blob.S3.Endpoint, other.Blob.S3.Endpoint)
	mergeString(&c.Blob.S3.AccessKeyID, other.Blob.S3.AccessKeyID)
	mergeString(&c.Blob.S3.SecretAccessKey, other.Blob.S3.SecretAccessKey)
	mergeString(&c.Blob.S3.SessionToken, other.Blob.S3.SessionToken)
	c.Blob.S3.PathStyle = c.Blob.S3.PathStyle || other.Blob.S3.PathStyle

	c.Conversion.CompactXML = c.Conversion.CompactXML || other.Conversion.CompactXML
	if len(other.Conversion.ExcludedAnnotationTopics) > 0 {
		c.Conversion.ExcludedAnnotationTopics = slices.Clone(other.Conversion.ExcludedAnnotationTopics)
	}

	mergeString(&c.Enrichment.TaxonomyURL, other.Enrichment.TaxonomyURL)
	mergeString(&c.Enrichment.OLSURL, other.Enrichment.OLSURL)
	mergeString(&c.Enrichment.UniProtURL, other.Enrichment.UniProtURL)
	if other.Enrichment.Timeout != 0 {
		c.Enrichment.Timeout = other.Enrichment.Timeout
	}
	if other.Enrichment.MaxRetries != 0 {
		c.Enrichment.MaxRetries = other.Enrichment.MaxRetries
	}

	c.Export.IncludeSpokeExpanded = c.Export.IncludeSpokeExpanded || other.Export.IncludeSpokeExpanded
	mergeString(&c.Export.AssignedBy, other.Export.AssignedBy)

	mergeString(&c.Log.Level, other.Log.Level)
	mergeString(&c.Log.Format, other.Log.Format)
	mergeString(&c.Metrics.Exporter, other.Metrics.Exporter)
	mergeString(&c.Metrics.Textfile, other.Metrics.Textfile)
	mergeString(&c.Metrics.TraceFormat, other.Metrics.TraceFormat)
	c.Metrics.Trace = c.Metrics.Trace || other.Metrics.Trace
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// StorageSettings returns the entry store selection.
func (c *Config) StorageSettings() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

// BlobSettings returns the blob store selection.
func (c *Config) BlobSettings() blob.Config {
	s3 := c.Blob.S3
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          s3.Region,
			Bucket:          s3.Bucket,
			Prefix:          s3.Prefix,
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			SessionToken:    s3.SessionToken,
			PathStyle:       s3.PathStyle,
		},
	}
}

// ConvertOptions returns the converter options.
func (c *Config) ConvertOptions() convert.Options {
	return convert.Options{
		CompactXML:               c.Conversion.CompactXML,
		ExcludedAnnotationTopics: slices.Clone(c.Conversion.ExcludedAnnotationTopics),
	}
}

// EnrichSettings returns the enrichment cascades.
func (c *Config) EnrichSettings() enrich.Config {
	e := c.Enrichment
	return enrich.Config{
		UpdateCvTerms:         e.UpdateCvTerms,
		UpdateOrganisms:       e.UpdateOrganisms,
		UpdateProteins:        e.UpdateProteins,
		RegenerateShortLabels: e.RegenerateShortLabels,
	}
}

// WebServiceSettings returns the fetcher endpoints and retry policy.
func (c *Config) WebServiceSettings() webservice.Config {
	ws := webservice.DefaultConfig()
	ws.TaxonomyURL = c.Enrichment.TaxonomyURL
	ws.OLSURL = c.Enrichment.OLSURL
	ws.UniProtURL = c.Enrichment.UniProtURL
	if c.Enrichment.Timeout > 0 {
		ws.Timeout = c.Enrichment.Timeout
	}
	ws.MaxRetries = c.Enrichment.MaxRetries
	return ws
}

// UniprotOptions returns the UniProt export options.
func (c *Config) UniprotOptions() uniprotexport.Options {
	return uniprotexport.Options{
		IncludeSpokeExpanded: c.Export.IncludeSpokeExpanded,
		AssignedBy:           c.Export.AssignedBy,
	}
}
