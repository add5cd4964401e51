package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables overriding the file configuration.
const (
	EnvStorageDriver     = "PSIBRIDGE_STORAGE_DRIVER"
	EnvSQLitePath        = "PSIBRIDGE_SQLITE_PATH"
	EnvPostgresDSN       = "PSIBRIDGE_POSTGRES_DSN"
	EnvBlobDriver        = "PSIBRIDGE_BLOB_DRIVER"
	EnvBlobFSRoot        = "PSIBRIDGE_BLOB_FS_ROOT"
	EnvS3Bucket          = "PSIBRIDGE_BLOB_S3_BUCKET"
	EnvS3Region          = "PSIBRIDGE_BLOB_S3_REGION"
	EnvS3Prefix          = "PSIBRIDGE_BLOB_S3_PREFIX"
	EnvS3Endpoint        = "PSIBRIDGE_BLOB_S3_ENDPOINT"
	EnvS3AccessKeyID     = "PSIBRIDGE_BLOB_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "PSIBRIDGE_BLOB_S3_SECRET_ACCESS_KEY"
	EnvS3SessionToken    = "PSIBRIDGE_BLOB_S3_SESSION_TOKEN"
	EnvS3PathStyle       = "PSIBRIDGE_BLOB_S3_PATH_STYLE"
	EnvCompactXML        = "PSIBRIDGE_COMPACT_XML"
	EnvLogLevel          = "PSIBRIDGE_LOG_LEVEL"
	EnvLogFormat         = "PSIBRIDGE_LOG_FORMAT"
	EnvMetricsExporter   = "PSIBRIDGE_METRICS_EXPORTER"
	EnvMetricsTextfile   = "PSIBRIDGE_METRICS_TEXTFILE"
	EnvTraceFormat       = "PSIBRIDGE_TRACE_FORMAT"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without replacing variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides c with the PSIBRIDGE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	strs := []struct {
		key string
		dst *string
	}{
		{EnvStorageDriver, &c.Storage.Driver},
		{EnvSQLitePath, &c.Storage.SQLitePath},
		{EnvPostgresDSN, &c.Storage.PostgresDSN},
		{EnvBlobDriver, &c.Blob.Driver},
		{EnvBlobFSRoot, &c.Blob.FSRoot},
		{EnvS3Bucket, &c.Blob.S3.Bucket},
		{EnvS3Region, &c.Blob.S3.Region},
		{EnvS3Prefix, &c.Blob.S3.Prefix},
		{EnvS3Endpoint, &c.Blob.S3.Endpoint},
		{EnvS3AccessKeyID, &c.Blob.S3.AccessKeyID},
		{EnvS3SecretAccessKey, &c.Blob.S3.SecretAccessKey},
		{EnvS3SessionToken, &c.Blob.S3.SessionToken},
		{EnvLogLevel, &c.Log.Level},
		{EnvLogFormat, &c.Log.Format},
		{EnvMetricsExporter, &c.Metrics.Exporter},
		{EnvMetricsTextfile, &c.Metrics.Textfile},
		{EnvTraceFormat, &c.Metrics.TraceFormat},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}
	bools := []struct {
		key string
		dst *bool
	}{
		{EnvS3PathStyle, &c.Blob.S3.PathStyle},
		{EnvCompactXML, &c.Conversion.CompactXML},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = parsed
	}
	return nil
}
