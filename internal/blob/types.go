// Package blob stores raw PSI-MI XML documents and export artifacts. It
// re-exports the core abstractions and names the key layout.
package blob

import (
	"path"
	"strings"
	"time"

	"psibridge/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrNotFound is returned for missing keys.
	ErrNotFound = core.ErrNotFound
	// ErrExists is returned when Put would replace a blob.
	ErrExists = core.ErrExists
)

// Content types of stored artifacts.
const (
	ContentTypeXML  = "application/xml"
	ContentTypeText = "text/plain"
	ContentTypeGAF  = "text/tab-separated-values"
)

// Metadata keys attached to stored artifacts.
const (
	MetaEntryID = "entry-id"
	MetaSource  = "source"
	MetaFormat  = "format"
)

// Key prefixes.
const (
	SourcesPrefix = "sources/"
	ExportsPrefix = "exports/"
	UniprotPrefix = "uniprot/"
)

// SourceKey is where the original document of an imported entry is kept.
// Only the base name of the source path is used.
func SourceKey(entryID, sourceName string) string {
	name := path.Base(strings.ReplaceAll(sourceName, "\\", "/"))
	if name == "." || name == "/" || name == "" || name == ".." {
		name = "entry.xml"
	}
	return SourcesPrefix + entryID + "/" + name
}

// ExportKey is where a PSI-MI rendering of an entry is written. Compact and
// expanded renderings are kept side by side and replaced on re-export.
func ExportKey(entryID string, compact bool) string {
	mode := "expanded"
	if compact {
		mode = "compact"
	}
	return ExportsPrefix + entryID + "/" + mode + ".xml"
}

// UniprotKey names a UniProt export artifact of the given run, e.g.
// uniprot/20240315T101500Z/cc.txt.
func UniprotKey(at time.Time, name string) string {
	return UniprotPrefix + at.UTC().Format("20060102T150405Z") + "/" + name
}
