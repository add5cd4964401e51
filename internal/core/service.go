package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"psibridge/internal/blob"
	"psibridge/internal/convert"
	"psibridge/internal/enrich"
	"psibridge/internal/infra/persistence/memory"
	"psibridge/internal/uniprotexport"
	"psibridge/pkg/domain"
	"psibridge/pkg/psixml"
)

// Operation names used for logs, metrics, spans and audit entries.
const (
	OpImportXML     = "import_xml"
	OpExportXML     = "export_xml"
	OpListEntries   = "list_entries"
	OpGetEntry      = "get_entry"
	OpDeleteEntry   = "delete_entry"
	OpEnrichEntry   = "enrich_entry"
	OpExportUniprot = "export_uniprot"
)

// Names of the UniProt export artifacts.
const (
	UniprotCCName  = "interactions.cc"
	UniprotGAFName = "interactions.gaf"
)

const formatPsiMI = "psi-mi-xml"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Service converts PSI-MI XML documents into curated entries, keeps them in
// an entry store and writes their artifacts to a blob store.
type Service struct {
	entries   domain.EntryStore
	blobs     blob.Store
	converter *convert.Converter
	enricher  *enrich.Enricher
	uniprot   uniprotexport.Options
	clock     Clock
	newID     func() string
	logger    Logger
	metrics   MetricsRecorder
	tracer    Tracer
	audit     AuditRecorder
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder sets the operation metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder sets the audit recorder.
func WithAuditRecorder(a AuditRecorder) ServiceOption {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithClock overrides the clock used for audit and export timestamps.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator overrides the entry id generator.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithConvertOptions sets the converter options. The compact flag only sets
// the default; ExportXML chooses per call.
func WithConvertOptions(opts convert.Options) ServiceOption {
	return func(s *Service) { s.converter = convert.New(opts) }
}

// WithEnricher enables EnrichEntry.
func WithEnricher(e *enrich.Enricher) ServiceOption {
	return func(s *Service) { s.enricher = e }
}

// WithUniprotOptions sets the UniProt export options.
func WithUniprotOptions(opts uniprotexport.Options) ServiceOption {
	return func(s *Service) { s.uniprot = opts }
}

// NewService constructs a service over the supplied stores.
func NewService(entries domain.EntryStore, blobs blob.Store, opts ...ServiceOption) *Service {
	s := &Service{
		entries:   entries,
		blobs:     blobs,
		converter: convert.New(convert.DefaultOptions()),
		clock:     ClockFunc(func() time.Time { return time.Now().UTC() }),
		newID:     uuid.NewString,
		logger:    noopLogger{},
		metrics:   noopMetricsRecorder{},
		tracer:    noopTracer{},
		audit:     noopAuditRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service with in-memory entry and blob stores.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(), blob.NewMemory(), opts...)
}

// Entries returns the entry store.
func (s *Service) Entries() domain.EntryStore { return s.entries }

// Blobs returns the blob store.
func (s *Service) Blobs() blob.Store { return s.blobs }

// Close releases the entry store connection, if it holds one.
func (s *Service) Close() error {
	if c, ok := s.entries.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// begin starts an observed operation. The returned function must be called
// once with the affected entity id and the operation error.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(entityID string, err error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	s.logger.Debug("operation started", "operation", op)
	return ctx, func(entityID string, err error) {
		duration := time.Since(start)
		span.End(err)
		s.metrics.Observe(ctx, op, err == nil, duration)
		entry := AuditEntry{Operation: op, EntityID: entityID, Status: AuditStatusSuccess, OccurredAt: s.clock.Now()}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
			s.logger.Error("operation failed", "operation", op, "entity_id", entityID, "error", err)
		} else {
			s.logger.Info("operation completed", "operation", op, "entity_id", entityID, "duration_ms", duration.Milliseconds())
		}
		s.audit.Record(ctx, entry)
	}
}

func (s *Service) countEntries(op string, n int) {
	if c, ok := s.metrics.(entryCounter); ok {
		c.RecordEntries(op, n)
	}
}

func (s *Service) getEntry(ctx context.Context, id string) (domain.EntryRecord, error) {
	rec, err := s.entries.Get(ctx, id)
	if errors.Is(err, domain.ErrEntryNotFound) {
		return domain.EntryRecord{}, ErrNotFound{Entity: EntityEntry, ID: id}
	}
	return rec, err
}

// ImportXML converts every entry of a PSI-MI XML document into a stored
// curated entry. The raw document is kept once in the blob store and
// referenced by each record. Nothing is stored when any entry fails.
func (s *Service) ImportXML(ctx context.Context, name string, r io.Reader) (summaries []domain.EntrySummary, err error) {
	ctx, done := s.begin(ctx, OpImportXML)
	var batchID string
	defer func() { done(batchID, err) }()

	// The raw bytes are kept for the source blob while entries stream
	// through the converter.
	var raw bytes.Buffer
	converted, err := s.converter.ReadEntries(io.TeeReader(r, &raw))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}
	if len(converted) == 0 {
		return nil, fmt.Errorf("import %s: %w", name, ErrEmptyDocument)
	}

	batchID = s.newID()
	sourceKey := blob.SourceKey(batchID, name)
	if _, err = s.blobs.Put(ctx, sourceKey, bytes.NewReader(raw.Bytes()), blob.PutOptions{
		ContentType: blob.ContentTypeXML,
		Metadata:    map[string]string{blob.MetaSource: name, blob.MetaFormat: formatPsiMI},
	}); err != nil {
		return nil, fmt.Errorf("store source %s: %w", name, err)
	}

	now := s.clock.Now()
	saved := make([]string, 0, len(converted))
	for i, entry := range converted {
		id := batchID
		if i > 0 {
			id = s.newID()
		}
		rec := domain.EntryRecord{ID: id, Label: entry.Label(), SourceKey: sourceKey, Entry: entry, CreatedAt: now, UpdatedAt: now}
		if err = s.entries.Save(ctx, rec); err != nil {
			s.rollbackImport(ctx, saved, sourceKey)
			return nil, fmt.Errorf("save entry %d of %s: %w", i+1, name, err)
		}
		saved = append(saved, id)
		summaries = append(summaries, rec.Summarize())
	}
	s.countEntries(OpImportXML, len(saved))
	s.logger.Info("document imported", "source", name, "source_key", sourceKey, "entries", len(saved))
	return summaries, nil
}

func (s *Service) rollbackImport(ctx context.Context, ids []string, sourceKey string) {
	for _, id := range ids {
		if err := s.entries.Delete(ctx, id); err != nil {
			s.logger.Warn("rollback entry", "entry_id", id, "error", err)
		}
	}
	if _, err := s.blobs.Delete(ctx, sourceKey); err != nil {
		s.logger.Warn("rollback source", "key", sourceKey, "error", err)
	}
}

// ExportXML writes the stored entry as PSI-MI XML to w, when not nil, and to
// the blob store, replacing a previous export of the same layout.
func (s *Service) ExportXML(ctx context.Context, id string, compact bool, w io.Writer) (info blob.Info, err error) {
	ctx, done := s.begin(ctx, OpExportXML)
	defer func() { done(id, err) }()

	rec, err := s.getEntry(ctx, id)
	if err != nil {
		return blob.Info{}, err
	}
	opts := s.converter.Options()
	opts.CompactXML = compact
	set, err := s.converter.WithOptions(opts).IntactToPsiSet([]*domain.IntactEntry{rec.Entry})
	if err != nil {
		return blob.Info{}, fmt.Errorf("convert entry %s: %w", id, err)
	}
	var buf bytes.Buffer
	if err = psixml.Encode(&buf, set); err != nil {
		return blob.Info{}, fmt.Errorf("encode entry %s: %w", id, err)
	}
	info, err = s.blobs.Put(ctx, blob.ExportKey(id, compact), bytes.NewReader(buf.Bytes()), blob.PutOptions{
		ContentType: blob.ContentTypeXML,
		Metadata:    map[string]string{blob.MetaEntryID: id, blob.MetaFormat: formatPsiMI},
		Overwrite:   true,
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store export %s: %w", id, err)
	}
	if w != nil {
		if _, err = w.Write(buf.Bytes()); err != nil {
			return blob.Info{}, fmt.Errorf("write export %s: %w", id, err)
		}
	}
	s.countEntries(OpExportXML, 1)
	return info, nil
}

// ListEntries returns the stored entries in creation order.
func (s *Service) ListEntries(ctx context.Context) (out []domain.EntrySummary, err error) {
	ctx, done := s.begin(ctx, OpListEntries)
	defer func() { done("", err) }()
	return s.entries.List(ctx)
}

// GetEntry returns a stored entry.
func (s *Service) GetEntry(ctx context.Context, id string) (rec domain.EntryRecord, err error) {
	ctx, done := s.begin(ctx, OpGetEntry)
	defer func() { done(id, err) }()
	return s.getEntry(ctx, id)
}

// DeleteEntry removes a stored entry and its exports. The source document
// is removed with the last entry referencing it.
func (s *Service) DeleteEntry(ctx context.Context, id string) (err error) {
	ctx, done := s.begin(ctx, OpDeleteEntry)
	defer func() { done(id, err) }()

	rec, err := s.getEntry(ctx, id)
	if err != nil {
		return err
	}
	if err = s.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return ErrNotFound{Entity: EntityEntry, ID: id}
		}
		return err
	}
	if err = s.deleteExports(ctx, id); err != nil {
		return err
	}
	if rec.SourceKey == "" {
		return nil
	}
	remaining, err := s.entries.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range remaining {
		if other.SourceKey == rec.SourceKey {
			return nil
		}
	}
	if _, err = s.blobs.Delete(ctx, rec.SourceKey); err != nil {
		return fmt.Errorf("delete source %s: %w", rec.SourceKey, err)
	}
	return nil
}

func (s *Service) deleteExports(ctx context.Context, id string) error {
	for _, compact := range []bool{false, true} {
		key := blob.ExportKey(id, compact)
		if _, err := s.blobs.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete export %s: %w", key, err)
		}
	}
	return nil
}

// EnrichEntry enriches a stored entry from the configured fetchers and saves
// it when anything changed. Exports made before the change are removed.
func (s *Service) EnrichEntry(ctx context.Context, id string) (report enrich.Report, err error) {
	ctx, done := s.begin(ctx, OpEnrichEntry)
	defer func() { done(id, err) }()

	if s.enricher == nil {
		return enrich.Report{}, ErrEnrichmentDisabled
	}
	rec, err := s.getEntry(ctx, id)
	if err != nil {
		return enrich.Report{}, err
	}
	report, err = s.enricher.EnrichEntry(ctx, rec.Entry)
	if err != nil {
		return report, fmt.Errorf("enrich entry %s: %w", id, err)
	}
	s.logger.Info("entry enriched", "entry_id", id,
		"terms", report.Terms, "organisms", report.Organisms, "proteins", report.Proteins,
		"relabelled", report.Relabelled, "missing", report.Missing)
	if !report.Changed() {
		return report, nil
	}
	rec.Label = rec.Entry.Label()
	if err = s.entries.Save(ctx, rec); err != nil {
		return report, fmt.Errorf("save entry %s: %w", id, err)
	}
	if err = s.deleteExports(ctx, id); err != nil {
		return report, err
	}
	s.countEntries(OpEnrichEntry, 1)
	return report, nil
}

// UniprotExport describes one UniProt export run.
type UniprotExport struct {
	Entries int
	Pairs   int
	CCKey   string
	GAFKey  string
}

// ExportUniprot writes UniProt CC interaction lines and GO annotations for
// the given entries, or for every stored entry when ids is empty. Output goes
// to cc and gaf when not nil and to the blob store under one timestamp.
func (s *Service) ExportUniprot(ctx context.Context, ids []string, cc, gaf io.Writer) (res UniprotExport, err error) {
	ctx, done := s.begin(ctx, OpExportUniprot)
	defer func() { done("", err) }()

	if len(ids) == 0 {
		all, err := s.entries.List(ctx)
		if err != nil {
			return UniprotExport{}, err
		}
		for _, e := range all {
			ids = append(ids, e.ID)
		}
	}
	entries := make([]*domain.IntactEntry, 0, len(ids))
	for _, id := range ids {
		rec, err := s.getEntry(ctx, id)
		if err != nil {
			return UniprotExport{}, err
		}
		entries = append(entries, rec.Entry)
	}

	now := s.clock.Now()
	opts := s.uniprot
	if opts.Date.IsZero() {
		opts.Date = now
	}
	bins := uniprotexport.Classify(entries)
	var ccBuf, gafBuf bytes.Buffer
	if err = uniprotexport.WriteCCLines(&ccBuf, bins, opts); err != nil {
		return UniprotExport{}, fmt.Errorf("write cc lines: %w", err)
	}
	if err = uniprotexport.WriteGOLines(&gafBuf, bins, opts); err != nil {
		return UniprotExport{}, fmt.Errorf("write go lines: %w", err)
	}

	res = UniprotExport{
		Entries: len(entries),
		Pairs:   len(bins),
		CCKey:   blob.UniprotKey(now, UniprotCCName),
		GAFKey:  blob.UniprotKey(now, UniprotGAFName),
	}
	artifacts := []struct {
		key, contentType, format string
		data                     []byte
		w                        io.Writer
	}{
		{res.CCKey, blob.ContentTypeText, "uniprot-cc", ccBuf.Bytes(), cc},
		{res.GAFKey, blob.ContentTypeGAF, "gaf-2.2", gafBuf.Bytes(), gaf},
	}
	for _, a := range artifacts {
		if _, err = s.blobs.Put(ctx, a.key, bytes.NewReader(a.data), blob.PutOptions{
			ContentType: a.contentType,
			Metadata:    map[string]string{blob.MetaFormat: a.format},
			Overwrite:   true,
		}); err != nil {
			return UniprotExport{}, fmt.Errorf("store %s: %w", a.key, err)
		}
		if a.w != nil {
			if _, err = a.w.Write(a.data); err != nil {
				return UniprotExport{}, fmt.Errorf("write %s: %w", a.key, err)
			}
		}
	}
	s.countEntries(OpExportUniprot, len(entries))
	return res, nil
}
