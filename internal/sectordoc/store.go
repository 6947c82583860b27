package sectordoc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"bagportal/internal/keylock"
	"bagportal/internal/models"
	"bagportal/internal/observability"
)

const filePrefix = "sector-"

// ErrNotFound is returned by Load when a sector has no document yet.
var ErrNotFound = errors.New("sector document not found")

// Store owns the sector document directory.
type Store struct {
	dir    string
	codec  Codec
	logger *slog.Logger
	now    func() time.Time
	rename func(oldpath, newpath string) error
	locks  keylock.Map[uint]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the clock used for updated_at and revoked_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCodec selects the on-disk format. XML is the default.
func WithCodec(c Codec) Option {
	return func(s *Store) { s.codec = c }
}

// NewStore returns a store rooted at dir, creating the directory if needed.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("sector document directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sector document directory: %w", err)
	}
	s := &Store{
		dir:    dir,
		codec:  XMLCodec{},
		logger: observability.Logger,
		now:    time.Now,
		rename: os.Rename,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the directory holding the documents.
func (s *Store) Dir() string { return s.dir }

// Codec returns the codec documents are written with.
func (s *Store) Codec() Codec { return s.codec }

// Path returns the file path of a sector's document.
func (s *Store) Path(sectorID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%d.%s", filePrefix, sectorID, s.codec.Extension()))
}

// Upsert replaces the record of rec.RequestID in the sector's document, or appends it.
// A missing or unreadable document is replaced by a fresh one. Write failures are
// logged and swallowed.
func (s *Store) Upsert(ctx context.Context, sectorID uint, sectorName string, rec Record) {
	unlock := s.lockSector(ctx, sectorID)
	defer unlock()

	doc := s.loadOrFresh(ctx, sectorID)
	if sectorName != "" {
		doc.SectorName = sectorName
	}
	doc.upsert(rec)
	doc.UpdatedAt = s.now().UTC()

	s.persist(ctx, "upsert", doc)
}

// MarkRevoked flags every non-revoked record of requestID as revoked, in every
// sector document, and rewrites only the documents that changed. It returns the
// number of documents that changed.
func (s *Store) MarkRevoked(ctx context.Context, requestID uint) int {
	sectors, err := s.Sectors()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list sector documents",
			slog.Uint64("request_id", uint64(requestID)),
			slog.String("error", err.Error()),
		)
		return 0
	}

	changed := 0
	for _, sectorID := range sectors {
		if s.revokeIn(ctx, sectorID, requestID) {
			changed++
		}
	}
	return changed
}

func (s *Store) revokeIn(ctx context.Context, sectorID, requestID uint) bool {
	unlock := s.lockSector(ctx, sectorID)
	defer unlock()

	doc, err := s.read(sectorID)
	if err != nil {
		// Nothing to revoke in a missing or unreadable document.
		if !errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Skipping unreadable sector document",
				slog.Uint64("sector_id", uint64(sectorID)),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	now := s.now().UTC()
	if !doc.revoke(requestID, now) {
		return false
	}
	doc.UpdatedAt = now
	s.persist(ctx, "revoke", doc)
	return true
}

// lockSector serializes read-modify-write of one sector's document, within this
// process and against other processes writing the same directory. If the file
// lock cannot be taken the write proceeds under the in-process lock only.
func (s *Store) lockSector(ctx context.Context, sectorID uint) func() {
	unlock := s.locks.Lock(sectorID)
	unlockFile, err := s.lockFile(sectorID)
	if err != nil {
		s.logger.WarnContext(ctx, "Sector lock file unavailable",
			slog.Uint64("sector_id", uint64(sectorID)),
			slog.String("error", err.Error()),
		)
		return unlock
	}
	return func() {
		unlockFile()
		unlock()
	}
}

// Load reads a sector's document.
func (s *Store) Load(sectorID uint) (*Document, error) {
	unlock := s.locks.Lock(sectorID)
	defer unlock()
	return s.read(sectorID)
}

// Sectors lists the sector ids that have a document, in ascending order.
func (s *Store) Sectors() ([]uint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read sector document directory: %w", err)
	}

	suffix := "." + s.codec.Extension()
	var ids []uint
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), suffix)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) read(sectorID uint) (*Document, error) {
	data, err := os.ReadFile(s.Path(sectorID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read sector document %d: %w", sectorID, err)
	}

	doc := &Document{}
	if err := s.codec.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode sector document %d: %w", sectorID, err)
	}
	doc.SectorID = sectorID
	return doc, nil
}

func (s *Store) loadOrFresh(ctx context.Context, sectorID uint) *Document {
	doc, err := s.read(sectorID)
	if err == nil {
		return doc
	}
	if !errors.Is(err, ErrNotFound) {
		observability.SectorDocumentCorruptions.Inc()
		s.logger.WarnContext(ctx, "Sector document unreadable, starting a fresh one",
			slog.Uint64("sector_id", uint64(sectorID)),
			slog.String("error", err.Error()),
		)
	}
	return &Document{SectorID: sectorID}
}

// persist writes doc via temp file and rename, falling back to a direct overwrite.
func (s *Store) persist(ctx context.Context, op string, doc *Document) bool {
	path := s.Path(doc.SectorID)
	log := s.logger.With(
		slog.String("operation", op),
		slog.Uint64("sector_id", uint64(doc.SectorID)),
		slog.String("path", path),
	)

	data, err := s.codec.Marshal(doc)
	if err != nil {
		observability.SectorDocumentWrites.WithLabelValues(op, "failed").Inc()
		observability.SectorDocumentWriteFailures.Inc()
		log.ErrorContext(ctx, "Failed to encode sector document",
			slog.String("error_code", models.CodeExportFailure),
			slog.String("error", err.Error()),
		)
		return false
	}

	atomicErr := writeAtomic(path, data, s.rename)
	if atomicErr == nil {
		observability.SectorDocumentWrites.WithLabelValues(op, "atomic").Inc()
		return true
	}

	log.WarnContext(ctx, "Atomic sector document write failed, overwriting in place",
		slog.String("error", atomicErr.Error()),
	)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		observability.SectorDocumentWrites.WithLabelValues(op, "failed").Inc()
		observability.SectorDocumentWriteFailures.Inc()
		log.ErrorContext(ctx, "Failed to write sector document",
			slog.String("error_code", models.CodeExportFailure),
			slog.String("error", err.Error()),
		)
		return false
	}
	observability.SectorDocumentWrites.WithLabelValues(op, "fallback").Inc()
	return true
}

// writeAtomic writes data to a temp file in the target directory and renames it into place.
// The temp file is removed on any failure.
func writeAtomic(path string, data []byte, rename func(oldpath, newpath string) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}
