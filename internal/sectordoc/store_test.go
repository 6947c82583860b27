package sectordoc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	s, err := NewStore(t.TempDir(), opts...)
	require.NoError(t, err)
	return s
}

func record(id uint, bags int) Record {
	return Record{
		RequestID: id,
		CreatedAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Status:    "approved",
		Requester: RequesterInfo{ID: 42, FirstName: "Anna", LastName: "Nowak", Email: "anna@example.com", Phone: "600 700 800", Address: "ul. Kwiatowa 1"},
		Property:  PropertyInfo{ID: 5, Kind: "house", PostalCode: "65-001", Street: "Kwiatowa", Building: "1"},
		BagCount:  bags,
		FreeBags:  1,
		PaidBags:  bags - 1,
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), lockSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}

func TestUpsertCreatesDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Upsert(ctx, 3, "Jędrzychów", record(10, 2))

	doc, err := s.Load(3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), doc.SectorID)
	assert.Equal(t, "Jędrzychów", doc.SectorName)
	assert.True(t, doc.UpdatedAt.Equal(fixedNow))
	require.Len(t, doc.Applications, 1)

	got := doc.Applications[0]
	assert.Equal(t, uint(10), got.RequestID)
	assert.Equal(t, 2, got.BagCount)
	assert.Equal(t, "Anna", got.Requester.FirstName)
	assert.False(t, got.Revoked)
	assert.Nil(t, got.RevokedAt)

	assert.Equal(t, []string{"sector-3.xml"}, dirNames(t, s.Dir()))
}

func TestUpsertReplacesSameRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Upsert(ctx, 1, "", record(10, 1))
	s.Upsert(ctx, 1, "", record(11, 1))

	second := record(10, 4)
	second.Notes = "updated"
	s.Upsert(ctx, 1, "", second)

	doc, err := s.Load(1)
	require.NoError(t, err)
	require.Len(t, doc.Applications, 2)
	assert.Equal(t, uint(11), doc.Applications[0].RequestID)
	assert.Equal(t, uint(10), doc.Applications[1].RequestID)
	assert.Equal(t, 4, doc.Applications[1].BagCount)
	assert.Equal(t, "updated", doc.Applications[1].Notes)
}

func TestUpsertReplacesCorruptDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(s.Path(4), []byte(`<sector id="4"><application id="1"`), 0o644))

	s.Upsert(ctx, 4, "", record(20, 1))

	doc, err := s.Load(4)
	require.NoError(t, err)
	require.Len(t, doc.Applications, 1)
	assert.Equal(t, uint(20), doc.Applications[0].RequestID)
}

func TestUpsertFallsBackWhenRenameFails(t *testing.T) {
	s := newTestStore(t)
	s.rename = func(string, string) error { return errors.New("rename not permitted") }

	s.Upsert(context.Background(), 2, "", record(7, 1))

	doc, err := s.Load(2)
	require.NoError(t, err)
	require.Len(t, doc.Applications, 1)
	assert.Equal(t, uint(7), doc.Applications[0].RequestID)

	// The temp file is cleaned up after the failed rename.
	assert.Equal(t, []string{"sector-2.xml"}, dirNames(t, s.Dir()))
}

func TestUpsertSwallowsWriteFailure(t *testing.T) {
	s := newTestStore(t)
	// A directory in place of the document makes both write paths fail.
	require.NoError(t, os.Mkdir(s.Path(6), 0o755))

	assert.NotPanics(t, func() {
		s.Upsert(context.Background(), 6, "", record(1, 1))
	})
	assert.Equal(t, []string{"sector-6.xml"}, dirNames(t, s.Dir()))
}

func TestMarkRevokedScansEverySector(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Upsert(ctx, 1, "", record(7, 1))
	s.Upsert(ctx, 2, "", record(7, 1))
	s.Upsert(ctx, 3, "", record(8, 1))

	untouched, err := os.ReadFile(s.Path(3))
	require.NoError(t, err)

	revokedAt := fixedNow.Add(time.Hour)
	s.now = func() time.Time { return revokedAt }

	assert.Equal(t, 2, s.MarkRevoked(ctx, 7))

	for _, sector := range []uint{1, 2} {
		doc, err := s.Load(sector)
		require.NoError(t, err)
		rec, ok := doc.Find(7)
		require.True(t, ok)
		assert.True(t, rec.Revoked)
		require.NotNil(t, rec.RevokedAt)
		assert.True(t, rec.RevokedAt.Equal(revokedAt))
	}

	after, err := os.ReadFile(s.Path(3))
	require.NoError(t, err)
	assert.Equal(t, untouched, after)
}

func TestMarkRevokedDoesNotRestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Upsert(ctx, 1, "", record(7, 1))
	require.Equal(t, 1, s.MarkRevoked(ctx, 7))

	before, err := os.ReadFile(s.Path(1))
	require.NoError(t, err)

	s.now = func() time.Time { return fixedNow.Add(24 * time.Hour) }
	assert.Equal(t, 0, s.MarkRevoked(ctx, 7))

	after, err := os.ReadFile(s.Path(1))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMarkRevokedUnknownRequest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.Equal(t, 0, s.MarkRevoked(ctx, 99))

	s.Upsert(ctx, 1, "", record(7, 1))
	assert.Equal(t, 0, s.MarkRevoked(ctx, 99))

	doc, err := s.Load(1)
	require.NoError(t, err)
	assert.False(t, doc.Applications[0].Revoked)
}

func TestUpsertAfterRevokeRestoresRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Upsert(ctx, 1, "", record(7, 1))
	s.MarkRevoked(ctx, 7)
	s.Upsert(ctx, 1, "", record(7, 1))

	doc, err := s.Load(1)
	require.NoError(t, err)
	require.Len(t, doc.Applications, 1)
	assert.False(t, doc.Applications[0].Revoked)
	assert.Nil(t, doc.Applications[0].RevokedAt)
}

func TestLoadMissingSector(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSectorsIgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Upsert(ctx, 10, "", record(1, 1))
	s.Upsert(ctx, 2, "", record(2, 1))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "sector-x.xml"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".sector-5.xml.123.tmp"), nil, 0o644))

	ids, err := s.Sectors()
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 10}, ids)
}

func TestYAMLCodec(t *testing.T) {
	codec, err := CodecFor("yaml")
	require.NoError(t, err)
	s := newTestStore(t, WithCodec(codec))
	ctx := context.Background()

	rec := record(3, 2)
	rec.ArrivalDate = "2026-06-01"
	rec.Attachments = []AttachmentRef{{ID: 9, Filename: "deed.pdf", ContentType: "application/pdf", Size: 1024, Checksum: "abc", Reference: "/api/attachments/9"}}
	s.Upsert(ctx, 8, "Zatonie", rec)
	assert.Equal(t, 1, s.MarkRevoked(ctx, 3))

	assert.True(t, strings.HasSuffix(s.Path(8), "sector-8.yaml"))
	raw, err := os.ReadFile(s.Path(8))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "revoked: true")

	doc, err := s.Load(8)
	require.NoError(t, err)
	assert.Equal(t, "Zatonie", doc.SectorName)
	require.Len(t, doc.Applications, 1)
	got := doc.Applications[0]
	assert.True(t, got.Revoked)
	assert.Equal(t, "2026-06-01", got.ArrivalDate)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "deed.pdf", got.Attachments[0].Filename)
}

func TestCodecForRejectsUnknownFormat(t *testing.T) {
	_, err := CodecFor("json")
	assert.Error(t, err)

	c, err := CodecFor("")
	require.NoError(t, err)
	assert.Equal(t, "xml", c.Extension())
}

func TestConcurrentUpsertsKeepEveryRecord(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			s.Upsert(ctx, 1, "", record(id, 1))
		}(uint(i))
	}
	wg.Wait()

	doc, err := s.Load(1)
	require.NoError(t, err)
	assert.Len(t, doc.Applications, 20)
	assert.Equal(t, []string{"sector-1.xml"}, dirNames(t, s.Dir()))
}

func TestStoresSharingDirectoryKeepEveryRecord(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	second, err := NewStore(dir, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 200; i++ {
		s := first
		if i%2 == 0 {
			s = second
		}
		wg.Add(1)
		go func(s *Store, id uint) {
			defer wg.Done()
			s.Upsert(ctx, 1, "", record(id, 1))
		}(s, uint(i))
	}
	wg.Wait()

	doc, err := first.Load(1)
	require.NoError(t, err)
	assert.Len(t, doc.Applications, 200)
	assert.FileExists(t, filepath.Join(dir, "sector-1.lock"))

	ids, err := second.Sectors()
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids)
}

func TestNotesRoundTripThroughDocument(t *testing.T) {
	const notes = "brama od podwórza\r\n\tkod <1234> & \"dzwonić\""
	for _, format := range []string{"xml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			codec, err := CodecFor(format)
			require.NoError(t, err)
			s := newTestStore(t, WithCodec(codec))

			rec := record(5, 1)
			rec.Notes = notes
			s.Upsert(context.Background(), 2, "", rec)

			doc, err := s.Load(2)
			require.NoError(t, err)
			require.Len(t, doc.Applications, 1)
			assert.Equal(t, notes, doc.Applications[0].Notes)
		})
	}
}
