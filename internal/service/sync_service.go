package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bagportal/internal/models"
	"bagportal/internal/observability"
	"bagportal/internal/quota"
	"bagportal/internal/repository"

	"github.com/google/uuid"
)

// SyncReport summarizes a sector document rebuild.
type SyncReport struct {
	RunID            string        `json:"run_id"`
	Upserted         int           `json:"upserted"`
	Revoked          int           `json:"revoked"`
	DocumentsChanged int           `json:"documents_changed"`
	Skipped          int           `json:"skipped"`
	FreeBags         int           `json:"free_bags"`
	Duration         time.Duration `json:"duration"`
}

// SyncService rebuilds sector documents from the record store.
type SyncService struct {
	requests repository.BagRequestRepository
	sectors  SectorExporter
	logger   *slog.Logger
}

// NewSyncService returns a new SyncService.
func NewSyncService(requests repository.BagRequestRepository, sectors SectorExporter) *SyncService {
	return &SyncService{requests: requests, sectors: sectors, logger: observability.Logger}
}

// Rebuild upserts every approved request with a freshly computed allocation and
// revokes every declined one. Requests still awaiting a decision are left alone.
func (s *SyncService) Rebuild(ctx context.Context) (SyncReport, error) {
	started := time.Now()
	report := SyncReport{RunID: uuid.NewString()}

	entries, err := s.requests.ListEntries(ctx)
	if err != nil {
		return report, fmt.Errorf("list quota entries: %w", err)
	}
	allocations := quota.AllocateBatch(entries)

	approved, err := s.requests.ListDetailedByStatus(ctx, models.BagRequestStatusApproved)
	if err != nil {
		return report, fmt.Errorf("list approved requests: %w", err)
	}
	for i := range approved {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		req := &approved[i]
		sectorID, sectorName := sectorOf(req)
		if sectorID == 0 {
			report.Skipped++
			s.logger.WarnContext(ctx, "Skipping request without sector",
				slog.Uint64("bag_request_id", uint64(req.ID)))
			continue
		}
		alloc, ok := allocations[req.ID]
		if !ok {
			alloc = quota.Allocate(EntryOf(req), entries)
		}
		s.sectors.Upsert(ctx, sectorID, sectorName, BuildRecord(req, alloc))
		report.Upserted++
		report.FreeBags += alloc.FreeBags
	}

	declined, err := s.requests.ListDetailedByStatus(ctx, models.BagRequestStatusDeclined)
	if err != nil {
		return report, fmt.Errorf("list declined requests: %w", err)
	}
	for i := range declined {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		changed := s.sectors.MarkRevoked(ctx, declined[i].ID)
		report.Revoked++
		report.DocumentsChanged += changed
	}

	report.Duration = time.Since(started)
	s.logger.InfoContext(ctx, "Sector documents rebuilt",
		slog.String("run_id", report.RunID),
		slog.Int("upserted", report.Upserted),
		slog.Int("revoked", report.Revoked),
		slog.Int("documents_changed", report.DocumentsChanged),
		slog.Int("skipped", report.Skipped),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}
