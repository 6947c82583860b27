package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bagportal/internal/keylock"
	"bagportal/internal/models"
	"bagportal/internal/notifications"
	"bagportal/internal/observability"
	"bagportal/internal/quota"
	"bagportal/internal/repository"
	"bagportal/internal/sectordoc"

	"go.opentelemetry.io/otel/attribute"
)

// Decision actions accepted from staff.
const (
	ActionApprove = "approve"
	ActionDecline = "decline"
)

const defaultExportTimeout = 10 * time.Second

// ParseAction maps a staff action to the status it sets.
func ParseAction(action string) (models.BagRequestStatus, error) {
	switch action {
	case ActionApprove:
		return models.BagRequestStatusApproved, nil
	case ActionDecline:
		return models.BagRequestStatusDeclined, nil
	default:
		return "", models.NewInvalidActionError(action)
	}
}

// SectorExporter mirrors decisions into sector documents.
type SectorExporter interface {
	Upsert(ctx context.Context, sectorID uint, sectorName string, rec sectordoc.Record)
	MarkRevoked(ctx context.Context, requestID uint) int
}

// QuotaAllocator computes the free/paid split of a request.
type QuotaAllocator interface {
	Allocate(ctx context.Context, target quota.Entry) (quota.Allocation, error)
}

// DecisionPublisher announces committed decisions.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, ev notifications.DecisionEvent) error
}

// DecisionService applies staff decisions to bag requests. The stored status is
// authoritative; sector documents and events are best-effort follow-ups.
type DecisionService struct {
	requests      repository.BagRequestRepository
	ledger        QuotaAllocator
	sectors       SectorExporter
	publisher     DecisionPublisher
	exportTimeout time.Duration
	locks         keylock.Map[uint]
	logger        *slog.Logger
}

// NewDecisionService returns a new DecisionService. publisher may be nil.
func NewDecisionService(
	requests repository.BagRequestRepository,
	ledger QuotaAllocator,
	sectors SectorExporter,
	publisher DecisionPublisher,
	exportTimeout time.Duration,
) *DecisionService {
	if exportTimeout <= 0 {
		exportTimeout = defaultExportTimeout
	}
	return &DecisionService{
		requests:      requests,
		ledger:        ledger,
		sectors:       sectors,
		publisher:     publisher,
		exportTimeout: exportTimeout,
		logger:        observability.Logger,
	}
}

// Decide applies action to the request and returns the stored status.
//
// Errors, in precedence order: NOT_FOUND, INVALID_ACTION, NO_CHANGE (carrying the
// current status) and PERSIST_FAILURE. Sector document problems are logged and
// never returned once the status is stored.
func (s *DecisionService) Decide(ctx context.Context, requestID uint, action string, reviewerID uint) (status models.BagRequestStatus, err error) {
	span, ctx := observability.StartSpan(ctx, "DecisionService.Decide",
		attribute.Int64("bag_request.id", int64(requestID)),
		attribute.String("decision.action", action),
	)
	defer func() {
		observability.DecisionsTotal.WithLabelValues(actionLabel(action), resultLabel(err)).Inc()
		span.SetError(err)
		span.End()
	}()

	target, actionErr := ParseAction(action)

	unlock := s.locks.Lock(requestID)
	defer unlock()

	var previous models.BagRequestStatus
	updated, err := s.requests.Transition(ctx, requestID, reviewerID, func(current *models.BagRequest) (models.BagRequestStatus, error) {
		if actionErr != nil {
			return "", actionErr
		}
		if current.Status == target {
			return "", models.NewNoChangeError(current.Status)
		}
		previous = current.Status
		return target, nil
	})
	if err != nil {
		s.logRejected(ctx, requestID, action, err)
		return "", err
	}

	s.logger.InfoContext(ctx, "Bag request decided",
		slog.Uint64("bag_request_id", uint64(requestID)),
		slog.String("previous_status", string(previous)),
		slog.String("status", string(updated.Status)),
		slog.Uint64("reviewer_id", uint64(reviewerID)),
	)

	// The decision is committed; follow-ups must not be cut short by the caller going away.
	followCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.exportTimeout)
	defer cancel()

	sectorID := s.export(followCtx, updated)
	s.publish(followCtx, updated, previous, reviewerID, sectorID)

	return updated.Status, nil
}

func (s *DecisionService) logRejected(ctx context.Context, requestID uint, action string, err error) {
	attrs := []any{
		slog.Uint64("bag_request_id", uint64(requestID)),
		slog.String("action", action),
		slog.String("error_code", models.ErrorCode(err)),
		slog.String("error", err.Error()),
	}
	if models.HTTPStatus(err) >= 500 {
		s.logger.ErrorContext(ctx, "Decision failed", attrs...)
		return
	}
	s.logger.InfoContext(ctx, "Decision rejected", attrs...)
}

// export mirrors the stored status into the sector documents and returns the
// request's sector when it is known.
func (s *DecisionService) export(ctx context.Context, req *models.BagRequest) uint {
	span, ctx := observability.StartSpan(ctx, "DecisionService.export",
		attribute.Int64("bag_request.id", int64(req.ID)),
		attribute.String("bag_request.status", string(req.Status)),
	)
	defer span.End()

	switch req.Status {
	case models.BagRequestStatusApproved:
		detailed, err := s.requests.GetDetailed(ctx, req.ID)
		if err != nil {
			s.exportFailed(ctx, span, "snapshot", req.ID, err)
			return 0
		}
		sectorID, sectorName := sectorOf(detailed)
		if sectorID == 0 {
			s.exportFailed(ctx, span, "snapshot", req.ID, errors.New("request has no property sector"))
			return 0
		}

		alloc, err := s.ledger.Allocate(ctx, EntryOf(detailed))
		if err != nil {
			s.exportFailed(ctx, span, "quota", req.ID, err)
			return sectorID
		}

		s.sectors.Upsert(ctx, sectorID, sectorName, BuildRecord(detailed, alloc))
		observability.FreeBagsGranted.Add(float64(alloc.FreeBags))
		span.AddAttributes(attribute.Int64("sector.id", int64(sectorID)), attribute.Int("quota.free_bags", alloc.FreeBags))
		return sectorID

	case models.BagRequestStatusDeclined:
		changed := s.sectors.MarkRevoked(ctx, req.ID)
		span.AddAttributes(attribute.Int("sector.documents_changed", changed))
		return 0
	}
	return 0
}

func (s *DecisionService) exportFailed(ctx context.Context, span *observability.Span, stage string, requestID uint, err error) {
	exportErr := models.NewExportFailureError(fmt.Errorf("%s: %w", stage, err))
	observability.ExportFailures.WithLabelValues(stage).Inc()
	span.SetError(exportErr)
	s.logger.ErrorContext(ctx, "Sector export failed",
		slog.Uint64("bag_request_id", uint64(requestID)),
		slog.String("stage", stage),
		slog.String("error_code", exportErr.Code),
		slog.String("error", exportErr.Error()),
	)
}

func (s *DecisionService) publish(ctx context.Context, req *models.BagRequest, previous models.BagRequestStatus, reviewerID, sectorID uint) {
	if s.publisher == nil {
		return
	}
	decidedAt := time.Now().UTC()
	if req.DecidedAt != nil {
		decidedAt = req.DecidedAt.UTC()
	}
	ev := notifications.DecisionEvent{
		Type:           notifications.EventBagRequestDecided,
		RequestID:      req.ID,
		Status:         string(req.Status),
		PreviousStatus: string(previous),
		ReviewerID:     reviewerID,
		SectorID:       sectorID,
		DecidedAt:      decidedAt,
	}
	if err := s.publisher.PublishDecision(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish decision event",
			slog.Uint64("bag_request_id", uint64(req.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func actionLabel(action string) string {
	if action == ActionApprove || action == ActionDecline {
		return action
	}
	return "invalid"
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := models.ErrorCode(err); code != "" {
		return code
	}
	return models.CodeInternal
}
