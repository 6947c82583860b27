package repository

import (
	"context"
	"errors"
	"time"

	"bagportal/internal/models"
	"bagportal/internal/quota"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DecideFunc inspects the locked current row and returns the status to store.
// Returning an error aborts the transition without writing.
type DecideFunc func(current *models.BagRequest) (models.BagRequestStatus, error)

// BagRequestRepository defines persistence operations for bag requests.
type BagRequestRepository interface {
	Create(ctx context.Context, req *models.BagRequest) error
	GetByID(ctx context.Context, id uint) (*models.BagRequest, error)
	// GetDetailed loads the request with its requester, property, sector and
	// attachment metadata. Attachment payloads are not loaded.
	GetDetailed(ctx context.Context, id uint) (*models.BagRequest, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.BagRequest, error)
	ListByStatus(ctx context.Context, status models.BagRequestStatus, limit, offset int) ([]models.BagRequest, error)
	ListDetailedByStatus(ctx context.Context, status models.BagRequestStatus) ([]models.BagRequest, error)
	ListEntriesForProperty(ctx context.Context, propertyID uint, year int) ([]quota.Entry, error)
	ListEntries(ctx context.Context) ([]quota.Entry, error)
	// Transition locks the row, asks decide for the next status and stores it
	// with the reviewer and decision time in one transaction.
	Transition(ctx context.Context, id uint, reviewerID uint, decide DecideFunc) (*models.BagRequest, error)
}

type bagRequestRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewBagRequestRepository returns a new BagRequestRepository implementation.
func NewBagRequestRepository(db *gorm.DB) BagRequestRepository {
	return &bagRequestRepository{db: db, now: time.Now}
}

func (r *bagRequestRepository) Create(ctx context.Context, req *models.BagRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if isForeignKeyError(err) {
			return models.NewValidationError("Referenced property or requester does not exist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bagRequestRepository) GetByID(ctx context.Context, id uint) (*models.BagRequest, error) {
	var req models.BagRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Bag request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func detailed(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Requester").
		Preload("Property.Sector").
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Omit("data").Order("id ASC")
		})
}

func (r *bagRequestRepository) GetDetailed(ctx context.Context, id uint) (*models.BagRequest, error) {
	var req models.BagRequest
	if err := detailed(r.db.WithContext(ctx)).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Bag request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *bagRequestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.BagRequest, error) {
	var reqs []models.BagRequest
	err := detailed(r.db.WithContext(ctx)).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *bagRequestRepository) ListByStatus(ctx context.Context, status models.BagRequestStatus, limit, offset int) ([]models.BagRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	q := detailed(r.db.WithContext(ctx))
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reqs []models.BagRequest
	if err := q.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *bagRequestRepository) ListDetailedByStatus(ctx context.Context, status models.BagRequestStatus) ([]models.BagRequest, error) {
	var reqs []models.BagRequest
	err := detailed(r.db.WithContext(ctx)).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

type entryRow struct {
	ID         uint
	PropertyID uint
	CreatedAt  time.Time
	BagCount   int
}

func toEntries(rows []entryRow) []quota.Entry {
	entries := make([]quota.Entry, len(rows))
	for i, row := range rows {
		entries[i] = quota.Entry{
			ID:         row.ID,
			PropertyID: row.PropertyID,
			CreatedAt:  row.CreatedAt,
			BagCount:   row.BagCount,
		}
	}
	return entries
}

// ListEntriesForProperty returns the quota view of every request of the property
// created in the given UTC calendar year, regardless of status.
func (r *bagRequestRepository) ListEntriesForProperty(ctx context.Context, propertyID uint, year int) ([]quota.Entry, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var rows []entryRow
	err := r.db.WithContext(ctx).
		Model(&models.BagRequest{}).
		Select("id, property_id, created_at, bag_count").
		Where("property_id = ? AND created_at >= ? AND created_at < ?", propertyID, start, end).
		Order("created_at ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return toEntries(rows), nil
}

func (r *bagRequestRepository) ListEntries(ctx context.Context) ([]quota.Entry, error) {
	var rows []entryRow
	err := r.db.WithContext(ctx).
		Model(&models.BagRequest{}).
		Select("id, property_id, created_at, bag_count").
		Order("property_id ASC, created_at ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return toEntries(rows), nil
}

func (r *bagRequestRepository) Transition(ctx context.Context, id uint, reviewerID uint, decide DecideFunc) (*models.BagRequest, error) {
	var updated models.BagRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Bag request", id)
			}
			return models.NewPersistFailureError(err)
		}

		next, err := decide(&updated)
		if err != nil {
			return err
		}

		decidedAt := r.now()
		updates := map[string]interface{}{
			"status":         next,
			"decided_at":     decidedAt,
			"reviewed_by_id": reviewerID,
		}
		if err := tx.Model(&models.BagRequest{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return models.NewPersistFailureError(err)
		}

		updated.Status = next
		updated.DecidedAt = &decidedAt
		updated.ReviewedByID = &reviewerID
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		// Commit failures surface here unwrapped.
		return nil, models.NewPersistFailureError(err)
	}
	return &updated, nil
}
