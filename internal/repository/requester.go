package repository

import (
	"context"
	"errors"

	"bagportal/internal/cache"
	"bagportal/internal/models"

	"gorm.io/gorm"
)

// RequesterRepository defines persistence operations for requesters.
type RequesterRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Requester, error)
	Create(ctx context.Context, requester *models.Requester) error
	Update(ctx context.Context, requester *models.Requester) error
}

type requesterRepository struct {
	db *gorm.DB
}

// NewRequesterRepository returns a new RequesterRepository implementation.
func NewRequesterRepository(db *gorm.DB) RequesterRepository {
	return &requesterRepository{db: db}
}

func (r *requesterRepository) GetByID(ctx context.Context, id uint) (*models.Requester, error) {
	var requester models.Requester
	err := cache.Aside(ctx, cache.RequesterKey(id), &requester, cache.RequesterTTL, func() error {
		if err := r.db.WithContext(ctx).First(&requester, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Requester", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &requester, nil
}

func (r *requesterRepository) Create(ctx context.Context, requester *models.Requester) error {
	if err := r.db.WithContext(ctx).Create(requester).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Requester already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *requesterRepository) Update(ctx context.Context, requester *models.Requester) error {
	if err := r.db.WithContext(ctx).Save(requester).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("PESEL already registered")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateRequester(ctx, requester.ID)
	return nil
}
