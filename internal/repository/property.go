package repository

import (
	"context"
	"errors"

	"bagportal/internal/models"

	"gorm.io/gorm"
)

// PropertyRepository defines persistence operations for properties.
type PropertyRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Property, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]models.Property, error)
	// FindOrCreate returns the requester's property at the same address, creating it if needed.
	FindOrCreate(ctx context.Context, p *models.Property) (*models.Property, error)
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository returns a new PropertyRepository implementation.
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := r.db.WithContext(ctx).Preload("Sector").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Property", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

func (r *propertyRepository) ListByRequester(ctx context.Context, requesterID uint) ([]models.Property, error) {
	var props []models.Property
	if err := r.db.WithContext(ctx).Preload("Sector").Where("requester_id = ?", requesterID).Order("id ASC").Find(&props).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return props, nil
}

func (r *propertyRepository) FindOrCreate(ctx context.Context, p *models.Property) (*models.Property, error) {
	var existing models.Property
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{
			"requester_id": p.RequesterID,
			"sector_id":    p.SectorID,
			"kind":         p.Kind,
			"postal_code":  p.PostalCode,
			"street":       p.Street,
			"building":     p.Building,
			"apartment":    p.Apartment,
		}).
		FirstOrCreate(&existing).Error
	if err != nil {
		if isForeignKeyError(err) {
			return nil, models.NewValidationError("Unknown sector or requester")
		}
		return nil, models.NewInternalError(err)
	}
	return &existing, nil
}
