package repository

import (
	"context"
	"errors"

	"bagportal/internal/cache"
	"bagportal/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SectorRepository defines persistence operations for sectors.
type SectorRepository interface {
	List(ctx context.Context) ([]models.Sector, error)
	GetByID(ctx context.Context, id uint) (*models.Sector, error)
	// EnsureDefaults installs the default sector catalog, keeping existing rows.
	EnsureDefaults(ctx context.Context) error
}

type sectorRepository struct {
	db *gorm.DB
}

// NewSectorRepository returns a new SectorRepository implementation.
func NewSectorRepository(db *gorm.DB) SectorRepository {
	return &sectorRepository{db: db}
}

func (r *sectorRepository) List(ctx context.Context) ([]models.Sector, error) {
	var sectors []models.Sector
	err := cache.Aside(ctx, cache.SectorsKey, &sectors, cache.SectorsTTL, func() error {
		if err := r.db.WithContext(ctx).Order("id ASC").Find(&sectors).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sectors, nil
}

func (r *sectorRepository) GetByID(ctx context.Context, id uint) (*models.Sector, error) {
	var s models.Sector
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Sector", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &s, nil
}

func (r *sectorRepository) EnsureDefaults(ctx context.Context) error {
	sectors := make([]models.Sector, len(models.DefaultSectors))
	copy(sectors, models.DefaultSectors)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&sectors).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.SectorsKey)
	return nil
}
