package repository

import (
	"context"
	"errors"

	"bagportal/internal/models"

	"gorm.io/gorm"
)

// AttachmentRepository reads stored attachments.
type AttachmentRepository interface {
	// GetByID loads the attachment including its payload.
	GetByID(ctx context.Context, id uint) (*models.Attachment, error)
	// OwnerOf returns the requester that submitted the attachment's request.
	OwnerOf(ctx context.Context, id uint) (uint, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository returns a new AttachmentRepository implementation.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	var a models.Attachment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Attachment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &a, nil
}

func (r *attachmentRepository) OwnerOf(ctx context.Context, id uint) (uint, error) {
	var owner struct{ RequesterID uint }
	res := r.db.WithContext(ctx).
		Table("attachments").
		Select("bag_requests.requester_id").
		Joins("JOIN bag_requests ON bag_requests.id = attachments.bag_request_id").
		Where("attachments.id = ?", id).
		Limit(1).
		Scan(&owner)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, models.NewNotFoundError("Attachment", id)
	}
	return owner.RequesterID, nil
}
