// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// BagRequestStatus defines lifecycle states for bag-collection requests.
type BagRequestStatus string

const (
	// BagRequestStatusAwaiting indicates the request is waiting for a staff decision.
	BagRequestStatusAwaiting BagRequestStatus = "awaiting"
	// BagRequestStatusApproved indicates the request was accepted by staff.
	BagRequestStatusApproved BagRequestStatus = "approved"
	// BagRequestStatusDeclined indicates the request was refused by staff.
	BagRequestStatusDeclined BagRequestStatus = "declined"
)

// Valid reports whether s is a known status.
func (s BagRequestStatus) Valid() bool {
	switch s {
	case BagRequestStatusAwaiting, BagRequestStatusApproved, BagRequestStatusDeclined:
		return true
	}
	return false
}

// BagRequest is a requester's application for bag collection at a property.
// Rows are never deleted; only Status, ReviewedByID and DecidedAt change after creation.
type BagRequest struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	PropertyID   uint             `gorm:"not null;index:idx_bag_requests_property_created,priority:1" json:"property_id"`
	Property     *Property        `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	RequesterID  uint             `gorm:"not null;index" json:"requester_id"`
	Requester    *Requester       `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Status       BagRequestStatus `gorm:"type:varchar(20);not null;default:'awaiting';index" json:"status"`
	BagCount     int              `gorm:"not null" json:"bag_count"`
	ArrivalDate  *time.Time       `gorm:"type:date" json:"arrival_date,omitempty"`
	DepartDate   *time.Time       `gorm:"type:date" json:"depart_date,omitempty"`
	Notes        string           `gorm:"size:256" json:"notes"`
	ReviewedByID *uint            `json:"reviewed_by_id,omitempty"`
	DecidedAt    *time.Time       `json:"decided_at,omitempty"`
	Attachments  []Attachment     `gorm:"foreignKey:BagRequestID" json:"attachments,omitempty"`
	CreatedAt    time.Time        `gorm:"index:idx_bag_requests_property_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// BeforeCreate stores creation time in UTC so year bounds compare the same way
// on every driver.
func (r *BagRequest) BeforeCreate(*gorm.DB) error {
	if !r.CreatedAt.IsZero() {
		r.CreatedAt = r.CreatedAt.UTC()
	}
	return nil
}
