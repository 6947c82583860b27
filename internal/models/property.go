package models

import "time"

// PropertyKind distinguishes apartments from detached houses.
type PropertyKind string

const (
	// PropertyKindApartment is a flat in a multi-unit building. Requires a certificate attachment.
	PropertyKindApartment PropertyKind = "apartment"
	// PropertyKindHouse is a single-family house.
	PropertyKindHouse PropertyKind = "house"
)

// Property is an address owned by a requester, partitioned by sector.
type Property struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	RequesterID uint         `gorm:"not null;index" json:"requester_id"`
	SectorID    uint         `gorm:"not null;index" json:"sector_id"`
	Sector      *Sector      `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
	Kind        PropertyKind `gorm:"type:varchar(20);not null" json:"kind"`
	PostalCode  string       `gorm:"size:6;not null" json:"postal_code"`
	Street      string       `gorm:"size:120;not null" json:"street"`
	Building    string       `gorm:"size:20;not null" json:"building"`
	Apartment   string       `gorm:"size:20" json:"apartment,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
