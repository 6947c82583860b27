package models

import "time"

// Requester is a registered resident. ID matches the subject of the resident's access token.
type Requester struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	PESEL     string    `gorm:"column:pesel;size:11;not null;uniqueIndex" json:"pesel"`
	FirstName string    `gorm:"size:80;not null" json:"first_name"`
	LastName  string    `gorm:"size:80;not null" json:"last_name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Address   string    `gorm:"size:255;not null" json:"address"`
	NIP       string    `gorm:"column:nip;size:10" json:"nip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
