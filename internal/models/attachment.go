package models

import (
	"fmt"
	"time"
)

// Attachment is an opaque file uploaded with a bag request, e.g. an ownership certificate.
type Attachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BagRequestID uint      `gorm:"not null;index" json:"bag_request_id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"`
	ContentType  string    `gorm:"size:100;not null" json:"content_type"`
	Size         int64     `gorm:"not null" json:"size"`
	Checksum     string    `gorm:"size:64;not null" json:"checksum"`
	Data         []byte    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Reference returns the API path the attachment can be downloaded from.
func (a Attachment) Reference() string {
	return fmt.Sprintf("/api/attachments/%d", a.ID)
}
