// Package sectordoc keeps one human-readable document per sector holding a
// snapshot of every approved bag request of that sector.
//
// Documents are written with a temp-file-and-rename discipline and are a
// best-effort mirror of the record store: write failures are logged and
// counted, never returned to callers. Declined requests are marked revoked in
// place; records are never removed.
package sectordoc

import (
	"encoding/xml"
	"time"
)

// Document is the on-disk content for one sector.
type Document struct {
	XMLName      xml.Name  `xml:"sector" yaml:"-"`
	SectorID     uint      `xml:"id,attr" yaml:"sector_id"`
	SectorName   string    `xml:"name,attr,omitempty" yaml:"sector_name,omitempty"`
	UpdatedAt    time.Time `xml:"updated_at,attr" yaml:"updated_at"`
	Applications []Record  `xml:"application" yaml:"applications"`
}

// Record is the snapshot of one approved bag request.
type Record struct {
	RequestID   uint            `xml:"id,attr" yaml:"id"`
	Revoked     bool            `xml:"revoked,attr" yaml:"revoked"`
	RevokedAt   *time.Time      `xml:"revoked_at,attr,omitempty" yaml:"revoked_at,omitempty"`
	CreatedAt   time.Time       `xml:"created_at" yaml:"created_at"`
	Status      string          `xml:"status" yaml:"status"`
	Requester   RequesterInfo   `xml:"requester" yaml:"requester"`
	Property    PropertyInfo    `xml:"property" yaml:"property"`
	BagCount    int             `xml:"bag_count" yaml:"bag_count"`
	FreeBags    int             `xml:"free_bags" yaml:"free_bags"`
	PaidBags    int             `xml:"paid_bags" yaml:"paid_bags"`
	ArrivalDate string          `xml:"arrival_date,omitempty" yaml:"arrival_date,omitempty"`
	DepartDate  string          `xml:"depart_date,omitempty" yaml:"depart_date,omitempty"`
	Notes       string          `xml:"notes,omitempty" yaml:"notes,omitempty"`
	Attachments []AttachmentRef `xml:"attachments>attachment" yaml:"attachments,omitempty"`
}

// RequesterInfo is the requester part of a record.
type RequesterInfo struct {
	ID        uint   `xml:"id,attr" yaml:"id"`
	FirstName string `xml:"first_name" yaml:"first_name"`
	LastName  string `xml:"last_name" yaml:"last_name"`
	Email     string `xml:"email" yaml:"email"`
	Phone     string `xml:"phone" yaml:"phone"`
	Address   string `xml:"address" yaml:"address"`
}

// PropertyInfo is the property and address part of a record.
type PropertyInfo struct {
	ID         uint   `xml:"id,attr" yaml:"id"`
	Kind       string `xml:"kind" yaml:"kind"`
	PostalCode string `xml:"postal_code" yaml:"postal_code"`
	Street     string `xml:"street" yaml:"street"`
	Building   string `xml:"building" yaml:"building"`
	Apartment  string `xml:"apartment,omitempty" yaml:"apartment,omitempty"`
}

// AttachmentRef points at an attachment kept by the record store.
type AttachmentRef struct {
	ID          uint   `xml:"id,attr" yaml:"id"`
	Filename    string `xml:"filename" yaml:"filename"`
	ContentType string `xml:"content_type" yaml:"content_type"`
	Size        int64  `xml:"size" yaml:"size"`
	Checksum    string `xml:"checksum" yaml:"checksum"`
	Reference   string `xml:"reference" yaml:"reference"`
}

// Find returns the record for requestID, if present.
func (d *Document) Find(requestID uint) (Record, bool) {
	for _, r := range d.Applications {
		if r.RequestID == requestID {
			return r, true
		}
	}
	return Record{}, false
}

// upsert drops any record with the same request id and appends rec.
func (d *Document) upsert(rec Record) {
	kept := d.Applications[:0]
	for _, r := range d.Applications {
		if r.RequestID != rec.RequestID {
			kept = append(kept, r)
		}
	}
	d.Applications = append(kept, rec)
}

// revoke marks every live record of requestID as revoked and reports whether anything changed.
func (d *Document) revoke(requestID uint, at time.Time) bool {
	changed := false
	for i := range d.Applications {
		r := &d.Applications[i]
		if r.RequestID != requestID || r.Revoked {
			continue
		}
		stamp := at
		r.Revoked = true
		r.RevokedAt = &stamp
		changed = true
	}
	return changed
}
