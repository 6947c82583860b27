package service

import (
	"time"

	"bagportal/internal/models"
	"bagportal/internal/quota"
	"bagportal/internal/sectordoc"
)

const dateLayout = "2006-01-02"

// EntryOf returns the quota view of a request.
func EntryOf(req *models.BagRequest) quota.Entry {
	return quota.Entry{
		ID:         req.ID,
		PropertyID: req.PropertyID,
		CreatedAt:  req.CreatedAt,
		BagCount:   req.BagCount,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// BuildRecord snapshots a detailed request and its allocation for a sector document.
func BuildRecord(req *models.BagRequest, alloc quota.Allocation) sectordoc.Record {
	rec := sectordoc.Record{
		RequestID:   req.ID,
		CreatedAt:   req.CreatedAt.UTC(),
		Status:      string(req.Status),
		BagCount:    req.BagCount,
		FreeBags:    alloc.FreeBags,
		PaidBags:    alloc.PaidBags,
		ArrivalDate: formatDate(req.ArrivalDate),
		DepartDate:  formatDate(req.DepartDate),
		Notes:       req.Notes,
	}

	if r := req.Requester; r != nil {
		rec.Requester = sectordoc.RequesterInfo{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     r.Phone,
			Address:   r.Address,
		}
	} else {
		rec.Requester.ID = req.RequesterID
	}

	if p := req.Property; p != nil {
		rec.Property = sectordoc.PropertyInfo{
			ID:         p.ID,
			Kind:       string(p.Kind),
			PostalCode: p.PostalCode,
			Street:     p.Street,
			Building:   p.Building,
			Apartment:  p.Apartment,
		}
	} else {
		rec.Property.ID = req.PropertyID
	}

	for _, a := range req.Attachments {
		rec.Attachments = append(rec.Attachments, sectordoc.AttachmentRef{
			ID:          a.ID,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			Checksum:    a.Checksum,
			Reference:   a.Reference(),
		})
	}
	return rec
}

func sectorOf(req *models.BagRequest) (id uint, name string) {
	if req.Property == nil {
		return 0, ""
	}
	if req.Property.Sector != nil {
		name = req.Property.Sector.Name
	}
	return req.Property.SectorID, name
}
