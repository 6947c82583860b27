// Package seed creates demo requesters, properties and bag requests for
// development databases. It is not used by the API server.
package seed

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"bagportal/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/zeebo/blake3"
	"gorm.io/gorm"
)

// certificate is a minimal PDF used as the ownership certificate of seeded apartments.
var certificate = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	fake *gofakeit.Faker
	opts Options
	// requester IDs mirror token subjects, so they are assigned here
	nextRequesterID uint
}

// NewFactory creates a Factory bound to db. A zero opts.Seed gives a random run.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	opts = opts.withDefaults()
	return &Factory{
		db:              db,
		fake:            gofakeit.New(opts.Seed),
		opts:            opts,
		nextRequesterID: opts.FirstRequesterID,
	}
}

// CreateRequester persists a resident profile with a unique PESEL.
func (f *Factory) CreateRequester(ctx context.Context, overrides ...func(*models.Requester)) (*models.Requester, error) {
	id := f.nextRequesterID
	f.nextRequesterID++

	first, last := f.fake.FirstName(), f.fake.LastName()
	r := &models.Requester{
		ID:        id,
		PESEL:     fmt.Sprintf("9%010d", id),
		FirstName: first,
		LastName:  last,
		Email:     f.fake.Email(),
		Phone:     f.fake.Numerify("6## ### ###"),
		Address:   fmt.Sprintf("ul. %s %s, Płock", f.fake.StreetName(), f.fake.StreetNumber()),
	}
	if f.fake.Number(0, 3) == 0 {
		r.NIP = f.fake.Numerify("##########")
	}
	for _, override := range overrides {
		override(r)
	}

	if err := f.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, fmt.Errorf("create requester %d: %w", id, err)
	}
	return r, nil
}

// CreateProperty persists a property for owner in a random default sector.
func (f *Factory) CreateProperty(ctx context.Context, owner *models.Requester, overrides ...func(*models.Property)) (*models.Property, error) {
	sector := models.DefaultSectors[f.fake.Number(0, len(models.DefaultSectors)-1)]
	p := &models.Property{
		RequesterID: owner.ID,
		SectorID:    sector.ID,
		Kind:        models.PropertyKindHouse,
		PostalCode:  f.fake.Numerify("09-4##"),
		Street:      f.fake.StreetName(),
		Building:    f.fake.StreetNumber(),
	}
	if f.fake.Bool() {
		p.Kind = models.PropertyKindApartment
		p.Apartment = fmt.Sprintf("%d", f.fake.Number(1, 120))
	}
	for _, override := range overrides {
		override(p)
	}

	if err := f.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create property for requester %d: %w", owner.ID, err)
	}
	p.Sector = &sector
	return p, nil
}

// CreateRequest persists an awaiting request for property, created at a random
// moment of the seeded year. Apartment requests carry a certificate.
func (f *Factory) CreateRequest(ctx context.Context, property *models.Property, overrides ...func(*models.BagRequest)) (*models.BagRequest, error) {
	start := time.Date(f.opts.Year, time.January, 1, 8, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-10 * time.Hour)
	if now := time.Now().UTC(); now.Before(end) && now.After(start) {
		end = now
	}

	req := &models.BagRequest{
		PropertyID:  property.ID,
		RequesterID: property.RequesterID,
		Status:      models.BagRequestStatusAwaiting,
		BagCount:    f.fake.Number(1, f.opts.MaxBags),
		Notes:       f.fake.Sentence(6),
		CreatedAt:   f.fake.DateRange(start, end).UTC(),
	}
	if f.fake.Number(0, 4) == 0 {
		arrival := req.CreatedAt.AddDate(0, 0, f.fake.Number(1, 30)).Truncate(24 * time.Hour)
		depart := arrival.AddDate(0, 0, f.fake.Number(2, 21))
		req.ArrivalDate, req.DepartDate = &arrival, &depart
	}
	if property.Kind == models.PropertyKindApartment {
		sum := blake3.Sum256(certificate)
		req.Attachments = []models.Attachment{{
			Filename:    "akt-wlasnosci.pdf",
			ContentType: "application/pdf",
			Size:        int64(len(certificate)),
			Checksum:    hex.EncodeToString(sum[:]),
			Data:        certificate,
		}}
	}
	for _, override := range overrides {
		override(req)
	}

	if err := f.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, fmt.Errorf("create request for property %d: %w", property.ID, err)
	}
	return req, nil
}
