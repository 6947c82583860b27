package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bagportal/internal/models"
	"bagportal/internal/observability"
	"bagportal/internal/repository"
	"bagportal/internal/service"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	Requesters          int
	PropertiesPerPerson int
	RequestsPerProperty int
	MaxBags             int
	Year                int
	FirstRequesterID    uint
	// DecideEvery decides every n-th request through the decision service; 0 leaves all awaiting.
	DecideEvery int
	// Seed makes a run reproducible; 0 picks a random one.
	Seed  int64
	Clean bool
}

func (o Options) withDefaults() Options {
	if o.Requesters <= 0 {
		o.Requesters = 20
	}
	if o.PropertiesPerPerson <= 0 {
		o.PropertiesPerPerson = 1
	}
	if o.RequestsPerProperty <= 0 {
		o.RequestsPerProperty = 2
	}
	if o.MaxBags <= 0 {
		o.MaxBags = 5
	}
	if o.Year == 0 {
		o.Year = time.Now().UTC().Year()
	}
	if o.FirstRequesterID == 0 {
		o.FirstRequesterID = 1000
	}
	return o
}

// Decider applies a staff decision to a request.
type Decider interface {
	Decide(ctx context.Context, requestID uint, action string, reviewerID uint) (models.BagRequestStatus, error)
}

// Summary counts what a seeding run created.
type Summary struct {
	Requesters int
	Properties int
	Requests   int
	Approved   int
	Declined   int
}

// SeedReviewerID is the staff subject recorded on seeded decisions.
const SeedReviewerID uint = 1

// Seed fills db with demo data. decider may be nil, in which case every
// request stays awaiting regardless of opts.DecideEvery.
func Seed(ctx context.Context, db *gorm.DB, decider Decider, opts Options) (Summary, error) {
	opts = opts.withDefaults()
	var sum Summary

	if opts.Clean {
		if err := clearData(ctx, db); err != nil {
			return sum, fmt.Errorf("clear data: %w", err)
		}
	}
	if err := repository.NewSectorRepository(db).EnsureDefaults(ctx); err != nil {
		return sum, fmt.Errorf("sector catalog: %w", err)
	}

	f := NewFactory(db, opts)
	var created []*models.BagRequest
	for i := 0; i < opts.Requesters; i++ {
		requester, err := f.CreateRequester(ctx)
		if err != nil {
			return sum, err
		}
		sum.Requesters++

		for j := 0; j < opts.PropertiesPerPerson; j++ {
			property, err := f.CreateProperty(ctx, requester)
			if err != nil {
				return sum, err
			}
			sum.Properties++

			for k := 0; k < opts.RequestsPerProperty; k++ {
				req, err := f.CreateRequest(ctx, property)
				if err != nil {
					return sum, err
				}
				sum.Requests++
				created = append(created, req)
			}
		}
	}

	if decider != nil && opts.DecideEvery > 0 {
		if err := decideSome(ctx, decider, f, created, opts.DecideEvery, &sum); err != nil {
			return sum, err
		}
	}

	observability.Logger.InfoContext(ctx, "Seed data created",
		slog.Int("requesters", sum.Requesters),
		slog.Int("requests", sum.Requests),
		slog.Int("approved", sum.Approved),
		slog.Int("declined", sum.Declined),
	)
	return sum, nil
}

func decideSome(ctx context.Context, decider Decider, f *Factory, created []*models.BagRequest, every int, sum *Summary) error {
	for i, req := range created {
		if (i+1)%every != 0 {
			continue
		}
		action := service.ActionApprove
		if f.fake.Number(0, 3) == 0 {
			action = service.ActionDecline
		}
		status, err := decider.Decide(ctx, req.ID, action, SeedReviewerID)
		if err != nil {
			return fmt.Errorf("decide request %d: %w", req.ID, err)
		}
		switch status {
		case models.BagRequestStatusApproved:
			sum.Approved++
		case models.BagRequestStatusDeclined:
			sum.Declined++
		}
	}
	return nil
}

// clearData removes every seeded table in dependency order. Sectors are kept.
func clearData(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&models.Attachment{},
		&models.BagRequest{},
		&models.Property{},
		&models.Requester{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
