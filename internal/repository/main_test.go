package repository

import (
	"context"
	"testing"
	"time"

	"bagportal/internal/config"
	"bagportal/internal/database"
	"bagportal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{Env: "test", DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, NewSectorRepository(db).EnsureDefaults(context.Background()))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type fixture struct {
	requester models.Requester
	property  models.Property
}

func seedFixture(t *testing.T, db *gorm.DB, requesterID uint, pesel string) fixture {
	t.Helper()
	f := fixture{
		requester: models.Requester{
			ID:        requesterID,
			PESEL:     pesel,
			FirstName: "Anna",
			LastName:  "Nowak",
			Email:     "anna@example.com",
			Phone:     "600700800",
			Address:   "ul. Kwiatowa 1, Płock",
		},
	}
	require.NoError(t, db.Create(&f.requester).Error)

	f.property = models.Property{
		RequesterID: requesterID,
		SectorID:    4,
		Kind:        models.PropertyKindHouse,
		PostalCode:  "09-400",
		Street:      "Kwiatowa",
		Building:    "1",
	}
	require.NoError(t, db.Create(&f.property).Error)
	return f
}

func createRequest(t *testing.T, db *gorm.DB, f fixture, createdAt time.Time, bags int) models.BagRequest {
	t.Helper()
	req := models.BagRequest{
		PropertyID:  f.property.ID,
		RequesterID: f.requester.ID,
		Status:      models.BagRequestStatusAwaiting,
		BagCount:    bags,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&req).Error)
	return req
}
