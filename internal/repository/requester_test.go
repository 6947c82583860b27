package repository

import (
	"context"
	"errors"
	"testing"

	"bagportal/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequesterRepository_CreateDuplicatePESEL(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRequesterRepository(db)
	ctx := context.Background()

	first := &models.Requester{ID: 1, PESEL: "90010112345", FirstName: "Jan", LastName: "Kowalski", Email: "jan@example.com", Phone: "600700800", Address: "ul. Długa 5"}
	require.NoError(t, repo.Create(ctx, first))

	dup := *first
	dup.ID = 2
	err := repo.Create(ctx, &dup)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Kowalski", got.LastName)

	got.Phone = "+48 600 700 801"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "+48 600 700 801", got.Phone)

	_, err = repo.GetByID(ctx, 2)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: requesters.pesel")))
	assert.False(t, isUniqueConstraintError(nil))

	assert.True(t, isForeignKeyError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isForeignKeyError(errors.New("FOREIGN KEY constraint failed")))
}
