package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL and applies
// the schema. Skipped when the variable is unset or the connection fails.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func createTestUser(t *testing.T, db *DB) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id, err := db.CreateUser(ctx, "Test User", "test-"+uuid.New().String()+"@example.com", "hash")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.DeleteUser(ctx, id) })
	return id
}

func TestIntegration_UserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "crud-" + uuid.New().String() + "@example.com"
	id, err := db.CreateUser(ctx, "Test User", email, "hash-1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	u, err := db.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Test User", u.Name)
	assert.Equal(t, email, u.Email)
	assert.Equal(t, "hash-1", u.PasswordHash)
	assert.True(t, u.PasswordSet)

	byEmail, err := db.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, id, byEmail.ID)

	exists, err := db.CheckEmailExists(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, db.UpdateUserName(ctx, id, "Renamed"))
	require.NoError(t, db.UpdatePassword(ctx, id, "hash-2"))
	u, err = db.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)
	assert.Equal(t, "hash-2", u.PasswordHash)

	require.NoError(t, db.DeleteUser(ctx, id))
	u, err = db.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, u)

	err = db.DeleteUser(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIntegration_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "dup-" + uuid.New().String() + "@example.com"
	id, err := db.CreateUser(ctx, "First", email, "hash")
	require.NoError(t, err)
	defer func() { _ = db.DeleteUser(ctx, id) }()

	_, err = db.CreateUser(ctx, "Second", email, "hash")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestIntegration_MissingLookups(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	u, err := db.GetUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = db.GetUserByEmail(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, u)

	err = db.UpdatePassword(ctx, uuid.New(), "hash")
	assert.ErrorIs(t, err, ErrNotFound)
}
