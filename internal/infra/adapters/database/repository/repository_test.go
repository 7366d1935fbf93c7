package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()

	db, err := database.NewLibSQL(ctx, database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Up(ctx, db.DB, "sqlite3"))

	return db
}

func TestDocumentRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepo(newTestDB(t))

	require.NoError(t, repo.Save(ctx, "rooms/r1", []byte(`{"status":"waiting"}`)))
	require.NoError(t, repo.Save(ctx, "rooms/r1", []byte(`{"status":"playing"}`)))
	require.NoError(t, repo.Save(ctx, "rooms/r2", []byte(`{}`)))
	require.NoError(t, repo.Save(ctx, "users/u1", []byte(`{}`)))

	docs, err := repo.List(ctx, "rooms/")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "rooms/r1", docs[0].Path)
	assert.JSONEq(t, `{"status":"playing"}`, docs[0].Body)
	assert.Equal(t, "rooms/r2", docs[1].Path)

	require.NoError(t, repo.Delete(ctx, "rooms/r1"))

	docs, err = repo.List(ctx, "rooms/")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "rooms/r2", docs[0].Path)

	docs, err = repo.List(ctx, "users/")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSubscriptionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSubscriptionRepo(newTestDB(t))

	_, err := repo.GetByUserID(ctx, "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	started := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &models.Subscription{
		UserID:    "u1",
		Plan:      models.PlanMonthly,
		Status:    models.SubscriptionApproved,
		StartedAt: started,
	}))

	sub, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanMonthly, sub.Plan)
	assert.Equal(t, models.SubscriptionApproved, sub.Status)
	assert.True(t, started.Equal(sub.StartedAt))

	require.NoError(t, repo.UpdateStatus(ctx, "u1", models.SubscriptionExpired))

	sub, err = repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionExpired, sub.Status)
}
