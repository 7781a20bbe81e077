package pages

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/db"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.LovePage{}, &models.PageIndexEntry{}))
	return conn
}

func TestCreateAndFindByDraftID(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	draftID := uuid.New()
	page := &models.LovePage{
		ID:        uuid.New(),
		DraftID:   draftID,
		OwnerID:   uuid.New(),
		Content:   content.PageContent{Title: "our story"},
		PaymentID: "pay_1",
	}
	require.NoError(t, repo.Create(ctx, page))

	found, err := repo.FindByDraftID(ctx, draftID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, page.ID, found.ID)
	assert.Equal(t, "our story", found.Content.Title)

	missing, err := repo.FindByDraftID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing, "unknown draft must read as nil, not error")
}

func TestDraftIDUniqueness(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	draftID := uuid.New()
	first := &models.LovePage{ID: uuid.New(), DraftID: draftID, OwnerID: uuid.New(), PaymentID: "pay_1"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.LovePage{ID: uuid.New(), DraftID: draftID, OwnerID: first.OwnerID, PaymentID: "pay_2"}
	err := repo.Create(ctx, dup)
	require.Error(t, err, "second page for the same draft must be rejected")
	assert.True(t, db.IsUniqueViolation(err), "expected unique violation classification, got %v", err)
}

func TestIndexEntriesListNewestFirst(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	owner := uuid.New()
	older := &models.PageIndexEntry{ID: uuid.New(), OwnerID: owner, PageID: uuid.New(), Title: "first"}
	newer := &models.PageIndexEntry{ID: uuid.New(), OwnerID: owner, PageID: uuid.New(), Title: "second"}
	require.NoError(t, repo.AppendIndexEntry(ctx, older))
	require.NoError(t, conn.Model(older).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, repo.AppendIndexEntry(ctx, newer))

	entries, err := repo.ListIndexByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Title)

	none, err := repo.ListIndexByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
