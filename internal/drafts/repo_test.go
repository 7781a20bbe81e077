package drafts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Draft{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func seedDraft(t *testing.T, db *gorm.DB) *models.Draft {
	t.Helper()
	draft := &models.Draft{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Content: content.PageContent{Title: "our story", PlanTier: enums.PlanTierMemories},
		Status:  enums.DraftStatusPending,
	}
	if err := db.Create(draft).Error; err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	return draft
}

func TestRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	draft := seedDraft(t, db)

	loaded, err := repo.FindByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if loaded.Content.Title != "our story" {
		t.Fatalf("content did not round trip, got %q", loaded.Content.Title)
	}

	updated := loaded.Content
	updated.Message = "for you"
	if err := repo.UpdateContent(ctx, draft.ID, updated); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	loaded, _ = repo.FindByID(ctx, draft.ID)
	if loaded.Content.Message != "for you" {
		t.Fatalf("expected updated message, got %q", loaded.Content.Message)
	}
}

func TestMarkCompletedFirstWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	draft := seedDraft(t, db)
	pageA := uuid.New()
	pageB := uuid.New()

	won, err := repo.MarkCompleted(ctx, draft.ID, "pay_1", pageA)
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if !won {
		t.Fatal("first transition must win")
	}

	won, err = repo.MarkCompleted(ctx, draft.ID, "pay_2", pageB)
	if err != nil {
		t.Fatalf("second MarkCompleted: %v", err)
	}
	if won {
		t.Fatal("second transition must lose")
	}

	loaded, _ := repo.FindByID(ctx, draft.ID)
	if !loaded.Completed() {
		t.Fatal("draft must be completed")
	}
	if loaded.LovePageID == nil || *loaded.LovePageID != pageA {
		t.Fatalf("losing transition must not overwrite the page id, got %v", loaded.LovePageID)
	}
	if loaded.PaymentID == nil || *loaded.PaymentID != "pay_1" {
		t.Fatalf("losing transition must not overwrite the payment id, got %v", loaded.PaymentID)
	}
}

func TestMarkCompletedMissingDraft(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)

	won, err := repo.MarkCompleted(context.Background(), uuid.New(), "pay_1", uuid.New())
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if won {
		t.Fatal("missing draft must not report a win")
	}
}

func TestListStalePending(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := seedDraft(t, db)
	old := time.Now().Add(-30 * 24 * time.Hour)
	if err := db.Model(&models.Draft{}).Where("id = ?", stale.ID).UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatalf("backdate draft: %v", err)
	}

	fresh := seedDraft(t, db)
	done := seedDraft(t, db)
	if _, err := repo.MarkCompleted(ctx, done.ID, "pay_1", uuid.New()); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := db.Model(&models.Draft{}).Where("id = ?", done.ID).UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatalf("backdate completed draft: %v", err)
	}

	cutoff := time.Now().Add(-14 * 24 * time.Hour)
	got, err := repo.ListStalePending(ctx, cutoff, 10)
	if err != nil {
		t.Fatalf("ListStalePending: %v", err)
	}
	if len(got) != 1 || got[0].ID != stale.ID {
		t.Fatalf("expected only the stale pending draft, got %d rows", len(got))
	}
	_ = fresh
}
