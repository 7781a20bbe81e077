package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/api/responses"
	"github.com/lovepage-app/lovepage-backend/api/validators"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

type PageIndexLister interface {
	ListIndexByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.PageIndexEntry, error)
}

type pageIndexItem struct {
	PageID    uuid.UUID `json:"page_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ListPages returns the caller's index pointers, newest first. The index is
// best-effort at finalization so an entry may lag the page itself.
func ListPages(repo PageIndexLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := requireOwner(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entries, err := repo.ListIndexByOwner(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if len(entries) > limit {
			entries = entries[:limit]
		}

		items := make([]pageIndexItem, 0, len(entries))
		for _, entry := range entries {
			items = append(items, pageIndexItem{
				PageID:    entry.PageID,
				Title:     entry.Title,
				CreatedAt: entry.CreatedAt,
			})
		}
		responses.WriteSuccess(w, map[string]any{"pages": items})
	}
}
