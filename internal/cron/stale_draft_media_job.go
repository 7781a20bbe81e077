package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
)

const (
	staleDraftRetentionDays = 14
	staleDraftBatchSize     = 200
)

type staleDraftLister interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.Draft, error)
}

type tempObjectDeleter interface {
	InTempArea(objectPath string) bool
	DeleteTempObject(ctx context.Context, objectPath string) error
}

// StaleDraftMediaJobParams configure the retention sweep.
type StaleDraftMediaJobParams struct {
	Logger        *logger.Logger
	Drafts        staleDraftLister
	Deleter       tempObjectDeleter
	RetentionDays int
}

// NewStaleDraftMediaJob builds the job that prunes temp-area media belonging
// to drafts that were never paid for. The draft rows themselves stay as an
// audit trail; only their uploaded objects go.
func NewStaleDraftMediaJob(params StaleDraftMediaJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Drafts == nil {
		return nil, fmt.Errorf("drafts lister required")
	}
	if params.Deleter == nil {
		return nil, fmt.Errorf("object deleter required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = staleDraftRetentionDays
	}
	return &staleDraftMediaJob{
		logg:          params.Logger,
		drafts:        params.Drafts,
		deleter:       params.Deleter,
		retentionDays: retention,
		now:           time.Now,
	}, nil
}

type staleDraftMediaJob struct {
	logg          *logger.Logger
	drafts        staleDraftLister
	deleter       tempObjectDeleter
	retentionDays int
	now           func() time.Time
}

func (j *staleDraftMediaJob) Name() string { return "stale-draft-media" }

func (j *staleDraftMediaJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)

	stale, err := j.drafts.ListStalePending(ctx, cutoff, staleDraftBatchSize)
	if err != nil {
		return fmt.Errorf("query stale drafts: %w", err)
	}

	var deleted, failed int
	for i := range stale {
		stale[i].Content.VisitMediaRefs(func(_ enums.MediaCategory, ref *content.MediaRef) {
			path := strings.TrimSpace(ref.Path)
			if path == "" || !j.deleter.InTempArea(path) {
				return
			}
			if err := j.deleter.DeleteTempObject(ctx, path); err != nil {
				failed++
				j.logg.Warn(ctx, fmt.Sprintf("stale draft media delete failed: %s (%v)", path, err))
				return
			}
			deleted++
		})
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":           cutoff,
		"retention_days":   j.retentionDays,
		"draft_candidates": len(stale),
		"objects_deleted":  deleted,
		"objects_failed":   failed,
	})
	j.logg.Info(logCtx, "stale draft media sweep complete")
	return nil
}
