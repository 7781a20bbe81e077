package assets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/pkg/enums"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/metrics"
	"github.com/lovepage-app/lovepage-backend/pkg/storage/gcs"
)

// ObjectStore is the slice of blob storage the promoter needs.
type ObjectStore interface {
	ObjectExists(ctx context.Context, objectPath string) (bool, error)
	CopyObject(ctx context.Context, srcPath, dstPath string) error
	DeleteObject(ctx context.Context, objectPath string) error
	MakePublic(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
}

// PromoterParams groups dependencies for the promoter.
type PromoterParams struct {
	Store         ObjectStore
	TempRoot      string
	PermanentRoot string
	Logger        *logger.Logger
	Metrics       *metrics.FinalizeMetrics
}

// Promoter moves media out of the temporary upload area into a page's
// permanent prefix. It is deliberately forgiving: a finalization must never
// fail because one image could not be moved.
type Promoter struct {
	store    ObjectStore
	tempRoot string
	permRoot string
	logger   *logger.Logger
	metrics  *metrics.FinalizeMetrics
}

// NewPromoter builds a promoter.
func NewPromoter(params PromoterParams) (*Promoter, error) {
	if params.Store == nil {
		return nil, errors.New("object store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	tempRoot := strings.Trim(params.TempRoot, "/")
	permRoot := strings.Trim(params.PermanentRoot, "/")
	if tempRoot == "" || permRoot == "" {
		return nil, errors.New("temp and permanent roots are required")
	}
	return &Promoter{
		store:    params.Store,
		tempRoot: tempRoot,
		permRoot: permRoot,
		logger:   params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Promote moves a single reference into the page's permanent prefix and
// returns the rewritten ref. References outside the temporary area pass
// through unchanged. A missing source with an existing destination means a
// concurrent finalizer already moved it; that is a success. Any other failure
// logs and returns the original ref untouched.
func (p *Promoter) Promote(ctx context.Context, ref content.MediaRef, pageID uuid.UUID, category enums.MediaCategory) content.MediaRef {
	src := strings.Trim(ref.Path, "/")
	if src == "" || !p.inTempArea(src) {
		p.metrics.ObservePromotion(metrics.PromotionSkipped)
		return ref
	}

	dst := p.permanentPath(pageID, category, path.Base(src))

	if err := p.store.CopyObject(ctx, src, dst); err != nil {
		if errors.Is(err, gcs.ErrObjectNotFound) {
			exists, checkErr := p.store.ObjectExists(ctx, dst)
			if checkErr == nil && exists {
				// Another finalizer already promoted this object.
				p.metrics.ObservePromotion(metrics.PromotionRecovered)
				return p.promotedRef(dst)
			}
		}
		p.logger.Warn(ctx, fmt.Sprintf("asset promotion failed, keeping original ref: %s (%v)", src, err))
		p.metrics.ObservePromotion(metrics.PromotionFailed)
		return ref
	}

	if err := p.store.MakePublic(ctx, dst); err != nil {
		p.logger.Warn(ctx, fmt.Sprintf("asset promoted but not public: %s (%v)", dst, err))
	}
	if err := p.store.DeleteObject(ctx, src); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
		// The object now lives in both areas; retention will sweep the leftover.
		p.logger.Warn(ctx, fmt.Sprintf("temp asset cleanup failed: %s (%v)", src, err))
	}

	p.metrics.ObservePromotion(metrics.PromotionMoved)
	return p.promotedRef(dst)
}

// PromoteAll rewrites every attached media reference on the content in place,
// preserving slot order.
func (p *Promoter) PromoteAll(ctx context.Context, c *content.PageContent, pageID uuid.UUID) {
	c.VisitMediaRefs(func(category enums.MediaCategory, ref *content.MediaRef) {
		*ref = p.Promote(ctx, *ref, pageID, category)
	})
}

// DeleteTempObject removes one object from the temporary area. Paths outside
// it are refused so a bad ref can never delete promoted media.
func (p *Promoter) DeleteTempObject(ctx context.Context, objectPath string) error {
	src := strings.Trim(objectPath, "/")
	if !p.inTempArea(src) {
		return fmt.Errorf("refusing to delete outside the temp area: %s", objectPath)
	}
	err := p.store.DeleteObject(ctx, src)
	if errors.Is(err, gcs.ErrObjectNotFound) {
		return nil
	}
	return err
}

// InTempArea reports whether a storage path sits under the temporary root.
func (p *Promoter) InTempArea(objectPath string) bool {
	return p.inTempArea(strings.Trim(objectPath, "/"))
}

func (p *Promoter) inTempArea(objectPath string) bool {
	return strings.HasPrefix(objectPath, p.tempRoot+"/")
}

func (p *Promoter) permanentPath(pageID uuid.UUID, category enums.MediaCategory, filename string) string {
	return path.Join(p.permRoot, pageID.String(), category.String(), filename)
}

func (p *Promoter) promotedRef(dst string) content.MediaRef {
	return content.MediaRef{URL: p.store.PublicURL(dst), Path: dst}
}
