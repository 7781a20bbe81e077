package finalize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lovepage-app/lovepage-backend/internal/content"
	"github.com/lovepage-app/lovepage-backend/internal/drafts"
	"github.com/lovepage-app/lovepage-backend/internal/pages"
	"github.com/lovepage-app/lovepage-backend/internal/plans"
	"github.com/lovepage-app/lovepage-backend/internal/users"
	"github.com/lovepage-app/lovepage-backend/pkg/db"
	"github.com/lovepage-app/lovepage-backend/pkg/db/models"
	pkgerrors "github.com/lovepage-app/lovepage-backend/pkg/errors"
	"github.com/lovepage-app/lovepage-backend/pkg/logger"
	"github.com/lovepage-app/lovepage-backend/pkg/metrics"
)

// Trigger labels identify which path asked for finalization.
const (
	TriggerWebhook  = "webhook"
	TriggerCapture  = "capture"
	TriggerPoll     = "poll"
	TriggerOperator = "operator"
)

// AssetPromoter rewrites temp media refs into a page's permanent prefix.
type AssetPromoter interface {
	PromoteAll(ctx context.Context, c *content.PageContent, pageID uuid.UUID)
}

// ServiceParams groups dependencies for the finalize service.
type ServiceParams struct {
	Drafts   drafts.Repository
	Pages    pages.Repository
	Users    users.Repository
	Promoter AssetPromoter
	Metrics  *metrics.FinalizeMetrics
	Logger   *logger.Logger

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of a finalization attempt. PageID is always set on
// success, whether this call created the page or an earlier one did.
type Result struct {
	PageID           uuid.UUID
	AlreadyCompleted bool
}

// Service converts a paid draft into its permanent page exactly once, no
// matter how many payment paths deliver the proof or how many times each
// retries.
type Service struct {
	drafts   drafts.Repository
	pages    pages.Repository
	users    users.Repository
	promoter AssetPromoter
	metrics  *metrics.FinalizeMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewService builds a finalize service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Drafts == nil {
		return nil, errors.New("drafts repo is required")
	}
	if params.Pages == nil {
		return nil, errors.New("pages repo is required")
	}
	if params.Users == nil {
		return nil, errors.New("users repo is required")
	}
	if params.Promoter == nil {
		return nil, errors.New("promoter is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		drafts:   params.Drafts,
		pages:    params.Pages,
		users:    params.Users,
		promoter: params.Promoter,
		metrics:  params.Metrics,
		logger:   params.Logger,
		now:      now,
	}, nil
}

// Finalize turns the draft into a permanent page. Safe to call concurrently
// and repeatedly with the same draft: the first caller through the status
// update wins, everyone else converges on the winner's page id.
func (s *Service) Finalize(ctx context.Context, draftID uuid.UUID, paymentID, trigger string) (*Result, error) {
	start := s.now()
	result, outcome, err := s.finalize(ctx, draftID, paymentID)
	s.metrics.ObserveFinalize(trigger, outcome, s.now().Sub(start))
	return result, err
}

func (s *Service) finalize(ctx context.Context, draftID uuid.UUID, paymentID string) (*Result, string, error) {
	ctx = s.logger.WithDraftID(ctx, draftID.String())
	ctx = s.logger.WithPaymentID(ctx, paymentID)

	draft, err := s.drafts.FindByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, metrics.OutcomeDraftNotFound, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}
		return nil, metrics.OutcomeError, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load draft")
	}

	if draft.Completed() {
		if draft.LovePageID == nil {
			// The status guard makes this unreachable; refuse rather than mint twice.
			return nil, metrics.OutcomeError, pkgerrors.New(pkgerrors.CodeInternal, "completed draft has no page id")
		}
		return &Result{PageID: *draft.LovePageID, AlreadyCompleted: true}, metrics.OutcomeAlreadyDone, nil
	}

	page, err := s.materializePage(ctx, draft, paymentID)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}

	won, err := s.drafts.MarkCompleted(ctx, draftID, paymentID, page.ID)
	if err != nil {
		return nil, metrics.OutcomeError, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete draft")
	}
	if !won {
		// A concurrent finalizer got there first; surface its page id.
		current, err := s.drafts.FindByID(ctx, draftID)
		if err != nil {
			return nil, metrics.OutcomeError, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload draft after lost race")
		}
		if current.LovePageID == nil {
			return nil, metrics.OutcomeError, pkgerrors.New(pkgerrors.CodeInternal, "completed draft has no page id")
		}
		s.logger.Info(ctx, "finalize lost the completion race, converging on winner")
		return &Result{PageID: *current.LovePageID, AlreadyCompleted: true}, metrics.OutcomeLostRace, nil
	}

	s.logger.Info(ctx, fmt.Sprintf("draft finalized into page %s", page.ID))
	return &Result{PageID: page.ID}, metrics.OutcomeCreated, nil
}

// materializePage returns the page for the draft, minting it if no earlier
// attempt already did. Minting promotes media, stamps expiry and snapshots
// the sanitized content.
func (s *Service) materializePage(ctx context.Context, draft *models.Draft, paymentID string) (*models.LovePage, error) {
	existing, err := s.pages.FindByDraftID(ctx, draft.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up page for draft")
	}
	if existing != nil {
		return existing, nil
	}

	snapshot := draft.Content
	content.NormalizeDates(&snapshot)
	content.SanitizeExtra(&snapshot)

	pageID := uuid.New()
	s.promoter.PromoteAll(ctx, &snapshot, pageID)

	page := &models.LovePage{
		ID:        pageID,
		DraftID:   draft.ID,
		OwnerID:   draft.OwnerID,
		Content:   snapshot,
		PaymentID: paymentID,
		ExpiresAt: plans.ExpireAt(snapshot.PlanTier, s.now()),
	}
	if err := s.pages.Create(ctx, page); err != nil {
		if db.IsUniqueViolation(err) {
			// Concurrent mint for the same draft; use theirs.
			minted, findErr := s.pages.FindByDraftID(ctx, draft.ID)
			if findErr != nil || minted == nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve concurrently minted page")
			}
			return minted, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write page")
	}

	entry := &models.PageIndexEntry{
		ID:      uuid.New(),
		OwnerID: draft.OwnerID,
		PageID:  page.ID,
		Title:   snapshot.Title,
	}
	if err := s.pages.AppendIndexEntry(ctx, entry); err != nil && !db.IsUniqueViolation(err) {
		// The page exists either way; the index pointer is best effort.
		s.logger.Warn(ctx, fmt.Sprintf("page index append failed: %v", err))
	}

	return page, nil
}

// FinalizeAsOperator is the manual override for support cases where a payment
// verifiably happened but no automated path landed. The synthetic payment id
// keeps the audit trail honest about how the page came to be.
func (s *Service) FinalizeAsOperator(ctx context.Context, callerID, draftID uuid.UUID) (*Result, error) {
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator access required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load caller profile")
	}
	if !caller.IsOperator {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator access required")
	}

	syntheticID := "op_" + uuid.NewString()
	ctx = s.logger.WithField(ctx, "operator_id", callerID.String())
	s.logger.Info(ctx, "operator finalize override requested")
	return s.Finalize(ctx, draftID, syntheticID, TriggerOperator)
}
