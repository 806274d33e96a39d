package subscription

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/logctx"
	"github.com/petalmall/membership/pkg/types"
)

// Store is the persistence capability for subscription periods.
type Store interface {
	// FindActiveByUser returns the user's ACTIVE subscription with the
	// latest expiry, or gorm.ErrRecordNotFound.
	FindActiveByUser(ctx context.Context, userID int64, now time.Time) (*models.UserSubscription, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.UserSubscription, error)
	Create(ctx context.Context, sub *models.UserSubscription) error
	// ExtendEndAt pushes an existing subscription's expiry forward.
	ExtendEndAt(ctx context.Context, id int64, endAt time.Time) error
}

type Service struct {
	log   *zap.SugaredLogger
	store Store
}

func NewService(log *zap.SugaredLogger, store Store) *Service {
	return &Service{log: log, store: store}
}

// GrantForOrder turns a paid order into entitlement time. An existing
// active subscription is extended from its current expiry; otherwise a
// fresh ACTIVE period starts now. The billing cycle comes from the plan
// snapshot taken at order creation, so later plan edits cannot change
// what the buyer paid for.
func (s *Service) GrantForOrder(ctx context.Context, o *models.Order) (*models.UserSubscription, error) {
	if o == nil {
		return nil, apperr.New(apperr.CodeInvalidInput, "nil order")
	}

	cycle := types.BillingCycleMonthly
	if snap := o.GetPlanSnapshot(); snap != nil && snap.BillingCycle.Valid() {
		cycle = snap.BillingCycle
	}

	now := time.Now()
	current, err := s.store.FindActiveByUser(ctx, o.UserID, now)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load subscription", err)
	}

	if current != nil && current.ActiveAt(now) {
		endAt := addCycle(current.EndAt, cycle)
		if err := s.store.ExtendEndAt(ctx, current.ID, endAt); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to extend subscription", err)
		}
		current.EndAt = endAt
		logctx.FromCtx(ctx, s.log).Infow("subscription_extended",
			"user_id", o.UserID, "subscription_id", current.ID, "end_at", endAt)
		return current, nil
	}

	sub := &models.UserSubscription{
		UserID:  o.UserID,
		PlanID:  o.PlanID,
		Status:  types.SubscriptionStatusActive,
		StartAt: now,
		EndAt:   addCycle(now, cycle),
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create subscription", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription_granted",
		"user_id", o.UserID, "plan_id", o.PlanID, "end_at", sub.EndAt)
	return sub, nil
}

// ListForUser returns the caller's entitlement history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*models.UserSubscription, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list subscriptions", err)
	}
	return rows, nil
}

func addCycle(from time.Time, cycle types.BillingCycle) time.Time {
	if cycle == types.BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
