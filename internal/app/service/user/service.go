package user

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

// Store is the persistence capability for user administration.
// DeleteCascade must be all-or-nothing: partial deletion of a user's
// rows must never be observable.
type Store interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	Save(ctx context.Context, u *models.User) error
	// ActiveSubscription returns the user's ACTIVE subscription with a
	// strictly future expiry, or gorm.ErrRecordNotFound.
	ActiveSubscription(ctx context.Context, userID int64, now time.Time) (*models.UserSubscription, error)
	CountOrders(ctx context.Context, userID int64) (int64, error)
	CountSubscriptions(ctx context.Context, userID int64) (int64, error)
	PlanNames(ctx context.Context, planIDs []int64) (map[int64]string, error)
	DeleteCascade(ctx context.Context, userID int64) error
}

type ActiveSubscriptionSummary struct {
	PlanID   int64                    `json:"plan_id"`
	PlanName string                   `json:"plan_name"`
	Status   types.SubscriptionStatus `json:"status"`
	StartAt  time.Time                `json:"start_at"`
	EndAt    time.Time                `json:"end_at"`
}

type AdminUserItem struct {
	ID                 int64                      `json:"id"`
	Email              string                     `json:"email"`
	Name               *string                    `json:"name"`
	Role               types.Role                 `json:"role"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
	OrdersCount        int64                      `json:"orders_count"`
	SubscriptionsCount int64                      `json:"subscriptions_count"`
	ActiveSubscription *ActiveSubscriptionSummary `json:"active_subscription"`
}

type ListUsersResponse struct {
	Items []*AdminUserItem `json:"items"`
	Meta  types.Pagination `json:"meta"`
}

// UpdateUserInput carries a partial update; nil fields stay untouched.
type UpdateUserInput struct {
	Role *types.Role `json:"role"`
	Name *string     `json:"name"`
}

type Service struct {
	log   *zap.SugaredLogger
	store Store
}

func NewService(log *zap.SugaredLogger, store Store) *Service {
	return &Service{log: log, store: store}
}

func (s *Service) List(ctx context.Context, page, pageSize int) (*ListUsersResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	rows, total, err := s.store.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list users", err)
	}

	now := time.Now()
	items := make([]*AdminUserItem, 0, len(rows))
	planIDs := make([]int64, 0)
	subs := make(map[int64]*models.UserSubscription)

	for _, u := range rows {
		item := &AdminUserItem{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		}
		if item.OrdersCount, err = s.store.CountOrders(ctx, u.ID); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to count orders", err)
		}
		if item.SubscriptionsCount, err = s.store.CountSubscriptions(ctx, u.ID); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to count subscriptions", err)
		}
		sub, err := s.store.ActiveSubscription(ctx, u.ID, now)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to load subscription", err)
		}
		if sub != nil {
			subs[u.ID] = sub
			planIDs = append(planIDs, sub.PlanID)
		}
		items = append(items, item)
	}

	planNames, err := s.store.PlanNames(ctx, planIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load plan names", err)
	}
	for _, item := range items {
		if sub, ok := subs[item.ID]; ok {
			item.ActiveSubscription = &ActiveSubscriptionSummary{
				PlanID:   sub.PlanID,
				PlanName: planNames[sub.PlanID],
				Status:   sub.Status,
				StartAt:  sub.StartAt,
				EndAt:    sub.EndAt,
			}
		}
	}

	return &ListUsersResponse{
		Items: items,
		Meta:  types.NewPagination(page, pageSize, total),
	}, nil
}

func (s *Service) Update(ctx context.Context, id int64, in *UpdateUserInput) (*models.User, error) {
	if in == nil || (in.Role == nil && in.Name == nil) {
		return nil, apperr.New(apperr.CodeInvalidInput, "no fields to update")
	}
	u, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Role != nil {
		if *in.Role != types.RoleUser && *in.Role != types.RoleAdmin {
			return nil, apperr.New(apperr.CodeInvalidInput, "invalid role")
		}
		u.Role = *in.Role
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.New(apperr.CodeInvalidInput, "name must not be empty")
		}
		u.Name = in.Name
	}

	if err := s.store.Save(ctx, u); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to update user", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("user_updated", "user_id", u.ID)
	return u, nil
}

// Delete removes a user and, atomically, all of the user's orders and
// subscriptions. An administrator may not delete their own account.
func (s *Service) Delete(ctx context.Context, caller types.Identity, targetID int64) error {
	if targetID == caller.UserID {
		return apperr.New(apperr.CodeForbidden, "cannot delete the currently signed-in admin account")
	}
	if _, err := s.findByID(ctx, targetID); err != nil {
		return err
	}

	sub, err := s.store.ActiveSubscription(ctx, targetID, time.Now())
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.CodeInternal, "failed to load subscription", err)
	}
	if sub != nil {
		return apperr.New(apperr.CodeHasActiveSubscription, "user still has an active subscription")
	}

	if err := s.store.DeleteCascade(ctx, targetID); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to delete user", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("user_deleted", "user_id", targetID, "operator_id", caller.UserID)
	return nil
}

func (s *Service) findByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load user", err)
	}
	return u, nil
}
