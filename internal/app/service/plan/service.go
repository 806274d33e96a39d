package plan

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/logctx"
	"github.com/petalmall/membership/pkg/types"
)

// Store is the persistence capability for plan management.
type Store interface {
	ListActive(ctx context.Context) ([]*models.MembershipPlan, error)
	ListAll(ctx context.Context) ([]*models.MembershipPlan, error)
	FindByID(ctx context.Context, id int64) (*models.MembershipPlan, error)
	Create(ctx context.Context, p *models.MembershipPlan) error
	Save(ctx context.Context, p *models.MembershipPlan) error
	Delete(ctx context.Context, id int64) error
	CountOrdersByPlan(ctx context.Context, planID int64) (int64, error)
}

type CreatePlanInput struct {
	Name         string             `json:"name"`
	Price        int64              `json:"price"`
	Currency     string             `json:"currency"`
	BillingCycle types.BillingCycle `json:"billing_cycle"`
	Description  *string            `json:"description"`
	IsActive     *bool              `json:"is_active"`
}

// UpdatePlanInput carries a partial update; nil fields stay untouched.
type UpdatePlanInput struct {
	Name         *string             `json:"name"`
	Price        *int64              `json:"price"`
	Currency     *string             `json:"currency"`
	BillingCycle *types.BillingCycle `json:"billing_cycle"`
	Description  *string             `json:"description"`
	IsActive     *bool               `json:"is_active"`
}

func (in *UpdatePlanInput) empty() bool {
	return in.Name == nil && in.Price == nil && in.Currency == nil &&
		in.BillingCycle == nil && in.Description == nil && in.IsActive == nil
}

type Service struct {
	log   *zap.SugaredLogger
	store Store
}

func NewService(log *zap.SugaredLogger, store Store) *Service {
	return &Service{log: log, store: store}
}

// ListActive returns purchasable plans, cheapest first.
func (s *Service) ListActive(ctx context.Context) ([]*models.MembershipPlan, error) {
	rows, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list plans", err)
	}
	return rows, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*models.MembershipPlan, error) {
	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list plans", err)
	}
	return rows, nil
}

func (s *Service) Create(ctx context.Context, in *CreatePlanInput) (*models.MembershipPlan, error) {
	if in == nil || in.Name == "" || in.Currency == "" {
		return nil, apperr.New(apperr.CodeInvalidInput, "name and currency are required")
	}
	if in.Price < 0 {
		return nil, apperr.New(apperr.CodeInvalidInput, "price must not be negative")
	}
	if !in.BillingCycle.Valid() {
		return nil, apperr.New(apperr.CodeInvalidInput, "invalid billing cycle")
	}

	p := &models.MembershipPlan{
		Name:         in.Name,
		Price:        in.Price,
		Currency:     in.Currency,
		BillingCycle: in.BillingCycle,
		Description:  in.Description,
		IsActive:     true,
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create plan", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("plan_created", "plan_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, in *UpdatePlanInput) (*models.MembershipPlan, error) {
	if in == nil || in.empty() {
		return nil, apperr.New(apperr.CodeInvalidInput, "no fields to update")
	}
	p, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.New(apperr.CodeInvalidInput, "name must not be empty")
		}
		p.Name = *in.Name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperr.New(apperr.CodeInvalidInput, "price must not be negative")
		}
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.BillingCycle != nil {
		if !in.BillingCycle.Valid() {
			return nil, apperr.New(apperr.CodeInvalidInput, "invalid billing cycle")
		}
		p.BillingCycle = *in.BillingCycle
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.store.Save(ctx, p); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to update plan", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("plan_updated", "plan_id", p.ID)
	return p, nil
}

// Delete removes a plan that no order references. Orders keep a plan
// snapshot, but live plan rows stay resolvable for listing pages.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}
	count, err := s.store.CountOrdersByPlan(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to count plan orders", err)
	}
	if count > 0 {
		return apperr.New(apperr.CodeInvalidStatus, "plan has existing orders and cannot be deleted")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to delete plan", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("plan_deleted", "plan_id", id)
	return nil
}

func (s *Service) findByID(ctx context.Context, id int64) (*models.MembershipPlan, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "plan not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load plan", err)
	}
	return p, nil
}
