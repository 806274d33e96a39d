package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/config"
	"github.com/petalmall/membership/pkg/logctx"
	"github.com/petalmall/membership/pkg/tool"
	"github.com/petalmall/membership/pkg/types"
)

// SubscriptionGranter converts a paid order into entitlement time. The
// implementation lives in the subscription service.
type SubscriptionGranter interface {
	GrantForOrder(ctx context.Context, o *models.Order) (*models.UserSubscription, error)
}

type Service struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	store   Store
	granter SubscriptionGranter
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, store Store, granter SubscriptionGranter) Manager {
	return &Service{cfg: cfg, log: log, store: store, granter: granter}
}

func (s *Service) Create(ctx context.Context, userID, planID int64, channel types.PaymentChannel) (*CreateOrderResult, error) {
	if channel == "" {
		channel = s.cfg.Payment.DefaultChannel
	}
	if !channel.Valid() {
		return nil, apperr.New(apperr.CodeInvalidInput, fmt.Sprintf("unsupported payment channel: %s", channel))
	}

	plan, err := s.store.FindActivePlan(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodePlanNotFound, "plan not found or not purchasable")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load plan", err)
	}

	snapshot := *plan
	o := &models.Order{
		OrderNo:        tool.GenerateOrderNo(),
		UserID:         userID,
		PlanID:         plan.ID,
		Amount:         plan.Price,
		Currency:       plan.Currency,
		Status:         types.OrderStatusPending,
		PaymentChannel: channel,
		Extra:          datatypes.NewJSONType(&models.OrderExtra{PlanSnapshot: &snapshot}),
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		// Includes the (extremely unlikely) order_no unique violation.
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create order", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("order_created",
		"order_no", o.OrderNo, "user_id", userID, "plan_id", planID, "channel", channel)

	return &CreateOrderResult{
		Order:      o,
		PaymentURL: fmt.Sprintf("%s/%s", s.cfg.Payment.PayURLBase, o.OrderNo),
	}, nil
}

func (s *Service) CancelForUser(ctx context.Context, orderID, callerUserID int64) (*models.Order, error) {
	o, err := s.findOwned(ctx, orderID, callerUserID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, types.OrderStatusPending, types.OrderStatusCanceled,
		"only pending orders can be canceled")
}

func (s *Service) RequestRefundForUser(ctx context.Context, orderID, callerUserID int64) (*models.Order, error) {
	o, err := s.findOwned(ctx, orderID, callerUserID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, o, types.OrderStatusPaid, types.OrderStatusRefundRequested,
		"only paid orders can request a refund")
}

func (s *Service) ApproveRefundForOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	o, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load order", err)
	}
	return s.transition(ctx, o, types.OrderStatusRefundRequested, types.OrderStatusRefunded,
		"only orders with a pending refund request can be refunded")
}

func (s *Service) MarkPaid(ctx context.Context, orderNo string) (*models.Order, error) {
	o, err := s.store.FindByOrderNo(ctx, orderNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load order", err)
	}

	paidAt := time.Now()
	n, err := s.store.MarkPaidIf(ctx, o.ID, paidAt)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to mark order paid", err)
	}
	if n == 0 {
		return nil, apperr.New(apperr.CodeInvalidStatus, "order is not awaiting payment")
	}

	o.Status = types.OrderStatusPaid
	o.PaidAt = &paidAt
	logctx.FromCtx(ctx, s.log).Infow("order_paid", "order_no", o.OrderNo, "user_id", o.UserID)

	// The payment edge has committed; a grant failure must not make the
	// gateway retry against an already-paid order. It is logged for
	// manual replay instead.
	if _, err := s.granter.GrantForOrder(ctx, o); err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("subscription_grant_failed",
			"order_no", o.OrderNo, "user_id", o.UserID, "err", err)
	}
	return o, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list orders", err)
	}
	return rows, nil
}

func (s *Service) ScanOrders(ctx context.Context, req *ScanOrdersRequest) (*ScanOrdersResponse, error) {
	if req == nil {
		return nil, apperr.New(apperr.CodeInvalidInput, "nil request")
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	offset := (req.Page - 1) * req.PageSize
	rows, total, err := s.store.Scan(ctx, req.Filters, offset, req.PageSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to scan orders", err)
	}
	return &ScanOrdersResponse{
		Items: rows,
		Meta:  types.NewPagination(req.Page, req.PageSize, total),
	}, nil
}

// findOwned loads an order scoped by owner. A missing row and an
// ownership mismatch are indistinguishable to the caller so order IDs
// cannot be enumerated.
func (s *Service) findOwned(ctx context.Context, orderID, callerUserID int64) (*models.Order, error) {
	o, err := s.store.FindByUserAndID(ctx, callerUserID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load order", err)
	}
	return o, nil
}

// transition applies one state-machine edge. The precondition is
// re-checked by the conditional write, so two racing transitions on the
// same order cannot both commit.
func (s *Service) transition(ctx context.Context, o *models.Order, from, to types.OrderStatus, invalidMsg string) (*models.Order, error) {
	if o.Status != from {
		return nil, apperr.New(apperr.CodeInvalidStatus, invalidMsg)
	}
	n, err := s.store.UpdateStatusIf(ctx, o.ID, from, to)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to update order status", err)
	}
	if n == 0 {
		// Lost the race: someone else moved the order first.
		logctx.FromCtx(ctx, s.log).Warnw("order_transition_conflict",
			"order_id", o.ID, "from", from, "to", to)
		return nil, apperr.New(apperr.CodeInvalidStatus, invalidMsg)
	}

	o.Status = to
	logctx.FromCtx(ctx, s.log).Infow("order_transition",
		"order_id", o.ID, "order_no", o.OrderNo, "from", from, "to", to)
	return o, nil
}
