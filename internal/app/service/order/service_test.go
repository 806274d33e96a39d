package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/config"
	"github.com/petalmall/membership/pkg/types"
)

// fakeStore is an in-memory Store with the same conditional-update
// semantics as the gorm implementation.
type fakeStore struct {
	plans  map[int64]*models.MembershipPlan
	orders map[int64]*models.Order
	nextID int64

	// forceConflict makes the next conditional update report zero rows
	// affected, simulating a concurrent transition winning the race.
	forceConflict bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		plans:  map[int64]*models.MembershipPlan{},
		orders: map[int64]*models.Order{},
	}
}

func (f *fakeStore) FindActivePlan(_ context.Context, planID int64) (*models.MembershipPlan, error) {
	p, ok := f.plans[planID]
	if !ok || !p.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Now()
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) FindByUserAndID(_ context.Context, userID, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) FindByOrderNo(_ context.Context, orderNo string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.OrderNo == orderNo {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) UpdateStatusIf(_ context.Context, id int64, from, to types.OrderStatus) (int64, error) {
	if f.forceConflict {
		f.forceConflict = false
		return 0, nil
	}
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return 0, nil
	}
	o.Status = to
	return 1, nil
}

func (f *fakeStore) MarkPaidIf(_ context.Context, id int64, paidAt time.Time) (int64, error) {
	o, ok := f.orders[id]
	if !ok || o.Status != types.OrderStatusPending || o.PaidAt != nil {
		return 0, nil
	}
	o.Status = types.OrderStatusPaid
	o.PaidAt = &paidAt
	return 1, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]*models.Order, error) {
	var rows []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			cp := *o
			rows = append(rows, &cp)
		}
	}
	return rows, nil
}

func (f *fakeStore) Scan(_ context.Context, _ []*types.CommonFilter, offset, limit int) ([]*models.Order, int64, error) {
	all := make([]*models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		cp := *o
		all = append(all, &cp)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// fakeGranter records grant calls so payment tests can assert the
// entitlement hook fires exactly once per confirmation.
type fakeGranter struct {
	granted []*models.Order
	err     error
}

func (g *fakeGranter) GrantForOrder(_ context.Context, o *models.Order) (*models.UserSubscription, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.granted = append(g.granted, o)
	return &models.UserSubscription{UserID: o.UserID, PlanID: o.PlanID}, nil
}

func newTestService(store Store) Manager {
	return newTestServiceWithGranter(store, &fakeGranter{})
}

func newTestServiceWithGranter(store Store, granter SubscriptionGranter) Manager {
	cfg := &config.Config{
		Payment: config.PaymentConfig{
			DefaultChannel: types.PaymentChannelStripe,
			PayURLBase:     "https://pay.example.com",
		},
	}
	return NewService(cfg, zap.NewNop().Sugar(), store, granter)
}

func seedOrder(f *fakeStore, userID int64, status types.OrderStatus) *models.Order {
	f.nextID++
	o := &models.Order{
		ID:             f.nextID,
		OrderNo:        "MO-test",
		UserID:         userID,
		PlanID:         1,
		Amount:         99,
		Currency:       "USD",
		Status:         status,
		PaymentChannel: types.PaymentChannelStripe,
	}
	if status == types.OrderStatusPaid || status == types.OrderStatusRefundRequested || status == types.OrderStatusRefunded {
		paidAt := time.Now()
		o.PaidAt = &paidAt
	}
	f.orders[o.ID] = o
	return o
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("active plan", func(t *testing.T) {
		store := newFakeStore()
		store.plans[1] = &models.MembershipPlan{ID: 1, Name: "Gold", Price: 99, Currency: "USD", BillingCycle: types.BillingCycleMonthly, IsActive: true}
		svc := newTestService(store)

		res, err := svc.Create(ctx, 10, 1, "")
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusPending, res.Order.Status)
		assert.EqualValues(t, 99, res.Order.Amount)
		assert.Equal(t, "USD", res.Order.Currency)
		assert.Nil(t, res.Order.PaidAt)
		assert.Equal(t, types.PaymentChannelStripe, res.Order.PaymentChannel)
		assert.NotEmpty(t, res.Order.OrderNo)
		assert.Equal(t, "https://pay.example.com/"+res.Order.OrderNo, res.PaymentURL)
		require.NotNil(t, res.Order.GetPlanSnapshot())
		assert.Equal(t, "Gold", res.Order.GetPlanSnapshot().Name)
	})

	t.Run("snapshot survives plan edits", func(t *testing.T) {
		store := newFakeStore()
		store.plans[1] = &models.MembershipPlan{ID: 1, Name: "Gold", Price: 99, Currency: "USD", IsActive: true}
		svc := newTestService(store)

		res, err := svc.Create(ctx, 10, 1, "")
		require.NoError(t, err)

		store.plans[1].Price = 199
		assert.EqualValues(t, 99, res.Order.Amount)
	})

	t.Run("inactive plan", func(t *testing.T) {
		store := newFakeStore()
		store.plans[1] = &models.MembershipPlan{ID: 1, Price: 99, IsActive: false}
		svc := newTestService(store)

		_, err := svc.Create(ctx, 10, 1, "")
		assert.Equal(t, apperr.CodePlanNotFound, apperr.CodeOf(err))
	})

	t.Run("missing plan", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.Create(ctx, 10, 42, "")
		assert.Equal(t, apperr.CodePlanNotFound, apperr.CodeOf(err))
	})

	t.Run("explicit channel", func(t *testing.T) {
		store := newFakeStore()
		store.plans[1] = &models.MembershipPlan{ID: 1, Price: 99, IsActive: true}
		svc := newTestService(store)

		res, err := svc.Create(ctx, 10, 1, types.PaymentChannelAlipay)
		require.NoError(t, err)
		assert.Equal(t, types.PaymentChannelAlipay, res.Order.PaymentChannel)
	})

	t.Run("unknown channel", func(t *testing.T) {
		store := newFakeStore()
		store.plans[1] = &models.MembershipPlan{ID: 1, Price: 99, IsActive: true}
		svc := newTestService(store)

		_, err := svc.Create(ctx, 10, 1, "PAYPAL")
		assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
	})
}

func TestCancelForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order by owner", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		svc := newTestService(store)

		out, err := svc.CancelForUser(ctx, o.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusCanceled, out.Status)
		assert.Equal(t, types.OrderStatusCanceled, store.orders[o.ID].Status)
	})

	t.Run("second cancel is rejected", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		svc := newTestService(store)

		_, err := svc.CancelForUser(ctx, o.ID, 10)
		require.NoError(t, err)

		_, err = svc.CancelForUser(ctx, o.ID, 10)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
		assert.Equal(t, types.OrderStatusCanceled, store.orders[o.ID].Status)
	})

	t.Run("non-owner sees not found", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		svc := newTestService(store)

		_, err := svc.CancelForUser(ctx, o.ID, 11)
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
		// no mutation
		assert.Equal(t, types.OrderStatusPending, store.orders[o.ID].Status)
	})

	t.Run("paid order cannot be canceled", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPaid)
		svc := newTestService(store)

		_, err := svc.CancelForUser(ctx, o.ID, 10)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
		assert.Equal(t, types.OrderStatusPaid, store.orders[o.ID].Status)
	})

	t.Run("lost race reports invalid status", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		store.forceConflict = true
		svc := newTestService(store)

		_, err := svc.CancelForUser(ctx, o.ID, 10)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
		assert.Equal(t, types.OrderStatusPending, store.orders[o.ID].Status)
	})
}

func TestRequestRefundForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("paid order by owner", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPaid)
		svc := newTestService(store)

		out, err := svc.RequestRefundForUser(ctx, o.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusRefundRequested, out.Status)
	})

	t.Run("pending order is rejected", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		svc := newTestService(store)

		_, err := svc.RequestRefundForUser(ctx, o.ID, 10)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
		assert.Equal(t, types.OrderStatusPending, store.orders[o.ID].Status)
	})

	t.Run("non-owner sees not found", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPaid)
		svc := newTestService(store)

		_, err := svc.RequestRefundForUser(ctx, o.ID, 11)
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
		assert.Equal(t, types.OrderStatusPaid, store.orders[o.ID].Status)
	})
}

func TestApproveRefundForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("pending refund request", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusRefundRequested)
		svc := newTestService(store)

		out, err := svc.ApproveRefundForOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusRefunded, out.Status)
	})

	t.Run("second approve is rejected", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusRefundRequested)
		svc := newTestService(store)

		_, err := svc.ApproveRefundForOrder(ctx, o.ID)
		require.NoError(t, err)

		_, err = svc.ApproveRefundForOrder(ctx, o.ID)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
		assert.Equal(t, types.OrderStatusRefunded, store.orders[o.ID].Status)
	})

	t.Run("missing order", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.ApproveRefundForOrder(ctx, 404)
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})

	t.Run("paid order without refund request", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPaid)
		svc := newTestService(store)

		_, err := svc.ApproveRefundForOrder(ctx, o.ID)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
	})
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		svc := newTestService(store)

		out, err := svc.MarkPaid(ctx, o.OrderNo)
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusPaid, out.Status)
		require.NotNil(t, out.PaidAt)
		assert.Equal(t, types.OrderStatusPaid, store.orders[o.ID].Status)
	})

	t.Run("second confirmation is rejected", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		svc := newTestService(store)

		first, err := svc.MarkPaid(ctx, o.OrderNo)
		require.NoError(t, err)

		_, err = svc.MarkPaid(ctx, o.OrderNo)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
		// paid_at set exactly once
		assert.Equal(t, first.PaidAt.Unix(), store.orders[o.ID].PaidAt.Unix())
	})

	t.Run("unknown order no", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.MarkPaid(ctx, "MO-missing")
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})

	t.Run("grants entitlement once", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		granter := &fakeGranter{}
		svc := newTestServiceWithGranter(store, granter)

		_, err := svc.MarkPaid(ctx, o.OrderNo)
		require.NoError(t, err)

		_, err = svc.MarkPaid(ctx, o.OrderNo)
		assert.Error(t, err)
		require.Len(t, granter.granted, 1)
		assert.EqualValues(t, 10, granter.granted[0].UserID)
	})

	t.Run("grant failure does not undo payment", func(t *testing.T) {
		store := newFakeStore()
		o := seedOrder(store, 10, types.OrderStatusPending)
		granter := &fakeGranter{err: errors.New("subscriptions unavailable")}
		svc := newTestServiceWithGranter(store, granter)

		out, err := svc.MarkPaid(ctx, o.OrderNo)
		require.NoError(t, err)
		assert.Equal(t, types.OrderStatusPaid, out.Status)
		assert.Equal(t, types.OrderStatusPaid, store.orders[o.ID].Status)
	})
}

func TestFullLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.plans[1] = &models.MembershipPlan{ID: 1, Name: "Gold", Price: 99, Currency: "USD", IsActive: true}
	svc := newTestService(store)

	res, err := svc.Create(ctx, 10, 1, "")
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, res.Order.OrderNo)
	require.NoError(t, err)

	out, err := svc.RequestRefundForUser(ctx, res.Order.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusRefundRequested, out.Status)

	out, err = svc.ApproveRefundForOrder(ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusRefunded, out.Status)

	_, err = svc.ApproveRefundForOrder(ctx, res.Order.ID)
	assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
}

func TestScanOrders(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		seedOrder(store, 10, types.OrderStatusPending)
	}
	svc := newTestService(store)

	res, err := svc.ScanOrders(ctx, &ScanOrdersRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.EqualValues(t, 5, res.Meta.Total)
	assert.Equal(t, 2, res.Meta.Page)
	assert.Equal(t, 3, res.Meta.TotalPages)
}
