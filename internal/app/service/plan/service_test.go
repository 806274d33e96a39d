package plan

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/types"
)

type fakeStore struct {
	plans       map[int64]*models.MembershipPlan
	orderCounts map[int64]int64
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{plans: map[int64]*models.MembershipPlan{}, orderCounts: map[int64]int64{}}
}

func (f *fakeStore) ListActive(_ context.Context) ([]*models.MembershipPlan, error) {
	var rows []*models.MembershipPlan
	for _, p := range f.plans {
		if p.IsActive {
			cp := *p
			rows = append(rows, &cp)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Price < rows[j].Price })
	return rows, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]*models.MembershipPlan, error) {
	var rows []*models.MembershipPlan
	for _, p := range f.plans {
		cp := *p
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*models.MembershipPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Create(_ context.Context, p *models.MembershipPlan) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.plans[p.ID] = &cp
	return nil
}

func (f *fakeStore) Save(_ context.Context, p *models.MembershipPlan) error {
	cp := *p
	f.plans[p.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.plans, id)
	return nil
}

func (f *fakeStore) CountOrdersByPlan(_ context.Context, planID int64) (int64, error) {
	return f.orderCounts[planID], nil
}

func newTestService(store Store) *Service {
	return NewService(zap.NewNop().Sugar(), store)
}

func TestCreatePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("valid plan defaults to active", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		p, err := svc.Create(ctx, &CreatePlanInput{
			Name: "Gold", Price: 99, Currency: "USD", BillingCycle: types.BillingCycleMonthly,
		})
		require.NoError(t, err)
		assert.True(t, p.IsActive)
		assert.NotZero(t, p.ID)
	})

	t.Run("negative price", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.Create(ctx, &CreatePlanInput{
			Name: "Gold", Price: -1, Currency: "USD", BillingCycle: types.BillingCycleMonthly,
		})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
	})

	t.Run("invalid billing cycle", func(t *testing.T) {
		svc := newTestService(newFakeStore())
		_, err := svc.Create(ctx, &CreatePlanInput{
			Name: "Gold", Price: 99, Currency: "USD", BillingCycle: "WEEKLY",
		})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
	})
}

func TestUpdatePlan(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.plans[1] = &models.MembershipPlan{ID: 1, Name: "Gold", Price: 99, Currency: "USD", BillingCycle: types.BillingCycleMonthly, IsActive: true}
	svc := newTestService(store)

	t.Run("partial update", func(t *testing.T) {
		price := int64(199)
		p, err := svc.Update(ctx, 1, &UpdatePlanInput{Price: &price})
		require.NoError(t, err)
		assert.EqualValues(t, 199, p.Price)
		assert.Equal(t, "Gold", p.Name)
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := svc.Update(ctx, 1, &UpdatePlanInput{})
		assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
	})

	t.Run("missing plan", func(t *testing.T) {
		price := int64(1)
		_, err := svc.Update(ctx, 404, &UpdatePlanInput{Price: &price})
		assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	})
}

func TestDeletePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("unreferenced plan", func(t *testing.T) {
		store := newFakeStore()
		store.plans[1] = &models.MembershipPlan{ID: 1, Name: "Gold"}
		svc := newTestService(store)

		require.NoError(t, svc.Delete(ctx, 1))
		assert.NotContains(t, store.plans, int64(1))
	})

	t.Run("plan with orders is kept", func(t *testing.T) {
		store := newFakeStore()
		store.plans[1] = &models.MembershipPlan{ID: 1, Name: "Gold"}
		store.orderCounts[1] = 2
		svc := newTestService(store)

		err := svc.Delete(ctx, 1)
		assert.Equal(t, apperr.CodeInvalidStatus, apperr.CodeOf(err))
		assert.Contains(t, store.plans, int64(1))
	})
}

func TestListActive(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.plans[1] = &models.MembershipPlan{ID: 1, Name: "Gold", Price: 99, IsActive: true}
	store.plans[2] = &models.MembershipPlan{ID: 2, Name: "Silver", Price: 49, IsActive: true}
	store.plans[3] = &models.MembershipPlan{ID: 3, Name: "Legacy", Price: 9, IsActive: false}
	svc := newTestService(store)

	rows, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Silver", rows[0].Name)
	assert.Equal(t, "Gold", rows[1].Name)
}
