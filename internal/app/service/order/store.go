package order

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/types"
)

// Store is the persistence capability the lifecycle manager depends on.
// The gorm implementation below is the production one; tests substitute
// an in-memory fake.
type Store interface {
	FindActivePlan(ctx context.Context, planID int64) (*models.MembershipPlan, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindByUserAndID(ctx context.Context, userID, id int64) (*models.Order, error)
	FindByOrderNo(ctx context.Context, orderNo string) (*models.Order, error)
	// UpdateStatusIf flips status only while the stored status still
	// equals from. Returns the number of rows affected; 0 means the
	// precondition no longer held when the write ran.
	UpdateStatusIf(ctx context.Context, id int64, from, to types.OrderStatus) (int64, error)
	// MarkPaidIf sets status=PAID and paid_at in one conditional write,
	// so paid_at can only ever be set once.
	MarkPaidIf(ctx context.Context, id int64, paidAt time.Time) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Order, error)
	Scan(ctx context.Context, filters []*types.CommonFilter, offset, limit int) ([]*models.Order, int64, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindActivePlan(ctx context.Context, planID int64) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", planID, true).
		First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *gormStore) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.db.WithContext(ctx).Create(o).Error
}

func (s *gormStore) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *gormStore) FindByUserAndID(ctx context.Context, userID, id int64) (*models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *gormStore) FindByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *gormStore) UpdateStatusIf(ctx context.Context, id int64, from, to types.OrderStatus) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (s *gormStore) MarkPaidIf(ctx context.Context, id int64, paidAt time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND paid_at IS NULL", id, types.OrderStatusPending).
		Updates(map[string]any{"status": types.OrderStatusPaid, "paid_at": paidAt})
	return res.RowsAffected, res.Error
}

func (s *gormStore) ListByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	var rows []*models.Order
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

func (s *gormStore) Scan(ctx context.Context, filters []*types.CommonFilter, offset, limit int) ([]*models.Order, int64, error) {
	tx := s.db.WithContext(ctx).Model(&models.Order{})
	if len(filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*models.Order
	q := tx.Order("created_at desc").Limit(limit)
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
