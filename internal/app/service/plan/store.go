package plan

import (
	"context"

	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
)

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ListActive(ctx context.Context) ([]*models.MembershipPlan, error) {
	var rows []*models.MembershipPlan
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *gormStore) ListAll(ctx context.Context) ([]*models.MembershipPlan, error) {
	var rows []*models.MembershipPlan
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *gormStore) FindByID(ctx context.Context, id int64) (*models.MembershipPlan, error) {
	var p models.MembershipPlan
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) Create(ctx context.Context, p *models.MembershipPlan) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) Save(ctx context.Context, p *models.MembershipPlan) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *gormStore) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&models.MembershipPlan{}, id).Error
}

func (s *gormStore) CountOrdersByPlan(ctx context.Context, planID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("plan_id = ?", planID).
		Count(&count).Error
	return count, err
}
