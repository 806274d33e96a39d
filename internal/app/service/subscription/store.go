package subscription

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/types"
)

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindActiveByUser(ctx context.Context, userID int64, now time.Time) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND end_at > ?", userID, types.SubscriptionStatusActive, now).
		Order("end_at desc").
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) ListByUser(ctx context.Context, userID int64) ([]*models.UserSubscription, error) {
	var rows []*models.UserSubscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("end_at desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *gormStore) Create(ctx context.Context, sub *models.UserSubscription) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

func (s *gormStore) ExtendEndAt(ctx context.Context, id int64, endAt time.Time) error {
	return s.db.WithContext(ctx).Model(&models.UserSubscription{}).
		Where("id = ?", id).
		Update("end_at", endAt).Error
}
