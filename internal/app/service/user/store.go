package user

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

func (s *gormStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *gormStore) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []*models.User
	if err := s.db.WithContext(ctx).
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *gormStore) Save(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *gormStore) ActiveSubscription(ctx context.Context, userID int64, now time.Time) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND end_at > ?", userID, types.SubscriptionStatusActive, now).
		Order("end_at desc").
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) CountOrders(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *gormStore) CountSubscriptions(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserSubscription{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *gormStore) PlanNames(ctx context.Context, planIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(planIDs))
	if len(planIDs) == 0 {
		return names, nil
	}
	var rows []*models.MembershipPlan
	if err := s.db.WithContext(ctx).
		Select("id", "name").
		Where("id IN ?", planIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		names[p.ID] = p.Name
	}
	return names, nil
}

// DeleteCascade removes the user's subscriptions and orders before the
// user row itself, inside one transaction.
func (s *gormStore) DeleteCascade(ctx context.Context, userID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserSubscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
}
