package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/types"
)

// Statistic types served by the admin dashboard
type StatisticType string

const (
	// Daily counts and revenue
	StatisticTypeDailyOrderCount StatisticType = "daily_order_count"
	StatisticTypeDailyRevenue    StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue    StatisticType = "total_revenue"

	// Membership growth
	StatisticTypeDailyNewUserCount       StatisticType = "daily_new_user_count"
	StatisticTypeActiveSubscriptionCount StatisticType = "active_subscription_count"
	StatisticTypeOrderStatusBreakdown    StatisticType = "order_status_breakdown"
)

// Filter fields that only apply to order-based statistic types
type DashboardStatisticFilterType string

const (
	DashboardStatisticFilterTypePaymentChannel DashboardStatisticFilterType = "payment_channel"
	DashboardStatisticFilterTypePlanID         DashboardStatisticFilterType = "plan_id"
)

var filterTypes = []DashboardStatisticFilterType{
	DashboardStatisticFilterTypePaymentChannel,
	DashboardStatisticFilterTypePlanID,
}

var validFilters = map[DashboardStatisticFilterType][]StatisticType{
	DashboardStatisticFilterTypePaymentChannel: {StatisticTypeDailyOrderCount, StatisticTypeDailyRevenue, StatisticTypeTotalRevenue, StatisticTypeOrderStatusBreakdown},
	DashboardStatisticFilterTypePlanID:         {StatisticTypeDailyOrderCount, StatisticTypeDailyRevenue, StatisticTypeTotalRevenue, StatisticTypeOrderStatusBreakdown},
}

type DashboardStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type DashboardStatisticRequest struct {
	Filters   []*types.CommonFilter         `json:"filters"`
	DataItems []*DashboardStatisticDataItem `json:"data_items"`
}

// GetFilters keeps only the filters applicable to statisticType.
func (f *DashboardStatisticRequest) GetFilters(statisticType StatisticType) *DashboardStatisticRequest {
	if f == nil || len(f.Filters) == 0 {
		return f
	}
	var result DashboardStatisticRequest
	for _, filter := range f.Filters {
		if statisticTypes, ok := validFilters[DashboardStatisticFilterType(filter.Field)]; ok {
			if lo.Contains(statisticTypes, statisticType) {
				result.Filters = append(result.Filters, filter)
			}
		} else {
			result.Filters = append(result.Filters, filter)
		}
	}
	return &result
}

// Build composes a WHERE clause from the applicable filters.
func (f *DashboardStatisticRequest) Build(builder clause.Builder) {
	if f == nil || len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type DashboardStatisticResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type DashboardStatisticResponse struct {
	DataItems map[StatisticType][]DashboardStatisticResponseDataItem `json:"data_items"`
}

// Service provides dashboard statistics
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyOrderCount(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyOrderCount)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("TO_CHAR(paid_at, 'YYYY-MM-DD') as date, currency AS label, sum(amount) as value").
		Where("paid_at IS NOT NULL").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyRevenue)}}).
		Group("TO_CHAR(paid_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalRevenue(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("currency AS label, sum(amount) as value").
		Where("paid_at IS NOT NULL").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeTotalRevenue)}}).
		Group("currency").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewUserCount(ctx context.Context, _ *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.User{}).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, _ *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.UserSubscription{}).
		Where("status = ? AND end_at > ?", types.SubscriptionStatusActive, time.Now()).
		Count(&count).Error; err != nil {
		return nil, err
	}
	return []DashboardStatisticResponseDataItem{{Value: count}}, nil
}

func (s *Service) getOrderStatusBreakdown(ctx context.Context, request *DashboardStatisticRequest) ([]DashboardStatisticResponseDataItem, error) {
	var results []DashboardStatisticResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status AS label, count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeOrderStatusBreakdown)}}).
		Group("status").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDashboardStatistic(ctx context.Context, request *DashboardStatisticRequest, dataItem *DashboardStatisticDataItem) ([]DashboardStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyOrderCount:
		return s.getDailyOrderCount(ctx, request)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, request)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx, request)
	case StatisticTypeDailyNewUserCount:
		return s.getDailyNewUserCount(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	case StatisticTypeOrderStatusBreakdown:
		return s.getOrderStatusBreakdown(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetDashboardStatistic resolves the requested data items concurrently.
func (s *Service) GetDashboardStatistic(ctx context.Context, request *DashboardStatisticRequest) (*DashboardStatisticResponse, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []DashboardStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *DashboardStatisticDataItem) {
			defer wg.Done()
			// check filter applicability
			for _, filter := range request.Filters {
				ft := DashboardStatisticFilterType(filter.Field)
				if lo.Contains(filterTypes, ft) && !lo.Contains(validFilters[ft], di.ID) {
					resChan <- &lo.Entry[StatisticType, []DashboardStatisticResponseDataItem]{Key: di.ID, Value: nil}
					return
				}
			}
			res, err := s.getDashboardStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []DashboardStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]DashboardStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &DashboardStatisticResponse{DataItems: results}, nil
}
