package service

import (
	"context"
	"time"

	"github.com/sangkips/posbilling/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DashboardService provides end-of-day figures for the counter
type DashboardService struct {
	purchaseRepo     repository.PurchaseRepository
	denominationRepo repository.DenominationRepository
	now              func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(purchaseRepo repository.PurchaseRepository, denominationRepo repository.DenominationRepository) *DashboardService {
	return &DashboardService{
		purchaseRepo:     purchaseRepo,
		denominationRepo: denominationRepo,
		now:              time.Now,
	}
}

// DailySalesPoint represents one day of sales
type DailySalesPoint struct {
	Date      string          `json:"date"`
	Purchases int64           `json:"purchases"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	Today     repository.SalesTotals `json:"today"`
	TillValue decimal.Decimal        `json:"till_value"`
	LastWeek  []DailySalesPoint      `json:"last_week"`
}

// GetDashboardStats returns today's totals, the cash in the till and the last seven days of sales
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := &DashboardStats{LastWeek: make([]DailySalesPoint, 0, 7)}

	for i := 6; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		totals, err := s.purchaseRepo.Totals(ctx, from, from.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		stats.LastWeek = append(stats.LastWeek, DailySalesPoint{
			Date:      from.Format("2006-01-02"),
			Purchases: totals.Purchases,
			Revenue:   totals.Revenue,
		})
		if i == 0 {
			stats.Today = *totals
		}
	}

	till, err := s.denominationRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	var cash int64
	for _, d := range till {
		cash += d.Value * int64(d.AvailableCount)
	}
	stats.TillValue = decimal.NewFromInt(cash)

	return stats, nil
}
