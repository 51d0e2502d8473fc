package usecase

import (
	"context"
	"time"

	"oifit/internal/domain/model"
	"oifit/internal/domain/pricing"
	"oifit/internal/payment"
	repo "oifit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type SalesUsecase struct {
	sales    repo.SalesRepository
	gateway  payment.Gateway
	currency string
	log      zerolog.Logger
}

func NewSalesUsecase(sales repo.SalesRepository, gateway payment.Gateway, currency string, log zerolog.Logger) *SalesUsecase {
	return &SalesUsecase{sales: sales, gateway: gateway, currency: currency, log: log}
}

type MonthlyRevenueOutput struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type BalanceOutput struct {
	Available string `json:"available"`
	Pending   string `json:"pending"`
}

type SalesStatsOutput struct {
	TotalOrders       int64                  `json:"totalOrders"`
	PaidOrders        int64                  `json:"paidOrders"`
	PendingOrders     int64                  `json:"pendingOrders"`
	CanceledOrders    int64                  `json:"canceledOrders"`
	TotalRevenue      decimal.Decimal        `json:"totalRevenue"`
	PendingRevenue    decimal.Decimal        `json:"pendingRevenue"`
	ItemsSold         int64                  `json:"itemsSold"`
	AverageOrderValue decimal.Decimal        `json:"averageOrderValue"`
	MonthlyRevenue    []MonthlyRevenueOutput `json:"monthlyRevenue"`
	RecentOrders      []OrderOutput          `json:"recentOrders"`
	// 決済代行に繋がらない場合はnil
	Balance *BalanceOutput `json:"balance,omitempty"`
}

// 管理画面の売上サマリ
func (u *SalesUsecase) Stats(ctx context.Context) (SalesStatsOutput, error) {
	totals, err := u.sales.TotalsByStatus(ctx)
	if err != nil {
		return SalesStatsOutput{}, errDB
	}

	out := SalesStatsOutput{
		TotalRevenue:   decimal.Zero,
		PendingRevenue: decimal.Zero,
		MonthlyRevenue: []MonthlyRevenueOutput{},
		RecentOrders:   []OrderOutput{},
	}
	for _, t := range totals {
		out.TotalOrders += t.Count
		switch t.Status {
		case model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusDelivered:
			//支払い済み以降を売上に数える
			out.PaidOrders += t.Count
			out.TotalRevenue = out.TotalRevenue.Add(t.Amount)
		case model.OrderStatusPending:
			out.PendingOrders += t.Count
			out.PendingRevenue = out.PendingRevenue.Add(t.Amount)
		case model.OrderStatusCanceled:
			out.CanceledOrders += t.Count
		}
	}
	if out.PaidOrders > 0 {
		out.AverageOrderValue = out.TotalRevenue.Div(decimal.NewFromInt(out.PaidOrders)).Round(2)
	} else {
		out.AverageOrderValue = decimal.Zero
	}

	if out.ItemsSold, err = u.sales.ItemsSold(ctx); err != nil {
		return SalesStatsOutput{}, errDB
	}

	//直近12か月（今月を含む）
	n := now().UTC()
	since := time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	months, err := u.sales.MonthlyRevenue(ctx, since)
	if err != nil {
		return SalesStatsOutput{}, errDB
	}
	for _, m := range months {
		out.MonthlyRevenue = append(out.MonthlyRevenue, MonthlyRevenueOutput{
			Month:   m.Month.Format("2006-01"),
			Revenue: m.Revenue,
			Orders:  m.Orders,
		})
	}

	recent, err := u.sales.Recent(ctx, 5)
	if err != nil {
		return SalesStatsOutput{}, errDB
	}
	for _, o := range recent {
		out.RecentOrders = append(out.RecentOrders, toOrderOutput(o, nil))
	}

	if u.gateway != nil {
		b, err := u.gateway.Balance(ctx, u.currency)
		if err != nil {
			u.log.Warn().Err(err).Msg("processor balance")
		} else {
			out.Balance = &BalanceOutput{
				Available: pricing.FormatBRL(b.AvailableCents),
				Pending:   pricing.FormatBRL(b.PendingCents),
			}
		}
	}
	return out, nil
}
