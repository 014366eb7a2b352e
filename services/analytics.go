package services

import (
	"sort"
	"time"

	"cafe-storefront/models"

	"github.com/shopspring/decimal"
)

type OrderMetrics struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int     `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	TotalItemsSold    int     `json:"totalItemsSold"`
}

type ServiceModeStats struct {
	DineInCount    int     `json:"dineInCount"`
	TakeOutCount   int     `json:"takeOutCount"`
	DineInRevenue  float64 `json:"dineInRevenue"`
	TakeOutRevenue float64 `json:"takeOutRevenue"`
}

type TopItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type DailyRevenue struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type ExpenseMetrics struct {
	MaterialsTotal         float64 `json:"materialsTotal"`
	OperationsTotal        float64 `json:"operationsTotal"`
	TotalExpenses          float64 `json:"totalExpenses"`
	NetProfitAfterExpenses float64 `json:"netProfitAfterExpenses"`
}

// ProfitInput feeds the profit calculator. DeductibleRate is a
// percentage, clamped to 0..100.
type ProfitInput struct {
	GoodsCost         float64 `json:"goodsCost"`
	OperatingExpenses float64 `json:"operatingExpenses"`
	DeductibleRate    float64 `json:"deductibleRate"`
}

type ProfitResult struct {
	DeductibleRate   float64 `json:"deductibleRate"`
	DeductibleAmount float64 `json:"deductibleAmount"`
	NetProfit        float64 `json:"netProfit"`
}

// Report is the admin analytics dashboard.
type Report struct {
	Orders        OrderMetrics     `json:"orders"`
	ServiceModes  ServiceModeStats `json:"serviceModes"`
	TopItems      []TopItem        `json:"topItems"`
	RevenueByDate []DailyRevenue   `json:"revenueByDate"`
	Expenses      ExpenseMetrics   `json:"expenses"`
	Profit        ProfitResult     `json:"profit"`
}

const (
	topItemsLimit    = 5
	revenueDaysLimit = 7
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func ComputeOrderMetrics(orders []models.Order) OrderMetrics {
	if len(orders) == 0 {
		return OrderMetrics{}
	}
	revenue := decimal.Zero
	items := 0
	for _, o := range orders {
		revenue = revenue.Add(dec(o.TotalPrice))
		items += o.ItemCount()
	}
	return OrderMetrics{
		TotalRevenue:      Money(revenue),
		TotalOrders:       len(orders),
		AverageOrderValue: Money(revenue.Div(decimal.NewFromInt(int64(len(orders))))),
		TotalItemsSold:    items,
	}
}

func ComputeServiceModeStats(orders []models.Order) ServiceModeStats {
	var st ServiceModeStats
	dineIn, takeOut := decimal.Zero, decimal.Zero
	for _, o := range orders {
		switch o.ServiceMode {
		case models.DineIn:
			st.DineInCount++
			dineIn = dineIn.Add(dec(o.TotalPrice))
		case models.TakeOut:
			st.TakeOutCount++
			takeOut = takeOut.Add(dec(o.TotalPrice))
		}
	}
	st.DineInRevenue = Money(dineIn)
	st.TakeOutRevenue = Money(takeOut)
	return st
}

// ComputeTopItems ranks items by revenue (captured line price × quantity),
// keyed by item id.
func ComputeTopItems(orders []models.Order) []TopItem {
	type acc struct {
		name    string
		qty     int
		revenue decimal.Decimal
		first   int
	}
	byID := make(map[string]*acc)
	seq := 0
	for _, o := range orders {
		for _, l := range o.Items {
			a, ok := byID[l.Item.ID]
			if !ok {
				a = &acc{name: l.Item.Name, revenue: decimal.Zero, first: seq}
				byID[l.Item.ID] = a
				seq++
			}
			a.qty += l.Quantity
			a.revenue = a.revenue.Add(dec(l.UnitPrice()).Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := byID[ids[i]], byID[ids[j]]
		if c := a.revenue.Cmp(b.revenue); c != 0 {
			return c > 0
		}
		return a.first < b.first
	})
	if len(ids) > topItemsLimit {
		ids = ids[:topItemsLimit]
	}
	out := make([]TopItem, 0, len(ids))
	for _, id := range ids {
		a := byID[id]
		out = append(out, TopItem{ID: id, Name: a.name, Quantity: a.qty, Revenue: Money(a.revenue)})
	}
	return out
}

// orderDay is the calendar day of an order's date, or "" if unparseable.
func orderDay(o models.Order) string {
	t, err := time.Parse(time.RFC3339, o.Date)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ComputeRevenueByDate totals revenue per day, oldest first, keeping the
// most recent seven days.
func ComputeRevenueByDate(orders []models.Order) []DailyRevenue {
	totals := make(map[string]decimal.Decimal)
	for _, o := range orders {
		day := orderDay(o)
		if day == "" {
			continue
		}
		prev, ok := totals[day]
		if !ok {
			prev = decimal.Zero
		}
		totals[day] = prev.Add(dec(o.TotalPrice))
	}
	days := make([]string, 0, len(totals))
	for d := range totals {
		days = append(days, d)
	}
	sort.Strings(days)
	if len(days) > revenueDaysLimit {
		days = days[len(days)-revenueDaysLimit:]
	}
	out := make([]DailyRevenue, 0, len(days))
	for _, d := range days {
		out = append(out, DailyRevenue{Date: d, Total: Money(totals[d])})
	}
	return out
}

func ComputeExpenseMetrics(entries []models.ExpenseEntry, revenue float64) ExpenseMetrics {
	materials, operations := decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Category {
		case models.ExpenseMaterials:
			materials = materials.Add(dec(e.Amount))
		case models.ExpenseOperations:
			operations = operations.Add(dec(e.Amount))
		}
	}
	total := materials.Add(operations)
	return ExpenseMetrics{
		MaterialsTotal:         Money(materials),
		OperationsTotal:        Money(operations),
		TotalExpenses:          Money(total),
		NetProfitAfterExpenses: Money(dec(revenue).Sub(total)),
	}
}

// costOrZero maps NaN, infinite and negative costs to zero.
func costOrZero(v float64) float64 {
	if !validAmount(v) {
		return 0
	}
	return v
}

func ComputeProfit(revenue float64, in ProfitInput) ProfitResult {
	rate := in.DeductibleRate
	if !validAmount(rate) {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	deductible := dec(revenue).Mul(dec(rate)).Div(decimal.NewFromInt(100))
	net := dec(revenue).Sub(dec(costOrZero(in.GoodsCost))).Sub(dec(costOrZero(in.OperatingExpenses))).Sub(deductible)
	return ProfitResult{
		DeductibleRate:   rate,
		DeductibleAmount: Money(deductible),
		NetProfit:        Money(net),
	}
}

// DefaultProfitInput matches the calculator's initial state.
var DefaultProfitInput = ProfitInput{DeductibleRate: 10}

func BuildReport(orders []models.Order, expenses []models.ExpenseEntry, profit ProfitInput) Report {
	om := ComputeOrderMetrics(orders)
	return Report{
		Orders:        om,
		ServiceModes:  ComputeServiceModeStats(orders),
		TopItems:      ComputeTopItems(orders),
		RevenueByDate: ComputeRevenueByDate(orders),
		Expenses:      ComputeExpenseMetrics(expenses, om.TotalRevenue),
		Profit:        ComputeProfit(om.TotalRevenue, profit),
	}
}

// DailyStats summarises the orders placed on date (YYYY-MM-DD).
func DailyStats(orders []models.Order, date string) models.DailyStats {
	st := models.DailyStats{Date: date}
	revenue := decimal.Zero
	for _, o := range orders {
		if orderDay(o) != date {
			continue
		}
		st.OrdersCount++
		st.ItemsSold += o.ItemCount()
		revenue = revenue.Add(dec(o.TotalPrice))
		switch o.ServiceMode {
		case models.DineIn:
			st.DineInCount++
		case models.TakeOut:
			st.TakeOutCount++
		}
	}
	st.Revenue = Money(revenue)
	return st
}
