package services

import (
	"fmt"
	"math"
	"testing"

	"cafe-storefront/models"
)

func line(id, name string, price float64, qty int) models.CartLine {
	return models.CartLine{Item: item(id, name, price), Quantity: qty}
}

var analyticsOrders = []models.Order{
	{ID: "3", Date: "2026-03-03T10:00:00Z", TotalPrice: 300, ServiceMode: models.TakeOut,
		Items: []models.CartLine{line("latte", "Latte", 150, 2)}},
	{ID: "2", Date: "2026-03-02T10:00:00Z", TotalPrice: 135, ServiceMode: models.DineIn,
		Items: []models.CartLine{line("mocha", "Mocha", 150, 1)}},
	{ID: "1", Date: "2026-03-02T08:00:00Z", TotalPrice: 265, ServiceMode: models.DineIn,
		Items: []models.CartLine{line("latte", "Latte", 150, 1), line("fries", "Fries", 115, 1)}},
}

func TestComputeOrderMetrics(t *testing.T) {
	got := ComputeOrderMetrics(analyticsOrders)
	want := OrderMetrics{TotalRevenue: 700, TotalOrders: 3, AverageOrderValue: 233.33, TotalItemsSold: 5}
	if got != want {
		t.Errorf("ComputeOrderMetrics() = %+v, want %+v", got, want)
	}
	if got := ComputeOrderMetrics(nil); got != (OrderMetrics{}) {
		t.Errorf("ComputeOrderMetrics(nil) = %+v", got)
	}
}

func TestComputeServiceModeStats(t *testing.T) {
	got := ComputeServiceModeStats(analyticsOrders)
	want := ServiceModeStats{DineInCount: 2, TakeOutCount: 1, DineInRevenue: 400, TakeOutRevenue: 300}
	if got != want {
		t.Errorf("ComputeServiceModeStats() = %+v, want %+v", got, want)
	}
}

func TestComputeTopItems(t *testing.T) {
	got := ComputeTopItems(analyticsOrders)
	want := []TopItem{
		{ID: "latte", Name: "Latte", Quantity: 3, Revenue: 450},
		{ID: "mocha", Name: "Mocha", Quantity: 1, Revenue: 150},
		{ID: "fries", Name: "Fries", Quantity: 1, Revenue: 115},
	}
	if len(got) != len(want) {
		t.Fatalf("ComputeTopItems() = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopItems[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestComputeRevenueByDate(t *testing.T) {
	got := ComputeRevenueByDate(analyticsOrders)
	want := []DailyRevenue{{"2026-03-02", 400}, {"2026-03-03", 300}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ComputeRevenueByDate() = %+v, want %+v", got, want)
	}

	var many []models.Order
	for d := 1; d <= 10; d++ {
		many = append(many, models.Order{Date: fmt.Sprintf("2026-04-%02dT12:00:00Z", d), TotalPrice: float64(d)})
	}
	got = ComputeRevenueByDate(many)
	if len(got) != 7 || got[0].Date != "2026-04-04" || got[6].Date != "2026-04-10" {
		t.Errorf("last seven days = %+v", got)
	}
}

func TestExpenseMetricsAndProfit(t *testing.T) {
	entries := []models.ExpenseEntry{
		{Amount: 100, Category: models.ExpenseMaterials},
		{Amount: 50.5, Category: models.ExpenseOperations},
		{Amount: 25, Category: models.ExpenseMaterials},
	}
	got := ComputeExpenseMetrics(entries, 700)
	want := ExpenseMetrics{MaterialsTotal: 125, OperationsTotal: 50.5, TotalExpenses: 175.5, NetProfitAfterExpenses: 524.5}
	if got != want {
		t.Errorf("ComputeExpenseMetrics() = %+v, want %+v", got, want)
	}

	tests := []struct {
		in   ProfitInput
		want ProfitResult
	}{
		{ProfitInput{GoodsCost: 200, OperatingExpenses: 100, DeductibleRate: 10}, ProfitResult{10, 70, 330}},
		{ProfitInput{DeductibleRate: 150}, ProfitResult{100, 700, 0}},
		{ProfitInput{DeductibleRate: -5}, ProfitResult{0, 0, 700}},
		{ProfitInput{GoodsCost: math.NaN(), OperatingExpenses: 100, DeductibleRate: 10}, ProfitResult{10, 70, 530}},
		{ProfitInput{GoodsCost: 200, OperatingExpenses: math.Inf(1), DeductibleRate: math.NaN()}, ProfitResult{0, 0, 500}},
		{ProfitInput{GoodsCost: math.Inf(-1), DeductibleRate: math.Inf(1)}, ProfitResult{0, 0, 700}},
	}
	for _, tt := range tests {
		if got := ComputeProfit(700, tt.in); got != tt.want {
			t.Errorf("ComputeProfit(700, %+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDailyStats(t *testing.T) {
	got := DailyStats(analyticsOrders, "2026-03-02")
	want := models.DailyStats{Date: "2026-03-02", OrdersCount: 2, ItemsSold: 3, Revenue: 400, DineInCount: 2}
	if got != want {
		t.Errorf("DailyStats() = %+v, want %+v", got, want)
	}
}
