package analytics

import (
	"sort"

	"shoppulse/internal/dataset"
)

// CalculateProductPerformance groups category-joined sales by category and
// computes revenue, pricing and order aggregates. Results sort by total
// revenue descending; values are rounded to 2 decimals for display.
func CalculateProductPerformance(view []dataset.CategorySale) []CategoryPerformance {
	type accumulator struct {
		revenue float64
		items   int
		orders  map[string]struct{}
	}

	groups := make(map[string]*accumulator)
	for _, sale := range view {
		acc := groups[sale.Category]
		if acc == nil {
			acc = &accumulator{orders: make(map[string]struct{})}
			groups[sale.Category] = acc
		}
		acc.revenue += sale.Price
		acc.items++
		acc.orders[sale.OrderID] = struct{}{}
	}

	var grandTotal float64
	for _, acc := range groups {
		grandTotal += acc.revenue
	}

	results := make([]CategoryPerformance, 0, len(groups))
	for category, acc := range groups {
		perf := CategoryPerformance{
			Category:     category,
			TotalRevenue: round2(acc.revenue),
			TotalItems:   acc.items,
			UniqueOrders: len(acc.orders),
		}
		if acc.items > 0 {
			perf.AveragePrice = round2(acc.revenue / float64(acc.items))
		}
		if grandTotal > 0 {
			perf.RevenueShare = round2(acc.revenue / grandTotal * 100)
		}
		if len(acc.orders) > 0 {
			perf.ItemsPerOrder = round2(float64(acc.items) / float64(len(acc.orders)))
		}
		results = append(results, perf)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalRevenue != results[j].TotalRevenue {
			return results[i].TotalRevenue > results[j].TotalRevenue
		}
		return results[i].Category < results[j].Category
	})

	return results
}

// CalculateGeographicPerformance groups state-joined sales by customer
// state. Results sort by total revenue descending.
func CalculateGeographicPerformance(view []dataset.StateSale) []StatePerformance {
	type accumulator struct {
		revenue   float64
		orders    map[string]struct{}
		customers map[string]struct{}
	}

	groups := make(map[string]*accumulator)
	for _, sale := range view {
		acc := groups[sale.State]
		if acc == nil {
			acc = &accumulator{
				orders:    make(map[string]struct{}),
				customers: make(map[string]struct{}),
			}
			groups[sale.State] = acc
		}
		acc.revenue += sale.Price
		acc.orders[sale.OrderID] = struct{}{}
		acc.customers[sale.CustomerID] = struct{}{}
	}

	var grandTotal float64
	for _, acc := range groups {
		grandTotal += acc.revenue
	}

	results := make([]StatePerformance, 0, len(groups))
	for state, acc := range groups {
		perf := StatePerformance{
			State:           state,
			TotalRevenue:    acc.revenue,
			TotalOrders:     len(acc.orders),
			UniqueCustomers: len(acc.customers),
		}
		if len(acc.customers) > 0 {
			perf.RevenuePerCustomer = round2(acc.revenue / float64(len(acc.customers)))
			perf.OrdersPerCustomer = round2(float64(len(acc.orders)) / float64(len(acc.customers)))
		}
		if grandTotal > 0 {
			perf.RevenueShare = round2(acc.revenue / grandTotal * 100)
		}
		results = append(results, perf)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalRevenue != results[j].TotalRevenue {
			return results[i].TotalRevenue > results[j].TotalRevenue
		}
		return results[i].State < results[j].State
	})

	return results
}
