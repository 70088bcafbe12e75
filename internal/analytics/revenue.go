package analytics

import (
	"sort"

	"shoppulse/internal/dataset"
)

// CalculateRevenueMetrics computes revenue KPIs for the current period.
// When previous is non-nil, growth rates against it are included; a zero
// base leaves the corresponding rate undefined.
func CalculateRevenueMetrics(current []dataset.SalesRecord, previous []dataset.SalesRecord) RevenueMetrics {
	metrics := RevenueMetrics{
		TotalRevenue:      sumPrices(current),
		TotalOrders:       countDistinctOrders(current),
		TotalItems:        len(current),
		AverageOrderValue: averageOrderValue(current),
		AverageItemPrice:  averageItemPrice(current),
	}

	if previous != nil {
		prevRevenue := sumPrices(previous)
		prevOrders := countDistinctOrders(previous)
		prevAOV := averageOrderValue(previous)

		metrics.HasComparison = true
		metrics.PreviousRevenue = prevRevenue
		metrics.PreviousOrders = prevOrders
		metrics.PreviousAOV = prevAOV
		metrics.RevenueGrowthRate = growthRate(metrics.TotalRevenue, prevRevenue)
		metrics.OrderGrowthRate = growthRate(float64(metrics.TotalOrders), float64(prevOrders))
		if prevAOV.Valid && metrics.AverageOrderValue.Valid {
			metrics.AOVGrowthRate = growthRate(metrics.AverageOrderValue.Value, prevAOV.Value)
		}
	}

	return metrics
}

// CalculateMonthlyTrends groups sales by month and computes revenue,
// distinct orders, AOV and month-over-month growth for each. Months are
// returned ascending; the first month's growth is undefined.
func CalculateMonthlyTrends(sales []dataset.SalesRecord) []MonthlyTrend {
	revenueByMonth := make(map[int]float64)
	ordersByMonth := make(map[int]map[string]struct{})

	for _, sale := range sales {
		revenueByMonth[sale.Month] += sale.Price
		if ordersByMonth[sale.Month] == nil {
			ordersByMonth[sale.Month] = make(map[string]struct{})
		}
		ordersByMonth[sale.Month][sale.OrderID] = struct{}{}
	}

	months := make([]int, 0, len(revenueByMonth))
	for month := range revenueByMonth {
		months = append(months, month)
	}
	sort.Ints(months)

	trends := make([]MonthlyTrend, 0, len(months))
	for i, month := range months {
		trend := MonthlyTrend{
			Month:   month,
			Revenue: revenueByMonth[month],
			Orders:  len(ordersByMonth[month]),
		}
		if trend.Orders > 0 {
			trend.AOV = NewRate(trend.Revenue / float64(trend.Orders))
		}

		if i > 0 {
			prev := trends[i-1]
			trend.RevenueGrowth = growthRate(trend.Revenue, prev.Revenue)
			trend.OrderGrowth = growthRate(float64(trend.Orders), float64(prev.Orders))
			if trend.AOV.Valid && prev.AOV.Valid {
				trend.AOVGrowth = growthRate(trend.AOV.Value, prev.AOV.Value)
			}
		}

		trends = append(trends, trend)
	}

	return trends
}

// sumPrices totals line-item prices
func sumPrices(sales []dataset.SalesRecord) float64 {
	var total float64
	for _, sale := range sales {
		total += sale.Price
	}
	return total
}

// countDistinctOrders counts unique order IDs across line items
func countDistinctOrders(sales []dataset.SalesRecord) int {
	orders := make(map[string]struct{}, len(sales))
	for _, sale := range sales {
		orders[sale.OrderID] = struct{}{}
	}
	return len(orders)
}

// averageOrderValue is the mean of per-order price sums, not the mean item
// price; undefined over an empty view
func averageOrderValue(sales []dataset.SalesRecord) Rate {
	totals := make(map[string]float64, len(sales))
	for _, sale := range sales {
		totals[sale.OrderID] += sale.Price
	}
	if len(totals) == 0 {
		return UndefinedRate()
	}

	var sum float64
	for _, total := range totals {
		sum += total
	}
	return NewRate(sum / float64(len(totals)))
}

// averageItemPrice is the mean line-item price, undefined over an empty view
func averageItemPrice(sales []dataset.SalesRecord) Rate {
	if len(sales) == 0 {
		return UndefinedRate()
	}
	return NewRate(sumPrices(sales) / float64(len(sales)))
}
