package exporter

import (
	"fmt"
	"strconv"

	"shoppulse/internal/analytics"
)

// Table is a named aggregate rendered as headers plus string records,
// the common shape for CSV files and workbook sheets
type Table struct {
	Name    string
	Headers []string
	Records [][]string
}

// formatRate renders an undefined rate as an empty cell, never as 0
func formatRate(r analytics.Rate, decimals int) string {
	if !r.Valid {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', decimals, 64)
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// TrendsTable converts monthly trends for export
func TrendsTable(trends []analytics.MonthlyTrend) Table {
	table := Table{
		Name:    "Monthly Trends",
		Headers: []string{"month", "revenue", "orders", "aov", "revenue_growth", "order_growth", "aov_growth"},
	}
	for _, trend := range trends {
		table.Records = append(table.Records, []string{
			strconv.Itoa(trend.Month),
			formatFloat(trend.Revenue, 2),
			strconv.Itoa(trend.Orders),
			formatRate(trend.AOV, 2),
			formatRate(trend.RevenueGrowth, 2),
			formatRate(trend.OrderGrowth, 2),
			formatRate(trend.AOVGrowth, 2),
		})
	}
	return table
}

// CategoriesTable converts category performance for export
func CategoriesTable(categories []analytics.CategoryPerformance) Table {
	table := Table{
		Name:    "Category Performance",
		Headers: []string{"category", "total_revenue", "average_price", "total_items", "unique_orders", "revenue_share", "items_per_order"},
	}
	for _, cat := range categories {
		table.Records = append(table.Records, []string{
			cat.Category,
			formatFloat(cat.TotalRevenue, 2),
			formatFloat(cat.AveragePrice, 2),
			strconv.Itoa(cat.TotalItems),
			strconv.Itoa(cat.UniqueOrders),
			formatFloat(cat.RevenueShare, 2),
			formatFloat(cat.ItemsPerOrder, 2),
		})
	}
	return table
}

// StatesTable converts geographic performance for export
func StatesTable(states []analytics.StatePerformance) Table {
	table := Table{
		Name:    "Geographic Performance",
		Headers: []string{"state", "total_revenue", "total_orders", "unique_customers", "revenue_per_customer", "orders_per_customer", "revenue_share"},
	}
	for _, state := range states {
		table.Records = append(table.Records, []string{
			state.State,
			formatFloat(state.TotalRevenue, 2),
			strconv.Itoa(state.TotalOrders),
			strconv.Itoa(state.UniqueCustomers),
			formatFloat(state.RevenuePerCustomer, 2),
			formatFloat(state.OrdersPerCustomer, 2),
			formatFloat(state.RevenueShare, 2),
		})
	}
	return table
}

// SatisfactionVsDeliveryTable converts the per-bucket review statistics
// for export, preserving the fixed bucket order
func SatisfactionVsDeliveryTable(rows []analytics.SatisfactionByDelivery) Table {
	table := Table{
		Name:    "Satisfaction vs Delivery",
		Headers: []string{"delivery_category", "average_rating", "review_count", "rating_std_dev", "satisfaction_rate"},
	}
	for _, row := range rows {
		table.Records = append(table.Records, []string{
			string(row.Category),
			formatFloat(row.AverageRating, 3),
			strconv.Itoa(row.ReviewCount),
			formatRate(row.RatingStdDev, 3),
			formatFloat(row.SatisfactionRate, 2),
		})
	}
	return table
}

// RevenueTable converts the scalar revenue metrics into a two-column table
func RevenueTable(metrics analytics.RevenueMetrics) Table {
	table := Table{
		Name:    "Revenue Metrics",
		Headers: []string{"metric", "value"},
	}
	table.Records = append(table.Records,
		[]string{"total_revenue", formatFloat(metrics.TotalRevenue, 2)},
		[]string{"total_orders", strconv.Itoa(metrics.TotalOrders)},
		[]string{"total_items", strconv.Itoa(metrics.TotalItems)},
		[]string{"average_order_value", formatRate(metrics.AverageOrderValue, 2)},
		[]string{"average_item_price", formatRate(metrics.AverageItemPrice, 2)},
	)
	if metrics.HasComparison {
		table.Records = append(table.Records,
			[]string{"previous_revenue", formatFloat(metrics.PreviousRevenue, 2)},
			[]string{"previous_orders", strconv.Itoa(metrics.PreviousOrders)},
			[]string{"revenue_growth_rate", formatRate(metrics.RevenueGrowthRate, 2)},
			[]string{"order_growth_rate", formatRate(metrics.OrderGrowthRate, 2)},
			[]string{"aov_growth_rate", formatRate(metrics.AOVGrowthRate, 2)},
		)
	}
	return table
}

// FileName derives a stable, filesystem-safe csv name for a table
func (t Table) FileName() string {
	name := make([]rune, 0, len(t.Name))
	for _, r := range t.Name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			name = append(name, r)
		case r >= 'A' && r <= 'Z':
			name = append(name, r+('a'-'A'))
		default:
			name = append(name, '_')
		}
	}
	return fmt.Sprintf("%s.csv", string(name))
}
