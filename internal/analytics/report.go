package analytics

import (
	"fmt"
	"strings"
)

// GenerateSummaryReport renders the fixed-format text summary combining
// revenue, satisfaction and delivery metrics. Undefined values print as
// "n/a" rather than zero.
func GenerateSummaryReport(revenue RevenueMetrics, satisfaction SatisfactionMetrics, delivery DeliveryMetrics) string {
	var b strings.Builder

	b.WriteString("BUSINESS METRICS SUMMARY REPORT\n")
	b.WriteString("================================\n\n")

	b.WriteString("REVENUE PERFORMANCE\n")
	b.WriteString("-------------------\n")
	fmt.Fprintf(&b, "Total Revenue: $%.2f\n", revenue.TotalRevenue)
	fmt.Fprintf(&b, "Total Orders: %d\n", revenue.TotalOrders)
	fmt.Fprintf(&b, "Average Order Value: %s\n", formatRate(revenue.AverageOrderValue, "$%.2f"))
	fmt.Fprintf(&b, "Average Item Price: %s\n", formatRate(revenue.AverageItemPrice, "$%.2f"))

	if revenue.HasComparison {
		b.WriteString("\nPERIOD-over-PERIOD COMPARISON\n")
		b.WriteString("------------------------\n")
		fmt.Fprintf(&b, "Revenue Growth: %s\n", formatRate(revenue.RevenueGrowthRate, "%.2f%%"))
		fmt.Fprintf(&b, "Order Growth: %s\n", formatRate(revenue.OrderGrowthRate, "%.2f%%"))
		fmt.Fprintf(&b, "AOV Growth: %s\n", formatRate(revenue.AOVGrowthRate, "%.2f%%"))
	}

	b.WriteString("\nCUSTOMER SATISFACTION\n")
	b.WriteString("--------------------\n")
	fmt.Fprintf(&b, "Average Rating: %s/5.0\n", formatRate(satisfaction.AverageRating, "%.2f"))
	fmt.Fprintf(&b, "Total Reviews: %d\n", satisfaction.TotalReviews)
	fmt.Fprintf(&b, "Satisfaction Rate: %s (4+ stars)\n", formatRate(satisfaction.SatisfactionRate, "%.1f%%"))
	fmt.Fprintf(&b, "Net Promoter Score: %s\n", formatRate(satisfaction.NPSScore, "%.1f"))

	b.WriteString("\nDELIVERY PERFORMANCE\n")
	b.WriteString("-------------------\n")
	fmt.Fprintf(&b, "Average Delivery Time: %s days\n", formatRate(delivery.AverageDeliveryDays, "%.1f"))
	fmt.Fprintf(&b, "Fast Delivery Rate: %s (<=3 days)\n", formatRate(delivery.FastDeliveryRate, "%.1f%%"))
	fmt.Fprintf(&b, "Slow Delivery Rate: %s (>7 days)\n", formatRate(delivery.SlowDeliveryRate, "%.1f%%"))

	return b.String()
}

// formatRate formats a defined rate with the given verb, "n/a" otherwise
func formatRate(r Rate, format string) string {
	if !r.Valid {
		return "n/a"
	}
	return fmt.Sprintf(format, r.Value)
}
