package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/internal/dataset"
)

func sale(orderID string, month int, price float64) dataset.SalesRecord {
	return dataset.SalesRecord{
		OrderID:           orderID,
		ProductID:         "prod-" + orderID,
		Price:             price,
		Status:            "delivered",
		PurchaseTimestamp: time.Date(2024, time.Month(month), 15, 12, 0, 0, 0, time.UTC),
		Year:              2024,
		Month:             month,
	}
}

func TestCalculateRevenueMetrics(t *testing.T) {
	t.Run("two orders with multiple items", func(t *testing.T) {
		// Order A: 10 + 50 = 60, order B: 30. AOV is the mean of the
		// per-order sums, not the mean item price.
		sales := []dataset.SalesRecord{
			sale("A", 1, 10),
			sale("A", 1, 50),
			sale("B", 1, 30),
		}

		metrics := CalculateRevenueMetrics(sales, nil)

		assert.Equal(t, 90.0, metrics.TotalRevenue)
		assert.Equal(t, 2, metrics.TotalOrders)
		assert.Equal(t, 3, metrics.TotalItems)
		require.True(t, metrics.AverageOrderValue.Valid)
		assert.InDelta(t, 45.0, metrics.AverageOrderValue.Value, 1e-9)
		require.True(t, metrics.AverageItemPrice.Valid)
		assert.InDelta(t, 30.0, metrics.AverageItemPrice.Value, 1e-9)
		assert.False(t, metrics.HasComparison)
	})

	t.Run("empty view leaves averages undefined", func(t *testing.T) {
		metrics := CalculateRevenueMetrics(nil, nil)

		assert.Zero(t, metrics.TotalRevenue)
		assert.Zero(t, metrics.TotalOrders)
		assert.False(t, metrics.AverageOrderValue.Valid)
		assert.False(t, metrics.AverageItemPrice.Valid)
	})

	t.Run("comparison against a previous period", func(t *testing.T) {
		current := []dataset.SalesRecord{sale("A", 1, 120), sale("B", 1, 30)}
		previous := []dataset.SalesRecord{sale("P", 1, 100)}

		metrics := CalculateRevenueMetrics(current, previous)

		assert.True(t, metrics.HasComparison)
		assert.Equal(t, 100.0, metrics.PreviousRevenue)
		assert.Equal(t, 1, metrics.PreviousOrders)
		require.True(t, metrics.RevenueGrowthRate.Valid)
		assert.InDelta(t, 50.0, metrics.RevenueGrowthRate.Value, 1e-9)
		require.True(t, metrics.OrderGrowthRate.Valid)
		assert.InDelta(t, 100.0, metrics.OrderGrowthRate.Value, 1e-9)
		require.True(t, metrics.AOVGrowthRate.Valid)
		assert.InDelta(t, -25.0, metrics.AOVGrowthRate.Value, 1e-9)
	})

	t.Run("growth over an empty previous period is undefined", func(t *testing.T) {
		current := []dataset.SalesRecord{sale("A", 1, 50)}

		metrics := CalculateRevenueMetrics(current, []dataset.SalesRecord{})

		assert.True(t, metrics.HasComparison)
		assert.False(t, metrics.RevenueGrowthRate.Valid)
		assert.False(t, metrics.OrderGrowthRate.Valid)
		assert.False(t, metrics.AOVGrowthRate.Valid)
	})
}

func TestCalculateMonthlyTrends(t *testing.T) {
	t.Run("months ascending with growth from the second month", func(t *testing.T) {
		sales := []dataset.SalesRecord{
			sale("mar-1", 3, 300),
			sale("jan-1", 1, 100),
			sale("feb-1", 2, 150),
			sale("feb-2", 2, 50),
		}

		trends := CalculateMonthlyTrends(sales)
		require.Len(t, trends, 3)

		assert.Equal(t, 1, trends[0].Month)
		assert.Equal(t, 2, trends[1].Month)
		assert.Equal(t, 3, trends[2].Month)

		assert.False(t, trends[0].RevenueGrowth.Valid)
		assert.False(t, trends[0].OrderGrowth.Valid)

		require.True(t, trends[1].RevenueGrowth.Valid)
		assert.InDelta(t, 100.0, trends[1].RevenueGrowth.Value, 1e-9)
		require.True(t, trends[1].OrderGrowth.Valid)
		assert.InDelta(t, 100.0, trends[1].OrderGrowth.Value, 1e-9)

		// March: 200 -> 300 revenue, 2 -> 1 orders.
		require.True(t, trends[2].RevenueGrowth.Valid)
		assert.InDelta(t, 50.0, trends[2].RevenueGrowth.Value, 1e-9)
		require.True(t, trends[2].OrderGrowth.Valid)
		assert.InDelta(t, -50.0, trends[2].OrderGrowth.Value, 1e-9)
	})

	t.Run("single month has undefined growth", func(t *testing.T) {
		trends := CalculateMonthlyTrends([]dataset.SalesRecord{sale("A", 5, 100)})
		require.Len(t, trends, 1)
		assert.Equal(t, 5, trends[0].Month)
		assert.False(t, trends[0].RevenueGrowth.Valid)
		assert.False(t, trends[0].OrderGrowth.Valid)
		assert.False(t, trends[0].AOVGrowth.Valid)
	})

	t.Run("no sales yields no trends", func(t *testing.T) {
		assert.Empty(t, CalculateMonthlyTrends(nil))
	})
}
