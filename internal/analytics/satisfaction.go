package analytics

import (
	"math"
	"sort"

	"shoppulse/internal/dataset"
)

// CalculateCustomerSatisfaction aggregates review scores. The view carries
// one row per line item, so it is first deduplicated to one
// (order, score) pair per order; the metrics are identical whether or not
// the caller already deduplicated.
func CalculateCustomerSatisfaction(view []dataset.ReviewSale) SatisfactionMetrics {
	type key struct {
		orderID string
		score   int
	}
	seen := make(map[key]struct{}, len(view))
	var scores []int
	for _, sale := range view {
		k := key{orderID: sale.OrderID, score: sale.Score}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		scores = append(scores, sale.Score)
	}

	metrics := SatisfactionMetrics{
		TotalReviews:       len(scores),
		RatingDistribution: make(map[int]int),
	}
	if len(scores) == 0 {
		return metrics
	}

	var sum, satisfied int
	for _, score := range scores {
		sum += score
		metrics.RatingDistribution[score]++
		if score >= 4 {
			satisfied++
		}
	}

	metrics.AverageRating = NewRate(float64(sum) / float64(len(scores)))
	metrics.SatisfactionRate = NewRate(float64(satisfied) / float64(len(scores)) * 100)
	metrics.NPSScore = calculateNPS(scores)

	return metrics
}

// calculateNPS maps 1-5 review scores onto the classic 0-10 NPS scale with
// a fixed 2x multiplier (1→2 ... 5→10). Promoters are mapped scores ≥ 9
// (only an original 5 qualifies), detractors ≤ 6 (original ≤ 3); an
// original 4 maps to 8 and counts as neither. The thresholds are kept
// as-is even though they do not evenly partition the 5-point scale.
func calculateNPS(scores []int) Rate {
	if len(scores) == 0 {
		return UndefinedRate()
	}

	var promoters, detractors int
	for _, score := range scores {
		mapped := score * 2
		switch {
		case mapped >= 9:
			promoters++
		case mapped <= 6:
			detractors++
		}
	}

	nps := float64(promoters-detractors) / float64(len(scores)) * 100
	return NewRate(round2(nps))
}

// CalculateDeliveryPerformance aggregates delivery timing over unique
// orders. Rows deduplicate on (order, speed, category). Orders with
// unknown speed stay in the category distribution and in the fast/slow
// rate denominators but are excluded from the day statistics.
func CalculateDeliveryPerformance(view []dataset.DeliveryRecord) DeliveryMetrics {
	type key struct {
		orderID  string
		speed    int
		known    bool
		category dataset.DeliveryCategory
	}
	seen := make(map[key]struct{}, len(view))

	metrics := DeliveryMetrics{
		DeliveryDistribution: make(map[dataset.DeliveryCategory]int),
	}

	var totalOrders int
	var speeds []int
	for _, rec := range view {
		k := key{orderID: rec.OrderID, speed: rec.Speed, known: rec.SpeedKnown, category: rec.Category}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		totalOrders++
		metrics.DeliveryDistribution[rec.Category]++
		if rec.SpeedKnown {
			speeds = append(speeds, rec.Speed)
		}
	}

	if totalOrders == 0 {
		return metrics
	}

	var sum, fast, slow int
	for _, speed := range speeds {
		sum += speed
		if speed <= 3 {
			fast++
		}
		if speed > 7 {
			slow++
		}
	}

	total := float64(totalOrders)
	metrics.FastDeliveryRate = NewRate(float64(fast) / total * 100)
	metrics.SlowDeliveryRate = NewRate(float64(slow) / total * 100)

	if len(speeds) > 0 {
		metrics.AverageDeliveryDays = NewRate(float64(sum) / float64(len(speeds)))
		metrics.MedianDeliveryDays = NewRate(medianInts(speeds))
	}

	return metrics
}

// AnalyzeSatisfactionVsDelivery groups deduplicated (order, speed,
// category, score) rows by delivery bucket and computes review statistics
// per bucket. Buckets are emitted in the fixed 1-3/4-7/8+ order; the
// Unknown bucket is excluded from this table.
func AnalyzeSatisfactionVsDelivery(view []dataset.ReviewDeliveryRecord) []SatisfactionByDelivery {
	type key struct {
		orderID  string
		speed    int
		known    bool
		category dataset.DeliveryCategory
		score    int
	}
	seen := make(map[key]struct{}, len(view))
	scoresByCategory := make(map[dataset.DeliveryCategory][]int)

	for _, rec := range view {
		k := key{orderID: rec.OrderID, speed: rec.Speed, known: rec.SpeedKnown, category: rec.Category, score: rec.Score}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		scoresByCategory[rec.Category] = append(scoresByCategory[rec.Category], rec.Score)
	}

	var results []SatisfactionByDelivery
	for _, category := range dataset.DeliveryCategories {
		scores, ok := scoresByCategory[category]
		if !ok {
			continue
		}

		var sum, satisfied int
		for _, score := range scores {
			sum += score
			if score >= 4 {
				satisfied++
			}
		}
		n := float64(len(scores))
		mean := float64(sum) / n

		results = append(results, SatisfactionByDelivery{
			Category:         category,
			AverageRating:    round3(mean),
			ReviewCount:      len(scores),
			RatingStdDev:     sampleStdDev(scores, mean),
			SatisfactionRate: float64(satisfied) / n * 100,
		})
	}

	return results
}

// sampleStdDev is the ddof=1 standard deviation, undefined below two
// observations
func sampleStdDev(scores []int, mean float64) Rate {
	if len(scores) < 2 {
		return UndefinedRate()
	}
	var sumSq float64
	for _, score := range scores {
		diff := float64(score) - mean
		sumSq += diff * diff
	}
	return NewRate(round3(math.Sqrt(sumSq / float64(len(scores)-1))))
}

// medianInts returns the median of an unsorted int slice
func medianInts(values []int) float64 {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
