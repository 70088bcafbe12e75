package dataset

import (
	"time"
)

// SalesOptions controls the filters applied when building the sales view.
// The zero value for Year/Month disables that filter; an empty Status
// disables status filtering and must be requested explicitly.
type SalesOptions struct {
	Year   int
	Month  int
	Status string
}

// DefaultSalesOptions restricts the view to delivered orders, matching the
// dashboard's default
func DefaultSalesOptions() SalesOptions {
	return SalesOptions{Status: "delivered"}
}

// BuildSales inner-joins orders and order items on order_id and applies the
// status, year and month filters in that order. Items whose order is absent
// drop silently, per inner-join semantics.
func (s *Store) BuildSales(opts SalesOptions) ([]SalesRecord, error) {
	if err := s.Require(DatasetOrders, DatasetOrderItems); err != nil {
		return nil, err
	}

	ordersByID := make(map[string]*Order, len(s.Orders))
	for i := range s.Orders {
		ordersByID[s.Orders[i].OrderID] = &s.Orders[i]
	}

	var sales []SalesRecord
	for _, item := range s.OrderItems {
		order, ok := ordersByID[item.OrderID]
		if !ok {
			continue
		}
		if opts.Status != "" && order.Status != opts.Status {
			continue
		}
		if opts.Year != 0 && order.Year != opts.Year {
			continue
		}
		if opts.Month != 0 && order.Month != opts.Month {
			continue
		}
		sales = append(sales, SalesRecord{
			OrderID:               item.OrderID,
			ItemSeq:               item.ItemSeq,
			ProductID:             item.ProductID,
			Price:                 item.Price,
			Status:                order.Status,
			PurchaseTimestamp:     order.PurchaseTimestamp,
			DeliveredCustomerDate: order.DeliveredCustomerDate,
			Year:                  order.Year,
			Month:                 order.Month,
		})
	}

	return sales, nil
}

// FilterByDateRange restricts sales lines to purchase timestamps within the
// inclusive [start, end] range. Zero bounds disable that side of the range.
func FilterByDateRange(sales []SalesRecord, start, end time.Time) []SalesRecord {
	filtered := make([]SalesRecord, 0, len(sales))
	for _, sale := range sales {
		if !start.IsZero() && sale.PurchaseTimestamp.Before(start) {
			continue
		}
		if !end.IsZero() && sale.PurchaseTimestamp.After(end) {
			continue
		}
		filtered = append(filtered, sale)
	}
	return filtered
}

// AddDeliveryMetrics computes the whole-day delivery speed for each sales
// line and buckets it. Lines without a delivery date keep an unknown speed
// and the Unknown category; they are preserved here and only excluded by
// downstream aggregations that choose to.
func AddDeliveryMetrics(sales []SalesRecord) []DeliveryRecord {
	records := make([]DeliveryRecord, 0, len(sales))
	for _, sale := range sales {
		rec := DeliveryRecord{SalesRecord: sale}
		if !sale.DeliveredCustomerDate.IsZero() && !sale.PurchaseTimestamp.IsZero() {
			rec.Speed = int(sale.DeliveredCustomerDate.Sub(sale.PurchaseTimestamp).Hours() / 24)
			rec.SpeedKnown = true
		}
		rec.Category = CategorizeDeliverySpeed(rec.Speed, rec.SpeedKnown)
		records = append(records, rec)
	}
	return records
}

// WithCategories inner-joins sales lines with their product's category.
// Lines whose product is missing or has no mapped category drop from this
// view only.
func (s *Store) WithCategories(sales []SalesRecord) ([]CategorySale, error) {
	if err := s.Require(DatasetProducts); err != nil {
		return nil, err
	}

	categoryByProduct := make(map[string]string, len(s.Products))
	for _, product := range s.Products {
		categoryByProduct[product.ProductID] = product.CategoryName
	}

	var view []CategorySale
	for _, sale := range sales {
		category, ok := categoryByProduct[sale.ProductID]
		if !ok || category == "" {
			continue
		}
		view = append(view, CategorySale{
			OrderID:           sale.OrderID,
			ProductID:         sale.ProductID,
			Price:             sale.Price,
			Category:          category,
			PurchaseTimestamp: sale.PurchaseTimestamp,
		})
	}

	return view, nil
}

// WithStates inner-joins sales lines with the ordering customer's state,
// going through orders to resolve the customer
func (s *Store) WithStates(sales []SalesRecord) ([]StateSale, error) {
	if err := s.Require(DatasetOrders, DatasetCustomers); err != nil {
		return nil, err
	}

	customerByOrder := make(map[string]string, len(s.Orders))
	for _, order := range s.Orders {
		customerByOrder[order.OrderID] = order.CustomerID
	}
	stateByCustomer := make(map[string]string, len(s.Customers))
	for _, customer := range s.Customers {
		stateByCustomer[customer.CustomerID] = customer.State
	}

	var view []StateSale
	for _, sale := range sales {
		customerID, ok := customerByOrder[sale.OrderID]
		if !ok {
			continue
		}
		state, ok := stateByCustomer[customerID]
		if !ok {
			continue
		}
		view = append(view, StateSale{
			OrderID:           sale.OrderID,
			CustomerID:        customerID,
			Price:             sale.Price,
			State:             state,
			PurchaseTimestamp: sale.PurchaseTimestamp,
		})
	}

	return view, nil
}

// WithReviews inner-joins sales lines with their order's review score.
// Orders without a review drop from this view. The datasets carry at most
// one review per order; should a duplicate slip in, the first file row's
// score wins for the whole order.
func (s *Store) WithReviews(sales []SalesRecord) ([]ReviewSale, error) {
	if err := s.Require(DatasetReviews); err != nil {
		return nil, err
	}

	scoreByOrder := make(map[string]int, len(s.Reviews))
	for _, review := range s.Reviews {
		if _, seen := scoreByOrder[review.OrderID]; !seen {
			scoreByOrder[review.OrderID] = review.Score
		}
	}

	var view []ReviewSale
	for _, sale := range sales {
		score, ok := scoreByOrder[sale.OrderID]
		if !ok {
			continue
		}
		view = append(view, ReviewSale{
			OrderID:           sale.OrderID,
			ProductID:         sale.ProductID,
			Price:             sale.Price,
			Score:             score,
			PurchaseTimestamp: sale.PurchaseTimestamp,
		})
	}

	return view, nil
}

// JoinDeliveryReviews attaches each order's review score to its delivery
// rows, the input for the satisfaction-vs-delivery analysis. Delivery rows
// for unreviewed orders drop.
func JoinDeliveryReviews(delivery []DeliveryRecord, reviews []ReviewSale) []ReviewDeliveryRecord {
	scoreByOrder := make(map[string]int, len(reviews))
	for _, review := range reviews {
		if _, seen := scoreByOrder[review.OrderID]; !seen {
			scoreByOrder[review.OrderID] = review.Score
		}
	}

	var combined []ReviewDeliveryRecord
	for _, rec := range delivery {
		score, ok := scoreByOrder[rec.OrderID]
		if !ok {
			continue
		}
		combined = append(combined, ReviewDeliveryRecord{
			OrderID:    rec.OrderID,
			Speed:      rec.Speed,
			SpeedKnown: rec.SpeedKnown,
			Category:   rec.Category,
			Score:      score,
		})
	}

	return combined
}
