package dataset

import (
	"time"
)

// Dataset names as keyed in the Store. Each corresponds to one CSV extract.
const (
	DatasetOrders     = "orders"
	DatasetOrderItems = "order_items"
	DatasetProducts   = "products"
	DatasetCustomers  = "customers"
	DatasetReviews    = "reviews"
	DatasetPayments   = "payments"
)

// DeliveryCategory buckets delivery speed for reporting
type DeliveryCategory string

const (
	DeliveryFast    DeliveryCategory = "1-3 days"
	DeliveryMedium  DeliveryCategory = "4-7 days"
	DeliverySlow    DeliveryCategory = "8+ days"
	DeliveryUnknown DeliveryCategory = "Unknown"
)

// DeliveryCategories is the fixed display order for delivery buckets.
// Unknown is tracked separately and excluded from cross tables.
var DeliveryCategories = []DeliveryCategory{DeliveryFast, DeliveryMedium, DeliverySlow}

// CategorizeDeliverySpeed maps whole delivery days onto a bucket
func CategorizeDeliverySpeed(days int, known bool) DeliveryCategory {
	switch {
	case !known:
		return DeliveryUnknown
	case days <= 3:
		return DeliveryFast
	case days <= 7:
		return DeliveryMedium
	default:
		return DeliverySlow
	}
}

// Order is one row of the orders dataset. Optional timestamps are the zero
// time when the source column was empty.
type Order struct {
	OrderID               string
	CustomerID            string
	Status                string
	PurchaseTimestamp     time.Time
	ApprovedAt            time.Time
	DeliveredCarrierDate  time.Time
	DeliveredCustomerDate time.Time
	EstimatedDeliveryDate time.Time

	// Derived from the purchase timestamp
	Year  int
	Month int
}

// Delivered reports whether the order reached the customer
func (o Order) Delivered() bool {
	return !o.DeliveredCustomerDate.IsZero()
}

// OrderItem is one line item within an order
type OrderItem struct {
	OrderID   string
	ItemSeq   int
	ProductID string
	Price     float64
}

// IsValid checks the line-item invariants
func (oi OrderItem) IsValid() bool {
	return oi.OrderID != "" && oi.ProductID != "" && oi.Price >= 0
}

// Product is one row of the products dataset. CategoryName may be empty for
// unmapped products; those rows are excluded from category views.
type Product struct {
	ProductID    string
	CategoryName string
}

// Customer is one row of the customers dataset
type Customer struct {
	CustomerID string
	State      string
}

// Review is one review row. At most one review is expected per order, but
// the file may carry duplicates; consumers deduplicate by order.
type Review struct {
	OrderID string
	Score   int
}

// Payment is one payment row. Loaded for completeness; no current metric
// consumes it.
type Payment struct {
	OrderID      string
	Type         string
	Installments int
	Value        float64
}

// SalesRecord is one (order, item) pair surviving the status/year/month
// filters. It is the inner join of orders and order items.
type SalesRecord struct {
	OrderID               string
	ItemSeq               int
	ProductID             string
	Price                 float64
	Status                string
	PurchaseTimestamp     time.Time
	DeliveredCustomerDate time.Time
	Year                  int
	Month                 int
}

// DeliveryRecord is a sales record with delivery timing attached. Speed is
// only meaningful when SpeedKnown is true; undelivered orders keep the row
// with the Unknown category, they are never dropped here.
type DeliveryRecord struct {
	SalesRecord
	Speed      int
	SpeedKnown bool
	Category   DeliveryCategory
}

// CategorySale is a sales line joined with its product category
type CategorySale struct {
	OrderID           string
	ProductID         string
	Price             float64
	Category          string
	PurchaseTimestamp time.Time
}

// StateSale is a sales line joined with the customer's state
type StateSale struct {
	OrderID           string
	CustomerID        string
	Price             float64
	State             string
	PurchaseTimestamp time.Time
}

// ReviewSale is a sales line joined with the order's review score
type ReviewSale struct {
	OrderID           string
	ProductID         string
	Price             float64
	Score             int
	PurchaseTimestamp time.Time
}

// ReviewDeliveryRecord joins delivery timing with the review score for the
// same order, one row per surviving sales line
type ReviewDeliveryRecord struct {
	OrderID    string
	Speed      int
	SpeedKnown bool
	Category   DeliveryCategory
	Score      int
}

// DatasetInfo summarizes one loaded dataset
type DatasetInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}
