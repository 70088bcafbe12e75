package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "shoppulse/internal/errors"
)

// datasetFiles maps dataset names to their backing CSV files
var datasetFiles = map[string]string{
	DatasetOrders:     "orders_dataset.csv",
	DatasetOrderItems: "order_items_dataset.csv",
	DatasetProducts:   "products_dataset.csv",
	DatasetCustomers:  "customers_dataset.csv",
	DatasetReviews:    "order_reviews_dataset.csv",
	DatasetPayments:   "order_payments_dataset.csv",
}

// loadOrder fixes the iteration order over datasetFiles so log output and
// Info() listings stay stable between runs
var loadOrder = []string{
	DatasetOrders, DatasetOrderItems, DatasetProducts,
	DatasetCustomers, DatasetReviews, DatasetPayments,
}

// Store holds the loaded datasets. It is immutable after Load returns;
// every derived view is computed fresh from it.
type Store struct {
	Orders     []Order
	OrderItems []OrderItem
	Products   []Product
	Customers  []Customer
	Reviews    []Review
	Payments   []Payment

	present map[string]bool
}

// Has reports whether the named dataset was loaded
func (s *Store) Has(name string) bool {
	return s.present[name]
}

// Require returns a DATASET_MISSING error for the first absent dataset
func (s *Store) Require(names ...string) error {
	for _, name := range names {
		if !s.present[name] {
			return apperrors.NewDatasetMissingError(name)
		}
	}
	return nil
}

// Info returns per-dataset row counts in load order
func (s *Store) Info() []DatasetInfo {
	var info []DatasetInfo
	for _, name := range loadOrder {
		if !s.present[name] {
			continue
		}
		info = append(info, DatasetInfo{Name: name, Rows: s.rows(name)})
	}
	return info
}

func (s *Store) rows(name string) int {
	switch name {
	case DatasetOrders:
		return len(s.Orders)
	case DatasetOrderItems:
		return len(s.OrderItems)
	case DatasetProducts:
		return len(s.Products)
	case DatasetCustomers:
		return len(s.Customers)
	case DatasetReviews:
		return len(s.Reviews)
	case DatasetPayments:
		return len(s.Payments)
	}
	return 0
}

// Load reads all datasets found under dir. A missing file is skipped with a
// warning; operations that later need it fail with a DATASET_MISSING error
// naming the dataset.
func Load(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{present: make(map[string]bool)}

	for _, name := range loadOrder {
		path := filepath.Join(dir, datasetFiles[name])

		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("dataset file not found, skipping",
					slog.String("dataset", name),
					slog.String("path", path))
				continue
			}
			return nil, apperrors.NewStorageError(
				fmt.Sprintf("failed to open dataset %q", name), err)
		}

		rows, err := readTable(file)
		file.Close()
		if err != nil {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("failed to parse dataset %q", name), err)
		}

		if err := store.ingest(name, rows); err != nil {
			return nil, err
		}
		store.present[name] = true

		logger.Info("loaded dataset",
			slog.String("dataset", name),
			slog.Int("rows", store.rows(name)))
	}

	return store, nil
}

// table is a parsed CSV file with header-based column lookup
type table struct {
	columns map[string]int
	rows    [][]string
}

func (t *table) get(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *table) getFloat(row []string, column string) float64 {
	val, _ := strconv.ParseFloat(strings.ReplaceAll(t.get(row, column), ",", ""), 64)
	return val
}

func (t *table) getInt(row []string, column string) int {
	s := t.get(row, column)
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	// Review scores and sequence numbers occasionally arrive as "4.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// timestampLayouts are tried in order when parsing date-like columns
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *table) getTime(row []string, column string) time.Time {
	s := t.get(row, column)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// readTable parses a CSV stream into a header-mapped table
func readTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	columns := make(map[string]int, len(records[0]))
	for i, header := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}

	return &table{columns: columns, rows: records[1:]}, nil
}

// ingest converts raw rows into typed slices on the store
func (s *Store) ingest(name string, t *table) error {
	switch name {
	case DatasetOrders:
		s.Orders = make([]Order, 0, len(t.rows))
		for _, row := range t.rows {
			purchase := t.getTime(row, "order_purchase_timestamp")
			order := Order{
				OrderID:               t.get(row, "order_id"),
				CustomerID:            t.get(row, "customer_id"),
				Status:                t.get(row, "order_status"),
				PurchaseTimestamp:     purchase,
				ApprovedAt:            t.getTime(row, "order_approved_at"),
				DeliveredCarrierDate:  t.getTime(row, "order_delivered_carrier_date"),
				DeliveredCustomerDate: t.getTime(row, "order_delivered_customer_date"),
				EstimatedDeliveryDate: t.getTime(row, "order_estimated_delivery_date"),
			}
			if !purchase.IsZero() {
				order.Year = purchase.Year()
				order.Month = int(purchase.Month())
			}
			s.Orders = append(s.Orders, order)
		}

	case DatasetOrderItems:
		s.OrderItems = make([]OrderItem, 0, len(t.rows))
		for _, row := range t.rows {
			s.OrderItems = append(s.OrderItems, OrderItem{
				OrderID:   t.get(row, "order_id"),
				ItemSeq:   t.getInt(row, "order_item_id"),
				ProductID: t.get(row, "product_id"),
				Price:     t.getFloat(row, "price"),
			})
		}

	case DatasetProducts:
		s.Products = make([]Product, 0, len(t.rows))
		for _, row := range t.rows {
			s.Products = append(s.Products, Product{
				ProductID:    t.get(row, "product_id"),
				CategoryName: t.get(row, "product_category_name"),
			})
		}

	case DatasetCustomers:
		s.Customers = make([]Customer, 0, len(t.rows))
		for _, row := range t.rows {
			s.Customers = append(s.Customers, Customer{
				CustomerID: t.get(row, "customer_id"),
				State:      t.get(row, "customer_state"),
			})
		}

	case DatasetReviews:
		s.Reviews = make([]Review, 0, len(t.rows))
		for _, row := range t.rows {
			s.Reviews = append(s.Reviews, Review{
				OrderID: t.get(row, "order_id"),
				Score:   t.getInt(row, "review_score"),
			})
		}

	case DatasetPayments:
		s.Payments = make([]Payment, 0, len(t.rows))
		for _, row := range t.rows {
			s.Payments = append(s.Payments, Payment{
				OrderID:      t.get(row, "order_id"),
				Type:         t.get(row, "payment_type"),
				Installments: t.getInt(row, "payment_installments"),
				Value:        t.getFloat(row, "payment_value"),
			})
		}

	default:
		return apperrors.NewParsingError(fmt.Sprintf("unknown dataset %q", name), nil)
	}

	return nil
}
