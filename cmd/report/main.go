package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"shoppulse/internal/config"
	"shoppulse/internal/exporter"
	"shoppulse/internal/infrastructure"
	"shoppulse/internal/services"
)

const dateLayout = "2006-01-02"

func main() {
	dataDir := flag.String("data", "", "directory holding the e-commerce CSV files (defaults to config)")
	startDate := flag.String("start", "", "start of the analysis range, YYYY-MM-DD (inclusive)")
	endDate := flag.String("end", "", "end of the analysis range, YYYY-MM-DD (inclusive)")
	status := flag.String("status", "", "order status filter (defaults to config, usually delivered)")
	format := flag.String("format", "", "also export metric tables: csv or excel")
	outputDir := flag.String("out", "", "output directory for exports (defaults to config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Data.Dir = *dataDir
	}
	if *status != "" {
		cfg.Data.DefaultStatus = *status
	}
	if *outputDir != "" {
		cfg.Data.ExportDir = *outputDir
	}

	dateRange, err := parseRange(*startDate, *endDate)
	if err != nil {
		slog.Error("Invalid date range", "error", err)
		os.Exit(1)
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	service := services.NewDashboardService(cfg)

	report, err := service.SummaryReport(ctx, dateRange)
	if err != nil {
		slog.Error("Failed to generate report",
			"error", err,
			"data_dir", cfg.Data.Dir)
		os.Exit(1)
	}
	fmt.Println(report)

	if *format == "" {
		return
	}
	if err := exportTables(ctx, service, cfg, dateRange, *format); err != nil {
		slog.Error("Export failed", "error", err, "format", *format)
		os.Exit(1)
	}
	slog.Info("Export complete", "format", *format, "dir", cfg.Data.ExportDir)
}

func parseRange(start, end string) (services.DateRange, error) {
	var r services.DateRange
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return r, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return r, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		// Make the end date cover the whole day.
		r.End = t.Add(24*time.Hour - time.Second)
	}
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

func exportTables(ctx context.Context, service *services.DashboardService, cfg *config.Config, r services.DateRange, format string) error {
	snapshot, err := service.Snapshot(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to compute metrics: %w", err)
	}

	var tables []exporter.Table
	if snapshot.Revenue != nil {
		tables = append(tables, exporter.RevenueTable(*snapshot.Revenue))
	}
	if len(snapshot.Trends) > 0 {
		tables = append(tables, exporter.TrendsTable(snapshot.Trends))
	}
	if len(snapshot.Categories) > 0 {
		tables = append(tables, exporter.CategoriesTable(snapshot.Categories))
	}
	if len(snapshot.States) > 0 {
		tables = append(tables, exporter.StatesTable(snapshot.States))
	}
	if len(snapshot.SatisfactionVsDelivery) > 0 {
		tables = append(tables, exporter.SatisfactionVsDeliveryTable(snapshot.SatisfactionVsDelivery))
	}
	if len(tables) == 0 {
		return fmt.Errorf("no metric tables available to export")
	}

	switch format {
	case "csv":
		writer := exporter.NewCSVWriter(cfg.Data.ExportDir)
		for _, table := range tables {
			if err := writer.WriteSimpleCSV(table.FileName(), table.Headers, table.Records); err != nil {
				return fmt.Errorf("failed to write %s: %w", table.FileName(), err)
			}
		}
	case "excel":
		writer := exporter.NewExcelWriter(cfg.Data.ExportDir)
		if err := writer.WriteWorkbook("business_metrics.xlsx", tables); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	default:
		return fmt.Errorf("unknown export format %q (want csv or excel)", format)
	}
	return nil
}
