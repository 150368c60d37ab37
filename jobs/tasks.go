package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/qazi-erp/qazi-erp/internal/domain"
	jobmetrics "github.com/qazi-erp/qazi-erp/internal/jobs"
	"github.com/qazi-erp/qazi-erp/internal/reports"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDailySummary computes and logs the daily sales summary.
	TaskDailySummary = "reports:daily_summary"
	// TaskLowStockScan logs products at or below the low-stock threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// DailySummaryPayload names the day to summarise. Empty means the day the
// task runs.
type DailySummaryPayload struct {
	Date string `json:"date,omitempty"`
}

// NewDailySummaryTask constructs an Asynq task.
func NewDailySummaryTask(date string) (*asynq.Task, error) {
	data, err := json.Marshal(DailySummaryPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailySummary, data, asynq.Queue(QueueDefault)), nil
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil, asynq.Queue(QueueDefault))
}

// DailySummaryJob handles TaskDailySummary.
type DailySummaryJob struct {
	reports *reports.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewDailySummaryJob wires the job.
func NewDailySummaryJob(service *reports.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DailySummaryJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailySummaryJob{reports: service, logger: logger, metrics: metrics, now: time.Now}
}

// Handle processes TaskDailySummary tasks.
func (j *DailySummaryJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	tracker := j.metrics.Track(TaskDailySummary)
	defer func() { err = tracker.End(err) }()

	var payload DailySummaryPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("%w: decode payload: %v", asynq.SkipRetry, err)
		}
	}
	day := j.now()
	if payload.Date != "" {
		day, err = time.ParseInLocation(time.DateOnly, payload.Date, time.Local)
		if err != nil {
			return fmt.Errorf("%w: date %q: %v", asynq.SkipRetry, payload.Date, err)
		}
	}
	summary, err := j.reports.Compute(ctx, day)
	if err != nil {
		return fmt.Errorf("daily summary: %w", err)
	}
	revenue, _ := summary.Revenue.Float64()
	j.metrics.SetDailyRevenue(revenue)
	j.logger.Info("daily summary",
		slog.String("date", summary.Date),
		slog.Int("orders", summary.OrderCount),
		slog.String("revenue", summary.Revenue.StringFixed(2)),
		slog.String("collected", summary.Collected.StringFixed(2)),
		slog.Int("units", summary.UnitsSold),
	)
	return nil
}

// LowStockScanJob handles TaskLowStockScan.
type LowStockScanJob struct {
	store   store.Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLowStockScanJob wires the job.
func NewLowStockScanJob(st store.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LowStockScanJob{store: st, logger: logger, metrics: metrics}
}

// Handle processes TaskLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	tracker := j.metrics.Track(TaskLowStockScan)
	defer func() { err = tracker.End(err) }()

	products, err := j.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}
	low := 0
	for _, p := range products {
		if !p.IsLowStock() {
			continue
		}
		low++
		j.logger.Warn("low stock",
			slog.Int64("product_id", p.ID),
			slog.String("product", p.Name),
			slog.Int("quantity", p.Quantity),
			slog.Int("threshold", domain.LowStockThreshold),
		)
	}
	j.metrics.SetLowStock(low)
	j.logger.Info("low stock scan complete", slog.Int("products", len(products)), slog.Int("low", low))
	return nil
}
