package services

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"coffee-dashboard/internal/aggregate"
	"coffee-dashboard/internal/models"
	"coffee-dashboard/internal/observability"
	"coffee-dashboard/internal/schema"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

// Precomputed holds every aggregate report derived from one load of the
// transaction table. A nil report means its required columns were absent
// from the source; within a report, a nil peak means "not applicable".
type Precomputed struct {
	RevenueByWeekday *aggregate.WeekdayRevenueReport
	VolumeByWeekday  *aggregate.WeekdayVolumeReport
	VolumeByMonth    *aggregate.MonthVolumeReport
	VolumeByHour     *aggregate.HourVolumeReport
	TopProduct       *aggregate.TopProductReport
	TopProductTrend  *aggregate.TopProductTrendReport
	ProductShare     *aggregate.ProductShareReport
	Warnings         []string
	RecordCount      int64
	LastModified     time.Time
}

type Analytics struct {
	mu            sync.RWMutex
	precomputed   *Precomputed
	csvPath       string
	rowsProcessed atomic.Int64
	logger        *slog.Logger
	metrics       *observability.Metrics
}

func NewAnalytics() *Analytics {
	return &Analytics{
		precomputed: &Precomputed{},
		logger:      slog.Default(),
	}
}

// WithMetrics attaches load telemetry counters. Safe to skip in tests.
func (a *Analytics) WithMetrics(m *observability.Metrics) *Analytics {
	a.metrics = m
	return a
}

// SetTable recomputes every report from an already-normalized table.
func (a *Analytics) SetTable(tbl *models.Table) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.precomputed = compute(tbl)
}

// LoadFromCSV reads the transaction file once, normalizes it and
// precomputes all reports. A missing file is the only terminal failure;
// malformed cells and absent columns degrade per aggregation instead.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) error {
	a.csvPath = filename

	if cached, err := a.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.LastModified) {
			a.mu.Lock()
			a.precomputed = cached
			a.mu.Unlock()
			if a.metrics != nil {
				a.metrics.CacheHits.Inc()
			}
			a.logger.Info("loaded from cache", "records", cached.RecordCount)
			return nil
		}
	}
	if a.metrics != nil {
		a.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	a.logger.Info("processing CSV file", "filename", filename)

	if err := a.streamProcessCSV(ctx, filename); err != nil {
		return fmt.Errorf("process csv: %w", err)
	}

	if err := a.saveToCache(filename); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	count := a.rowsProcessed.Load()
	a.logger.Info("csv processing complete",
		"records", count,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

func (a *Analytics) streamProcessCSV(ctx context.Context, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024) // 10MB buffer

	var layout schema.Layout
	if scanner.Scan() {
		layout = schema.ParseHeader(strings.Split(scanner.Text(), ","))
	} else {
		// No header at all: every aggregation reports unavailable.
		layout = schema.ParseHeader(nil)
	}

	var rows []models.Transaction
	batch := make([]string, 0, batchSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		batch = append(batch, line)

		if len(batch) >= batchSize {
			parsed, err := parseBatch(ctx, layout, batch)
			if err != nil {
				return err
			}
			rows = append(rows, parsed...)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		parsed, err := parseBatch(ctx, layout, batch)
		if err != nil {
			return err
		}
		rows = append(rows, parsed...)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	tbl := schema.NewTable(rows, layout.Columns)
	for _, warning := range tbl.Warnings {
		a.logger.Warn("normalization warning", "warning", warning)
	}

	precomputed := compute(tbl)

	a.mu.Lock()
	a.precomputed = precomputed
	a.mu.Unlock()

	a.rowsProcessed.Store(int64(len(rows)))
	if a.metrics != nil {
		a.metrics.RowsProcessed.Add(float64(len(rows)))
	}
	return nil
}

// parseBatch normalizes one batch of CSV lines with bounded parallelism.
// Row order within the batch is preserved so encounter-order tie-breaks
// stay deterministic.
func parseBatch(ctx context.Context, layout schema.Layout, batch []string) ([]models.Transaction, error) {
	parsed := make([]models.Transaction, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, line := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			parsed[i] = layout.ParseRow(strings.Split(line, ","))
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}
	return parsed, nil
}

func compute(tbl *models.Table) *Precomputed {
	p := &Precomputed{
		RevenueByWeekday: aggregate.RevenueByWeekday(tbl),
		VolumeByWeekday:  aggregate.VolumeByWeekday(tbl),
		VolumeByMonth:    aggregate.VolumeByMonth(tbl),
		VolumeByHour:     aggregate.VolumeByHour(tbl),
		TopProduct:       aggregate.TopProduct(tbl),
		TopProductTrend:  aggregate.TopProductMonthlyTrend(tbl),
		ProductShare:     aggregate.ProductShare(tbl),
		LastModified:     time.Now(),
	}
	if tbl != nil {
		p.Warnings = tbl.Warnings
		p.RecordCount = int64(len(tbl.Rows))
	}
	return p
}

// Cache management
func (a *Analytics) getCacheFilename(csvPath string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(csvPath, "/", "_"), cacheVersion)
}

func (a *Analytics) saveToCache(csvPath string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	filename := a.getCacheFilename(csvPath)
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()

	encoder := gob.NewEncoder(file)
	return encoder.Encode(a.precomputed)
}

func (a *Analytics) loadFromCache(csvPath string) (*Precomputed, error) {
	filename := a.getCacheFilename(csvPath)
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data Precomputed
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}

	return &data, nil
}

// Accessors. Each returns the precomputed report; nil means the source
// lacked the columns that aggregation needs.

func (a *Analytics) RevenueByWeekday() *aggregate.WeekdayRevenueReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.RevenueByWeekday
}

func (a *Analytics) VolumeByWeekday() *aggregate.WeekdayVolumeReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.VolumeByWeekday
}

func (a *Analytics) VolumeByMonth() *aggregate.MonthVolumeReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.VolumeByMonth
}

func (a *Analytics) VolumeByHour() *aggregate.HourVolumeReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.VolumeByHour
}

func (a *Analytics) TopProduct() *aggregate.TopProductReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.TopProduct
}

func (a *Analytics) TopProductTrend() *aggregate.TopProductTrendReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.TopProductTrend
}

func (a *Analytics) ProductShare() *aggregate.ProductShareReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.ProductShare
}

func (a *Analytics) Warnings() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.precomputed.Warnings
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	available := 0
	for _, ok := range []bool{
		a.precomputed.RevenueByWeekday != nil,
		a.precomputed.VolumeByWeekday != nil,
		a.precomputed.VolumeByMonth != nil,
		a.precomputed.VolumeByHour != nil,
		a.precomputed.TopProduct != nil,
		a.precomputed.TopProductTrend != nil,
		a.precomputed.ProductShare != nil,
	} {
		if ok {
			available++
		}
	}

	return map[string]any{
		"record_count":         a.precomputed.RecordCount,
		"last_processed":       a.precomputed.LastModified,
		"reports_available":    available,
		"normalization_issues": len(a.precomputed.Warnings),
	}
}
