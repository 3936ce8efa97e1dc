package services

import (
	"context"
	"os"
	"testing"

	"coffee-dashboard/internal/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

const fullCSV = `Date,Weekday,Weekday_sort,Hour_of_Day,Month_name,Coffee_Name,Money
2024-03-04,Monday,1,9,March,Latte,3.50
2024-03-04,Monday,1,10,March,Latte,3.50
2024-03-05,Tuesday,2,9,March,Espresso,2.75
2024-04-06,Saturday,6,16,April,Latte,3.50`

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "test*.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	return f.Name()
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.precomputed == nil {
		t.Error("precomputed should be initialized")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
}

func TestAnalytics_SetTable(t *testing.T) {
	a := NewAnalytics()
	tbl := schema.Normalize(
		[]string{"Weekday", "Weekday_sort", "Coffee_Name", "Money"},
		[][]string{
			{"Monday", "1", "Latte", "3.50"},
			{"Tuesday", "2", "Espresso", "2.75"},
		},
	)

	a.SetTable(tbl)

	revenue := a.RevenueByWeekday()
	if revenue == nil || len(revenue.Rows) != 2 {
		t.Fatalf("revenue = %+v, want 2 rows", revenue)
	}
	if months := a.VolumeByMonth(); months != nil {
		t.Errorf("month volume = %+v, want unavailable without Month_name", months)
	}
	if top := a.TopProduct(); top == nil || top.Top == nil || top.Top.CoffeeName != "Latte" {
		t.Errorf("top product = %+v, want Latte", top)
	}
}

func TestAnalytics_LoadFromCSV_ValidData(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll(cacheDir) })

	f := createTempCSV(t, fullCSV)

	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() with valid data should not error, got: %v", err)
	}

	revenue := a.RevenueByWeekday()
	if revenue == nil || revenue.Peak == nil {
		t.Fatal("revenue report and peak should be set")
	}
	if revenue.Peak.Weekday != "Monday" || !revenue.Peak.Revenue.Equal(decimal.NewFromInt(7)) {
		t.Errorf("peak = %s/%s, want Monday/7", revenue.Peak.Weekday, revenue.Peak.Revenue)
	}

	if months := a.VolumeByMonth(); months == nil || len(months.Rows) != 12 {
		t.Errorf("month volume = %+v, want 12 rows", months)
	}

	if trend := a.TopProductTrend(); trend == nil || trend.CoffeeName != "Latte" {
		t.Errorf("trend = %+v, want Latte trend", trend)
	}
}

func TestAnalytics_LoadFromCSV_MissingFile(t *testing.T) {
	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), "does-not-exist.csv"); err == nil {
		t.Error("missing file must be a terminal error")
	}
}

func TestAnalytics_LoadFromCSV_MissingColumnsDegrade(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll(cacheDir) })

	// No Money column: revenue unavailable, counting aggregations proceed.
	f := createTempCSV(t, `Weekday,Weekday_sort,Coffee_Name
Monday,1,Latte
Tuesday,2,Espresso`)

	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() should not error, got: %v", err)
	}

	if revenue := a.RevenueByWeekday(); revenue != nil {
		t.Errorf("revenue = %+v, want unavailable without Money", revenue)
	}
	if volume := a.VolumeByWeekday(); volume == nil || len(volume.Rows) != 2 {
		t.Errorf("weekday volume = %+v, want 2 rows", volume)
	}
	if share := a.ProductShare(); share == nil || len(share.Rows) != 2 {
		t.Errorf("share = %+v, want 2 rows", share)
	}
}

func TestAnalytics_LoadFromCSV_HeaderOnly(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll(cacheDir) })

	f := createTempCSV(t, "Date,Weekday,Weekday_sort,Hour_of_Day,Month_name,Coffee_Name,Money\n")

	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("header-only input should not error, got: %v", err)
	}

	if months := a.VolumeByMonth(); months == nil || len(months.Rows) != 12 || months.Peak != nil {
		t.Errorf("month volume = %+v, want 12 zero rows, nil peak", months)
	}
	if top := a.TopProduct(); top == nil || top.Top != nil {
		t.Errorf("top product = %+v, want available with nil top", top)
	}
}

func TestAnalytics_LoadFromCSV_UnknownMonthWarning(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll(cacheDir) })

	f := createTempCSV(t, `Month_name,Coffee_Name
March,Latte
Enero,Espresso`)

	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("LoadFromCSV() should not error, got: %v", err)
	}

	if warnings := a.Warnings(); len(warnings) != 1 {
		t.Errorf("warnings = %v, want one for the unknown month", warnings)
	}
	if months := a.VolumeByMonth(); months == nil || len(months.Rows) != 13 {
		t.Errorf("month volume rows = %+v, want 12 + trailing bucket", months)
	}
}

func TestAnalytics_CacheRoundTrip(t *testing.T) {
	t.Cleanup(func() { os.RemoveAll(cacheDir) })

	f := createTempCSV(t, fullCSV)

	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), f); err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	cached, err := a.loadFromCache(f)
	if err != nil {
		t.Fatalf("cache should exist after load: %v", err)
	}

	a.mu.RLock()
	want := a.precomputed
	a.mu.RUnlock()

	opts := cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })
	if diff := cmp.Diff(want.RevenueByWeekday, cached.RevenueByWeekday, opts); diff != "" {
		t.Errorf("cached revenue differs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.ProductShare, cached.ProductShare); diff != "" {
		t.Errorf("cached share differs (-want +got):\n%s", diff)
	}
	if cached.RecordCount != want.RecordCount {
		t.Errorf("cached record count = %d, want %d", cached.RecordCount, want.RecordCount)
	}
}

func TestAnalytics_Stats(t *testing.T) {
	a := NewAnalytics()
	tbl := schema.Normalize(
		[]string{"Date", "Weekday", "Weekday_sort", "Hour_of_Day", "Month_name", "Coffee_Name", "Money"},
		[][]string{
			{"2024-03-04", "Monday", "1", "9", "March", "Latte", "3.50"},
		},
	)
	a.SetTable(tbl)

	stats := a.Stats()
	if stats["record_count"] != int64(1) {
		t.Errorf("record_count = %v, want 1", stats["record_count"])
	}
	if stats["reports_available"] != 7 {
		t.Errorf("reports_available = %v, want 7", stats["reports_available"])
	}
}
