// Package aggregate derives the dashboard summary tables from a normalized
// transaction table. Every function is pure and total: a table missing the
// required columns yields a nil report, an empty table yields empty or
// zero-filled rows with a nil peak. Max selection always returns the first
// key reaching the maximum under the report's row order.
package aggregate

import (
	"slices"

	"coffee-dashboard/internal/models"
	"coffee-dashboard/internal/schema"
	"github.com/shopspring/decimal"
)

type WeekdayRevenueReport struct {
	Rows []models.WeekdayRevenue    `json:"rows"`
	Peak *models.WeekdayRevenuePeak `json:"peak"`
}

type WeekdayVolumeReport struct {
	Rows []models.WeekdayVolume    `json:"rows"`
	Peak *models.WeekdayVolumePeak `json:"peak"`
}

type MonthVolumeReport struct {
	Rows []models.MonthVolume `json:"rows"`
	Peak *models.MonthPeak    `json:"peak"`
}

type HourVolumeReport struct {
	Rows []models.HourVolume `json:"rows"`
	Peak *models.HourPeak    `json:"peak"`
}

type TopProductReport struct {
	Top *models.ProductPeak `json:"top"`
}

type TopProductTrendReport struct {
	CoffeeName string               `json:"coffee_name"`
	Rows       []models.MonthVolume `json:"rows"`
	Peak       *models.MonthPeak    `json:"peak"`
	MinSales   int64                `json:"min_sales"`
}

type ProductShareReport struct {
	Rows []models.ProductShare `json:"rows"`
	Peak *models.SharePeak     `json:"peak"`
}

// RevenueByWeekday sums Money per weekday, ordered by the weekday sort key.
// Rows with an unparsable sort key are excluded; rows with unparsable Money
// keep their weekday in the table but contribute zero revenue.
func RevenueByWeekday(tbl *models.Table) *WeekdayRevenueReport {
	if tbl == nil || !tbl.Columns.Has(models.ColWeekday, models.ColWeekdaySort, models.ColMoney) {
		return nil
	}

	type group struct {
		sort    int
		revenue decimal.Decimal
	}
	groups := make(map[string]*group)
	for _, tx := range tbl.Rows {
		if !tx.SortOK {
			continue
		}
		g := groups[tx.Weekday]
		if g == nil {
			g = &group{sort: tx.WeekdaySort, revenue: decimal.Zero}
			groups[tx.Weekday] = g
		}
		if tx.MoneyOK {
			g.revenue = g.revenue.Add(tx.Money)
		}
	}

	rows := make([]models.WeekdayRevenue, 0, len(groups))
	for weekday, g := range groups {
		rows = append(rows, models.WeekdayRevenue{
			Weekday:     weekday,
			WeekdaySort: g.sort,
			Revenue:     g.revenue,
		})
	}
	slices.SortFunc(rows, func(a, b models.WeekdayRevenue) int {
		return a.WeekdaySort - b.WeekdaySort
	})

	report := &WeekdayRevenueReport{Rows: rows}
	for _, row := range rows {
		if report.Peak == nil || row.Revenue.GreaterThan(report.Peak.Revenue) {
			report.Peak = &models.WeekdayRevenuePeak{Weekday: row.Weekday, Revenue: row.Revenue}
		}
	}
	return report
}

// VolumeByWeekday counts transactions per weekday, ordered by the weekday
// sort key.
func VolumeByWeekday(tbl *models.Table) *WeekdayVolumeReport {
	if tbl == nil || !tbl.Columns.Has(models.ColWeekday, models.ColWeekdaySort) {
		return nil
	}

	type group struct {
		sort  int
		sales int64
	}
	groups := make(map[string]*group)
	for _, tx := range tbl.Rows {
		if !tx.SortOK {
			continue
		}
		g := groups[tx.Weekday]
		if g == nil {
			g = &group{sort: tx.WeekdaySort}
			groups[tx.Weekday] = g
		}
		g.sales++
	}

	rows := make([]models.WeekdayVolume, 0, len(groups))
	for weekday, g := range groups {
		rows = append(rows, models.WeekdayVolume{
			Weekday:     weekday,
			WeekdaySort: g.sort,
			Sales:       g.sales,
		})
	}
	slices.SortFunc(rows, func(a, b models.WeekdayVolume) int {
		return a.WeekdaySort - b.WeekdaySort
	})

	report := &WeekdayVolumeReport{Rows: rows}
	for _, row := range rows {
		if report.Peak == nil || row.Sales > report.Peak.Sales {
			report.Peak = &models.WeekdayVolumePeak{Weekday: row.Weekday, Sales: row.Sales}
		}
	}
	return report
}

// VolumeByMonth counts transactions per month. The twelve calendar months
// always appear, zero-filled, in calendar order; month values outside the
// vocabulary follow as a trailing bucket in encounter order and never take
// part in peak selection.
func VolumeByMonth(tbl *models.Table) *MonthVolumeReport {
	if tbl == nil || !tbl.Columns.Has(models.ColMonthName) {
		return nil
	}

	rows, peak := monthCounts(tbl.Rows, func(models.Transaction) bool { return true })
	return &MonthVolumeReport{Rows: rows, Peak: peak}
}

// VolumeByHour counts transactions per hour of day, ascending. Rows with
// an unparsable hour are excluded.
func VolumeByHour(tbl *models.Table) *HourVolumeReport {
	if tbl == nil || !tbl.Columns.Has(models.ColHourOfDay) {
		return nil
	}

	counts := make(map[int]int64)
	for _, tx := range tbl.Rows {
		if tx.HourOK {
			counts[tx.HourOfDay]++
		}
	}

	rows := make([]models.HourVolume, 0, len(counts))
	for hour, sales := range counts {
		rows = append(rows, models.HourVolume{Hour: hour, Sales: sales})
	}
	slices.SortFunc(rows, func(a, b models.HourVolume) int {
		return a.Hour - b.Hour
	})

	report := &HourVolumeReport{Rows: rows}
	for _, row := range rows {
		if report.Peak == nil || row.Sales > report.Peak.Sales {
			report.Peak = &models.HourPeak{Hour: row.Hour, Sales: row.Sales}
		}
	}
	return report
}

// TopProduct returns the most frequent coffee name. Ties resolve to the
// product encountered first in the table.
func TopProduct(tbl *models.Table) *TopProductReport {
	if tbl == nil || !tbl.Columns.Has(models.ColCoffeeName) {
		return nil
	}

	ranked := rankProducts(tbl.Rows)
	report := &TopProductReport{}
	if len(ranked) > 0 {
		report.Top = &models.ProductPeak{CoffeeName: ranked[0].name, Sales: ranked[0].sales}
	}
	return report
}

// TopProductMonthlyTrend counts the top product's transactions per month,
// zero-filled over the calendar. MinSales is the minimum of the twelve
// zero-filled calendar entries.
func TopProductMonthlyTrend(tbl *models.Table) *TopProductTrendReport {
	if tbl == nil || !tbl.Columns.Has(models.ColCoffeeName, models.ColMonthName) {
		return nil
	}

	report := &TopProductTrendReport{}

	ranked := rankProducts(tbl.Rows)
	if len(ranked) == 0 {
		report.Rows, _ = monthCounts(nil, nil)
		return report
	}
	top := ranked[0].name
	report.CoffeeName = top

	report.Rows, report.Peak = monthCounts(tbl.Rows, func(tx models.Transaction) bool {
		return tx.CoffeeName == top
	})

	min := report.Rows[0].Sales
	for _, row := range report.Rows[:len(schema.Months)] {
		if row.Sales < min {
			min = row.Sales
		}
	}
	report.MinSales = min
	return report
}

// ProductShare ranks products by their percentage of total transactions,
// descending. Ties keep encounter order.
func ProductShare(tbl *models.Table) *ProductShareReport {
	if tbl == nil || !tbl.Columns.Has(models.ColCoffeeName) {
		return nil
	}

	ranked := rankProducts(tbl.Rows)
	var total int64
	for _, p := range ranked {
		total += p.sales
	}

	rows := make([]models.ProductShare, 0, len(ranked))
	for _, p := range ranked {
		rows = append(rows, models.ProductShare{
			CoffeeName: p.name,
			Sales:      p.sales,
			Share:      float64(p.sales) / float64(total) * 100,
		})
	}

	report := &ProductShareReport{Rows: rows}
	if len(rows) > 0 {
		report.Peak = &models.SharePeak{CoffeeName: rows[0].CoffeeName, Share: rows[0].Share}
	}
	return report
}

type productCount struct {
	name  string
	sales int64
}

// rankProducts counts non-empty coffee names and orders them by count
// descending, keeping encounter order among equals.
func rankProducts(rows []models.Transaction) []productCount {
	counts := make(map[string]int64)
	var order []string
	for _, tx := range rows {
		if tx.CoffeeName == "" {
			continue
		}
		if _, seen := counts[tx.CoffeeName]; !seen {
			order = append(order, tx.CoffeeName)
		}
		counts[tx.CoffeeName]++
	}

	ranked := make([]productCount, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, productCount{name: name, sales: counts[name]})
	}
	slices.SortStableFunc(ranked, func(a, b productCount) int {
		switch {
		case a.sales > b.sales:
			return -1
		case a.sales < b.sales:
			return 1
		default:
			return 0
		}
	})
	return ranked
}

// monthCounts builds the calendar-ordered, zero-filled month table for rows
// matching keep, with unknown month values trailing. The peak covers
// calendar months only and is nil when none of them saw a transaction.
func monthCounts(rows []models.Transaction, keep func(models.Transaction) bool) ([]models.MonthVolume, *models.MonthPeak) {
	if keep == nil {
		keep = func(models.Transaction) bool { return true }
	}

	var calendar [12]int64
	unknownCounts := make(map[string]int64)
	var unknownOrder []string

	for _, tx := range rows {
		if tx.MonthName == "" || !keep(tx) {
			continue
		}
		if i, ok := schema.MonthIndex(tx.MonthName); ok {
			calendar[i]++
			continue
		}
		if _, seen := unknownCounts[tx.MonthName]; !seen {
			unknownOrder = append(unknownOrder, tx.MonthName)
		}
		unknownCounts[tx.MonthName]++
	}

	out := make([]models.MonthVolume, 0, len(schema.Months)+len(unknownOrder))
	var peak *models.MonthPeak
	for i, name := range schema.Months {
		out = append(out, models.MonthVolume{Month: name, Sales: calendar[i]})
		if calendar[i] > 0 && (peak == nil || calendar[i] > peak.Sales) {
			peak = &models.MonthPeak{Month: name, Sales: calendar[i]}
		}
	}
	for _, name := range unknownOrder {
		out = append(out, models.MonthVolume{Month: name, Sales: unknownCounts[name]})
	}
	return out, peak
}
