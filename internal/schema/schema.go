package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"coffee-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Months is the canonical calendar order used for month grouping and
// zero-filling. Month names outside this vocabulary sort after December.
var Months = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthIndex = func() map[string]int {
	m := make(map[string]int, len(Months))
	for i, name := range Months {
		m[name] = i
	}
	return m
}()

// MonthIndex returns the position of name in the canonical calendar order.
func MonthIndex(name string) (int, bool) {
	i, ok := monthIndex[name]
	return i, ok
}

// headerAliases maps accepted header spellings to canonical columns.
// The weekday sort column appears in source files both with and without
// the underscore.
var headerAliases = map[string]models.Column{
	"Date":         models.ColDate,
	"Weekday":      models.ColWeekday,
	"Weekday_sort": models.ColWeekdaySort,
	"Weekdaysort":  models.ColWeekdaySort,
	"Hour_of_Day":  models.ColHourOfDay,
	"Month_name":   models.ColMonthName,
	"Coffee_Name":  models.ColCoffeeName,
	"Money":        models.ColMoney,
}

// Layout records where each known column sits in a source header.
// Unknown header fields are ignored; missing columns simply stay absent.
type Layout struct {
	Columns models.ColumnSet
	index   map[models.Column]int
}

// ParseHeader builds the column layout from a header record.
func ParseHeader(fields []string) Layout {
	l := Layout{
		Columns: make(models.ColumnSet, len(headerAliases)),
		index:   make(map[models.Column]int, len(headerAliases)),
	}
	for i, field := range fields {
		col, ok := headerAliases[strings.TrimSpace(field)]
		if !ok {
			continue
		}
		if l.Columns[col] {
			continue // first occurrence wins
		}
		l.Columns[col] = true
		l.index[col] = i
	}
	return l
}

func (l Layout) cell(fields []string, col models.Column) (string, bool) {
	i, ok := l.index[col]
	if !ok || i >= len(fields) {
		return "", false
	}
	return strings.TrimSpace(fields[i]), true
}

// ParseRow normalizes one record. It never fails: unparsable cells become
// nil (Date) or are flagged invalid (numeric fields) so downstream
// aggregations can include or exclude the row per their own rules.
func (l Layout) ParseRow(fields []string) models.Transaction {
	var tx models.Transaction

	if v, ok := l.cell(fields, models.ColDate); ok && v != "" {
		if d, err := time.Parse(dateLayout, v); err == nil {
			tx.Date = &d
		}
	}

	if v, ok := l.cell(fields, models.ColWeekday); ok {
		tx.Weekday = v
	}

	if v, ok := l.cell(fields, models.ColWeekdaySort); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			tx.WeekdaySort = n
			tx.SortOK = true
		}
	}

	if v, ok := l.cell(fields, models.ColHourOfDay); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			tx.HourOfDay = n
			tx.HourOK = true
		}
	}

	if v, ok := l.cell(fields, models.ColMonthName); ok {
		tx.MonthName = v
	}

	if v, ok := l.cell(fields, models.ColCoffeeName); ok {
		tx.CoffeeName = v
	}

	if v, ok := l.cell(fields, models.ColMoney); ok && v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			tx.Money = d
			tx.MoneyOK = true
		}
	}

	return tx
}

// UnknownMonths returns the distinct Month_name values that fall outside
// the calendar vocabulary, in encounter order. Empty cells are treated as
// null, not as unknown values.
func UnknownMonths(rows []models.Transaction) []string {
	seen := make(map[string]bool)
	var unknown []string
	for _, tx := range rows {
		if tx.MonthName == "" {
			continue
		}
		if _, ok := monthIndex[tx.MonthName]; ok {
			continue
		}
		if !seen[tx.MonthName] {
			seen[tx.MonthName] = true
			unknown = append(unknown, tx.MonthName)
		}
	}
	return unknown
}

// Normalize builds a Table from pre-split records. The streaming CSV
// loader assembles tables itself; this path serves in-memory inputs and
// tests.
func Normalize(header []string, records [][]string) *models.Table {
	layout := ParseHeader(header)
	rows := make([]models.Transaction, 0, len(records))
	for _, record := range records {
		rows = append(rows, layout.ParseRow(record))
	}
	return NewTable(rows, layout.Columns)
}

// NewTable assembles a normalized table and derives its warnings.
func NewTable(rows []models.Transaction, cols models.ColumnSet) *models.Table {
	tbl := &models.Table{Rows: rows, Columns: cols}
	if cols.Has(models.ColMonthName) {
		for _, name := range UnknownMonths(rows) {
			tbl.Warnings = append(tbl.Warnings,
				fmt.Sprintf("month %q is not a calendar month; sorted after December", name))
		}
	}
	return tbl
}
