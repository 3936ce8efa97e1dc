package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column identifies one of the known input columns by its canonical header name.
type Column string

const (
	ColDate        Column = "Date"
	ColWeekday     Column = "Weekday"
	ColWeekdaySort Column = "Weekday_sort"
	ColHourOfDay   Column = "Hour_of_Day"
	ColMonthName   Column = "Month_name"
	ColCoffeeName  Column = "Coffee_Name"
	ColMoney       Column = "Money"
)

// ColumnSet records which columns were present in the source header.
// Aggregations consult it to decide whether they can run at all.
type ColumnSet map[Column]bool

// Has reports whether every given column was present in the source.
func (s ColumnSet) Has(cols ...Column) bool {
	for _, c := range cols {
		if !s[c] {
			return false
		}
	}
	return true
}

// Transaction is one normalized point-of-sale row. Cells that failed to
// parse are carried as nil (Date) or flagged invalid (numeric fields) so
// that each aggregation can apply its own inclusion rule instead of the
// loader dropping the whole row.
type Transaction struct {
	Date        *time.Time
	Weekday     string
	WeekdaySort int
	SortOK      bool
	HourOfDay   int
	HourOK      bool
	MonthName   string
	CoffeeName  string
	Money       decimal.Decimal
	MoneyOK     bool
}

// Table is the normalized transaction table: the rows, the column inventory
// from the source header, and any normalization warnings (for example
// month names outside the calendar vocabulary).
type Table struct {
	Rows     []Transaction
	Columns  ColumnSet
	Warnings []string
}

type WeekdayRevenue struct {
	Weekday     string          `json:"weekday"`
	WeekdaySort int             `json:"weekday_sort"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type WeekdayVolume struct {
	Weekday     string `json:"weekday"`
	WeekdaySort int    `json:"weekday_sort"`
	Sales       int64  `json:"sales"`
}

type MonthVolume struct {
	Month string `json:"month"`
	Sales int64  `json:"sales"`
}

type HourVolume struct {
	Hour  int   `json:"hour"`
	Sales int64 `json:"sales"`
}

type ProductShare struct {
	CoffeeName string  `json:"coffee_name"`
	Sales      int64   `json:"sales"`
	Share      float64 `json:"share_percent"`
}

// Peak facts. A nil peak pointer in a report means "not applicable"
// (the aggregation ran but no rows qualified).

type WeekdayRevenuePeak struct {
	Weekday string          `json:"weekday"`
	Revenue decimal.Decimal `json:"revenue"`
}

type WeekdayVolumePeak struct {
	Weekday string `json:"weekday"`
	Sales   int64  `json:"sales"`
}

type MonthPeak struct {
	Month string `json:"month"`
	Sales int64  `json:"sales"`
}

type HourPeak struct {
	Hour  int   `json:"hour"`
	Sales int64 `json:"sales"`
}

type ProductPeak struct {
	CoffeeName string `json:"coffee_name"`
	Sales      int64  `json:"sales"`
}

type SharePeak struct {
	CoffeeName string  `json:"coffee_name"`
	Share      float64 `json:"share_percent"`
}
