package billing

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const periodLayout = "2006-01"

func ParsePeriod(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse(periodLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM", ErrInvalidPeriod, value)
	}
	return parsed, nil
}

func FormatPeriod(t time.Time) string {
	return t.Format(periodLayout)
}

// CurrentPeriod is the billing period containing now.
func CurrentPeriod(now time.Time) string {
	return FormatPeriod(now)
}

// DueDateFor is the given day of the month that follows period.
func DueDateFor(period time.Time, dueDay int) time.Time {
	return time.Date(period.Year(), period.Month()+1, dueDay, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween lists every period from..to inclusive.
func MonthsBetween(from, to time.Time) []string {
	var periods []string
	for cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !cursor.After(to); cursor = cursor.AddDate(0, 1, 0) {
		periods = append(periods, FormatPeriod(cursor))
	}
	return periods
}

// DueAmount applies a percentage discount to base and rounds to cents.
func DueAmount(base, discount float64) float64 {
	return roundCents(base * (1 - discount/100))
}

func TotalAmount(dues []Due) float64 {
	var total float64
	for _, due := range dues {
		total += due.Amount
	}
	return roundCents(total)
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
