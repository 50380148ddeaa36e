// Package stats implements the pure derived-statistics calculations for a
// board: current streak, heatmap projection and 30-day completion rate.
// Everything here takes explicit reference dates and performs no I/O, so the
// calculations can be exercised (and re-run for repair) without a database.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/checkerhq/checker/internal/models"
)

// DateLayout is the calendar-date format used throughout the service.
const DateLayout = "2006-01-02"

// Today formats now as a calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// CurrentStreak returns the number of consecutive calendar days, ending today
// or yesterday, with at least one check-in. dates holds the board's distinct
// check-in dates in DateLayout; today is the reference date in the owner's
// timezone. A check-in yesterday with none today still counts (grace period
// of exactly one day); a gap of two or more days resets the streak to zero.
func CurrentStreak(dates []string, today string) int {
	if len(dates) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(dates))
	mostRecent := ""
	for _, d := range dates {
		set[d] = struct{}{}
		if d > mostRecent {
			mostRecent = d
		}
	}

	todayT, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}
	recentT, err := time.Parse(DateLayout, mostRecent)
	if err != nil {
		return 0
	}

	gap := int(todayT.Sub(recentT).Hours() / 24)
	if gap < 0 || gap > 1 {
		return 0
	}

	cursor := todayT
	if gap == 1 {
		cursor = recentT
	}

	streak := 0
	for {
		if _, ok := set[cursor.Format(DateLayout)]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// Day is one heatmap bucket.
type Day struct {
	Date      string  `json:"date"`
	Sessions  int     `json:"sessions"`
	Total     float64 `json:"total"`
	Intensity float64 `json:"intensity"`
}

// Heatmap groups check-ins by date into buckets ordered by date ascending.
// Days without check-ins are omitted. A check-in with no amount (or a zero
// amount) contributes 1 to the day's total. Intensity is total/target capped
// at 1 when the board has a positive target, otherwise 1 for any day with at
// least one check-in.
func Heatmap(checkIns []models.CheckIn, targetAmount *float64) []Day {
	buckets := make(map[string]*Day)
	for _, ci := range checkIns {
		b := buckets[ci.Date]
		if b == nil {
			b = &Day{Date: ci.Date}
			buckets[ci.Date] = b
		}
		b.Sessions++
		if ci.Amount != nil && *ci.Amount != 0 {
			b.Total += *ci.Amount
		} else {
			b.Total++
		}
	}

	days := make([]Day, 0, len(buckets))
	for _, b := range buckets {
		b.Intensity = 1
		if targetAmount != nil && *targetAmount > 0 {
			b.Intensity = math.Min(b.Total / *targetAmount, 1)
		}
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// CompletionRate30d returns the percentage of the last 30 days with at least
// one check-in, rounded to the nearest integer. Distinct dates are counted,
// so multiple same-day sessions do not inflate the rate.
func CompletionRate30d(dates []string, today string) int {
	todayT, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}
	cutoff := todayT.AddDate(0, 0, -30).Format(DateLayout)

	seen := make(map[string]struct{})
	for _, d := range dates {
		if d >= cutoff && d <= today {
			seen[d] = struct{}{}
		}
	}
	return int(math.Round(float64(len(seen)) / 30 * 100))
}
