package stats

import (
	"testing"
	"time"

	"github.com/checkerhq/checker/internal/models"
)

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		today string
		want  int
	}{
		{"empty set", nil, "2024-06-10", 0},
		{"single check-in today", []string{"2024-06-10"}, "2024-06-10", 1},
		{"single check-in yesterday counts via grace period", []string{"2024-06-09"}, "2024-06-10", 1},
		{"two days ending yesterday", []string{"2024-06-08", "2024-06-09"}, "2024-06-10", 2},
		{"gap of two days breaks streak", []string{"2024-06-07", "2024-06-08"}, "2024-06-10", 0},
		{"three consecutive days ending today", []string{"2024-06-08", "2024-06-09", "2024-06-10"}, "2024-06-10", 3},
		{"hole inside run stops the walk", []string{"2024-06-06", "2024-06-09", "2024-06-10"}, "2024-06-10", 2},
		{"unsorted input", []string{"2024-06-10", "2024-06-08", "2024-06-09"}, "2024-06-10", 3},
		{"streak across month boundary", []string{"2024-02-28", "2024-02-29", "2024-03-01"}, "2024-03-01", 3},
		{"streak across year boundary", []string{"2023-12-31", "2024-01-01"}, "2024-01-01", 2},
		{"most recent date after today", []string{"2024-06-12"}, "2024-06-10", 0},
		{"malformed today", []string{"2024-06-10"}, "garbage", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentStreak(tt.dates, tt.today); got != tt.want {
				t.Errorf("CurrentStreak(%v, %s) = %d, want %d", tt.dates, tt.today, got, tt.want)
			}
		})
	}
}

func TestCurrentStreakLongRun(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	var dates []string
	for i := 0; i < 100; i++ {
		dates = append(dates, today.AddDate(0, 0, -i).Format(DateLayout))
	}
	if got := CurrentStreak(dates, "2024-06-10"); got != 100 {
		t.Errorf("streak = %d, want 100", got)
	}
}

func amt(v float64) *float64 { return &v }

func TestHeatmapOmitsEmptyDays(t *testing.T) {
	checkIns := []models.CheckIn{
		{Date: "2024-01-01"},
		{Date: "2024-01-03"},
	}
	days := Heatmap(checkIns, nil)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Date != "2024-01-01" || days[1].Date != "2024-01-03" {
		t.Errorf("dates = %s, %s", days[0].Date, days[1].Date)
	}
}

func TestHeatmapGroupsAndDefaultsAmounts(t *testing.T) {
	checkIns := []models.CheckIn{
		{Date: "2024-01-02", Amount: amt(2.5)},
		{Date: "2024-01-02"}, // no amount counts as 1
		{Date: "2024-01-01", Amount: amt(0)},
	}
	days := Heatmap(checkIns, nil)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Date != "2024-01-01" || days[0].Sessions != 1 || days[0].Total != 1 {
		t.Errorf("day 0 = %+v", days[0])
	}
	if days[1].Sessions != 2 || days[1].Total != 3.5 {
		t.Errorf("day 1 = %+v", days[1])
	}
	// No target: intensity is 1 for any day with a check-in.
	if days[0].Intensity != 1 || days[1].Intensity != 1 {
		t.Errorf("intensities = %v, %v, want 1, 1", days[0].Intensity, days[1].Intensity)
	}
}

func TestHeatmapIntensityWithTarget(t *testing.T) {
	checkIns := []models.CheckIn{
		{Date: "2024-01-01", Amount: amt(5)},
		{Date: "2024-01-02", Amount: amt(20)},
	}
	days := Heatmap(checkIns, amt(10))
	if days[0].Intensity != 0.5 {
		t.Errorf("intensity = %v, want 0.5", days[0].Intensity)
	}
	// Over-target days cap at 1.
	if days[1].Intensity != 1 {
		t.Errorf("intensity = %v, want 1", days[1].Intensity)
	}
}

func TestCompletionRate30d(t *testing.T) {
	today := "2024-06-30"

	if got := CompletionRate30d(nil, today); got != 0 {
		t.Errorf("empty rate = %d, want 0", got)
	}

	// 10 distinct days in the window rounds to 33.
	var dates []string
	base := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		dates = append(dates, base.AddDate(0, 0, -i).Format(DateLayout))
	}
	if got := CompletionRate30d(dates, today); got != 33 {
		t.Errorf("rate = %d, want 33", got)
	}

	// Dates outside the window are ignored.
	stale := append([]string{"2024-01-01", "2023-12-25"}, dates...)
	if got := CompletionRate30d(stale, today); got != 33 {
		t.Errorf("rate with stale dates = %d, want 33", got)
	}

	// Every day checked rounds to 100.
	dates = nil
	for i := 0; i < 30; i++ {
		dates = append(dates, base.AddDate(0, 0, -i).Format(DateLayout))
	}
	if got := CompletionRate30d(dates, today); got != 100 {
		t.Errorf("full rate = %d, want 100", got)
	}
}

func TestToday(t *testing.T) {
	// 2024-06-10 03:00 UTC is still 2024-06-09 in New York.
	now := time.Date(2024, 6, 10, 3, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	if got := Today(now, ny); got != "2024-06-09" {
		t.Errorf("Today in New York = %s, want 2024-06-09", got)
	}
	if got := Today(now, time.UTC); got != "2024-06-10" {
		t.Errorf("Today in UTC = %s, want 2024-06-10", got)
	}
}
