package datetime

import (
	"reflect"
	"testing"
	"time"
)

func TestMustParseTime(t *testing.T) {
	tests := []struct {
		name     string
		layout   string
		dateStr  string
		expected string
	}{
		{
			name:     "Valid month",
			layout:   MonthLayout,
			dateStr:  "2025-01",
			expected: "2025-01",
		},
		{
			name:     "Valid day",
			layout:   DateLayout,
			dateStr:  "2030-12-31",
			expected: "2030-12-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MustParseTime(tt.layout, tt.dateStr)
			if result.Format(tt.layout) != tt.expected {
				t.Errorf("MustParseTime() = %s, expected %s", result.Format(tt.layout), tt.expected)
			}
		})
	}
}

func TestMustParseTimePanic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected MustParseTime to panic with invalid date")
		}
	}()

	MustParseTime(DateLayout, "invalid-date")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"ISO date", "2024-03-15", "2024-03-15", true},
		{"Padded ISO date", "  2024-03-15 ", "2024-03-15", true},
		{"RFC3339", "2024-03-15T10:30:00Z", "2024-03-15", true},
		{"Spreadsheet timestamp", "2024-03-15 10:30:00", "2024-03-15", true},
		{"US date", "03/15/2024", "2024-03-15", true},
		{"Short US date", "3/5/2024", "2024-03-05", true},
		{"Month only", "2024-03", "2024-03-01", true},
		{"Blank", "", "", false},
		{"Garbage", "next tuesday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if ok && result.Format(DateLayout) != tt.expected {
				t.Errorf("ParseDate(%q) = %s, expected %s", tt.input, result.Format(DateLayout), tt.expected)
			}
		})
	}
}

func TestRecordMonthKey(t *testing.T) {
	if key, ok := RecordMonthKey("2024-11-30"); !ok || key != "2024-11" {
		t.Errorf("RecordMonthKey() = %q, %v", key, ok)
	}
	if _, ok := RecordMonthKey("bad"); ok {
		t.Error("RecordMonthKey() should reject unparsable dates")
	}
}

func TestPeriodStarts(t *testing.T) {
	now := time.Date(2024, time.August, 17, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		name     string
		fn       func(time.Time) time.Time
		expected string
	}{
		{"Start of day", StartOfDay, "2024-08-17"},
		{"Start of month", StartOfMonth, "2024-08-01"},
		{"Start of quarter", StartOfQuarter, "2024-07-01"},
		{"Start of year", StartOfYear, "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.fn(now)
			if result.Format(DateLayout) != tt.expected || result.Hour() != 0 {
				t.Errorf("%s = %s, expected %s at midnight", tt.name, result, tt.expected)
			}
		})
	}
}

func TestStartOfQuarterBoundaries(t *testing.T) {
	tests := []struct {
		month    time.Month
		expected time.Month
	}{
		{time.January, time.January},
		{time.March, time.January},
		{time.April, time.April},
		{time.June, time.April},
		{time.September, time.July},
		{time.October, time.October},
		{time.December, time.October},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			result := StartOfQuarter(time.Date(2024, tt.month, 15, 0, 0, 0, 0, time.UTC))
			if result.Month() != tt.expected {
				t.Errorf("StartOfQuarter(%s) = %s, expected %s", tt.month, result.Month(), tt.expected)
			}
		})
	}
}

func TestInRangeInclusive(t *testing.T) {
	start := MustParseTime(DateLayout, "2024-01-01")
	end := MustParseTime(DateLayout, "2024-01-31")

	tests := []struct {
		name     string
		date     string
		expected bool
	}{
		{"Equal to start", "2024-01-01", true},
		{"Equal to end", "2024-01-31", true},
		{"Inside", "2024-01-15", true},
		{"Before", "2023-12-31", false},
		{"After", "2024-02-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if InRange(MustParseTime(DateLayout, tt.date), start, end) != tt.expected {
				t.Errorf("InRange(%s) expected %v", tt.date, tt.expected)
			}
		})
	}
}

func TestMonthKeysBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected []string
	}{
		{"Same month", "2024-03-10", "2024-03-20", []string{"2024-03"}},
		{"Year boundary", "2023-11-30", "2024-02-01", []string{"2023-11", "2023-12", "2024-01", "2024-02"}},
		{"Month end start does not skip", "2024-01-31", "2024-03-01", []string{"2024-01", "2024-02", "2024-03"}},
		{"End before start", "2024-05-01", "2024-04-01", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MonthKeysBetween(MustParseTime(DateLayout, tt.start), MustParseTime(DateLayout, tt.end))
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("MonthKeysBetween() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestYearsBetween(t *testing.T) {
	start := MustParseTime(DateLayout, "2015-06-01")
	tests := []struct {
		name     string
		end      string
		expected int
	}{
		{"Just under a year", "2016-05-30", 0},
		{"Nine years", "2024-08-01", 9},
		{"Before start", "2014-01-01", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearsBetween(start, MustParseTime(DateLayout, tt.end)); got != tt.expected {
				t.Errorf("YearsBetween() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)
	if got := DaysUntil(now, MustParseTime(DateLayout, "2024-03-31")); got != 30 {
		t.Errorf("DaysUntil() = %d, expected 30", got)
	}
	if got := DaysUntil(now, MustParseTime(DateLayout, "2024-02-28")); got != -2 {
		t.Errorf("DaysUntil() = %d, expected -2", got)
	}
}

func TestEndOfDay(t *testing.T) {
	end := EndOfDay(MustParseTime(DateLayout, "2024-02-29"))
	if end.Format(DateLayout) != "2024-02-29" || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("EndOfDay() = %s", end)
	}
	if !end.Add(time.Nanosecond).Equal(MustParseTime(DateLayout, "2024-03-01")) {
		t.Errorf("EndOfDay() should be one nanosecond before the next day, got %s", end)
	}
}

func TestWallClockUTC(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*60*60)
	local := time.Date(2024, time.June, 30, 22, 15, 0, 0, zone)
	shifted := WallClockUTC(local)
	if shifted.Location() != time.UTC || shifted.Day() != 30 || shifted.Hour() != 22 {
		t.Errorf("WallClockUTC() = %s", shifted)
	}
}
