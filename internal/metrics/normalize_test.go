package metrics_test

import (
	"testing"
	"time"

	"github.com/propdeck/challenge-backend/internal/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$1,234.56", "1234.56"},
		{"-$12.00", "-12"},
		{"$-12.00", "-12"},
		{"($50.00)", "-50"},
		{"100", "100"},
		{"", "0"},
		{"   ", "0"},
		{"garbage", "0"},
		{"$", "0"},
	}

	for _, tc := range cases {
		got := metrics.ParseCurrency(tc.in)
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Errorf("ParseCurrency(%q) = %s, want %s", tc.in, got, want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	if !metrics.ParseNumber("2.5").Equal(decimal.NewFromFloat(2.5)) {
		t.Error("ParseNumber failed on plain number")
	}
	if !metrics.ParseNumber("Loss").IsZero() {
		t.Error("ParseNumber should treat the literal Loss as zero")
	}
	if !metrics.ParseNumber("").IsZero() {
		t.Error("ParseNumber should treat empty input as zero")
	}
}

func TestParseSiteDate(t *testing.T) {
	engine := metrics.NewEngine(zap.NewNop())

	cases := []struct {
		in                      string
		year                    int
		month                   time.Month
		day, hour, minute       int
	}{
		{"6/06/25, 2:03 AM", 2025, time.June, 6, 2, 3},
		{"12/31/24, 12:00 AM", 2024, time.December, 31, 0, 0},
		{"1/15/25, 12:30 PM", 2025, time.January, 15, 12, 30},
		{"7/04/25, 9:45 PM", 2025, time.July, 4, 21, 45},
	}

	for _, tc := range cases {
		got, ok := engine.ParseSiteDate(tc.in)
		if !ok {
			t.Errorf("ParseSiteDate(%q) reported failure", tc.in)
			continue
		}
		want := time.Date(tc.year, tc.month, tc.day, tc.hour, tc.minute, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("ParseSiteDate(%q) = %v, want %v", tc.in, got, want)
		}
	}
}

func TestParseSiteDateFallback(t *testing.T) {
	engine := metrics.NewEngine(zap.NewNop())

	if _, ok := engine.ParseSiteDate("2025-06-06T10:00:00Z"); !ok {
		t.Error("RFC3339 timestamps should parse via the fallback layouts")
	}

	// Unparsable input substitutes "now" rather than failing the row.
	got, ok := engine.ParseSiteDate("not a date")
	if ok {
		t.Error("garbage input should report ok=false")
	}
	if time.Since(got) > time.Minute {
		t.Errorf("garbage input should substitute the current time, got %v", got)
	}
}

func TestLocalDateKeyUsesLocalDay(t *testing.T) {
	zone := time.FixedZone("UTC+11", 11*3600)

	early := time.Date(2025, 6, 6, 1, 0, 0, 0, zone)
	late := time.Date(2025, 6, 6, 23, 30, 0, 0, zone)

	// The two timestamps share a local calendar day but sit on
	// different UTC days; the key must not go through UTC.
	if early.UTC().Day() == late.UTC().Day() {
		t.Fatal("test setup broken: expected different UTC days")
	}

	if k1, k2 := metrics.LocalDateKey(early), metrics.LocalDateKey(late); k1 != k2 {
		t.Errorf("same local day produced different keys: %s vs %s", k1, k2)
	}

	if got := metrics.LocalDateKey(early); got != "2025-06-06" {
		t.Errorf("LocalDateKey = %s, want 2025-06-06", got)
	}
}
