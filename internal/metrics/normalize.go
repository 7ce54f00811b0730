package metrics

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// siteDatePattern matches the host site's trade timestamps,
// e.g. "6/06/25, 2:03 AM".
var siteDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}),?\s+(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

// fallbackLayouts are tried, in order, for rows whose timestamps were
// produced by an older scraper version.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006, 3:04 PM",
	"1/2/2006 15:04",
}

// ParseCurrency parses a currency-like cell value ("$1,234.56",
// "-$12.00") into a decimal. The contract is best-effort zero: empty
// or unparsable input yields zero, never an error, so one bad cell
// cannot abort aggregation.
func ParseCurrency(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

// ParseNumber parses a plain numeric cell, zero on failure. The
// literal "Loss" in the maxRR column falls through to zero here and
// is treated as "no valid R/R" by the risk estimator.
func ParseNumber(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseSiteDate parses the site's "M/DD/YY, H:MM AM|PM" timestamps in
// the local timezone. Two-digit years are 2000-based, and the 12-hour
// clock converts with 12 AM as hour 0. Non-matching strings fall back
// to generic layouts; if those fail too the current time is returned
// with ok=false and a warning, so a single bad row never crashes a
// pass over the table.
func (e *Engine) ParseSiteDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if m := siteDatePattern.FindStringSubmatch(s); m != nil {
		month := atoi(m[1])
		day := atoi(m[2])
		year := 2000 + atoi(m[3])
		hour := atoi(m[4])
		minute := atoi(m[5])

		meridiem := strings.ToUpper(m[6])
		if meridiem == "AM" {
			if hour == 12 {
				hour = 0
			}
		} else if hour != 12 {
			hour += 12
		}

		return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	e.logger.Warn("unparsable trade timestamp, substituting current time",
		zap.String("value", s))
	return time.Now(), false
}

// LocalDateKey returns the YYYY-MM-DD key for the date's local
// calendar day. Day bucketing must never go through UTC: a trade
// closed at 11:30 PM local time belongs to that local day even when
// its UTC date has already rolled over.
func LocalDateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
