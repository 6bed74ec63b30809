// Package format turns raw telemetry values into the short display strings
// shown on the panel. All functions are pure; anything time-dependent takes
// the reference time as a parameter.
package format

import (
	"fmt"
	"math"
	"time"
)

// NoPlan is shown when a loadpoint has no charging plan or the plan time
// cannot be parsed.
const NoPlan = "keiner"

// Power renders watts as "950W", "1.5kW" or "15kW" depending on magnitude.
func Power(watts float64) string {
	abs := math.Abs(watts)
	if abs < 1000 {
		return fmt.Sprintf("%dW", int(watts))
	}
	if abs < 10000 {
		return fmt.Sprintf("%.1fkW", watts/1000)
	}
	return fmt.Sprintf("%.0fkW", watts/1000)
}

// Energy renders watt-hours analogously to Power.
func Energy(wh float64) string {
	abs := math.Abs(wh)
	if abs < 1000 {
		return fmt.Sprintf("%dWh", int(wh))
	}
	if abs < 10000 {
		return fmt.Sprintf("%.1fkWh", wh/1000)
	}
	return fmt.Sprintf("%.0fkWh", wh/1000)
}

// Percentage renders a SOC value. Negative means unknown.
func Percentage(pct float64) string {
	if pct < 0 {
		return "---"
	}
	return fmt.Sprintf("%d%%", int(pct))
}

// Distance renders a vehicle range in km. Negative means unknown.
func Distance(km float64) string {
	if km < 0 {
		return "-- km"
	}
	return fmt.Sprintf("%dkm", int(km))
}

var weekdays = [7]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// PlanTime turns an ISO-8601 timestamp from the evcc API into a short
// localized phrase like "Heute 18:30", "Morgen 06:00", "Freitag 21:15" or
// "3.11. 08:00". Strings shorter than the fixed "YYYY-MM-DDTHH:MM:SS"
// prefix yield NoPlan.
//
// The timezone handling is a deliberate approximation inherited from the
// panel firmware: a fixed +1h offset, plus one more hour when now is in
// DST. It tracks CET/CEST without a tzdata lookup and does not re-derive
// DST for the target date.
func PlanTime(iso string, now time.Time) string {
	if len(iso) < 19 {
		return NoPlan
	}
	year, ok1 := parseInt(iso[0:4])
	month, ok2 := parseInt(iso[5:7])
	day, ok3 := parseInt(iso[8:10])
	hour, ok4 := parseInt(iso[11:13])
	minute, ok5 := parseInt(iso[14:16])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || month < 1 || month > 12 {
		return NoPlan
	}

	offset := 1
	if now.IsDST() {
		offset = 2
	}
	hour += offset
	if hour >= 24 {
		hour -= 24
		day++
		dim := daysInMonth[month-1]
		if month == 2 && isLeapYear(year) {
			dim = 29
		}
		if day > dim {
			day = 1
			month++
			if month > 12 {
				month = 1
				year++
			}
		}
	}

	// Day difference is only meaningful within the current month; across
	// month boundaries fall back to a sentinel that selects the numeric
	// date form.
	daysDiff := 7
	switch {
	case year == now.Year() && time.Month(month) == now.Month():
		daysDiff = day - now.Day()
	case year < now.Year() || (year == now.Year() && time.Month(month) < now.Month()):
		daysDiff = -7
	}

	var dayPhrase string
	switch {
	case daysDiff == 0:
		dayPhrase = "Heute"
	case daysDiff == 1:
		dayPhrase = "Morgen"
	case daysDiff >= 2 && daysDiff < 7:
		target := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
		dayPhrase = weekdays[int(target.Weekday())]
	default:
		dayPhrase = fmt.Sprintf("%d.%d.", day, month)
	}

	return fmt.Sprintf("%s %02d:%02d", dayPhrase, hour, minute)
}

func isLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// parseInt is strconv.Atoi restricted to plain digits, so malformed
// timestamps degrade to NoPlan instead of misparsing.
func parseInt(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
