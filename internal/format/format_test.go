package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPower(t *testing.T) {
	cases := []struct {
		watts float64
		want  string
	}{
		{0, "0W"},
		{950, "950W"},
		{999.9, "999W"},
		{1000, "1.0kW"},
		{1500, "1.5kW"},
		{9999, "10.0kW"},
		{10000, "10kW"},
		{15000, "15kW"},
		{15400, "15kW"},
		{-500, "-500W"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Power(c.watts), "Power(%v)", c.watts)
	}
}

func TestEnergy(t *testing.T) {
	assert.Equal(t, "850Wh", Energy(850))
	assert.Equal(t, "4.2kWh", Energy(4200))
	assert.Equal(t, "12kWh", Energy(12300))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "42%", Percentage(42))
	assert.Equal(t, "0%", Percentage(0))
	assert.Equal(t, "100%", Percentage(100))
	assert.Equal(t, "---", Percentage(-1))
}

func TestDistance(t *testing.T) {
	assert.Equal(t, "215km", Distance(215.7))
	assert.Equal(t, "0km", Distance(0))
	assert.Equal(t, "-- km", Distance(-1))
}

// Winter reference clock: no DST, so the fixed offset is +1h.
var winterNow = time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC)

func TestPlanTimeShortInput(t *testing.T) {
	assert.Equal(t, NoPlan, PlanTime("", winterNow))
	assert.Equal(t, NoPlan, PlanTime("2026-01-14", winterNow))
	assert.Equal(t, NoPlan, PlanTime("2026-01-14T17:0", winterNow))
}

func TestPlanTimeMalformed(t *testing.T) {
	assert.Equal(t, NoPlan, PlanTime("not a timestamp!!", winterNow))
	assert.Equal(t, NoPlan, PlanTime("2026-xx-14T17:00:00Z", winterNow))
}

func TestPlanTimeToday(t *testing.T) {
	// 17:00 UTC-ish + 1h = 18:00 local, same day.
	assert.Equal(t, "Heute 18:00", PlanTime("2026-01-14T17:00:00Z", winterNow))
}

func TestPlanTimeTomorrow(t *testing.T) {
	assert.Equal(t, "Morgen 06:30", PlanTime("2026-01-15T05:30:00Z", winterNow))
}

func TestPlanTimeHourRollover(t *testing.T) {
	// 23:30 + 1h rolls into the next day.
	assert.Equal(t, "Morgen 00:30", PlanTime("2026-01-14T23:30:00Z", winterNow))
}

func TestPlanTimeWeekday(t *testing.T) {
	// 2026-01-17 is a Saturday, 3 days out.
	assert.Equal(t, "Samstag 12:15", PlanTime("2026-01-17T11:15:00Z", winterNow))
	// 2026-01-19 is a Monday, 5 days out.
	assert.Equal(t, "Montag 08:00", PlanTime("2026-01-19T07:00:00Z", winterNow))
}

func TestPlanTimeNumericDate(t *testing.T) {
	// 7+ days out within the same month falls back to the numeric form.
	assert.Equal(t, "25.1. 18:00", PlanTime("2026-01-25T17:00:00Z", winterNow))
	// Crossing a month boundary always uses the numeric form.
	assert.Equal(t, "2.2. 18:00", PlanTime("2026-02-02T17:00:00Z", winterNow))
	// Past dates too.
	assert.Equal(t, "28.12. 18:00", PlanTime("2025-12-28T17:00:00Z", winterNow))
}

func TestPlanTimeMonthRollover(t *testing.T) {
	// Jan 31 23:30 + 1h lands on Feb 1.
	assert.Equal(t, "1.2. 00:30", PlanTime("2026-01-31T23:30:00Z", winterNow))
}

func TestPlanTimeLeapYear(t *testing.T) {
	// 2028 is a leap year: Feb 28 rolls to Feb 29, not Mar 1.
	now := time.Date(2028, 2, 20, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "29.2. 00:30", PlanTime("2028-02-28T23:30:00Z", now))
	// 2026 is not: Feb 28 rolls to Mar 1.
	now = time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "1.3. 00:30", PlanTime("2026-02-28T23:30:00Z", now))
}

func TestPlanTimeDSTOffset(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	summerNow := time.Date(2026, 7, 10, 10, 0, 0, 0, loc)
	if !summerNow.IsDST() {
		t.Fatal("expected July in Berlin to be DST")
	}
	// In summer the heuristic applies +2h.
	assert.Equal(t, "Heute 19:00", PlanTime("2026-07-10T17:00:00Z", summerNow))
}
