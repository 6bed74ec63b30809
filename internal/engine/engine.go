// Package engine assembles the per-tick display frame from a telemetry
// snapshot. It owns no I/O: its only side effects are diagnostic log
// writes and the returned Frame.
package engine

import (
	"time"

	"github.com/sweeney/evcc-panel/internal/flow"
	"github.com/sweeney/evcc-panel/internal/format"
	"github.com/sweeney/evcc-panel/internal/loadpoint"
	"github.com/sweeney/evcc-panel/internal/logstore"
	"github.com/sweeney/evcc-panel/internal/telemetry"
)

// Segment fill colors, shared with the renderer via the frame contract.
const (
	colorGeneration = "#4caf50"
	colorBatteryOut = "#ff9800"
	colorGridIn     = "#f44336"
	colorHome       = "#2196f3"
	colorLoadpoint  = "#9c27b0"
	colorBatteryIn  = "#ffeb3b"
	colorGridOut    = "#00bcd4"
)

// Geometry the frame positions are computed against.
const (
	phaseTrackWidth = 30
	socTrackWidth   = 448
)

// Options configure an Engine.
type Options struct {
	// BarWidth is the pixel budget of the composite flow bars.
	BarWidth int
	// ActivityEpsilon is the power magnitude below which a reading is
	// shown as inactive.
	ActivityEpsilon float64
	// RotationInterval is the idle loadpoint fairness interval.
	RotationInterval time.Duration
	// Measurer overrides label width measurement; nil uses the default.
	Measurer flow.TextMeasurer
}

// Engine builds display frames. Its only mutable state is the loadpoint
// rotation, owned by the embedded Selector.
type Engine struct {
	alloc    *flow.Allocator
	selector *loadpoint.Selector

	barWidth int
	epsilon  float64
}

// New creates an Engine. log may be nil.
func New(opts Options, now time.Time, log *logstore.Store) *Engine {
	return &Engine{
		alloc:    flow.NewAllocator(opts.Measurer),
		selector: loadpoint.NewSelector(opts.RotationInterval, now, log),
		barWidth: opts.BarWidth,
		epsilon:  opts.ActivityEpsilon,
	}
}

// Build renders one frame from the snapshot. Signed powers are split into
// directional non-negative components before layout.
func (e *Engine) Build(snap telemetry.Snapshot, now time.Time) Frame {
	f := Frame{GeneratedAt: now}

	f.Generation = GenerationRow{
		Power:    format.Power(snap.PvPower),
		Forecast: format.Energy(snap.Solar.TodayEnergy * snap.Solar.Scale),
		Active:   e.active(snap.PvPower),
	}
	f.Consumption = PowerRow{
		Power:  format.Power(snap.HomePower),
		Active: e.active(snap.HomePower),
	}

	soc := format.Percentage(snap.BatterySoc)
	switch {
	case snap.BatteryPower > e.epsilon:
		f.BatteryDischarge = BatteryRow{Soc: soc, Power: format.Power(snap.BatteryPower), Active: true}
		f.BatteryCharge = BatteryRow{Soc: soc, Power: format.Power(0)}
	case snap.BatteryPower < -e.epsilon:
		f.BatteryCharge = BatteryRow{Soc: soc, Power: format.Power(-snap.BatteryPower), Active: true}
		f.BatteryDischarge = BatteryRow{Soc: soc, Power: format.Power(0)}
	default:
		f.BatteryDischarge = BatteryRow{Soc: soc, Power: format.Power(0)}
		f.BatteryCharge = BatteryRow{Soc: soc, Power: format.Power(0)}
	}

	switch {
	case snap.GridPower > e.epsilon:
		f.GridImport = PowerRow{Power: format.Power(snap.GridPower), Active: true}
		f.GridExport = PowerRow{Power: format.Power(0)}
	case snap.GridPower < -e.epsilon:
		f.GridExport = PowerRow{Power: format.Power(-snap.GridPower), Active: true}
		f.GridImport = PowerRow{Power: format.Power(0)}
	default:
		f.GridImport = PowerRow{Power: format.Power(0)}
		f.GridExport = PowerRow{Power: format.Power(0)}
	}

	totalCharge := snap.Loadpoint(0).ChargePower + snap.Loadpoint(1).ChargePower
	f.Loadpoints = PowerRow{
		Power:  format.Power(totalCharge),
		Active: e.active(totalCharge),
	}

	f.InBar = e.alloc.Allocate(e.barWidth, []flow.Segment{
		{Power: positive(snap.PvPower), Tag: "pv", Color: colorGeneration},
		{Power: positive(snap.BatteryPower), Tag: "bat", Color: colorBatteryOut},
		{Power: positive(snap.GridPower), Tag: "grid", Color: colorGridIn},
	}, flow.ModeAbbrev)

	f.OutBar = e.alloc.Allocate(e.barWidth, []flow.Segment{
		{Power: positive(snap.HomePower), Tag: "home", Color: colorHome},
		{Power: positive(totalCharge), Tag: "chg", Color: colorLoadpoint},
		{Power: positive(-snap.BatteryPower), Tag: "bat", Color: colorBatteryIn},
		{Power: positive(-snap.GridPower), Tag: "grid", Color: colorGridOut},
	}, flow.ModeAbbrev)

	f.Car = e.buildCar(snap, now)
	return f
}

func (e *Engine) buildCar(snap telemetry.Snapshot, now time.Time) CarSection {
	idx := e.selector.Active(snap, now)
	lp := snap.Loadpoint(idx)

	car := CarSection{
		Index:        idx,
		Title:        lp.Title,
		VehicleTitle: lp.VehicleTitle,
	}

	switch {
	case lp.Charging:
		car.Status = format.Power(lp.ChargePower)
	case lp.Plugged:
		car.Status = "Verbunden"
	default:
		car.Status = "Nicht verbunden"
	}

	if lp.Soc >= 0 {
		car.SocKnown = true
		car.SocValue = int(lp.Soc)
		car.Soc = format.Percentage(lp.Soc)
		car.Stripe = lp.Charging
	} else {
		car.Soc = "---"
	}

	// Phase indicators only exist while charging; stale currents on an
	// idle session must not light them up.
	if lp.Charging && lp.MaxCurrent > 0 {
		for i := 0; i < 3; i++ {
			if i >= lp.PhasesActive {
				continue
			}
			p := PhaseIndicator{Visible: true}
			p.OfferedWidth = currentWidth(lp.OfferedCurrent, lp.MaxCurrent)
			if lp.ChargeCurrents[i] > 0 {
				p.CurrentWidth = currentWidth(lp.ChargeCurrents[i], lp.MaxCurrent)
				p.CurrentVisible = true
			}
			car.Phases[i] = p
		}
	}

	if lp.EffectivePlanSoc > 0 {
		car.PlanMarker = Marker{
			Visible: true,
			X:       int(lp.EffectivePlanSoc/100*socTrackWidth) - 1,
		}
	}
	if lp.EffectiveLimitSoc >= 0 {
		x := int(lp.EffectiveLimitSoc/100*socTrackWidth) - 3
		if x < 0 {
			x = 0
		}
		if x > socTrackWidth-6 {
			x = socTrackWidth - 6
		}
		car.LimitMarker = Marker{Visible: true, X: x}
	}

	car.Range = format.Distance(lp.VehicleRange)

	if lp.EffectivePlanTime != "" {
		car.PlanTime = format.PlanTime(lp.EffectivePlanTime, now)
		if lp.EffectivePlanSoc >= 0 {
			car.PlanSoc = format.Percentage(lp.EffectivePlanSoc)
		}
	} else {
		car.PlanTime = format.NoPlan
	}

	if lp.EffectiveLimitSoc >= 0 {
		car.LimitSoc = format.Percentage(lp.EffectiveLimitSoc)
	} else {
		car.LimitSoc = "---"
	}

	if lp.PlanProjectedStart != "" {
		car.ProjectedStart = "|--> " + format.PlanTime(lp.PlanProjectedStart, now)
	} else {
		car.ProjectedStart = "--:--"
	}

	return car
}

func positive(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

func (e *Engine) active(power float64) bool {
	if power < 0 {
		power = -power
	}
	return power >= e.epsilon
}

// currentWidth maps a phase current onto the phase track, clamped to the
// track and floored to one pixel for any measurable current.
func currentWidth(current, max float64) int {
	ratio := current / max
	if ratio > 1 {
		ratio = 1
	}
	w := int(ratio * phaseTrackWidth)
	if w < 1 && current > 0.1 {
		w = 1
	}
	return w
}
