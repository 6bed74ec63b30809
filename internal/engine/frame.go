package engine

import (
	"time"

	"github.com/sweeney/evcc-panel/internal/flow"
)

// Frame is one renderer-agnostic snapshot of everything the panel paints.
// The renderer maps Active flags to its value/secondary text colors; bar
// segment geometry and label contrast are already resolved.
type Frame struct {
	Generation  GenerationRow `json:"generation"`
	Consumption PowerRow      `json:"consumption"`

	BatteryDischarge BatteryRow `json:"batteryDischarge"`
	BatteryCharge    BatteryRow `json:"batteryCharge"`

	GridImport PowerRow `json:"gridImport"`
	GridExport PowerRow `json:"gridExport"`

	// Loadpoints is the combined charging power of both sessions.
	Loadpoints PowerRow `json:"loadpoints"`

	// InBar stacks the flows into the house: pv, battery discharge,
	// grid import. OutBar stacks the flows out of it: home consumption,
	// ev charging, battery charge, grid export.
	InBar  flow.Layout `json:"inBar"`
	OutBar flow.Layout `json:"outBar"`

	Car CarSection `json:"car"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// GenerationRow is the PV row: current power plus the scaled solar
// forecast for today.
type GenerationRow struct {
	Power    string `json:"power"`
	Forecast string `json:"forecast"`
	Active   bool   `json:"active"`
}

// PowerRow is a plain power reading with an activity flag.
type PowerRow struct {
	Power  string `json:"power"`
	Active bool   `json:"active"`
}

// BatteryRow carries the battery SOC next to the directional power.
type BatteryRow struct {
	Soc    string `json:"soc"`
	Power  string `json:"power"`
	Active bool   `json:"active"`
}

// CarSection is the lower panel for the selected charging session.
type CarSection struct {
	Index        int    `json:"index"` // 0 or 1
	Title        string `json:"title"`
	VehicleTitle string `json:"vehicleTitle"`

	// Status is the charge power while charging, otherwise a
	// plugged/unplugged phrase.
	Status string `json:"status"`

	SocKnown bool   `json:"socKnown"`
	SocValue int    `json:"socValue"` // bar position, 0–100
	Soc      string `json:"soc"`
	// Stripe marks the SOC bar with the charging animation pattern.
	Stripe bool `json:"stripe"`

	Phases [3]PhaseIndicator `json:"phases"`

	PlanMarker  Marker `json:"planMarker"`
	LimitMarker Marker `json:"limitMarker"`

	Range          string `json:"range"`
	PlanTime       string `json:"planTime"`
	PlanSoc        string `json:"planSoc"`
	LimitSoc       string `json:"limitSoc"`
	ProjectedStart string `json:"projectedStart"`
}

// PhaseIndicator is one phase track: the offered-current bar over the
// actual-current bar, both proportional to the maximum current.
type PhaseIndicator struct {
	Visible        bool `json:"visible"`
	OfferedWidth   int  `json:"offeredWidth"`
	CurrentWidth   int  `json:"currentWidth"`
	CurrentVisible bool `json:"currentVisible"`
}

// Marker is a vertical marker positioned on the SOC track.
type Marker struct {
	Visible bool `json:"visible"`
	X       int  `json:"x"`
}
