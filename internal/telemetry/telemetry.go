// Package telemetry defines the polled evcc state snapshot and the HTTP
// client that fetches it. The rest of the daemon treats a Snapshot as an
// immutable input for one render tick.
package telemetry

import "time"

// Loadpoint is one EV charging connection point. evcc reports up to two.
type Loadpoint struct {
	Soc          float64 `json:"soc"` // percent, -1 unknown
	ChargePower  float64 `json:"chargePower"`
	Title        string  `json:"title"`
	VehicleTitle string  `json:"vehicletitle"`
	Charging     bool    `json:"charging"`
	Plugged      bool    `json:"plugged"`
	VehicleRange float64 `json:"vehicleRange"` // km, -1 unknown

	EffectivePlanTime  string  `json:"effectivePlanTime"`  // ISO-8601, may be empty
	PlanProjectedStart string  `json:"planProjectedStart"` // ISO-8601, may be empty
	EffectivePlanSoc   float64 `json:"effectivePlanSoc"`   // percent, -1 unset
	EffectiveLimitSoc  float64 `json:"effectiveLimitSoc"`  // percent, -1 unset

	ChargeCurrents [3]float64 `json:"chargeCurrents"` // amps per phase
	MaxCurrent     float64    `json:"maxCurrent"`
	OfferedCurrent float64    `json:"offeredCurrent"`
	PhasesActive   int        `json:"phasesActive"` // 0–3
}

// Forecast carries the solar forecast fields used on the generation row.
type Forecast struct {
	Scale       float64 `json:"scale"`       // multiplier, default 1.0
	TodayEnergy float64 `json:"todayEnergy"` // watt-hours
}

// Snapshot is one polled view of the evcc state. Signed powers carry
// direction: negative grid is export, negative battery is charging.
type Snapshot struct {
	GridPower    float64 `json:"gridPower"`
	PvPower      float64 `json:"pvPower"`
	HomePower    float64 `json:"homePower"`
	BatteryPower float64 `json:"batteryPower"`
	BatterySoc   float64 `json:"batterySoc"` // percent, -1 unknown

	Solar      Forecast    `json:"solar"`
	Loadpoints []Loadpoint `json:"loadpoints"`

	// Fetch bookkeeping, owned by the client.
	LastUpdate          time.Time `json:"-"`
	ConsecutiveFailures int       `json:"-"`
}

// EmptySnapshot returns a snapshot with the unknown-value sentinels set,
// matching what the panel shows before the first successful poll.
func EmptySnapshot() Snapshot {
	return Snapshot{
		BatterySoc: -1,
		Solar:      Forecast{Scale: 1},
		Loadpoints: []Loadpoint{emptyLoadpoint(), emptyLoadpoint()},
	}
}

func emptyLoadpoint() Loadpoint {
	return Loadpoint{Soc: -1, VehicleRange: -1, EffectivePlanSoc: -1, EffectiveLimitSoc: -1}
}

// Loadpoint returns the session at index i, or an empty session when evcc
// reported fewer loadpoints. The engine always addresses exactly two.
func (s Snapshot) Loadpoint(i int) Loadpoint {
	if i < 0 || i >= len(s.Loadpoints) {
		return emptyLoadpoint()
	}
	return s.Loadpoints[i]
}
