package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/evcc-panel/internal/logstore"
	"github.com/sweeney/evcc-panel/internal/status"
)

// StatusJSON is the top-level JSON envelope for the /status endpoint.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	DebugEnabled  bool       `json:"debug_enabled"`
	Fetch         FetchJSON  `json:"fetch"`
	MQTT          MQTTStatus `json:"mqtt"`
	Log           LogJSON    `json:"log"`
	Evcc          EvccJSON   `json:"evcc"`
	Config        ConfigJSON `json:"config"`
}

// FetchJSON reports poll health.
type FetchJSON struct {
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastError           string `json:"last_error,omitempty"`
	LastUpdate          string `json:"last_update,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// LogJSON is the log ring's observability block.
type LogJSON struct {
	Total      uint64 `json:"total"`
	Count      int    `json:"count"`
	Overwrites uint64 `json:"overwrites"`
	Dropped    uint64 `json:"dropped"`
	MinLevel   string `json:"min_level"`
}

// EvccJSON carries the current raw power readings.
type EvccJSON struct {
	GridPower    float64 `json:"gridPower"`
	PvPower      float64 `json:"pvPower"`
	HomePower    float64 `json:"homePower"`
	BatteryPower float64 `json:"batteryPower"`
	BatterySoc   float64 `json:"batterySoc"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	EvccURL     string `json:"evcc_url"`
	PollMs      int64  `json:"poll_ms"`
	RotationMs  int64  `json:"rotation_ms"`
	Broker      string `json:"broker,omitempty"`
	HTTPAddr    string `json:"http_addr"`
	LogCapacity int    `json:"log_capacity"`
	LogMinLevel string `json:"log_min_level"`
}

func formatStatus(v status.View, stats logstore.Stats, echo bool) []byte {
	inner := StatusInner{
		UptimeSeconds: int64(v.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     v.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     v.Now.UTC().Format(time.RFC3339),
		DebugEnabled:  echo,
		Fetch: FetchJSON{
			ConsecutiveFailures: v.FetchFailures,
			LastError:           v.LastFetchErr,
		},
		MQTT: MQTTStatus{Connected: v.MQTTConnected, Broker: v.Config.Broker},
		Log: LogJSON{
			Total:      stats.Total,
			Count:      stats.Count,
			Overwrites: stats.Overwrites,
			Dropped:    stats.Dropped,
			MinLevel:   stats.MinLevel.String(),
		},
		Evcc: EvccJSON{
			GridPower:    v.Telemetry.GridPower,
			PvPower:      v.Telemetry.PvPower,
			HomePower:    v.Telemetry.HomePower,
			BatteryPower: v.Telemetry.BatteryPower,
			BatterySoc:   v.Telemetry.BatterySoc,
		},
		Config: ConfigJSON{
			EvccURL:     v.Config.EvccURL,
			PollMs:      v.Config.PollMs,
			RotationMs:  v.Config.RotationMs,
			Broker:      v.Config.Broker,
			HTTPAddr:    v.Config.HTTPAddr,
			LogCapacity: v.Config.LogCapacity,
			LogMinLevel: v.Config.LogMinLevel,
		},
	}
	if !v.LastUpdate.IsZero() {
		inner.Fetch.LastUpdate = v.LastUpdate.UTC().Format(time.RFC3339)
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
