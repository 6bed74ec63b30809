package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/evcc-panel/internal/engine"
	"github.com/sweeney/evcc-panel/internal/logstore"
	"github.com/sweeney/evcc-panel/internal/status"
	"github.com/sweeney/evcc-panel/internal/telemetry"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *logstore.Store) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		EvccURL:     "http://evcc.local:7070",
		PollMs:      10000,
		RotationMs:  10000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":8080",
		LogCapacity: 32,
		LogMinLevel: "ERR",
	}
	tr := status.NewTracker(start, cfg)
	logs := logstore.New(32, logstore.LevelError)
	srv := New(":0", tr, logs)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, logs
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestStatusEndpoint(t *testing.T) {
	ts, tr, logs := newTestServer(t)

	snap := telemetry.EmptySnapshot()
	snap.GridPower = -1200
	snap.PvPower = 4300
	snap.BatterySoc = 76
	snap.LastUpdate = time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	tr.Update(snap, engine.Frame{})
	tr.SetMQTTConnected(true)
	logs.Record(logstore.LevelInfo, "hello")

	resp, body := get(t, ts.URL+"/status")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	var sj StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.Evcc.GridPower != -1200 || sj.Status.Evcc.PvPower != 4300 {
		t.Errorf("evcc block: got %+v", sj.Status.Evcc)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("mqtt should be connected")
	}
	if sj.Status.Log.Total != 1 || sj.Status.Log.Count != 1 {
		t.Errorf("log block: got %+v", sj.Status.Log)
	}
	if sj.Status.Log.MinLevel != "ERR" {
		t.Errorf("min level: got %q", sj.Status.Log.MinLevel)
	}
	if sj.Status.Config.EvccURL != "http://evcc.local:7070" {
		t.Errorf("config: got %+v", sj.Status.Config)
	}
}

func TestIndexPage(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	snap := telemetry.EmptySnapshot()
	snap.PvPower = 4300
	tr.Update(snap, engine.Frame{})

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "EVCC Panel") {
		t.Error("index page missing title")
	}
	if !strings.Contains(body, "4300 W") {
		t.Error("index page missing pv power")
	}
	if !strings.Contains(body, "/frame.json") {
		t.Error("index page missing frame link")
	}
}

func TestLogsPageAndFilter(t *testing.T) {
	ts, _, logs := newTestServer(t)
	logs.Record(logstore.LevelError, "an error happened")
	logs.Record(logstore.LevelInfo, "an info line")
	logs.Record(logstore.LevelVerbose, "a verbose line")

	_, body := get(t, ts.URL+"/logs")
	for _, want := range []string{"an error happened", "an info line", "a verbose line"} {
		if !strings.Contains(body, want) {
			t.Errorf("unfiltered logs missing %q", want)
		}
	}

	// level=info keeps info and more verbose records, hides the error.
	_, body = get(t, ts.URL+"/logs?level=info")
	if strings.Contains(body, "an error happened") {
		t.Error("filtered logs should not contain the error record")
	}
	if !strings.Contains(body, "an info line") || !strings.Contains(body, "a verbose line") {
		t.Error("filtered logs missing expected records")
	}
}

func TestFrameEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	resp, _ := get(t, ts.URL+"/frame.json")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("before first tick: got %d, want 503", resp.StatusCode)
	}

	frame := engine.Frame{Generation: engine.GenerationRow{Power: "4.3kW", Active: true}}
	tr.Update(telemetry.EmptySnapshot(), frame)

	resp, body := get(t, ts.URL+"/frame.json")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	var decoded engine.Frame
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if decoded.Generation.Power != "4.3kW" || !decoded.Generation.Active {
		t.Errorf("frame: got %+v", decoded.Generation)
	}
}

func TestDebugToggle(t *testing.T) {
	ts, _, logs := newTestServer(t)
	if logs.Echo() {
		t.Fatal("echo should start off")
	}

	_, body := get(t, ts.URL+"/debug/toggle")
	if !logs.Echo() {
		t.Error("toggle should enable echo")
	}
	if !strings.Contains(body, "ON") {
		t.Error("toggle page should report the new state")
	}

	get(t, ts.URL+"/debug/toggle")
	if logs.Echo() {
		t.Error("second toggle should disable echo")
	}
}

func TestNotFound(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := get(t, ts.URL+"/nope")
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
