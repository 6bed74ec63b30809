package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/evcc-panel/internal/logstore"
	"github.com/sweeney/evcc-panel/internal/status"
)

var tmplFuncs = template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"watts": func(w float64) string {
		return fmt.Sprintf("%.0f W", w)
	},
}

var indexTmpl = template.Must(template.New("index").Funcs(tmplFuncs).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>EVCC Panel</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.err { color: red; font-weight: bold; }
.idle { color: #888; }
.btn { display: inline-block; padding: 6px 14px; background: #2196F3; color: white; border-radius: 4px; text-decoration: none; margin-right: 6px; }
</style>
</head>
<body>
<h1>EVCC Panel</h1>

<h2>Power</h2>
<table>
<tr><th>Grid</th><td>{{watts .Telemetry.GridPower}}</td></tr>
<tr><th>PV</th><td>{{watts .Telemetry.PvPower}}</td></tr>
<tr><th>Home</th><td>{{watts .Telemetry.HomePower}}</td></tr>
<tr><th>Battery</th><td>{{watts .Telemetry.BatteryPower}} ({{printf "%.0f" .Telemetry.BatterySoc}}%)</td></tr>
</table>

<h2>Fetch</h2>
<table>
<tr><th>evcc</th><td>{{.Config.EvccURL}}</td></tr>
<tr><th>Health</th><td class="{{if eq .FetchFailures 0}}ok{{else}}err{{end}}">{{if eq .FetchFailures 0}}ok{{else}}{{.FetchFailures}} consecutive failures{{end}}</td></tr>
{{if .LastFetchErr}}<tr><th>Last error</th><td class="err">{{.LastFetchErr}}</td></tr>{{end}}
{{if not .LastUpdate.IsZero}}<tr><th>Last update</th><td>{{.LastUpdate.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}ok{{else}}err{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{else}}<tr><th>MQTT</th><td class="idle">disabled</td></tr>{{end}}
</table>

<h2>Log</h2>
<table>
<tr><th>Stored</th><td>{{.LogStats.Count}}</td></tr>
<tr><th>Total</th><td>{{.LogStats.Total}}</td></tr>
<tr><th>Overwrites</th><td>{{.LogStats.Overwrites}}</td></tr>
<tr><th>Dropped</th><td>{{.LogStats.Dropped}}</td></tr>
<tr><th>Debug echo</th><td>{{if .Echo}}ON{{else}}OFF{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Rotation</th><td>{{.Config.RotationMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p>
<a class="btn" href="/logs">Logs</a>
<a class="btn" href="/status">JSON</a>
<a class="btn" href="/frame.json">Frame</a>
<a class="btn" href="/debug/toggle">Toggle Debug</a>
</p>
</body>
</html>
`

type indexData struct {
	status.View
	Uptime   time.Duration
	LogStats logstore.Stats
	Echo     bool
}

func renderIndex(w io.Writer, v status.View, stats logstore.Stats, echo bool) {
	indexTmpl.Execute(w, indexData{
		View:     v,
		Uptime:   v.Uptime(),
		LogStats: stats,
		Echo:     echo,
	})
}

var logsTmpl = template.Must(template.New("logs").Funcs(tmplFuncs).Parse(logsHTML))

const logsHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>EVCC Panel Logs</title>
<style>
body { font-family: monospace; margin: 20px; background: #1e1e1e; color: #d4d4d4; }
h1 { color: #4CAF50; margin-top: 0; }
.meta { font-size: 11px; color: #888; margin-bottom: 10px; }
.log { background: #2d2d30; padding: 6px 10px; margin: 4px 0; border-left: 3px solid #4CAF50; font-size: 12px; line-height: 1.4; }
.timestamp { color: #8ab4f8; font-weight: bold; margin-right: 6px; }
.lvl { display: inline-block; font-size: 10px; padding: 2px 4px; border-radius: 3px; margin-right: 4px; }
.lvl.ERR { background: #b71c1c; color: #fff; }
.lvl.WRN { background: #ff9800; color: #000; }
.lvl.INF { background: #2196f3; color: #fff; }
.lvl.DBG { background: #455a64; color: #fff; }
.lvl.VRB { background: #607d8b; color: #fff; }
.message { color: #e0e0e0; white-space: pre-wrap; word-break: break-word; }
a { color: #4CAF50; text-decoration: none; }
</style>
</head>
<body>
<h1>Debug Logs</h1>
<div class="meta"><a href="/">&larr; Back</a> |
Filter: <a href="/logs?level=error">ERR</a> <a href="/logs?level=warn">WRN</a> <a href="/logs?level=info">INF</a> <a href="/logs?level=debug">DBG</a> <a href="/logs?level=verbose">VRB</a></div>
<p>Total:{{.Stats.Total}} Visible:{{len .Records}} Overwrites:{{.Stats.Overwrites}} Dropped:{{.Stats.Dropped}} MinLevel:{{.Stats.MinLevel}}</p>
{{range .Records}}<div class="log">
<span class="timestamp">{{if .Epoch.IsZero}}[{{ms .Since}} ms]{{else}}[{{.Epoch.Format "2006-01-02 15:04:05"}}]{{end}}</span><span class="lvl {{.Level}}">{{.Level}}</span>
<span class="message">{{.Message}}</span>
</div>
{{end}}
</body>
</html>
`

type logsData struct {
	Records []logstore.Record
	Stats   logstore.Stats
}

func renderLogs(w io.Writer, records []logstore.Record, stats logstore.Stats) {
	logsTmpl.Execute(w, logsData{Records: records, Stats: stats})
}

var debugTmpl = template.Must(template.New("debug").Parse(debugHTML))

const debugHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="2;url=/">
<title>Debug Toggle</title>
<style>body { font-family: monospace; margin: 50px; text-align: center; } h1 { color: #4CAF50; }</style>
</head>
<body>
<h1>Debug echo is now {{.}}</h1>
<p>Redirecting to status page...</p>
</body>
</html>
`

func renderDebugToggle(w io.Writer, state string) {
	debugTmpl.Execute(w, state)
}
