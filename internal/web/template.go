package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/eye-badge/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
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
	"lower": func(v any) string {
		return strings.ToLower(fmt.Sprint(v))
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Eye Badge</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: green; font-weight: bold; }
.idle { color: #888; }
.booting, .off { color: orange; }
.red { color: #c00; }
.green { color: #080; }
.yellow { color: #b80; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Eye Badge</h1>

<h2>State</h2>
<table>
<tr><th>Power</th><td class="{{lower .Power}}">{{.Power}}</td></tr>
<tr><th>Mode</th><td class="{{lower .Mode}}">{{.Mode}}</td></tr>
<tr><th>Last event</th><td>{{if .LastEvent}}{{.LastEvent}} at {{.LastEventAt}}{{else}}none{{end}}</td></tr>
</table>

<h2>Counters</h2>
<table>
<tr><th>Activations</th><td>{{.Counters.Activations}}</td></tr>
<tr><th>Mode changes</th><td>{{.Counters.ModeChanges}}</td></tr>
<tr><th>Watchdog pets</th><td>{{.Counters.Pets}}</td></tr>
<tr><th>Active ticks</th><td>{{.Counters.ActiveTicks}}</td></tr>
<tr><th>Idle ticks</th><td>{{.Counters.IdleTicks}}</td></tr>
<tr><th>Dropped LED writes</th><td>{{.Counters.DroppedWrites}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
{{if .MQTTDropped}}<tr><th>MQTT dropped</th><td>{{.MQTTDropped}}</td></tr>{{end}}
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Boot</th><td>{{.BootID}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Buttons</th><td>{{.Config.Chip}} on={{.Config.PinOn}} mode={{.Config.PinMode}}</td></tr>
<tr><th>PWM</th><td>{{.Config.PWMHz}}Hz max={{.Config.MaxDuty}}</td></tr>
<tr><th>Watchdog</th><td>{{.Config.Watchdog}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
