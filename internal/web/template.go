package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gpiod/internal/status"
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
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>gpiod</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.connected { color: green; }
.disconnected { color: red; }
.idle { color: #888; }
</style>
</head>
<body>
<h1>gpiod{{if .Config.Mock}} (mock){{end}}</h1>

<h2>Client</h2>
<table>
{{if .Session}}<tr><th>Session</th><td id="session" class="connected">{{.Session.ID}}</td></tr>
<tr><th>Connected since</th><td>{{stamp .Session.Since}}</td></tr>
<tr><th>Commands</th><td>{{.Session.Commands}}</td></tr>
{{else}}<tr><th>Session</th><td id="session" class="idle">none</td></tr>
{{end}}<tr><th>Sessions served</th><td>{{.Sessions}}</td></tr>
<tr><th>Commands total</th><td>{{.Commands}}</td></tr>
<tr><th>Errors</th><td>{{.Errors}}</td></tr>
</table>

<h2>Interrupts</h2>
<table>
<tr><th>Name</th><td>pin / fired / suppressed / last</td></tr>
{{range .Interrupts}}<tr><th>{{.Name}}</th><td>{{.Pin}} / {{.Fired}} / {{.Suppressed}} / {{stamp .LastFired}}</td></tr>
{{else}}<tr><th>none configured</th><td></td></tr>
{{end}}</table>

<h2>Display</h2>
<table>
<tr><th>Initialized</th><td>{{if .DisplayReady}}yes{{else}}no{{end}}</td></tr>
<tr><th>Pins</th><td>DI {{.Config.LCDDI}}, LED {{.Config.LCDLED}}, CS {{.Config.LCDCS}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{stamp .StartTime}}</td></tr>
<tr><th>Socket</th><td>{{.Config.Socket}}</td></tr>
<tr><th>Idle timeout</th><td>{{if eq .Config.IdleTimeoutMs 0}}disabled{{else}}{{.Config.IdleTimeoutMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
