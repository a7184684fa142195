package page

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem; color: #24292f; }
nav a { margin-right: 1rem; }
.table1 td { padding: 4px 12px 4px 0; font-family: monospace; }
.error { color: #cf222e; }
.muted { color: #57606a; }
iframe.site { width: 100%; height: 80vh; border: 1px solid #d0d7de; }
</style>
</head>
<body>
<nav><a href="/home">Home</a></nav>
{{if .VisitID}}<div id="view" data-visit="{{.VisitID}}">{{template "view" .View}}</div>{{else}}{{template "view" .View}}{{end}}
{{if .VisitID}}<script>{{template "script"}}</script>{{end}}
</body>
</html>{{end}}`

const viewTemplate = `{{define "view"}}<div class="SitePage">
{{- if eq .Kind "home"}}{{template "home" .}}
{{- else if eq .Kind "invalid"}}<h1>Invalid site URI: {{.SiteURI}}</h1>
{{- else if eq .Kind "found"}}<h1>Site Page</h1>
<div>siteUrl: <a href="{{.SiteURL}}/index.html">{{.SiteURL}}</a></div>
<iframe class="site" src="{{.SiteURL}}/index.html"></iframe>
{{- else if eq .Kind "not_found"}}<h1>Site Not Found</h1>
<table class="table1"><tbody>
<tr><td>URI</td><td>{{.SiteURI}}</td></tr>
<tr><td>URL</td><td>{{.SiteURL}}</td></tr>
</tbody></table>
{{- if .Checking}}<div class="muted">Checking site availability...</div>{{end}}
<hr>
{{- with .Build}}
{{- if .CanRequest}}<button data-action="build">Build site</button>
{{- else if .ErrorMessage}}<div><div>{{.Message}}</div><div class="error">{{.ErrorMessage}}</div></div>
{{- else}}<div>{{.Message}}</div>{{end}}
{{- end}}
{{- else}}<div>Unknown page: {{.Page}}</div>
{{- end}}
</div>{{end}}`

const homeTemplate = `{{define "home"}}{{homeHTML}}
<form action="/s" method="get">
<label>Site URI <input name="site" size="60" placeholder="sha1://..."></label>
<label>Zone <input name="zone" size="12" placeholder="default"></label>
<button type="submit">Open</button>
</form>{{end}}`

// scriptTemplate keeps the site view in sync over the visit websocket and
// posts build requests.
const scriptTemplate = `{{define "script"}}
(function () {
  var root = document.getElementById("view");
  var id = root.dataset.visit;
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws/visits/" + id);
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "view") { root.innerHTML = msg.html; }
  };
  root.addEventListener("click", function (ev) {
    if (ev.target.dataset.action !== "build") { return; }
    ev.target.disabled = true;
    fetch("/api/visits/" + id + "/build", { method: "POST" });
  });
})();
{{end}}`
