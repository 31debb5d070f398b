package view

import (
	"html/template"
	"io"
)

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

// RenderHTML 渲染完整页面
func RenderHTML(w io.Writer, p Page) error {
	return pageTmpl.ExecuteTemplate(w, "page", p)
}

// RenderFragment 只渲染 #app 内部，websocket 推送用
func RenderFragment(w io.Writer, p Page) error {
	return pageTmpl.ExecuteTemplate(w, "body", p)
}

const pageHTML = `{{define "body"}}
<nav class="nav">
  <a class="brand" href="/">{{.Brand}}</a>
  {{range .Links}}<a class="link" href="{{.Href}}">{{.Label}}</a>{{end}}
  <span class="spacer"></span>
  {{if .ShowConnect}}<button id="connect" onclick="connectWallet()">Connect</button>{{else}}<span class="addr">{{.Address}}</span>{{end}}
</nav>
<main>
  <div class="card">
    <div class="muted">{{.Status}}</div>
    <div class="balance">{{.BalanceLine}}</div>
    {{if .BalanceEther}}<div class="muted">≈ {{.BalanceEther}} ETH</div>{{end}}
    {{if .Error}}<div class="err">{{.Error}}</div>{{end}}
  </div>
  {{with .Approval}}
  <div class="card approval">
    <div><b>{{.Origin}}</b> 请求访问账户 <code>{{.Account}}</code></div>
    <div class="row">
      <button onclick="decide('{{.ID}}', true)">Approve</button>
      <button onclick="decide('{{.ID}}', false)">Reject</button>
    </div>
  </div>
  {{end}}
  <div class="card order">
    <h3>{{.OrderTitle}}</h3>
  </div>
</main>
{{end}}
{{define "page"}}<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>{{.Brand}}</title>
  <style>
    body { font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; margin: 0; }
    .nav { display:flex; gap: 16px; align-items:center; padding: 12px 16px; border-bottom: 1px solid #eee; }
    .brand { font-weight: 700; text-decoration: none; color: #111; }
    .link { color: #444; text-decoration: none; }
    .spacer { flex: 1; }
    .addr { font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace; font-size: 13px; }
    main { padding: 16px; display:grid; gap: 12px; max-width: 640px; }
    .card { padding: 12px; border: 1px solid #eee; border-radius: 8px; }
    .balance { font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace; font-size: 18px; margin: 6px 0; }
    .muted { color:#666; font-size: 12px; }
    .err { color:#b00020; font-size: 13px; }
    .row { display:flex; gap: 8px; margin-top: 8px; }
    .approval { background: #fffbe6; }
  </style>
</head>
<body>
<div id="app">{{template "body" .}}</div>
<script>
async function post(path, body) {
  const res = await fetch(path, {method: 'POST', headers: {'Content-Type':'application/json'}, body: body ? JSON.stringify(body) : undefined});
  if (!res.ok) {
    const data = await res.json().catch(() => ({}));
    console.warn(path, res.status, data.error || '');
  }
}
function connectWallet() { post('/api/session/connect'); }
function decide(id, approve) { post('/api/wallet/approvals/' + encodeURIComponent(id), {approve: approve}); }
function listen() {
  const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  const ws = new WebSocket(proto + location.host + '/ws');
  ws.onmessage = (ev) => { document.getElementById('app').innerHTML = ev.data; };
  ws.onclose = () => setTimeout(listen, 1000);
}
listen();
</script>
</body>
</html>
{{end}}`
