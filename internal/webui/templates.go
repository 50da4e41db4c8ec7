package webui

// Page templates, simple HTML without external assets. The widget bootstrap
// script is emitted at most once per page, and only when a card actually
// rendered a widget.
const pagesTpl = `
{{define "head"}}<!doctype html>
<html lang="en">
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>second brain</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto;max-width:1100px;margin:0 auto;padding:1rem;background:#fafafa}
header{display:flex;justify-content:space-between;align-items:center;margin-bottom:1rem;gap:12px}
.grid{display:grid;grid-template-columns:repeat(auto-fill,minmax(320px,1fr));gap:16px}
.card{background:#fff;border:1px solid #ddd;border-radius:8px;padding:12px}
.card h3{margin:0 0 8px 0}
.card iframe{width:100%;aspect-ratio:16/9;border:0;border-radius:6px}
.tag{display:inline-block;background:#eef;border-radius:10px;padding:2px 8px;margin:2px;font-size:.85em}
.muted,small{color:#666}
.banner{padding:8px 12px;border-radius:6px;margin-bottom:12px}
.banner.ok{background:#e6f6e6}
.banner.err{background:#fbe9e9}
.filters a{margin-right:8px}
.filters a.active{font-weight:700}
form.add{background:#fff;border:1px solid #ddd;border-radius:8px;padding:12px;margin-bottom:16px}
form.add input,form.add select{margin:4px 8px 4px 0}
form.inline{display:inline}
</style>
{{end}}

{{define "card"}}
<div class="card">
  <h3>{{.Title}}</h3>
  <small class="muted">{{.Kind}}</small>
  {{if .VideoID}}
  <iframe src="https://www.youtube.com/embed/{{.VideoID}}" title="{{.Title}}" allowfullscreen></iframe>
  {{else if .Widget}}
  <div id="{{.MountID}}">{{.Widget}}</div>
  {{else}}
  <p><a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.URL}}</a></p>
  {{end}}
  {{if .Tags}}<div>{{range .Tags}}<span class="tag">#{{.}}</span>{{end}}</div>{{end}}
</div>
{{end}}

{{define "widgetscript"}}<script async src="https://platform.twitter.com/widgets.js" charset="utf-8"></script>{{end}}

{{define "signin"}}{{template "head" .}}
<h1>Sign in</h1>
{{if .Created}}<div class="banner ok">Account created, sign in below.</div>{{end}}
{{if .Error}}<div class="banner err">{{.Error}}</div>{{end}}
<form method="post" action="/signin">
  <p><input name="username" placeholder="Username" autofocus></p>
  <p><input name="password" type="password" placeholder="Password"></p>
  <p><button type="submit">Sign in</button></p>
</form>
<p><a href="/signup">Need an account? Sign up</a></p>
</html>
{{end}}

{{define "signup"}}{{template "head" .}}
<h1>Sign up</h1>
{{if .Error}}<div class="banner err">{{.Error}}</div>{{end}}
<form method="post" action="/signup">
  <p><input name="username" placeholder="Username" autofocus></p>
  <p><input name="password" type="password" placeholder="Password"></p>
  <p><button type="submit">Sign up</button></p>
</form>
<p><a href="/signin">Already registered? Sign in</a></p>
</html>
{{end}}

{{define "dashboard"}}{{template "head" .}}
<header>
  <h1>All Content</h1>
  <nav class="filters">
    <a href="/?filter=all" {{if eq .Filter "all"}}class="active"{{end}}>All</a>
    <a href="/?filter=social-post" {{if eq .Filter "social-post"}}class="active"{{end}}>Posts</a>
    <a href="/?filter=video" {{if eq .Filter "video"}}class="active"{{end}}>Videos</a>
  </nav>
  <div>
    <form class="inline" method="post" action="/share"><button type="submit">Share Brain</button></form>
    <form class="inline" method="post" action="/share/off"><button type="submit">Stop Sharing</button></form>
    <a href="/signout">Sign out</a>
  </div>
</header>

{{if .ShareURL}}<div class="banner ok">Shareable link: <a href="{{.ShareURL}}">{{.ShareURL}}</a></div>{{end}}
{{if .ShareErr}}<div class="banner err">Failed to generate share link</div>{{end}}
{{if .AddErr}}<div class="banner err">{{.AddErr}}</div>{{end}}

<form class="add" method="post" action="/content">
  <input name="title" placeholder="Title">
  <input name="url" placeholder="https://...">
  <select name="kind">
    <option value="social-post">social post</option>
    <option value="video">video</option>
  </select>
  <input name="tags" list="known-tags" placeholder="tags, comma separated">
  <datalist id="known-tags">{{range .Tags}}<option value="{{.}}">{{end}}</datalist>
  <button type="submit">Add Content</button>
</form>

{{if .Items}}
<div class="grid">
{{range .Items}}
  <div>
  {{template "card" .}}
  <form class="inline" method="post" action="/content/{{.ID}}/delete"><button type="submit">Delete</button></form>
  </div>
{{end}}
</div>
{{else}}
<p class="muted">No content yet. Start building your second brain by adding some content!</p>
{{end}}
{{if .HasWidgets}}{{template "widgetscript"}}{{end}}
</html>
{{end}}

{{define "shared"}}{{template "head" .}}
<header><h1>Shared collection</h1></header>
{{if .Items}}
<div class="grid">
{{range .Items}}{{template "card" .}}{{end}}
</div>
{{else}}
<p class="muted">Nothing here.</p>
{{end}}
{{if .HasWidgets}}{{template "widgetscript"}}{{end}}
</html>
{{end}}
`
