package render

// DashboardTemplate is the HTML page of the dashboard. Every control is a
// plain form post so the page works without scripts; app.js only reloads
// the page when the server broadcasts a state change.
const DashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
<div class="app-container">
  <div class="content-wrapper">
    <h1 class="main-title">{{.Title}}</h1>

    <div class="card" id="categories">
      <h2 class="section-title">Select Categories (Multiple Selection)</h2>
      <div class="category-grid">
        {{- range .Categories}}
        <form method="post" action="/toggle/{{.Path}}" class="checkbox-container">
          <label>
            <input type="checkbox" class="checkbox-input" name="category" value="{{.Name}}"{{if .Checked}} checked{{end}} onchange="this.form.submit()">
            <span class="checkbox-label" style="border-color: {{.Color}}">{{.Name}}</span>
          </label>
          <noscript><button type="submit">Toggle</button></noscript>
        </form>
        {{- end}}
      </div>
      {{- if .HasSelection}}
      <form method="post" action="/clear">
        <button type="submit" class="clear-button">Clear All Selections</button>
      </form>
      {{- end}}
    </div>

    {{- if .Loading}}
    <div class="card loading-container" id="loading">
      <div class="spinner"></div>
      <p>Loading data...</p>
    </div>
    {{- end}}

    {{- if .Error}}
    <div class="error-box" id="error">
      <p><strong>Error:</strong> {{.Error}}</p>
      <p class="error-hint">{{.Hint}}</p>
      <form method="post" action="/reload">
        <button type="submit" class="reload-button">Retry</button>
      </form>
    </div>
    {{- end}}

    {{- if .ShowComparison}}
    <div class="card" id="comparison">
      <h2 class="section-title">{{.ComparisonTitle}}</h2>
      <div class="chart-container">{{.ChartSVG}}</div>
      {{- if .Table.Rows}}
      <div class="table-container">
        <table class="data-table">
          <thead>
            <tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr>
          </thead>
          <tbody>
            {{- range .Table.Rows}}
            <tr>{{range $i, $cell := .}}{{if eq $i 0}}<td><strong>{{$cell}}</strong></td>{{else}}<td>{{$cell}}</td>{{end}}{{end}}</tr>
            {{- end}}
          </tbody>
        </table>
      </div>
      {{- end}}
    </div>
    {{- end}}

    {{- if .ShowEmpty}}
    <div class="card" id="empty">
      <p class="empty-hint">Select one or more categories above to view data</p>
    </div>
    {{- end}}
  </div>
</div>
<script src="/static/app.js"></script>
</body>
</html>
`
