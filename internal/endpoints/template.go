package endpoints

const indexTemplate = `<!DOCTYPE html>
<html>
<head>
  <title>GCP Project Health</title>
  <style>
    body { font-family: sans-serif; margin: 2em; }
    table { border-collapse: collapse; margin-top: 1em; }
    th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
    th { background: #f0f0f0; }
    .error { color: #b00020; }
  </style>
</head>
<body>
  <h1>GCP Project Health (last 10 minutes)</h1>

  <form method="post" action="/">
    <label for="project_id">Project:</label>
    <select name="project_id" id="project_id">
      {{range .Projects}}<option value="{{.}}">{{.}}</option>
      {{end}}</select>
    <button type="submit">Check</button>
  </form>

  <h2>Monitored projects</h2>
  <table>
    <tr><th>Project</th></tr>
    {{range .Projects}}<tr><td>{{.}}</td></tr>
    {{end}}</table>

  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}

  {{with .Result}}
  <h2>Results for {{.Project}}</h2>
  <p>Average CPU Utilization: {{.CPUAvg}}</p>
  <p>Average Memory Used: {{.MemAvg}}</p>
  <p>RUNNING VMs: {{.VMCount}}</p>
  {{if .Instances}}
  <table>
    <tr><th>Instance</th><th>Zone</th><th>Type</th><th>CPU%</th><th>MEM%</th></tr>
    {{range .Instances}}<tr><td>{{.Instance}}</td><td>{{.Zone}}</td><td>{{.MachineType}}</td><td>{{.CPUUtilizationPct}}</td><td>{{.MemoryUsedPct}}</td></tr>
    {{end}}</table>
  {{else if .VMCount}}
  <p>No per-instance metrics found (ensure Ops Agent is installed).</p>
  {{end}}
  {{end}}
</body>
</html>
`
