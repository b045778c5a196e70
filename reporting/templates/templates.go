package templates

//ReportingInfo fills the report template
type ReportingInfo struct {
	Version string
	RunID   string
	Started string
	Total   int
	Clean   int
	Flagged int
	Skipped int
	Rows    []ReportRow
}

//ReportRow is one IP's verdict in the report table
type ReportRow struct {
	IP             string
	Score          int
	RiskLevel      string
	Recommendation string
	ListedBy       string
	DNSBLHits      string
	Errors         int
}

//ReportTempl is the base batch report template
var ReportTempl = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>ipvet batch report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 0.3em 0.8em; text-align: left; }
th { background: #eee; }
tr.critical td { background: #f8d0d0; }
tr.high td { background: #fae3cd; }
tr.medium td { background: #faf3cd; }
</style>
</head>
<body>
<h1>ipvet batch report</h1>
<p>Run {{.RunID}} started {{.Started}} (ipvet {{.Version}})</p>
<p>{{.Total}} addresses: {{.Clean}} clean, {{.Flagged}} flagged, {{.Skipped}} skipped</p>
<table>
<tr><th>IP</th><th>Score</th><th>Risk</th><th>Recommendation</th><th>Listed By</th><th>DNSBL</th><th>Errors</th></tr>
{{range .Rows}}<tr class="{{.RiskLevel}}"><td>{{.IP}}</td><td>{{.Score}}</td><td>{{.RiskLevel}}</td><td>{{.Recommendation}}</td><td>{{.ListedBy}}</td><td>{{.DNSBLHits}}</td><td>{{.Errors}}</td></tr>
{{end}}</table>
</body>
</html>
`
