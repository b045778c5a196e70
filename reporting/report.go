package reporting

import (
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ipvet/ipvet/config"
	"github.com/ipvet/ipvet/pkg/data"
	htmlTempl "github.com/ipvet/ipvet/reporting/templates"
	"github.com/skratchdot/open-golang/open"
)

//PrintHTML writes an HTML report for a batch summary into a directory
//named after the run and opens it in the default browser. The directory
//name is uniquified rather than overwriting an earlier report.
func PrintHTML(summary *data.BatchSummary, dir string) error {
	outFolder := "ipvet-report"
	if dir != "" {
		outFolder = dir
	}

	//while the folder exists, append the next counter
	base := outFolder
	counter := 1
	for _, err := os.Stat(outFolder); err == nil; _, err = os.Stat(outFolder) {
		outFolder = base + strconv.Itoa(counter)
		counter++
	}

	if err := os.MkdirAll(outFolder, 0755); err != nil {
		return err
	}

	info := htmlTempl.ReportingInfo{
		Version: config.Version,
		RunID:   summary.RunID,
		Started: summary.StartedAt,
		Total:   summary.Total,
		Clean:   summary.Clean,
		Flagged: summary.Flagged,
		Skipped: summary.Skipped,
	}
	for idx := range summary.Reports {
		report := &summary.Reports[idx]
		info.Rows = append(info.Rows, htmlTempl.ReportRow{
			IP:             report.IP,
			Score:          report.UnifiedScore,
			RiskLevel:      report.RiskLevel,
			Recommendation: report.Recommendation,
			ListedBy:       strings.Join(report.Summary.ListedBy, " "),
			DNSBLHits:      strings.Join(report.DNSBLHits, " "),
			Errors:         report.Summary.ProvidersErrored,
		})
	}

	out, err := os.Create(filepath.Join(outFolder, "index.html"))
	if err != nil {
		return err
	}
	defer out.Close()

	templ, err := template.New("report").Parse(htmlTempl.ReportTempl)
	if err != nil {
		return err
	}
	if err := templ.Execute(out, info); err != nil {
		return err
	}

	return open.Run("./" + filepath.Join(outFolder, "index.html"))
}
