package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ipvet/ipvet/pkg/data"
	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// helper functions for formatting integers and booleans
func i(i int) string {
	return strconv.Itoa(i)
}

func yn(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

//showReportJSON prints a unified report as indented JSON
func showReportJSON(report *data.UnifiedReport) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

var providerHeaders = []string{"Provider", "Score", "Listed", "Tor", "Proxy", "VPN", "Cached", "Error"}

func providerRow(result *data.ProviderResult) []string {
	return []string{
		result.Provider,
		i(result.Score),
		yn(result.IsListed),
		yn(result.IsTor),
		yn(result.IsProxy),
		yn(result.IsVPN),
		yn(result.Cached),
		result.Error,
	}
}

//showReportHuman renders a unified report as tables on stdout
func showReportHuman(report *data.UnifiedReport) error {
	fmt.Printf("%s scanned at %s\n", report.IP, report.ScanTime)
	fmt.Printf("Unified score: %d  Risk level: %s\n", report.UnifiedScore, strings.ToUpper(report.RiskLevel))
	fmt.Printf("Recommendation: %s\n", report.Recommendation)
	if report.Summary.ProvidersResponded == 0 {
		fmt.Println("Warning: no providers responded; this verdict is a default, not a clean bill")
	}
	if len(report.DNSBLHits) > 0 {
		fmt.Printf("DNSBL overlap: %s\n", strings.Join(report.DNSBLHits, " "))
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(providerHeaders)
	for idx := range report.Providers {
		table.Append(providerRow(&report.Providers[idx]))
	}
	table.Render()
	return nil
}

//showReportCSV writes a unified report's provider rows as csv
func showReportCSV(report *data.UnifiedReport) error {
	csvWriter := csv.NewWriter(os.Stdout)
	headers := append([]string{"IP", "Unified Score", "Risk Level"}, providerHeaders...)
	csvWriter.Write(headers)
	for idx := range report.Providers {
		row := append([]string{
			report.IP,
			i(report.UnifiedScore),
			report.RiskLevel,
		}, providerRow(&report.Providers[idx])...)
		csvWriter.Write(row)
	}
	csvWriter.Flush()
	return nil
}

var batchHeaders = []string{"IP", "Score", "Risk Level", "Listed By", "DNSBL Hits", "Errors"}

func batchRow(report *data.UnifiedReport) []string {
	return []string{
		report.IP,
		i(report.UnifiedScore),
		report.RiskLevel,
		strings.Join(report.Summary.ListedBy, " "),
		strings.Join(report.DNSBLHits, " "),
		i(report.Summary.ProvidersErrored),
	}
}

//showBatchHuman renders the per-IP verdicts and the aggregate counts
func showBatchHuman(summary *data.BatchSummary) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(batchHeaders)
	for idx := range summary.Reports {
		table.Append(batchRow(&summary.Reports[idx]))
	}
	table.Render()

	fmt.Printf("Run %s: %d total, %d clean, %d flagged, %d skipped\n",
		summary.RunID, summary.Total, summary.Clean, summary.Flagged, summary.Skipped)
	return nil
}

//showBatchCSV writes the per-IP verdicts as csv
func showBatchCSV(summary *data.BatchSummary) error {
	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write(batchHeaders)
	for idx := range summary.Reports {
		csvWriter.Write(batchRow(&summary.Reports[idx]))
	}
	csvWriter.Flush()
	return nil
}
