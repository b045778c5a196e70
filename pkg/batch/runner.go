package batch

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/pkg/risk"
	"github.com/ipvet/ipvet/pkg/scan"
	"github.com/ipvet/ipvet/util"
	log "github.com/sirupsen/logrus"
)

type (
	//Runner drives the orchestrator across a list of IPs with inter-IP
	//pacing. One malformed line or one failed IP never aborts the batch.
	Runner struct {
		orchestrator *scan.Orchestrator
		scoring      risk.ScoringCfg
		overlap      *OverlapChecker
		log          *log.Logger

		//Sleep is injectable so pacing is testable with a fake clock
		Sleep func(d time.Duration)
		//Progress, if set, is called once per input line as it resolves
		Progress func()
	}

	//Options controls one batch run
	Options struct {
		Providers     []string
		Timeout       time.Duration
		UseCache      bool
		Parallel      bool
		RatePerSecond float64
		DNSBLOverlap  bool
	}
)

//NewRunner creates a batch runner. overlap may be nil when the DNSBL
//cross reference is not wanted.
func NewRunner(orchestrator *scan.Orchestrator, scoring risk.ScoringCfg,
	overlap *OverlapChecker, logger *log.Logger) *Runner {
	return &Runner{
		orchestrator: orchestrator,
		scoring:      scoring,
		overlap:      overlap,
		log:          logger,
		Sleep:        time.Sleep,
	}
}

//ReadLines loads the candidate IP list from a file, one address per line.
//Blank lines and #-comments are dropped; validation happens in Run so
//that malformed lines are counted and warned about.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

//Run checks every valid line and collects the unified reports. Pacing
//applies between successive IP checks, not between provider calls within
//one IP's fan-out, so outbound volume stays predictable regardless of how
//many providers are configured.
func (r *Runner) Run(lines []string, opts Options) *data.BatchSummary {
	summary := &data.BatchSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Total:     len(lines),
	}

	var delay time.Duration
	if opts.RatePerSecond > 0 {
		delay = time.Duration(float64(time.Second) / opts.RatePerSecond)
	}

	checked := 0
	for _, line := range lines {
		ip, err := util.ValidateIPv4(line)
		if err != nil {
			r.log.WithFields(log.Fields{
				"line": line,
			}).Warn("Skipping line: not a valid IPv4 address")
			summary.Skipped++
			r.progress()
			continue
		}
		if !util.IPIsPubliclyRoutable(ip) {
			r.log.WithFields(log.Fields{
				"ip": line,
			}).Warn("Skipping private or non-routable address")
			summary.Skipped++
			r.progress()
			continue
		}

		// pace between successive IPs, never before the first
		if checked > 0 && delay > 0 {
			r.Sleep(delay)
		}
		checked++

		results := r.orchestrator.CheckIP(ip.String(), scan.Options{
			Providers: opts.Providers,
			Timeout:   opts.Timeout,
			UseCache:  opts.UseCache,
			Parallel:  opts.Parallel,
		})
		report := risk.Merge(ip.String(), results, r.scoring)

		if opts.DNSBLOverlap && r.overlap != nil {
			report.DNSBLHits = r.overlap.Check(ip)
		}

		if report.Flagged() {
			summary.Flagged++
		} else {
			summary.Clean++
		}
		summary.Reports = append(summary.Reports, *report)
		r.progress()
	}

	summary.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	return summary
}

func (r *Runner) progress() {
	if r.Progress != nil {
		r.Progress()
	}
}
