package commands

import (
	"os"

	"github.com/ipvet/ipvet/pkg/batch"
	"github.com/ipvet/ipvet/pkg/risk"
	"github.com/ipvet/ipvet/resources"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
)

func init() {
	batchCommand := cli.Command{
		Name:      "batch",
		ArgsUsage: "<ip-list-file>",
		Usage:     "Vet a list of IPv4 addresses, one per line",
		Flags: []cli.Flag{
			providersFlag,
			timeoutFlag,
			sequentialFlag,
			noCacheFlag,
			humanFlag,
			jsonFlag,
			configFlag,
			cli.Float64Flag{
				Name:  "rate, r",
				Usage: "outbound `CHECKS_PER_SECOND` across the batch (0 disables pacing)",
				Value: 0,
			},
			cli.BoolFlag{
				Name:  "dnsbl-overlap",
				Usage: "cross reference each IP against the configured DNSBL zones",
			},
			cli.StringFlag{
				Name:  "out, o",
				Usage: "write the full batch summary as JSON to `FILE`",
				Value: "",
			},
		},
		Action: runBatch,
	}

	bootstrapCommands(batchCommand)
}

//resolveRate picks the batch pacing rate. A rate passed on the command
//line wins over the configured default, including an explicit zero which
//disables pacing entirely.
func resolveRate(flagSet bool, flagValue float64, configValue float64) float64 {
	if flagSet {
		return flagValue
	}
	return configValue
}

func runBatch(c *cli.Context) error {
	listPath := c.Args().Get(0)
	if listPath == "" {
		return cli.NewExitError("Specify a file containing one IPv4 address per line", -1)
	}

	lines, err := batch.ReadLines(listPath)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	if len(lines) == 0 {
		return cli.NewExitError("No candidate addresses found in "+listPath, -1)
	}

	res := resources.InitResources(c.String("config"))

	orchestrator, registry, err := buildOrchestrator(res)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	providers, err := selectProviders(c.String("providers"), registry)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	var overlap *batch.OverlapChecker
	if c.Bool("dnsbl-overlap") {
		overlap = batch.NewOverlapChecker(res.Config.S.Batch.DNSBLZones, res.Log)
	}

	runner := batch.NewRunner(
		orchestrator,
		risk.ScoringFromConfig(res.Config),
		overlap,
		res.Log,
	)

	rate := resolveRate(c.IsSet("rate"), c.Float64("rate"), res.Config.S.Batch.RateLimitPerSecond)

	progress := mpb.New(mpb.WithWidth(64))
	bar := progress.AddBar(int64(len(lines)),
		mpb.PrependDecorators(
			decor.Name("vetting", decor.WC{W: 8}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)
	runner.Progress = func() { bar.Increment() }

	summary := runner.Run(lines, batch.Options{
		Providers:     providers,
		Timeout:       queryTimeout(c.Int("timeout"), res),
		UseCache:      !c.Bool("no-cache"),
		Parallel:      !c.Bool("sequential"),
		RatePerSecond: rate,
		DNSBLOverlap:  c.Bool("dnsbl-overlap"),
	})
	progress.Wait()

	if outPath := c.String("out"); outPath != "" {
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
		if err := os.WriteFile(outPath, encoded, 0644); err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
	}

	switch {
	case c.Bool("json"):
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
		os.Stdout.Write(encoded)
		os.Stdout.WriteString("\n")
	case c.Bool("human-readable"):
		if err := showBatchHuman(summary); err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
	default:
		if err := showBatchCSV(summary); err != nil {
			return cli.NewExitError(err.Error(), -1)
		}
	}
	return nil
}
