package commands

import (
	"github.com/ipvet/ipvet/pkg/risk"
	"github.com/ipvet/ipvet/pkg/scan"
	"github.com/ipvet/ipvet/resources"
	"github.com/ipvet/ipvet/util"
	"github.com/urfave/cli"
)

func init() {
	check := cli.Command{
		Name:      "check",
		ArgsUsage: "<ip>",
		Usage:     "Vet a single IPv4 address against the configured reputation sources",
		Flags: []cli.Flag{
			providersFlag,
			timeoutFlag,
			sequentialFlag,
			noCacheFlag,
			humanFlag,
			jsonFlag,
			configFlag,
		},
		Action: checkIP,
	}

	bootstrapCommands(check)
}

func checkIP(c *cli.Context) error {
	ipArg := c.Args().Get(0)
	if ipArg == "" {
		return cli.NewExitError("Specify an IPv4 address", -1)
	}

	// malformed input is rejected at the boundary, before any provider
	// or storage contact
	ip, err := util.ValidateIPv4(ipArg)
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
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

	results := orchestrator.CheckIP(ip.String(), scan.Options{
		Providers: providers,
		Timeout:   queryTimeout(c.Int("timeout"), res),
		UseCache:  !c.Bool("no-cache"),
		Parallel:  !c.Bool("sequential"),
	})

	report := risk.Merge(ip.String(), results, risk.ScoringFromConfig(res.Config))

	switch {
	case c.Bool("json"):
		err = showReportJSON(report)
	case c.Bool("human-readable"):
		err = showReportHuman(report)
	default:
		err = showReportCSV(report)
	}
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}
