package commands

import (
	"os"

	"github.com/ipvet/ipvet/pkg/data"
	"github.com/ipvet/ipvet/reporting"
	"github.com/urfave/cli"
)

func init() {
	htmlReport := cli.Command{
		Name:      "html-report",
		ArgsUsage: "<batch-summary.json>",
		Usage:     "Create an html report from a saved batch summary",
		UsageText: "ipvet html-report [command-options] [batch-summary.json]\n\n" +
			"The summary file is produced by 'ipvet batch --out'.",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "directory, d",
				Usage: "write the report to `DIRECTORY`",
				Value: "",
			},
		},
		Action: func(c *cli.Context) error {
			summaryPath := c.Args().Get(0)
			if summaryPath == "" {
				return cli.NewExitError("Specify a batch summary file", -1)
			}

			contents, err := os.ReadFile(summaryPath)
			if err != nil {
				return cli.NewExitError(err.Error(), -1)
			}

			var summary data.BatchSummary
			if err := json.Unmarshal(contents, &summary); err != nil {
				return cli.NewExitError("Could not parse batch summary: "+err.Error(), -1)
			}

			if err := reporting.PrintHTML(&summary, c.String("directory")); err != nil {
				return cli.NewExitError(err.Error(), -1)
			}
			return nil
		},
	}

	bootstrapCommands(htmlReport)
}
