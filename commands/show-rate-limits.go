package commands

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/ipvet/ipvet/pkg/ratelimit"
	"github.com/ipvet/ipvet/resources"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func init() {
	showRateLimits := cli.Command{
		Name:  "show-rate-limits",
		Usage: "Print the persisted per-provider cooldown state",
		Flags: []cli.Flag{
			humanFlag,
			configFlag,
		},
		Action: printRateLimits,
	}

	bootstrapCommands(showRateLimits)
}

func printRateLimits(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))

	states, err := res.RateLimit.States()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	if len(states) == 0 {
		return cli.NewExitError("No providers have been throttled", -1)
	}

	if c.Bool("human-readable") {
		err = showRateLimitsHuman(states)
	} else {
		err = showRateLimitsCSV(states)
	}
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}

var rateLimitHeaders = []string{"Provider", "Last Hit", "Retry After", "Remaining", "Hit Count"}

func rateLimitRow(state *ratelimit.State, now time.Time) []string {
	remaining := "available"
	if left := state.Remaining(now); left > 0 {
		remaining = left.Round(time.Second).String()
	}
	return []string{
		state.Provider,
		state.HitAt.UTC().Format(time.RFC3339),
		(time.Duration(state.RetryAfter) * time.Second).String(),
		remaining,
		i(state.HitCount),
	}
}

func showRateLimitsHuman(states []ratelimit.State) error {
	now := time.Now()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(rateLimitHeaders)
	for idx := range states {
		table.Append(rateLimitRow(&states[idx], now))
	}
	table.Render()
	return nil
}

func showRateLimitsCSV(states []ratelimit.State) error {
	now := time.Now()
	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write(rateLimitHeaders)
	for idx := range states {
		csvWriter.Write(rateLimitRow(&states[idx], now))
	}
	csvWriter.Flush()
	return nil
}
