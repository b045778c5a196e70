package commands

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/ipvet/ipvet/pkg/cache"
	"github.com/ipvet/ipvet/resources"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

func init() {
	showCache := cli.Command{
		Name:      "show-cache",
		ArgsUsage: "[ip]",
		Usage:     "Print cached provider results, optionally for a single IP",
		Flags: []cli.Flag{
			humanFlag,
			configFlag,
		},
		Action: printCache,
	}

	bootstrapCommands(showCache)
}

func printCache(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))

	entries, err := res.Cache.Entries()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	if filter := c.Args().Get(0); filter != "" {
		var matched []cache.Entry
		for _, entry := range entries {
			if entry.IP == filter {
				matched = append(matched, entry)
			}
		}
		entries = matched
	}

	if len(entries) == 0 {
		return cli.NewExitError("No cached results were found", -1)
	}

	if c.Bool("human-readable") {
		err = showCacheHuman(entries)
	} else {
		err = showCacheCSV(entries)
	}
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}

var cacheHeaders = []string{"Provider", "IP", "Score", "Listed", "Cached At", "Expires In"}

func cacheRow(entry *cache.Entry, now time.Time) []string {
	expiry := entry.CachedAt.Add(time.Duration(entry.TTL) * time.Second)
	expiresIn := "expired"
	if expiry.After(now) {
		expiresIn = expiry.Sub(now).Round(time.Second).String()
	}
	return []string{
		entry.Provider,
		entry.IP,
		i(entry.Result.Score),
		yn(entry.Result.IsListed),
		entry.CachedAt.UTC().Format(time.RFC3339),
		expiresIn,
	}
}

func showCacheHuman(entries []cache.Entry) error {
	now := time.Now()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(cacheHeaders)
	for idx := range entries {
		table.Append(cacheRow(&entries[idx], now))
	}
	table.Render()
	return nil
}

func showCacheCSV(entries []cache.Entry) error {
	now := time.Now()
	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write(cacheHeaders)
	for idx := range entries {
		csvWriter.Write(cacheRow(&entries[idx], now))
	}
	csvWriter.Flush()
	return nil
}
