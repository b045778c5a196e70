package commands

import (
	"fmt"

	"github.com/ipvet/ipvet/resources"
	"github.com/urfave/cli"
)

func init() {
	clear := cli.Command{
		Name:  "clear-cache",
		Usage: "Remove cached provider results",
		Flags: []cli.Flag{
			configFlag,
			cli.BoolFlag{
				Name:  "expired",
				Usage: "only remove entries which are past their TTL",
			},
		},
		Action: clearCache,
	}

	bootstrapCommands(clear)
}

func clearCache(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))

	var removed int
	var err error
	if c.Bool("expired") {
		// an explicit request bypasses the automatic prune throttle
		removed, err = res.Cache.Prune(true)
	} else {
		removed, err = res.Cache.Clear()
	}
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Printf("Removed %d cached result(s)\n", removed)
	return nil
}
