package commands

import (
	"fmt"

	"github.com/ipvet/ipvet/config"
	"github.com/urfave/cli"
)

func init() {
	version := cli.Command{
		Name:  "version",
		Usage: "Show ipvet version",
		Action: func(c *cli.Context) error {
			fmt.Println(config.ExactVersion)
			return nil
		},
	}

	bootstrapCommands(version)
}
