package commands

import (
	"fmt"
	"os"

	"github.com/ipvet/ipvet/config"
	"github.com/urfave/cli"
	yaml "gopkg.in/yaml.v2"
)

func init() {
	testConfig := cli.Command{
		Name:  "test-config",
		Usage: "Check the configuration file for validity",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: func(c *cli.Context) error {
			conf, err := config.LoadConfig(c.String("config"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to load config: %s\n", err.Error())
				os.Exit(-1)
			}

			staticConfig, err := yaml.Marshal(conf.S)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to serialize config: %s\n", err.Error())
				os.Exit(-1)
			}

			fmt.Println(string(staticConfig))
			return nil
		},
	}

	bootstrapCommands(testConfig)
}
