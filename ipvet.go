package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/ipvet/ipvet/commands"
	"github.com/ipvet/ipvet/config"
	"github.com/urfave/cli"
)

// Entry point of ipvet
func main() {
	app := cli.NewApp()
	app.Name = "ipvet"
	app.Usage = "Vet IPv4 addresses against reputation sources before putting them to work."

	app.Version = config.Version

	// Define commands used with this application
	app.Commands = commands.Commands()

	runtime.GOMAXPROCS(runtime.NumCPU())
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
