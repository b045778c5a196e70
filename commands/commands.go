package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/ipvet/ipvet/pkg/provider"
	"github.com/ipvet/ipvet/pkg/provider/sources"
	"github.com/ipvet/ipvet/pkg/scan"
	"github.com/ipvet/ipvet/resources"
	"github.com/urfave/cli"
)

var allCommands []cli.Command

//bootstrapCommands registers a set of commands with the command index
func bootstrapCommands(commands ...cli.Command) {
	allCommands = append(allCommands, commands...)
}

//Commands provides all of the defined commands to the front end
func Commands() []cli.Command {
	return allCommands
}

//below are some prebuilt flags which get used often in various commands

//configFlag allows users to specify an alternative config file to use
var configFlag = cli.StringFlag{
	Name:  "config, c",
	Usage: "Use a given `CONFIG_FILE` when running this command",
	Value: "",
}

//humanFlag prints results in a human readable table
var humanFlag = cli.BoolFlag{
	Name:  "human-readable, H",
	Usage: "print a human readable table",
}

//jsonFlag prints results as a JSON document
var jsonFlag = cli.BoolFlag{
	Name:  "json, j",
	Usage: "print results as JSON",
}

//providersFlag selects a subset of the configured providers
var providersFlag = cli.StringFlag{
	Name:  "providers, p",
	Usage: "comma separated `PROVIDERS` to query (default: all enabled)",
	Value: "",
}

//timeoutFlag bounds each individual provider query
var timeoutFlag = cli.IntFlag{
	Name:  "timeout, t",
	Usage: "per-provider query timeout in `SECONDS`",
	Value: 0,
}

//sequentialFlag disables the parallel provider fan-out
var sequentialFlag = cli.BoolFlag{
	Name:  "sequential, s",
	Usage: "query providers one at a time in a fixed order",
}

//noCacheFlag forces live queries
var noCacheFlag = cli.BoolFlag{
	Name:  "no-cache",
	Usage: "bypass the result cache and always query live",
}

//buildOrchestrator assembles the provider registry, executor, and
//orchestrator from the system resources
func buildOrchestrator(res *resources.Resources) (*scan.Orchestrator, *provider.Registry, error) {
	registry, err := sources.BuildRegistry(res.Config)
	if err != nil {
		return nil, nil, err
	}

	retry := provider.DefaultRetryPolicy()
	retry.MaxAttempts = res.Config.S.Check.RetryAttempts
	retry.BaseDelay = time.Duration(res.Config.S.Check.RetryBaseDelaySecs) * time.Second

	executor := provider.NewExecutor(registry, res.Cache, res.RateLimit, retry, res.Log)
	return scan.NewOrchestrator(executor, res.Log), registry, nil
}

//selectProviders resolves the providers flag against the registry,
//defaulting to every registered provider
func selectProviders(flagValue string, registry *provider.Registry) ([]string, error) {
	if flagValue == "" {
		names := registry.Names()
		if len(names) == 0 {
			return nil, fmt.Errorf("no providers are enabled; check the Providers section of the config")
		}
		return names, nil
	}

	var selected []string
	for _, name := range strings.Split(flagValue, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		// unknown names are kept so they surface as
		// provider_not_available in the report
		selected = append(selected, name)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no providers selected")
	}
	return selected, nil
}

//queryTimeout resolves the timeout flag against the configured default
func queryTimeout(flagSeconds int, res *resources.Resources) time.Duration {
	if flagSeconds > 0 {
		return time.Duration(flagSeconds) * time.Second
	}
	return time.Duration(res.Config.S.Check.TimeoutSeconds) * time.Second
}
