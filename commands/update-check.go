package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/blang/semver"
	"github.com/google/go-github/github"
	"github.com/ipvet/ipvet/config"
	"github.com/urfave/cli"
)

//Strings used for informing the user of a new version
var informFmtStr = "\nThere's a new %s version of ipvet %s available at:\nhttps://github.com/ipvet/ipvet/releases\n"
var versions = []string{"Major", "Minor", "Patch"}

func init() {
	updateCheck := cli.Command{
		Name:  "update-check",
		Usage: "Check whether a newer release of ipvet is available",
		Action: func(c *cli.Context) error {
			fmt.Print(updateCheckString())
			return nil
		},
	}

	bootstrapCommands(updateCheck)
}

//updateCheckString performs a check for the new version of ipvet against
//the git repository and returns a string indicating the new version if
//one is available
func updateCheckString() string {
	configVersion, err := semver.ParseTolerant(config.Version)
	if err != nil {
		return ""
	}

	newVersion, err := getRemoteVersion()
	if err != nil {
		return "Could not reach the release listing\n"
	}

	if newVersion.GT(configVersion) {
		return informUser(configVersion, newVersion)
	}

	return "ipvet is up to date\n"
}

//versionDiffIndex returns the first index where v1 is greater than v2
func versionDiffIndex(v1 semver.Version, v2 semver.Version) int {
	if v1.Major > v2.Major {
		return 0
	}
	if v1.Minor > v2.Minor {
		return 1
	}
	return 2
}

func getRemoteVersion() (semver.Version, error) {
	client := github.NewClient(nil)
	refs, _, err := client.Git.GetRefs(context.Background(), "ipvet", "ipvet", "refs/tags/v")

	if err == nil && len(refs) > 0 {
		s := strings.TrimPrefix(*refs[len(refs)-1].Ref, "refs/tags/")
		return semver.ParseTolerant(s)
	}
	return semver.Version{}, err
}

//informUser assembles a notice informing the user of an upgrade
func informUser(local semver.Version, remote semver.Version) string {
	return fmt.Sprintf(informFmtStr,
		versions[versionDiffIndex(remote, local)],
		fmt.Sprint(remote))
}
