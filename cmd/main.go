package main

import (
	"os"

	custodia "github.com/custodia-chain/custodia"
	"github.com/custodia-chain/custodia/common"
	"github.com/custodia-chain/custodia/config"
	"github.com/custodia-chain/custodia/log"
	"github.com/urfave/cli/v2"
)

const appName = "custodia"

var (
	configFileFlag = cli.StringFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file",
		Required: false,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.RPC, common.RECONCILER),
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = custodia.Version
	flags := []cli.Flag{
		&configFileFlag,
		&componentsFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the custodia node",
			Action:  start,
			Flags:   flags,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
