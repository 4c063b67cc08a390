package main

import (
	"os"

	custodia "github.com/custodia-chain/custodia"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	custodia.PrintVersion(os.Stdout)

	return nil
}
