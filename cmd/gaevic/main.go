package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "gaevic",
		Usage: "Eviction case intake, document generation, and clerk dashboard API",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			reconcileCommand,
			caseidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
