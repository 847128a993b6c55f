package main

import (
	"fmt"

	"gaevic/internal/caseid"

	"github.com/urfave/cli/v2"
)

var caseidCommand = &cli.Command{
	Name:  "caseid",
	Usage: "Generate case IDs for manual testing",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		for range count {
			fmt.Println(caseid.Allocate())
		}
		return nil
	},
}
