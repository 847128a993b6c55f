package main

import (
	"context"
	"fmt"

	"gaevic/internal/cases"
	"gaevic/internal/docs"
	"gaevic/internal/engine"
	"gaevic/internal/seed"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the storage backend with fake cases",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of fake cases to create",
			Value:   20,
		},
	},
	Action: func(cCtx *cli.Context) error {
		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})

		config, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		backend, err := buildBackend(ctx, config)
		if err != nil {
			return err
		}

		rules, err := docs.LoadRules()
		if err != nil {
			return err
		}

		eng := engine.New(backend, docs.NewPipeline(rules, docs.NewPDFRenderer()), logger, config.IndexRetryLimit)
		caseService := cases.NewService(backend, eng, logger)

		return seed.FakeCases(ctx, eng, caseService, cCtx.Int("count"))
	},
}
