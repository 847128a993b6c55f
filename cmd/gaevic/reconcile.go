package main

import (
	"context"
	"fmt"

	"gaevic/internal/docs"
	"gaevic/internal/engine"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var reconcileCommand = &cli.Command{
	Name:  "reconcile",
	Usage: "Rebuild missing index entries from the case directories in storage",
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

		repaired, err := eng.Reconcile(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Repaired %d index entries\n", repaired)
		return nil
	},
}
