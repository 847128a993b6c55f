package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gaevic/internal/cases"
	"gaevic/internal/docs"
	"gaevic/internal/engine"
	"gaevic/internal/payments"
	"gaevic/internal/server"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	if config.IssuerURL == "" {
		return fmt.Errorf("set ISSUER_URL for dashboard auth")
	}

	backend, err := buildBackend(ctx, config)
	if err != nil {
		return err
	}

	rules, err := docs.LoadRules()
	if err != nil {
		return err
	}
	pipeline := docs.NewPipeline(rules, docs.NewPDFRenderer())

	eng := engine.New(backend, pipeline, logger, config.IndexRetryLimit)
	caseService := cases.NewService(backend, eng, logger)
	paymentService := payments.New(config.StripeAPIKey, rules.Court.FilingFeeCents, logger)

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.IssuerURL)

	if err := jwkCache.Register(context.Background(), jwksURL); err != nil {
		return fmt.Errorf("failed to register issuer jwks with cache: %w", err)
	}

	srv := server.New(
		config,
		logger,
		caseService,
		eng,
		paymentService,
		jwkCache,
		jwksURL,
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
