package config

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/valpere/listran/internal/credential"
	"github.com/valpere/listran/internal/detector"
	"github.com/valpere/listran/internal/generator"
	"github.com/valpere/listran/internal/orchestrator"
	"github.com/valpere/listran/internal/profile"
	"github.com/valpere/listran/internal/translator"
)

// Profiles returns the built-in tables, or the ones in ProfilesFile.
func (c *Config) Profiles() (*profile.Table, error) {
	if c.ProfilesFile == "" {
		return profile.Default(), nil
	}
	data, err := os.ReadFile(c.ProfilesFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read profiles file")
	}
	return profile.Load(data)
}

// Generator constructs the configured backend, paced when
// RequestsPerMinute is set.
func (c *Config) Generator(ctx context.Context) (generator.Generator, error) {
	var gen generator.Generator
	switch c.Backend {
	case BackendOpenRouter:
		gen = generator.NewOpenRouter(c.BaseURL, c.Model)
	case BackendOllama:
		gen = generator.NewOllama(c.BaseURL, c.Model)
	case BackendGemini:
		gen = generator.NewGemini(c.Model)
	case BackendGoogle:
		gen = generator.NewGoogleTranslate(c.GoogleCredentials)
	case BackendLambda:
		l, err := generator.NewLambda(ctx, c.LambdaFunction)
		if err != nil {
			return nil, err
		}
		gen = l
	default:
		return nil, errors.Newf("unknown backend %q", c.Backend)
	}
	return generator.NewPaced(gen, c.RequestsPerMinute), nil
}

// Pipeline wires a generator into the translation client and orchestrator.
// Both share one credential pool.
func (c *Config) Pipeline(gen generator.Generator, logger *zap.SugaredLogger) (*orchestrator.Orchestrator, error) {
	profiles, err := c.Profiles()
	if err != nil {
		return nil, err
	}
	creds := credential.NewRotator(c.APIKeys)

	client, err := translator.NewClient(translator.Config{
		Generator:   gen,
		Credentials: creds,
		Profiles:    profiles,
		MaxAttempts: c.MaxAttempts,
		BaseDelay:   c.BaseDelay,
		RotateDelay: c.RotateDelay,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return orchestrator.New(orchestrator.OrchestratorConfig{
		Translator:       client,
		Credentials:      creds,
		Profiles:         profiles,
		Detector:         detector.New(profiles),
		StageDelay:       c.StageDelay,
		MarketplaceDelay: c.MarketplaceDelay,
		Workers:          c.Workers,
		Logger:           logger,
	})
}

// Logger builds a development logger when verbose, production otherwise.
func (c *Config) Logger() (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if c.Verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return l.Sugar(), nil
}
