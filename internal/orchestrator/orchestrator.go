// Package orchestrator runs the localization pipeline over a listing record:
// per target marketplace it translates, verifies and repairs the title,
// bullets and description, and falls back to the source content whenever a
// marketplace cannot be completed.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/listran/internal/credential"
	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/profile"
	"github.com/valpere/listran/internal/translator"
	"github.com/valpere/listran/internal/verifier"
)

// ErrQualityFailure marks output that stayed unusable after the amplified
// retry.
var ErrQualityFailure = errors.New("translation quality failure")

const (
	DefaultStageDelay       = 1500 * time.Millisecond
	DefaultMarketplaceDelay = 3 * time.Second
)

// Translator is the single-call translation service the pipeline drives.
type Translator interface {
	Translate(ctx context.Context, req translator.Request) (string, error)
}

// LanguageDetector guesses the profile code of a text.
type LanguageDetector interface {
	Profile(text string) (string, bool)
}

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	Translator  Translator
	Credentials *credential.Rotator // reset at the start of every run
	Profiles    *profile.Table      // nil = profile.Default()
	Verifier    *verifier.Verifier  // nil = verifier.New(Profiles)
	Detector    LanguageDetector    // used when a record has no source language
	// StageDelay separates consecutive service calls within a marketplace,
	// MarketplaceDelay separates marketplaces. Zero selects the default,
	// a negative value disables the delay.
	StageDelay       time.Duration
	MarketplaceDelay time.Duration
	// Workers > 1 localizes that many marketplaces concurrently.
	Workers int
	Sleep   translator.SleepFunc // nil = translator.Sleep
	Logger  *zap.SugaredLogger   // nil = nop logger
}

// Orchestrator sequences the pipeline stages.
type Orchestrator struct {
	tr               Translator
	creds            *credential.Rotator
	profiles         *profile.Table
	verifier         *verifier.Verifier
	detector         LanguageDetector
	stageDelay       time.Duration
	marketplaceDelay time.Duration
	workers          int
	sleep            translator.SleepFunc
	logger           *zap.SugaredLogger
}

// New creates an Orchestrator.
func New(config OrchestratorConfig) (*Orchestrator, error) {
	if config.Translator == nil {
		return nil, errors.New("orchestrator: translator is required")
	}
	if config.Profiles == nil {
		config.Profiles = profile.Default()
	}
	if config.Verifier == nil {
		config.Verifier = verifier.New(config.Profiles)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Sleep == nil {
		config.Sleep = translator.Sleep
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop().Sugar()
	}

	return &Orchestrator{
		tr:               config.Translator,
		creds:            config.Credentials,
		profiles:         config.Profiles,
		verifier:         config.Verifier,
		detector:         config.Detector,
		stageDelay:       delayOrDefault(config.StageDelay, DefaultStageDelay),
		marketplaceDelay: delayOrDefault(config.MarketplaceDelay, DefaultMarketplaceDelay),
		workers:          config.Workers,
		sleep:            config.Sleep,
		logger:           config.Logger,
	}, nil
}

func delayOrDefault(d, def time.Duration) time.Duration {
	switch {
	case d == 0:
		return def
	case d < 0:
		return 0
	}
	return d
}

// Outcome summarises one marketplace of a run.
type Outcome struct {
	Marketplace  string        `json:"marketplace"`
	Language     string        `json:"language"`
	State        State         `json:"state"`
	Translated   bool          `json:"translated"`
	FallbackUsed bool          `json:"fallback_used"`
	Skipped      bool          `json:"skipped,omitempty"`
	Retries      int           `json:"retries"`
	Reason       string        `json:"reason,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// OrchestratorResult describes a finished run. The record itself carries
// the localized bundles.
type OrchestratorResult struct {
	SourceLanguage string
	Outcomes       []Outcome
	Started        time.Time
	Duration       time.Duration
}

// Succeeded counts marketplaces that received translated content.
func (r *OrchestratorResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Translated {
			n++
		}
	}
	return n
}

// Failed counts marketplaces that fell back to the source content.
func (r *OrchestratorResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.FallbackUsed {
			n++
		}
	}
	return n
}

// Run localizes every listing of rec in place and sets
// rec.TranslationsApplied and rec.Debug. Only an invalid record or a
// cancelled context yields an error; marketplace failures become fallbacks.
func (o *Orchestrator) Run(ctx context.Context, rec *listing.Record) (*OrchestratorResult, error) {
	if err := rec.Validate(o.profiles.Known); err != nil {
		return nil, err
	}
	if o.creds != nil {
		o.creds.Reset()
	}

	result := &OrchestratorResult{Started: time.Now()}
	source := o.sourceLanguage(rec)
	result.SourceLanguage = source

	product := rec.Product()
	ids := rec.Marketplaces()
	jobs := make([]*job, len(ids))
	for i, id := range ids {
		target, _ := o.profiles.LanguageFor(id)
		tp, _ := o.profiles.Lookup(target)
		jobs[i] = &job{
			o:           o,
			marketplace: id,
			target:      tp,
			source:      source,
			product:     product,
			bundle:      rec.Listings[id],
			src:         rec.Listings[id].Clone(),
		}
	}

	o.logger.Infow("Starting localization run",
		"marketplaces", len(jobs), "source", source, "workers", o.workers)

	err := o.runJobs(ctx, jobs)

	rec.Debug = append(rec.Debug, "source language: "+orUnknown(source))
	for _, j := range jobs {
		rec.Debug = append(rec.Debug, j.trace...)
	}

	if err == nil {
		rec.Debug = append(rec.Debug, o.englishPass(ctx, rec, jobs)...)
	}

	rec.TranslationsApplied = false
	for _, j := range jobs {
		if j.bundle.Translated {
			rec.TranslationsApplied = true
		}
		result.Outcomes = append(result.Outcomes, j.outcome())
	}
	result.Duration = time.Since(result.Started)

	o.logger.Infow("Localization run finished",
		"succeeded", result.Succeeded(), "fallbacks", result.Failed(), "duration", result.Duration)

	if err != nil {
		return result, errors.Wrap(err, "localization run aborted")
	}
	return result, nil
}

// runJobs localizes every job, sequentially or with a bounded errgroup.
// A cancelled context stops new marketplaces; they fall back.
func (o *Orchestrator) runJobs(ctx context.Context, jobs []*job) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, j := range jobs {
		if i > 0 {
			if err := o.sleep(ctx, o.marketplaceDelay); err != nil {
				for _, rest := range jobs[i:] {
					rest.fallback(errors.Wrap(err, "run cancelled"))
				}
				break
			}
		}
		if o.workers == 1 {
			j.run(ctx)
			continue
		}
		g.Go(func() error {
			j.run(gctx)
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}

func (o *Orchestrator) sourceLanguage(rec *listing.Record) string {
	if code := profile.NormalizeCode(rec.SourceLanguage); code != "" {
		if _, ok := o.profiles.Lookup(code); ok {
			return code
		}
	}
	if o.detector == nil {
		return ""
	}

	sample := []string{rec.Title}
	if ids := rec.Marketplaces(); len(ids) > 0 {
		b := rec.Listings[ids[0]]
		sample = append(sample, b.Title, strings.Join(b.Bullets, "\n"), b.Description)
	}
	code, _ := o.detector.Profile(strings.Join(sample, "\n"))
	return code
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
