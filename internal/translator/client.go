// Package translator issues single translation calls against a
// generator.Generator. It owns the per-mode instruction templates, the
// bounded retry protocol with credential rotation, and the stripping of
// prompt leakage from the returned text.
package translator

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/valpere/listran/internal/credential"
	"github.com/valpere/listran/internal/generator"
	"github.com/valpere/listran/internal/postprocess"
	"github.com/valpere/listran/internal/profile"
)

// ErrRetriesExhausted is returned (wrapped with the last cause) when every
// attempt failed.
var ErrRetriesExhausted = errors.New("translation retries exhausted")

var errEmptyOutput = errors.New("empty translation output")

const (
	DefaultMaxAttempts = 6
	DefaultBaseDelay   = 2 * time.Second
	DefaultRotateDelay = 500 * time.Millisecond
)

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Request is one translation call.
type Request struct {
	Text   string
	Target string // profile code, e.g. "DE"
	Mode   Mode
	// Amplified selects the more directive retry instructions.
	Amplified bool
}

// Config configures a Client.
type Config struct {
	Generator   generator.Generator
	Credentials *credential.Rotator // nil = empty pool
	Profiles    *profile.Table      // nil = profile.Default()
	MaxAttempts int                 // 0 = DefaultMaxAttempts
	BaseDelay   time.Duration       // 0 = DefaultBaseDelay; negative disables backoff
	RotateDelay time.Duration       // 0 = DefaultRotateDelay; negative disables it
	Sleep       SleepFunc           // nil = Sleep
	Logger      *zap.SugaredLogger  // nil = nop logger
}

// Client is the translation client shared by every marketplace of a run.
type Client struct {
	gen         generator.Generator
	creds       *credential.Rotator
	profiles    *profile.Table
	stripper    *postprocess.Stripper
	maxAttempts int
	baseDelay   time.Duration
	rotateDelay time.Duration
	sleep       SleepFunc
	logger      *zap.SugaredLogger
}

// NewClient builds a Client, filling unset fields with defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Generator == nil {
		return nil, errors.New("translator: generator is required")
	}
	if cfg.Credentials == nil {
		cfg.Credentials = credential.NewRotator(nil)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = profile.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	cfg.BaseDelay = orDefault(cfg.BaseDelay, DefaultBaseDelay)
	cfg.RotateDelay = orDefault(cfg.RotateDelay, DefaultRotateDelay)
	if cfg.Sleep == nil {
		cfg.Sleep = Sleep
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	var markers, verbs, prefixes []string
	for _, p := range cfg.Profiles.Profiles() {
		markers = append(markers, p.InstructionMarkers...)
		verbs = append(verbs, p.InstructionVerbs...)
		prefixes = append(prefixes, p.TranslationPrefixes...)
	}

	return &Client{
		gen:         cfg.Generator,
		creds:       cfg.Credentials,
		profiles:    cfg.Profiles,
		stripper:    postprocess.NewStripper(markers, verbs, prefixes),
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		rotateDelay: cfg.RotateDelay,
		sleep:       cfg.Sleep,
		logger:      cfg.Logger,
	}, nil
}

func orDefault(d, def time.Duration) time.Duration {
	switch {
	case d == 0:
		return def
	case d < 0:
		return 0
	}
	return d
}

// Translate runs one translation with the retry protocol: a rate-limited
// attempt rotates to the next credential and retries after RotateDelay; once
// the pool is exhausted, and for every other failure, it backs off
// BaseDelay×(attempt+1). The returned text is already stripped of
// instruction echoes and translation prefixes.
func (c *Client) Translate(ctx context.Context, req Request) (string, error) {
	p, ok := c.profiles.Lookup(req.Target)
	if !ok {
		return "", errors.Newf("unsupported target language %q", req.Target)
	}

	genReq := generator.Request{
		Instructions: Instructions(req.Mode, p, req.Amplified),
		Content:      req.Text,
		Target:       p.Tag,
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", errors.Wrap(err, "translation cancelled")
		}

		out, err := c.gen.Generate(ctx, c.creds.Current(), genReq)
		if err == nil {
			if text := c.stripper.Strip(out); text != "" {
				if attempt > 0 {
					c.logger.Infow("Translation succeeded after retries",
						"attempts", attempt+1, "mode", req.Mode, "target", p.Code)
				}
				return text, nil
			}
			err = errEmptyOutput
		}
		lastErr = err

		c.logger.Warnw("Translation attempt failed",
			"attempt", attempt+1, "max_attempts", c.maxAttempts,
			"mode", req.Mode, "target", p.Code, "backend", c.gen.Name(), "error", err)

		if attempt == c.maxAttempts-1 {
			break
		}

		delay := c.baseDelay * time.Duration(attempt+1)
		if generator.IsRateLimited(err) {
			if c.creds.Rotate() {
				delay = c.rotateDelay
				c.logger.Infow("Rotated credential after rate limit", "target", p.Code)
			} else {
				c.logger.Debugw("Credential pool exhausted, backing off", "delay", delay)
			}
		}

		if err := c.sleep(ctx, delay); err != nil {
			return "", errors.Wrap(err, "translation cancelled")
		}
	}

	return "", errors.Mark(
		errors.Wrapf(lastErr, "%s translation to %s failed after %d attempts", req.Mode, p.Code, c.maxAttempts),
		ErrRetriesExhausted,
	)
}

// Backend returns the name of the generator in use.
func (c *Client) Backend() string {
	return c.gen.Name()
}

// languageName returns the upper-cased display name used in the amplified
// header, e.g. "GERMAN".
func languageName(p *profile.Profile) string {
	if p.Name == "" {
		return strings.ToUpper(p.Code)
	}
	return strings.ToUpper(p.Name)
}
