package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/valpere/listran/internal/arbiter"
	"github.com/valpere/listran/internal/cleaner"
	"github.com/valpere/listran/internal/fitter"
	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/placeholder"
	"github.com/valpere/listran/internal/profile"
	"github.com/valpere/listran/internal/substitute"
	"github.com/valpere/listran/internal/translator"
	"github.com/valpere/listran/internal/verifier"
)

// State is a step of the per-marketplace state machine.
type State string

const (
	StateIdle                   State = "Idle"
	StateTranslatingTitle       State = "TranslatingTitle"
	StateVerifyingTitle         State = "VerifyingTitle"
	StateRetryTitle             State = "RetryTitle"
	StateFittingTitle           State = "FittingTitle"
	StateTranslatingBullets     State = "TranslatingBullets"
	StateVerifyingBullets       State = "VerifyingBullets"
	StateRetryBullets           State = "RetryBullets"
	StateCleaningBullets        State = "CleaningBullets"
	StateTranslatingDescription State = "TranslatingDescription"
	StateVerifyingDescription   State = "VerifyingDescription"
	StateRetryDescription       State = "RetryDescription"
	StateSubstitutingReferences State = "SubstitutingReferences"
	StateDone                   State = "Done"
	StateFallback               State = "Fallback"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFallback
}

const (
	// minTranslatedBullets is the fewest bullets a translated bundle keeps.
	minTranslatedBullets = 3
)

// job is one marketplace's pass through the state machine. Stage results
// accumulate on it until SubstitutingReferences writes them to bundle.
type job struct {
	o           *Orchestrator
	marketplace string
	target      *profile.Profile
	source      string
	product     listing.Product

	bundle *listing.Bundle // mutated in place
	src    *listing.Bundle // untouched snapshot

	state    State
	calls    int
	retries  int
	skipped  bool
	reason   string
	duration time.Duration
	trace    []string

	sourceName string // product name without the brand
	bundleName string // bundle title without the brand
	hadBrand   bool
	rawTitle   string
	name       string // verified translated name
	title      string
	rawBullets string
	bullets    []string
	wantLines  int
	protected  string
	markers    []string
	rawDesc    string
}

func (j *job) tracef(format string, args ...any) {
	j.trace = append(j.trace, j.marketplace+": "+fmt.Sprintf(format, args...))
}

func (j *job) run(ctx context.Context) {
	start := time.Now()
	defer func() { j.duration = time.Since(start) }()

	if j.sameLanguage() {
		j.skipped = true
		j.state = StateDone
		j.reason = "same language as source"
		j.tracef("skipped, content already in %s", j.target.Code)
		return
	}

	j.state = StateIdle
	for !j.state.Terminal() {
		next, err := j.step(ctx)
		if err != nil {
			j.fallback(err)
			return
		}
		j.o.logger.Debugw("State transition",
			"marketplace", j.marketplace, "from", j.state, "to", next)
		j.state = next
	}

	j.o.logger.Infow("Marketplace localized",
		"marketplace", j.marketplace, "language", j.target.Code, "retries", j.retries)
	j.tracef("done (%s, %d retries)", j.target.Code, j.retries)
}

// fallback restores the source snapshot and ends the marketplace.
func (j *job) fallback(err error) {
	from := j.state
	*j.bundle = *j.src.Clone()
	j.bundle.Translated = false
	j.bundle.FallbackUsed = true
	j.state = StateFallback
	j.reason = err.Error()

	j.o.logger.Warnw("Marketplace fell back to source content",
		"marketplace", j.marketplace, "state", from, "error", err)
	j.tracef("fallback at %s: %s", orIdle(from), err)
}

func orIdle(s State) State {
	if s == "" {
		return StateIdle
	}
	return s
}

func (j *job) outcome() Outcome {
	return Outcome{
		Marketplace:  j.marketplace,
		Language:     j.target.Code,
		State:        j.state,
		Translated:   j.bundle.Translated,
		FallbackUsed: j.bundle.FallbackUsed,
		Skipped:      j.skipped,
		Retries:      j.retries,
		Reason:       j.reason,
		Duration:     j.duration,
	}
}

// step runs the work of the current state and returns the next one.
func (j *job) step(ctx context.Context) (State, error) {
	v := j.o.verifier

	switch j.state {
	case StateIdle:
		if n := len(j.src.Bullets); n < minTranslatedBullets {
			return "", errors.Mark(errors.Newf("source has %d bullets, need %d", n, minTranslatedBullets), ErrQualityFailure)
		}
		j.bundleName = listing.StripBrand(j.src.Title, j.product.Brand)
		j.sourceName = j.product.RawName()
		if j.sourceName == "" {
			j.sourceName = j.bundleName
		}
		j.hadBrand = j.bundleName != strings.TrimSpace(j.src.Title) ||
			j.product.RawName() != strings.TrimSpace(j.product.Title)
		j.wantLines = min(verifier.MinBullets, len(j.src.Bullets))
		return StateTranslatingTitle, nil

	case StateTranslatingTitle:
		out, err := j.translate(ctx, j.sourceName, translator.ModeName, false)
		if err != nil {
			return "", err
		}
		j.rawTitle = out
		return StateVerifyingTitle, nil

	case StateVerifyingTitle:
		if retry, why := v.TitleNeedsRetry(cleaner.CleanTitle(j.rawTitle), j.target.Code, j.source); retry {
			j.tracef("title needs retry: %s", why)
			return StateRetryTitle, nil
		}
		return StateFittingTitle, nil

	case StateRetryTitle:
		out, err := j.translate(ctx, j.sourceName, translator.ModeName, true)
		if err != nil {
			return "", err
		}
		j.retries++
		decision := arbiter.Title(cleaner.CleanTitle(j.rawTitle), cleaner.CleanTitle(out))
		j.tracef("%s", decision.Reasoning)
		if decision.UseRetry {
			j.rawTitle = out
		}
		return StateFittingTitle, nil

	case StateFittingTitle:
		j.name = cleaner.CleanTitle(j.rawTitle)
		if j.name == "" {
			return "", errors.Mark(errors.New("empty title after cleaning"), ErrQualityFailure)
		}
		limits := j.o.profiles.LimitsFor(j.marketplace)
		j.title = fitter.Fit(j.withBrand(j.name), j.target.Padding, limits.Min, limits.Max)
		return StateTranslatingBullets, nil

	case StateTranslatingBullets:
		out, err := j.translate(ctx, strings.Join(j.src.Bullets, "\n"), translator.ModeBullets, false)
		if err != nil {
			return "", err
		}
		j.rawBullets = out
		return StateVerifyingBullets, nil

	case StateVerifyingBullets:
		j.bullets = v.ParseBullets(j.rawBullets)
		if v.BulletsNeedRetry(j.bullets, j.wantLines) {
			j.tracef("bullets need retry: %d of %d lines survived", len(j.bullets), j.wantLines)
			return StateRetryBullets, nil
		}
		return StateCleaningBullets, nil

	case StateRetryBullets:
		out, err := j.translate(ctx, strings.Join(j.src.Bullets, "\n"), translator.ModeBullets, true)
		if err != nil {
			return "", err
		}
		j.retries++
		retried := v.ParseBullets(out)
		decision := arbiter.Bullets(j.bullets, retried)
		j.tracef("%s", decision.Reasoning)
		if decision.UseRetry {
			j.bullets = retried
		}
		return StateCleaningBullets, nil

	case StateCleaningBullets:
		if len(j.bullets) < minTranslatedBullets {
			return "", errors.Mark(
				errors.Newf("only %d bullets survived verification", len(j.bullets)), ErrQualityFailure)
		}
		if len(j.bullets) > verifier.MinBullets {
			j.bullets = j.bullets[:verifier.MinBullets]
		}
		return StateTranslatingDescription, nil

	case StateTranslatingDescription:
		if strings.TrimSpace(j.src.Description) == "" {
			return StateSubstitutingReferences, nil
		}
		j.protected, j.markers = placeholder.Protect(j.src.Description)
		out, err := j.translate(ctx, j.protected, translator.ModeFreeText, false)
		if err != nil {
			return "", err
		}
		j.rawDesc = out
		return StateVerifyingDescription, nil

	case StateVerifyingDescription:
		if retry, why := v.DescriptionNeedsRetry(placeholder.Strip(j.rawDesc), j.target.Code); retry {
			j.tracef("description needs retry: %s", why)
			return StateRetryDescription, nil
		}
		return StateSubstitutingReferences, nil

	case StateRetryDescription:
		out, err := j.translate(ctx, j.protected, translator.ModeFreeText, true)
		if err != nil {
			return "", err
		}
		j.retries++
		decision := arbiter.Description(j.rawDesc, out)
		j.tracef("%s", decision.Reasoning)
		if decision.UseRetry {
			j.rawDesc = out
		}
		return StateSubstitutingReferences, nil

	case StateSubstitutingReferences:
		j.commit()
		return StateDone, nil
	}

	return "", errors.Newf("no transition from state %s", j.state)
}

// commit restores description markup, replaces leftover source names and
// writes the translated bundle.
func (j *job) commit() {
	description := j.src.Description
	if j.rawDesc != "" {
		if missing := placeholder.Validate(j.rawDesc, j.markers); len(missing) > 0 {
			j.tracef("description lost %d markup placeholders", len(missing))
		}
		description = placeholder.Strip(placeholder.Restore(j.rawDesc, j.markers))
	}

	bullets := j.bullets
	for _, name := range j.sourceNames() {
		bullets = substitute.Lines(bullets, j.product.Brand, name, j.name)
		description = substitute.Substitute(description, j.product.Brand, name, j.name)
	}

	*j.bundle = listing.Bundle{
		Title:       j.title,
		Bullets:     bullets,
		Description: description,
		Language:    j.target.Code,
		Translated:  true,
	}
}

// sourceNames lists the untranslated names that may leak into body text,
// longest first so a shorter name never splits a longer one.
func (j *job) sourceNames() []string {
	var names []string
	for _, name := range []string{j.sourceName, j.bundleName} {
		if name == "" || slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, name) }) {
			continue
		}
		names = append(names, name)
	}
	slices.SortStableFunc(names, func(a, b string) int { return len(b) - len(a) })
	return names
}

// sameLanguage reports whether the marketplace already carries the source
// language. The bundle's own language tag is consulted only when no source
// language is known.
func (j *job) sameLanguage() bool {
	if j.source != "" {
		return j.source == j.target.Code
	}
	return j.src.Language != "" && strings.EqualFold(profile.NormalizeCode(j.src.Language), j.target.Code)
}

func (j *job) withBrand(name string) string {
	brand := strings.TrimSpace(j.product.Brand)
	if !j.hadBrand || brand == "" || strings.Contains(strings.ToLower(name), strings.ToLower(brand)) {
		return name
	}
	return brand + " " + name
}

// translate issues one service call, preceded by the stage delay unless it
// is the first call of the marketplace.
func (j *job) translate(ctx context.Context, text string, mode translator.Mode, amplified bool) (string, error) {
	if j.calls > 0 {
		if err := j.o.sleep(ctx, j.o.stageDelay); err != nil {
			return "", errors.Wrap(err, "run cancelled")
		}
	}
	j.calls++
	return j.o.tr.Translate(ctx, translator.Request{
		Text:      text,
		Target:    j.target.Code,
		Mode:      mode,
		Amplified: amplified,
	})
}
