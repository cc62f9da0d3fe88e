package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/valpere/listran/internal/arbiter"
	"github.com/valpere/listran/internal/cleaner"
	"github.com/valpere/listran/internal/fitter"
	"github.com/valpere/listran/internal/lexicon"
	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/profile"
	"github.com/valpere/listran/internal/substitute"
	"github.com/valpere/listran/internal/translator"
)

// englishPass repairs English-market titles that still carry a non-English
// product name: it translates the raw product name to English once and
// substitutes the result into every affected English bundle. Failures only
// add trace lines.
func (o *Orchestrator) englishPass(ctx context.Context, rec *listing.Record, jobs []*job) []string {
	if o.sourceIsEnglish(jobs) {
		return nil
	}

	var affected []*job
	for _, j := range jobs {
		if j.target.Code == profile.English && j.bundle.Translated && o.looksNonEnglish(j.name) {
			affected = append(affected, j)
		}
	}
	if len(affected) == 0 {
		return nil
	}

	var trace []string
	tracef := func(format string, args ...any) {
		trace = append(trace, "english name pass: "+fmt.Sprintf(format, args...))
	}

	raw := rec.Product().RawName()
	if raw == "" {
		raw = affected[0].sourceName
	}

	name, err := o.translateEnglishName(ctx, raw, affected[0].source, tracef)
	if err != nil {
		o.logger.Warnw("English name pass failed", "error", err)
		tracef("failed: %s", err)
		return trace
	}

	if retry, why := o.verifier.TitleNeedsRetry(name, profile.English, affected[0].source); retry {
		tracef("name %q still flagged (%s)", name, why)
	}

	en, ok := o.profiles.Lookup(profile.English)
	if !ok {
		return trace
	}
	for _, j := range affected {
		old := j.name
		limits := o.profiles.LimitsFor(j.marketplace)
		j.bundle.Title = fitter.Fit(j.withBrand(name), en.Padding, limits.Min, limits.Max)
		for _, src := range append([]string{old}, j.sourceNames()...) {
			j.bundle.Bullets = substitute.Lines(j.bundle.Bullets, rec.Brand, src, name)
			j.bundle.Description = substitute.Substitute(j.bundle.Description, rec.Brand, src, name)
		}
		j.name = name
		tracef("%s title now %q", j.marketplace, j.bundle.Title)
	}
	return trace
}

func (o *Orchestrator) sourceIsEnglish(jobs []*job) bool {
	return len(jobs) > 0 && jobs[0].source == profile.English
}

// translateEnglishName runs one name translation with the usual verify and
// amplified retry.
func (o *Orchestrator) translateEnglishName(ctx context.Context, raw, source string, tracef func(string, ...any)) (string, error) {
	if err := o.sleep(ctx, o.marketplaceDelay); err != nil {
		return "", err
	}
	req := translator.Request{Text: raw, Target: profile.English, Mode: translator.ModeName}
	out, err := o.tr.Translate(ctx, req)
	if err != nil {
		return "", err
	}
	name := cleaner.CleanTitle(out)

	if retry, why := o.verifier.TitleNeedsRetry(name, profile.English, source); retry {
		tracef("name needs retry: %s", why)
		if err := o.sleep(ctx, o.stageDelay); err != nil {
			return "", err
		}
		req.Amplified = true
		retried, err := o.tr.Translate(ctx, req)
		if err != nil {
			return "", err
		}
		if decision := arbiter.Title(name, cleaner.CleanTitle(retried)); decision.UseRetry {
			name = cleaner.CleanTitle(retried)
		}
	}

	if name == "" {
		return "", errors.New("empty English name")
	}
	return name, nil
}

// looksNonEnglish reports whether name carries non-ASCII letters, or
// function words or word endings of another supported language.
func (o *Orchestrator) looksNonEnglish(name string) bool {
	for _, r := range name {
		if unicode.IsLetter(r) && r > unicode.MaxASCII {
			return true
		}
	}

	en, _ := o.profiles.Lookup(profile.English)
	words := lexicon.Words(name)
	set := lexicon.NewSet(name)
	for _, p := range o.profiles.Profiles() {
		if p.Code == profile.English {
			continue
		}
		for _, w := range p.FunctionWords {
			if set.Has(w) && (en == nil || !containsFold(en.FunctionWords, w)) {
				return true
			}
		}
		for _, word := range words {
			for _, suffix := range p.Suffixes {
				if en != nil && containsFold(en.Suffixes, suffix) {
					continue
				}
				if lexicon.RuneLen(word) >= lexicon.RuneLen(suffix)+3 && strings.HasSuffix(word, suffix) {
					return true
				}
			}
		}
	}
	return false
}

func containsFold(list []string, w string) bool {
	for _, s := range list {
		if strings.EqualFold(s, w) {
			return true
		}
	}
	return false
}
