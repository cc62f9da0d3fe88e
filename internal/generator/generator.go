// Package generator wraps the external text-generation services the
// localization pipeline talks to. Every backend accepts an instruction
// block plus content and returns free text; the only failure it
// distinguishes is ErrRateLimited.
package generator

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrRateLimited is returned (wrapped) when the service rejects a call
// because the credential in use hit its quota.
var ErrRateLimited = errors.New("rate limited")

// Request is one call to the service.
type Request struct {
	Instructions string `json:"instructions"`
	Content      string `json:"content"`
	// Target is the BCP 47 tag of the wanted output language. Backends
	// driven purely by instructions may ignore it.
	Target string `json:"target,omitempty"`
}

// Generator is a text-generation backend. apiKey is supplied per call so
// the caller can rotate credentials between attempts.
type Generator interface {
	Name() string
	Generate(ctx context.Context, apiKey string, req Request) (string, error)
}

// IsRateLimited reports whether err carries the rate-limit signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// RateLimited wraps cause so that IsRateLimited recognises it.
func RateLimited(cause error) error {
	if cause == nil {
		return ErrRateLimited
	}
	return errors.Mark(cause, ErrRateLimited)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, apiKey string, req Request) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Generate(ctx context.Context, apiKey string, req Request) (string, error) {
	return f(ctx, apiKey, req)
}
