package generator

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

// Paced caps the request rate of another backend on the client side.
type Paced struct {
	next    Generator
	limiter *rate.Limiter
}

// NewPaced allows at most perMinute calls per minute through next.
// A non-positive perMinute disables pacing and returns next unchanged.
func NewPaced(next Generator, perMinute int) Generator {
	if perMinute <= 0 {
		return next
	}
	return &Paced{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (p *Paced) Name() string {
	return p.next.Name()
}

func (p *Paced) Generate(ctx context.Context, apiKey string, req Request) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "pacing")
	}
	return p.next.Generate(ctx, apiKey, req)
}
