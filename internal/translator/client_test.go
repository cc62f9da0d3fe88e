package translator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/listran/internal/credential"
	"github.com/valpere/listran/internal/generator"
)

type call struct {
	key string
	req generator.Request
}

// scripted replays a fixed sequence of results.
type scripted struct {
	mu      sync.Mutex
	results []result
	calls   []call
}

type result struct {
	text string
	err  error
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Generate(_ context.Context, key string, req generator.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{key: key, req: req})
	if len(s.results) == 0 {
		return "", errors.New("no scripted result")
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.text, r.err
}

type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestClient(t *testing.T, gen generator.Generator, keys []string) (*Client, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	c, err := NewClient(Config{
		Generator:   gen,
		Credentials: credential.NewRotator(keys),
		BaseDelay:   time.Second,
		RotateDelay: 100 * time.Millisecond,
		Sleep:       rec.sleep,
	})
	require.NoError(t, err)
	return c, rec
}

func TestNewClient_RequiresGenerator(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestTranslate_Success(t *testing.T) {
	gen := &scripted{results: []result{{text: "Translation: Yogamatte rutschfest"}}}
	c, rec := newTestClient(t, gen, []string{"k1"})

	out, err := c.Translate(context.Background(), Request{Text: "Mata do jogi", Target: "DE", Mode: ModeName})
	require.NoError(t, err)
	assert.Equal(t, "Yogamatte rutschfest", out)
	assert.Empty(t, rec.delays)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, "k1", gen.calls[0].key)
	assert.Equal(t, "de", gen.calls[0].req.Target)
	assert.Equal(t, "Mata do jogi", gen.calls[0].req.Content)
	assert.Contains(t, gen.calls[0].req.Instructions, "PRODUCT NAME into German")
}

func TestTranslate_UnknownTarget(t *testing.T) {
	c, _ := newTestClient(t, &scripted{}, nil)
	_, err := c.Translate(context.Background(), Request{Text: "x", Target: "XX"})
	assert.Error(t, err)
}

func TestTranslate_RateLimitRotates(t *testing.T) {
	gen := &scripted{results: []result{
		{err: generator.RateLimited(errors.New("429"))},
		{err: generator.RateLimited(errors.New("429"))},
		{text: "ok"},
	}}
	c, rec := newTestClient(t, gen, []string{"k1", "k2", "k3"})

	out, err := c.Translate(context.Background(), Request{Text: "x", Target: "DE", Mode: ModeFreeText})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	keys := []string{gen.calls[0].key, gen.calls[1].key, gen.calls[2].key}
	assert.Equal(t, []string{"k1", "k2", "k3"}, keys)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, rec.delays)
}

func TestTranslate_ExhaustedPoolBacksOff(t *testing.T) {
	rl := result{err: generator.RateLimited(errors.New("429"))}
	gen := &scripted{results: []result{rl, rl, rl, {text: "ok"}}}
	c, rec := newTestClient(t, gen, []string{"k1", "k2"})

	out, err := c.Translate(context.Background(), Request{Text: "x", Target: "DE"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	// first rotation succeeds, then the pool is exhausted
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 2 * time.Second, 3 * time.Second}, rec.delays)
	assert.Equal(t, "k2", gen.calls[3].key)
}

func TestTranslate_TransientBackoffAndExhaustion(t *testing.T) {
	gen := generator.Func(func(context.Context, string, generator.Request) (string, error) {
		return "", errors.New("boom")
	})
	c, rec := newTestClient(t, gen, []string{"k1"})

	_, err := c.Translate(context.Background(), Request{Text: "x", Target: "FR", Mode: ModeBullets})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))
	assert.Contains(t, err.Error(), "boom")

	want := []time.Duration{1 * time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second, 5 * time.Second}
	assert.Equal(t, want, rec.delays)
}

func TestTranslate_EmptyOutputRetried(t *testing.T) {
	gen := &scripted{results: []result{{text: "  "}, {text: "<think>...</think>"}, {text: "Bonjour"}}}
	c, rec := newTestClient(t, gen, nil)

	out, err := c.Translate(context.Background(), Request{Text: "Hello", Target: "FR"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out)
	assert.Len(t, rec.delays, 2)
}

func TestTranslate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestClient(t, &scripted{results: []result{{text: "x"}}}, nil)
	_, err := c.Translate(ctx, Request{Text: "x", Target: "DE"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTranslate_StripsInstructionEcho(t *testing.T) {
	echo := "Ich muss jede Zeile übersetzen. Wichtig: keine neuen Abschnitte.\n\nRutschfeste Oberfläche\nLeichtes Gewicht"
	gen := &scripted{results: []result{{text: echo}}}
	c, _ := newTestClient(t, gen, nil)

	out, err := c.Translate(context.Background(), Request{Text: "a\nb", Target: "DE", Mode: ModeBullets})
	require.NoError(t, err)
	assert.Equal(t, "Rutschfeste Oberfläche\nLeichtes Gewicht", out)
}

func TestInstructions(t *testing.T) {
	c, _ := newTestClient(t, &scripted{}, nil)
	de, ok := c.profiles.Lookup("DE")
	require.True(t, ok)

	tests := []struct {
		name      string
		mode      Mode
		amplified bool
		contains  []string
	}{
		{"name", ModeName, false, []string{"PRODUCT NAME", "not the name of a person", "Do not transliterate"}},
		{"bullets", ModeBullets, false, []string{"line by line", "same number of lines", "Do not add section headings"}},
		{"free text", ModeFreeText, false, []string{"product description into German", "[PHn]"}},
		{"amplified", ModeName, true, []string{"TRANSLATE TO GERMAN:", "must be German"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Instructions(tt.mode, de, tt.amplified)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			assert.Equal(t, tt.amplified, strings.HasPrefix(got, "TRANSLATE TO"))
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "name", ModeName.String())
	assert.Equal(t, "bullets", ModeBullets.String())
	assert.Equal(t, "freeText", ModeFreeText.String())
	assert.Equal(t, "unknown", Mode(42).String())
}
