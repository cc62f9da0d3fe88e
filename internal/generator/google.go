package generator

import (
	"context"
	"html"
	"net/http"

	translate "cloud.google.com/go/translate"
	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleTranslate uses the Cloud Translation API. It has no notion of
// instructions and translates the content into req.Target directly.
type GoogleTranslate struct {
	credentials string
}

// NewGoogleTranslate authenticates with the API key passed per call, or
// with the service-account file at credentials when no key is given.
func NewGoogleTranslate(credentials string) *GoogleTranslate {
	return &GoogleTranslate{credentials: credentials}
}

func (s *GoogleTranslate) Name() string {
	return "google"
}

func (s *GoogleTranslate) Generate(ctx context.Context, apiKey string, req Request) (string, error) {
	target, err := language.Parse(req.Target)
	if err != nil {
		return "", errors.Wrapf(err, "invalid target language %q", req.Target)
	}

	var opts []option.ClientOption
	switch {
	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))
	case s.credentials != "":
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return "", errors.Wrap(err, "failed to create client")
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Content}, target, &translate.Options{
		Format: translate.Text,
	})
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
			return "", RateLimited(errors.Wrap(err, "google translate"))
		}
		return "", errors.Wrap(err, "translation failed")
	}
	if len(translations) == 0 {
		return "", errors.New("no translation returned")
	}

	return html.UnescapeString(translations[0].Text), nil
}
