package generator

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/cockroachdb/errors"
)

// LambdaInvoker is the subset of the Lambda client the backend uses.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// Lambda delegates generation to an AWS Lambda function that accepts a
// LambdaPayload and answers with a LambdaResult.
type Lambda struct {
	function string
	client   LambdaInvoker
}

type LambdaPayload struct {
	Instructions string `json:"instructions"`
	Content      string `json:"content"`
	Target       string `json:"target,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
}

type LambdaResult struct {
	Text        string `json:"text"`
	Error       string `json:"error,omitempty"`
	RateLimited bool   `json:"rate_limited,omitempty"`
}

// NewLambda loads the default AWS configuration and targets function.
func NewLambda(ctx context.Context, function string) (*Lambda, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	return NewLambdaWithClient(function, lambdasdk.NewFromConfig(cfg)), nil
}

func NewLambdaWithClient(function string, client LambdaInvoker) *Lambda {
	return &Lambda{function: function, client: client}
}

func (s *Lambda) Name() string {
	return "lambda"
}

func (s *Lambda) Generate(ctx context.Context, apiKey string, req Request) (string, error) {
	payload, err := json.Marshal(LambdaPayload{
		Instructions: req.Instructions,
		Content:      req.Content,
		Target:       req.Target,
		APIKey:       apiKey,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	out, err := s.client.Invoke(ctx, &lambdasdk.InvokeInput{
		FunctionName: aws.String(s.function),
		Payload:      payload,
	})
	if err != nil {
		var tooMany *types.TooManyRequestsException
		if errors.As(err, &tooMany) {
			return "", RateLimited(errors.Wrapf(err, "invoke %s", s.function))
		}
		return "", errors.Wrapf(err, "failed to invoke %s", s.function)
	}
	if out.FunctionError != nil {
		return "", errors.Newf("lambda error: %s", *out.FunctionError)
	}

	var res LambdaResult
	if err := json.Unmarshal(out.Payload, &res); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal response")
	}
	if res.RateLimited {
		return "", RateLimited(errors.Newf("%s: %s", s.function, res.Error))
	}
	if res.Error != "" {
		return "", errors.Newf("%s: %s", s.function, res.Error)
	}
	return res.Text, nil
}
