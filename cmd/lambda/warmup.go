package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"
)

const (
	WarmupSource = "warmup"

	// WarmupDelay keeps the instance busy long enough for siblings to overlap.
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent is the scheduled keep-warm payload.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// IsWarmupEvent reports whether event is a keep-warm ping.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var w WarmupEvent
	if err := json.Unmarshal(event, &w); err != nil || w.Source != WarmupSource {
		return nil, false
	}
	return &w, true
}

// HandleWarmup answers a ping and, when asked, invokes this function
// Concurrency more times so that many instances stay warm.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent) (interface{}, error) {
	warmed := 1
	if warmup.Concurrency > 0 {
		if err := selfInvoke(ctx, warmup.Concurrency); err == nil {
			warmed += warmup.Concurrency
		}
	}

	time.Sleep(WarmupDelay)

	return map[string]interface{}{
		"statusCode": 200,
		"body":       WarmupResponse{Status: "warm", InstancesWarmed: warmed},
	}, nil
}

func selfInvoke(ctx context.Context, count int) error {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}
	client := lambdasdk.NewFromConfig(cfg)

	// Children get concurrency 0 so they do not fan out again.
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	var g errgroup.Group
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}
