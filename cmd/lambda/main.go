/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package main is the entry point for the listing localization Lambda.
package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/valpere/listran/internal/config"
	"github.com/valpere/listran/internal/handler"
)

var (
	initOnce sync.Once
	h        *handler.Handler
	initErr  error
)

func main() {
	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Warmup events never reach the pipeline.
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup)
	}

	var req handler.Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	initOnce.Do(func() { h, initErr = build(ctx) })
	if initErr != nil {
		return nil, initErr
	}
	return h.Handle(ctx, req)
}

// build wires the pipeline once per container from LISTRAN_* variables.
func build(ctx context.Context) (*handler.Handler, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		logger = zap.NewNop().Sugar()
	}
	gen, err := cfg.Generator(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build backend")
	}
	orch, err := cfg.Pipeline(gen, logger)
	if err != nil {
		return nil, err
	}
	return handler.New(orch, logger), nil
}
