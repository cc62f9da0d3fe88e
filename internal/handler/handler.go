// Package handler provides the Lambda handler for listing localization.
package handler

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/orchestrator"
)

// Request is the input event: one listing record.
type Request struct {
	Record *listing.Record `json:"record"`
}

// Response carries the localized record and a per-marketplace summary.
// Errors are reported in Error rather than failing the invocation.
type Response struct {
	Record         *listing.Record        `json:"record,omitempty"`
	SourceLanguage string                 `json:"sourceLanguage,omitempty"`
	Outcomes       []orchestrator.Outcome `json:"outcomes,omitempty"`
	Succeeded      int                    `json:"succeeded"`
	Failed         int                    `json:"failed"`
	Error          string                 `json:"error,omitempty"`
}

// Runner runs the pipeline over one record.
type Runner interface {
	Run(ctx context.Context, rec *listing.Record) (*orchestrator.OrchestratorResult, error)
}

type Handler struct {
	runner Runner
	logger *zap.SugaredLogger
}

func New(runner Runner, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{runner: runner, logger: logger}
}

// Handle localizes req.Record in place and returns it.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return &Response{Error: err.Error()}, nil
	}

	res, err := h.runner.Run(ctx, req.Record)
	if res == nil {
		h.logger.Warnw("Rejected record", "error", err)
		return &Response{Error: errString(err)}, nil
	}

	resp := &Response{
		Record:         req.Record,
		SourceLanguage: res.SourceLanguage,
		Outcomes:       res.Outcomes,
		Succeeded:      res.Succeeded(),
		Failed:         res.Failed(),
	}
	if err != nil {
		h.logger.Warnw("Run aborted", "error", err)
		resp.Error = err.Error()
	}
	return resp, nil
}

func validateRequest(req Request) error {
	if req.Record == nil {
		return errors.New("record is required")
	}
	if len(req.Record.Listings) == 0 {
		return errors.New("record has no listings")
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return "run produced no result"
	}
	return err.Error()
}
