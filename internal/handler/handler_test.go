package handler

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/orchestrator"
)

type stubRunner struct {
	result *orchestrator.OrchestratorResult
	err    error
	calls  int
}

func (s *stubRunner) Run(ctx context.Context, rec *listing.Record) (*orchestrator.OrchestratorResult, error) {
	s.calls++
	return s.result, s.err
}

func record() *listing.Record {
	return &listing.Record{
		Title: "Mata do Jogi",
		Listings: map[string]*listing.Bundle{
			"DE": {Title: "Mata do Jogi", Bullets: []string{"a", "b", "c"}},
		},
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name        string
		request     Request
		expectError bool
		errorMsg    string
	}{
		{
			name:    "valid request",
			request: Request{Record: record()},
		},
		{
			name:        "missing record",
			request:     Request{},
			expectError: true,
			errorMsg:    "record is required",
		},
		{
			name:        "no listings",
			request:     Request{Record: &listing.Record{Title: "x"}},
			expectError: true,
			errorMsg:    "record has no listings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.request)

			if tt.expectError {
				if err == nil {
					t.Errorf("validateRequest() should have returned error")
					return
				}
				if err.Error() != tt.errorMsg {
					t.Errorf("validateRequest() error = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("validateRequest() unexpected error: %v", err)
			}
		})
	}
}

func TestHandle_Success(t *testing.T) {
	runner := &stubRunner{result: &orchestrator.OrchestratorResult{
		SourceLanguage: "PL",
		Outcomes: []orchestrator.Outcome{
			{Marketplace: "DE", Language: "DE", State: orchestrator.StateDone, Translated: true},
		},
	}}
	rec := record()

	resp, err := New(runner, nil).Handle(context.Background(), Request{Record: rec})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if resp.Error != "" {
		t.Errorf("unexpected response error %q", resp.Error)
	}
	if resp.Record != rec {
		t.Error("expected the localized record to be returned")
	}
	if resp.Succeeded != 1 || resp.Failed != 0 || resp.SourceLanguage != "PL" {
		t.Errorf("unexpected summary: %+v", resp)
	}
}

func TestHandle_InvalidRequestSkipsRunner(t *testing.T) {
	runner := &stubRunner{}

	resp, err := New(runner, nil).Handle(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected response error")
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times", runner.calls)
	}
}

func TestHandle_RejectedRecord(t *testing.T) {
	runner := &stubRunner{err: errors.Mark(errors.New("unknown marketplace XX"), listing.ErrInvalidRecord)}

	resp, err := New(runner, nil).Handle(context.Background(), Request{Record: record()})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if resp.Error != "unknown marketplace XX" {
		t.Errorf("unexpected error %q", resp.Error)
	}
	if resp.Record != nil {
		t.Error("rejected record must not be echoed")
	}
}

func TestHandle_AbortedRunKeepsRecord(t *testing.T) {
	runner := &stubRunner{
		result: &orchestrator.OrchestratorResult{Outcomes: []orchestrator.Outcome{
			{Marketplace: "DE", State: orchestrator.StateFallback, FallbackUsed: true},
		}},
		err: context.Canceled,
	}

	resp, err := New(runner, nil).Handle(context.Background(), Request{Record: record()})
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if resp.Record == nil || resp.Failed != 1 {
		t.Errorf("expected fallback record returned, got %+v", resp)
	}
	if resp.Error == "" {
		t.Error("expected abort reported")
	}
}
