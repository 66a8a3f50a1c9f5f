package orchestrators

import (
	"context"
	"log/slog"

	"clubdash/internal/adapters/formtext"
	"clubdash/internal/domain/funding"
)

// AnalyzeFormInput is an uploaded funding form.
type AnalyzeFormInput struct {
	Filename string
	Data     []byte
}

// AnalyzeFormDeps holds dependencies for AnalyzeForm.
type AnalyzeFormDeps struct {
	Analyzer funding.Analyzer
}

// ExecuteAnalyzeForm extracts the form's text and reviews it. Nothing is stored.
// PRE: none
// POST: formtext.ErrUnsupported / formtext.ErrTooLarge for unusable uploads
func ExecuteAnalyzeForm(ctx context.Context, input AnalyzeFormInput, deps AnalyzeFormDeps) (funding.Analysis, error) {
	text, err := formtext.Extract(input.Filename, input.Data)
	if err != nil {
		return funding.Analysis{}, err
	}
	analysis, err := deps.Analyzer.Analyze(ctx, text)
	if err != nil {
		return funding.Analysis{}, err
	}
	slog.Info("funding_event", "event", "form_analyzed", "bytes", len(input.Data), "issues", len(analysis.Issues))
	return analysis, nil
}
