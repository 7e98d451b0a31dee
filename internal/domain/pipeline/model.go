package pipeline

import (
	"context"
	"fmt"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/geo"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	"github.com/yanqian/bazi-report/internal/domain/report"
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageGeocoding   Stage = "geocoding"
	StageCalculating Stage = "calculating"
	StageGenerating  Stage = "generating"
	StageAssembling  Stage = "assembling"
	StageDone        Stage = "done"
)

// Failure is the terminal state of a run that did not reach StageDone.
type Failure struct {
	Stage   Stage
	Kind    string
	Message string
	Fields  []birth.FieldResult
	Err     error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s failed (%s): %s: %v", f.Stage, f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s failed (%s): %s", f.Stage, f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is either a finished report or a failure, never both.
type Result struct {
	Report     report.Report
	Summary    profile.Summary
	Resolution geo.Resolution
	Missing    []string
	Failure    *Failure
}

// OK reports whether the run reached StageDone.
func (r Result) OK() bool {
	return r.Failure == nil
}

// SectionsVerified reports whether every narrative section came from the provider.
func (r Result) SectionsVerified() bool {
	return r.OK() && len(r.Missing) == 0
}

// ChartResult is the outcome of a calculation-only run.
type ChartResult struct {
	Input      birth.Input
	Resolution geo.Resolution
	Profile    profile.Profile
	Failure    *Failure
}

// OK reports whether the chart was calculated.
func (r ChartResult) OK() bool {
	return r.Failure == nil
}

// Calculator casts a chart through the external calculation service.
type Calculator interface {
	Calculate(ctx context.Context, req profile.Request) (profile.Profile, error)
}
