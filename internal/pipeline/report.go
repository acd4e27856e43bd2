package pipeline

import (
	"time"

	"pipeline/internal/domain"
)

// Status is the terminal state of one (product, aspect ratio) item.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// ItemResult records the outcome of one (product, aspect ratio) item. A
// failed item never aborts its siblings.
type ItemResult struct {
	ProductID  string
	Ratio      string
	Status     Status
	Provenance domain.Provenance
	OutputPath string
	Err        error
}

// Cause returns the failure reason, empty for successes.
func (r ItemResult) Cause() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Report aggregates every item outcome of a run. The run always reaches a
// finished report, whatever the per-item outcomes were.
type Report struct {
	RunID      string
	Campaign   string
	StartedAt  time.Time
	FinishedAt time.Time
	Items      []ItemResult
}

// Succeeded counts successful items.
func (r Report) Succeeded() int {
	n := 0
	for _, item := range r.Items {
		if item.Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed counts failed items.
func (r Report) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// HasFailures reports whether any item failed.
func (r Report) HasFailures() bool {
	return r.Failed() > 0
}

// ReusedSuccesses counts successes sourced from an existing asset.
func (r Report) ReusedSuccesses() int {
	return r.provenanceSuccesses(domain.ProvenanceReused)
}

// GeneratedSuccesses counts successes sourced from a generated asset.
func (r Report) GeneratedSuccesses() int {
	return r.provenanceSuccesses(domain.ProvenanceGenerated)
}

func (r Report) provenanceSuccesses(p domain.Provenance) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == StatusSucceeded && item.Provenance == p {
			n++
		}
	}
	return n
}
