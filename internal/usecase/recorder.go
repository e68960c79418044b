package usecase

import "time"

// Outcome labels reported to a Recorder
const (
	OutcomeHit      = "hit"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeSkipped  = "skipped"
	SearchPrimary   = "primary"
	SearchAlternate = "alternate"
)

// Recorder receives matching and comparison telemetry
type Recorder interface {
	ObserveSearch(kind, outcome string)
	ObserveExpansion(outcome string)
	IncDegradedItem()
	ObserveComparison(items int, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveSearch(string, string) {}
func (noopRecorder) ObserveExpansion(string) {}
func (noopRecorder) IncDegradedItem() {}
func (noopRecorder) ObserveComparison(int, time.Duration) {}
