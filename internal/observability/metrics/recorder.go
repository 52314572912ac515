package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it instead of a concrete metric type so tests can
// pass a NoOpRecorder or a capturing fake.
type Recorder interface {
	// RecordOperation records an operation ("list_sightings") with its status ("success", "error").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type, usually an error category.
	RecordError(operation, errorType string)
}

// NoOpRecorder discards everything.
type NoOpRecorder struct{}

// RecordOperation implements Recorder.
func (NoOpRecorder) RecordOperation(string, string) {}

// RecordDuration implements Recorder.
func (NoOpRecorder) RecordDuration(string, float64) {}

// RecordError implements Recorder.
func (NoOpRecorder) RecordError(string, string) {}

var _ Recorder = NoOpRecorder{}
