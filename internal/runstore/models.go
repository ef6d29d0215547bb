package runstore

import "time"

// Status represents the lifecycle of a resolution run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusReview    Status = "review"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the run has finished.
func (s Status) IsTerminal() bool {
	return s != StatusRunning && s != ""
}

// RunInput describes a run about to start.
type RunInput struct {
	PlanID     string
	PlanPath   string
	OutputPath string
	SceneCount int
}

// Run is a persisted resolution run.
type Run struct {
	ID           string
	PlanID       string
	PlanPath     string
	OutputPath   string
	Status       Status
	SceneCount   int
	AssetsTotal  int
	AssetsReady  int
	AssetsFailed int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Elapsed returns the run duration, or zero while it is still running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// AssetRecord is the last known outcome for one asset in a run.
type AssetRecord struct {
	RunID        string
	SceneIndex   int
	AssetID      string
	Status       string
	URL          string
	ErrorMessage string
	UpdatedAt    time.Time
}
