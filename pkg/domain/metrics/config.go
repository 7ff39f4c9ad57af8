package metrics

import "time"

// DefaultMinDuration is the noise threshold below which a status occupancy is
// treated as an accidental transition.
const DefaultMinDuration = 5 * time.Minute

// Config carries the status taxonomy and thresholds the calculators need.
// Status values are opaque identifiers supplied by the configuration layer;
// the engine only compares them for equality.
type Config struct {
	// PauseStatus marks time excluded from effective elapsed time.
	PauseStatus string
	// ReadyStatus is the literal target of Time-To-Delivery.
	ReadyStatus string
	// WorkStartedStatus anchors Development Lead Time.
	WorkStartedStatus string
	// ExternalTestStatus anchors the Tail metric and ends DevLT.
	ExternalTestStatus string
	// AfterExternalTest lists statuses that occur after external test in the
	// configured workflow ordering, used as the DevLT end-marker fallback.
	AfterExternalTest []string
	// DoneStatuses are the done-like targets of TTM and Tail.
	DoneStatuses TargetStatusSet
	// MinDuration is the noise threshold; zero or negative disables filtering.
	MinDuration time.Duration
}

// occursAfterExternalTest reports whether the status is configured as
// following external test in the workflow.
func (c Config) occursAfterExternalTest(status string) bool {
	for _, s := range c.AfterExternalTest {
		if s == status {
			return true
		}
	}
	return false
}
