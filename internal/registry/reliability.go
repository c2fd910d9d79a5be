package registry

import (
	"math"
	"time"
)

// neutralScore is the reliability score of a planner with no evidence.
const neutralScore = 0.5

// maxErrorLen bounds the captured error text on a failed invocation or
// self-test.
const maxErrorLen = 256

// ReliabilityState holds the rolling, time-decayed statistics for one
// planner. All mutation happens under the registry lock; concurrent
// invocations of the same planner are serialized there to prevent lost
// updates. The state is never deleted while the process lives.
type ReliabilityState struct {
	// Invocations is the total number of completed generation calls.
	Invocations int64

	// Failures is the total number of failed generation calls.
	Failures int64

	// AvgDuration is the rolling average generation duration.
	AvgDuration time.Duration

	// LastSuccess is the timestamp of the most recent successful call.
	LastSuccess time.Time

	// LastActivity is the timestamp of the most recent completed call.
	LastActivity time.Time

	// Admission is the current quarantine state.
	Admission AdmissionState

	// QuarantineReason explains the quarantine when Admission is
	// AdmissionQuarantined.
	QuarantineReason string

	// SelfTest is the recorded self-test outcome.
	SelfTest SelfTestOutcome

	// LastError is the truncated text of the most recent error.
	LastError string

	// Score is the decayed reliability score in [0,1].
	Score float64

	// weightedOK and weightedTotal are the exponentially decayed success
	// and invocation counts backing Score. Recent evidence dominates.
	weightedOK    float64
	weightedTotal float64
}

// newReliabilityState returns the initial state for a fresh registration.
func newReliabilityState() ReliabilityState {
	return ReliabilityState{
		Admission: AdmissionQuarantined,
		Score:     neutralScore,
	}
}

// recordOutcome folds one completed invocation into the state. The
// exponential half-life decays prior evidence before the new observation is
// added, so the score tracks recent behavior.
func (s *ReliabilityState) recordOutcome(now time.Time, duration time.Duration, ok bool, halfLife time.Duration, errText string) {
	if halfLife > 0 && !s.LastActivity.IsZero() {
		elapsed := now.Sub(s.LastActivity)
		if elapsed > 0 {
			decay := math.Pow(0.5, elapsed.Seconds()/halfLife.Seconds())
			s.weightedOK *= decay
			s.weightedTotal *= decay
		}
	}

	s.weightedTotal++
	if ok {
		s.weightedOK++
		s.LastSuccess = now
	} else {
		s.Failures++
		s.LastError = truncateError(errText)
	}

	s.Invocations++
	s.LastActivity = now

	// Cumulative moving average over all invocations.
	s.AvgDuration += (duration - s.AvgDuration) / time.Duration(s.Invocations)

	s.Score = clamp01(s.weightedOK / s.weightedTotal)
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// truncateError bounds error text captured into the state.
func truncateError(text string) string {
	if len(text) > maxErrorLen {
		return text[:maxErrorLen]
	}
	return text
}

// Snapshot is the read-only diagnostics view of one planner's state.
type Snapshot struct {
	Record           Record          `json:"record" yaml:"record"`
	Admission        AdmissionState  `json:"admission" yaml:"admission"`
	QuarantineReason string          `json:"quarantine_reason,omitempty" yaml:"quarantine_reason,omitempty"`
	SelfTest         SelfTestOutcome `json:"self_test" yaml:"self_test"`
	Invocations      int64           `json:"invocations" yaml:"invocations"`
	Failures         int64           `json:"failures" yaml:"failures"`
	AvgDurationMS    int64           `json:"avg_duration_ms" yaml:"avg_duration_ms"`
	LastSuccess      time.Time       `json:"last_success,omitempty" yaml:"last_success,omitempty"`
	LastError        string          `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	Reliability      float64         `json:"reliability" yaml:"reliability"`
}
