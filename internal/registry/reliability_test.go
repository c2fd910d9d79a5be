package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReliability_NeutralDefault(t *testing.T) {
	s := newReliabilityState()
	assert.Equal(t, neutralScore, s.Score)
	assert.Equal(t, int64(0), s.Invocations)
}

func TestReliability_ScoreStaysBounded(t *testing.T) {
	s := newReliabilityState()
	now := time.Now()

	for i := 0; i < 50; i++ {
		ok := i%3 != 0
		s.recordOutcome(now.Add(time.Duration(i)*time.Second), 5*time.Millisecond, ok, time.Hour, "err")
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0)
	}
}

func TestReliability_AllSuccessAndAllFailureBaselines(t *testing.T) {
	now := time.Now()

	good := newReliabilityState()
	bad := newReliabilityState()
	for i := 0; i < 10; i++ {
		ts := now.Add(time.Duration(i) * time.Second)
		good.recordOutcome(ts, time.Millisecond, true, time.Hour, "")
		bad.recordOutcome(ts, time.Millisecond, false, time.Hour, "boom")
	}

	assert.Equal(t, 1.0, good.Score)
	assert.Equal(t, 0.0, bad.Score)
	assert.Equal(t, int64(10), bad.Failures)
}

// Ten failures followed, one half-life later, by ten successes: the decayed
// score must land closer to the all-success baseline than the all-failure
// one.
func TestReliability_RecentEvidenceDominates(t *testing.T) {
	halfLife := time.Hour
	base := time.Now()

	s := newReliabilityState()
	for i := 0; i < 10; i++ {
		s.recordOutcome(base.Add(time.Duration(i)*time.Second), time.Millisecond, false, halfLife, "boom")
	}

	late := base.Add(2 * halfLife)
	for i := 0; i < 10; i++ {
		s.recordOutcome(late.Add(time.Duration(i)*time.Second), time.Millisecond, true, halfLife, "")
	}

	distanceToSuccess := 1.0 - s.Score
	distanceToFailure := s.Score
	assert.Less(t, distanceToSuccess, distanceToFailure,
		"score %f should sit closer to the all-success baseline", s.Score)
}

// With identical success/failure counts, more recent activity never scores
// below older activity once decay is applied.
func TestReliability_DecayMonotonicity(t *testing.T) {
	halfLife := time.Hour
	base := time.Now()

	older := newReliabilityState()
	newer := newReliabilityState()

	for i := 0; i < 6; i++ {
		ok := i%2 == 0
		older.recordOutcome(base.Add(time.Duration(i)*time.Minute), time.Millisecond, ok, halfLife, "e")
		newer.recordOutcome(base.Add(3*time.Hour+time.Duration(i)*time.Minute), time.Millisecond, ok, halfLife, "e")
	}

	assert.GreaterOrEqual(t, newer.Score, older.Score)
}

func TestReliability_AvgDurationCumulative(t *testing.T) {
	s := newReliabilityState()
	now := time.Now()

	s.recordOutcome(now, 100*time.Millisecond, true, time.Hour, "")
	s.recordOutcome(now.Add(time.Second), 200*time.Millisecond, true, time.Hour, "")

	assert.Equal(t, 150*time.Millisecond, s.AvgDuration)
}

func TestTruncateError(t *testing.T) {
	long := make([]byte, maxErrorLen*2)
	for i := range long {
		long[i] = 'x'
	}

	assert.Len(t, truncateError(string(long)), maxErrorLen)
	assert.Equal(t, "short", truncateError("short"))
}
