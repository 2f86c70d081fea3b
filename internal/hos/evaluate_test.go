package hos_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tripline/eld-backend/internal/domain"
	"github.com/tripline/eld-backend/internal/hos"
)

// span builds consecutive intervals starting at a fixed origin: each call
// appends an interval of the given length after the previous one.
type spanBuilder struct {
	cursor    time.Time
	intervals []domain.StatusInterval
}

func newSpanBuilder() *spanBuilder {
	return &spanBuilder{cursor: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
}

func (b *spanBuilder) add(status domain.DutyStatus, d time.Duration) *spanBuilder {
	end := b.cursor.Add(d)
	b.intervals = append(b.intervals, domain.StatusInterval{Status: status, Start: b.cursor, End: end})
	b.cursor = end
	return b
}

func TestEvaluate_NoHistoryNoWarnings(t *testing.T) {
	assert.Empty(t, hos.Evaluate(nil, 0))
}

func TestEvaluate_TwelveHourDrive(t *testing.T) {
	b := newSpanBuilder().add(domain.StatusDriving, 12*time.Hour)

	warnings := hos.Evaluate(b.intervals, 0)

	// 12h driving breaches the 11-hour and 8-hour-break rules but not the
	// 14-hour on-duty window.
	assert.Contains(t, warnings, "Driving time exceeds 11-hour limit since last 10-hour rest.")
	assert.NotContains(t, warnings, "On-duty window exceeds 14-hour limit since last 10-hour rest.")
	assert.Contains(t, warnings, "30-minute break required after 8 cumulative driving hours.")
}

func TestEvaluate_ExactLimitsDoNotFire(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusDriving, 8*time.Hour).
		add(domain.StatusOffDuty, 30*time.Minute).
		add(domain.StatusDriving, 3*time.Hour).
		add(domain.StatusOnDuty, 3*time.Hour)

	// driving 11h exactly, on-duty 14h exactly: limits are strict.
	warnings := hos.Evaluate(b.intervals, 0)

	assert.Empty(t, warnings)
}

func TestEvaluate_FourteenHourWindow(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusOnDuty, 8*time.Hour).
		add(domain.StatusDriving, 7*time.Hour)

	warnings := hos.Evaluate(b.intervals, 0)

	assert.Contains(t, warnings, "On-duty window exceeds 14-hour limit since last 10-hour rest.")
}

func TestEvaluate_ThirtyMinuteBreakClearsDrivingAccumulator(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusDriving, 5*time.Hour).
		add(domain.StatusOffDuty, 30*time.Minute).
		add(domain.StatusDriving, 5*time.Hour)

	warnings := hos.Evaluate(b.intervals, 0)

	// 10h total driving but never more than 5h between breaks.
	assert.NotContains(t, warnings, "30-minute break required after 8 cumulative driving hours.")
	assert.NotContains(t, warnings, "Driving time exceeds 11-hour limit since last 10-hour rest.")
}

func TestEvaluate_ShortRestDoesNotClearBreakAccumulator(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusDriving, 5*time.Hour).
		add(domain.StatusOffDuty, 20*time.Minute).
		add(domain.StatusDriving, 4*time.Hour)

	warnings := hos.Evaluate(b.intervals, 0)

	assert.Contains(t, warnings, "30-minute break required after 8 cumulative driving hours.")
}

func TestEvaluate_TenHourRestResetsEverything(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusDriving, 11*time.Hour).
		add(domain.StatusOnDuty, 4*time.Hour).
		add(domain.StatusSleeperBerth, 10*time.Hour).
		add(domain.StatusDriving, 2*time.Hour)

	warnings := hos.Evaluate(b.intervals, 0)

	// Everything before the 10-hour sleeper period is wiped; only 2h of
	// driving counts afterwards.
	assert.Empty(t, warnings)
}

// Reset monotonicity: a qualifying rest zeroes all accumulators, so a
// timeline ending right after the rest can never warn regardless of what
// preceded it.
func TestEvaluate_ResetMonotonicity(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusDriving, 20*time.Hour).
		add(domain.StatusOnDuty, 20*time.Hour).
		add(domain.StatusOffDuty, 10*time.Hour)

	warnings := hos.Evaluate(b.intervals, 0)

	assert.Empty(t, warnings)
}

func TestEvaluate_CycleLimit(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusOnDuty, 6*time.Hour+30*time.Minute)

	warnings := hos.Evaluate(b.intervals, 65.0)

	// 65 + 6.5 = 71.5 > 70.
	assert.Contains(t, warnings, "Planned work exceeds 70-hour / 8-day cycle limit.")
}

func TestEvaluate_CycleLimitNotReached(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusOnDuty, 4*time.Hour)

	warnings := hos.Evaluate(b.intervals, 65.0)

	assert.Empty(t, warnings)
}

func TestEvaluate_WarningOrderIsFixed(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusDriving, 12*time.Hour).
		add(domain.StatusOnDuty, 3*time.Hour)

	warnings := hos.Evaluate(b.intervals, 60.0)

	assert.Equal(t, []string{
		"Driving time exceeds 11-hour limit since last 10-hour rest.",
		"On-duty window exceeds 14-hour limit since last 10-hour rest.",
		"30-minute break required after 8 cumulative driving hours.",
		"Planned work exceeds 70-hour / 8-day cycle limit.",
	}, warnings)
}

func TestEvaluate_Idempotent(t *testing.T) {
	b := newSpanBuilder().
		add(domain.StatusDriving, 9*time.Hour).
		add(domain.StatusOffDuty, 1*time.Hour).
		add(domain.StatusDriving, 3*time.Hour)

	first := hos.Evaluate(b.intervals, 10)
	second := hos.Evaluate(b.intervals, 10)

	assert.Equal(t, first, second)
}
