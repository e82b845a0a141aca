package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/break-scheduler-api-go/pkg/models"
)

// Shift 09:00-17:00 in minutes.
const (
	shiftStart = 9 * 60
	shiftEnd   = 17 * 60
)

func booked(kind models.BreakKind, startMin, endMin int) models.Break {
	return models.Break{Kind: kind, StartMin: startMin, EndMin: endMin, Status: models.StatusScheduled}
}

func TestValidate(t *testing.T) {
	p := DefaultPolicy()

	tests := map[string]struct {
		candidate Candidate
		existing  []models.Break
		wantRule  string // empty means accepted
	}{
		"first_break_in_first_hour_rejected": {
			// Scenario: shift 09:00-17:00, request 09:00-09:15.
			candidate: Candidate{Kind: models.BreakFirst, StartMin: 9 * 60, EndMin: 9*60 + 15},
			wantRule:  RuleBoundary,
		},
		"break_into_last_hour_rejected": {
			candidate: Candidate{Kind: models.BreakFirst, StartMin: 15*60 + 50, EndMin: 16*60 + 5},
			wantRule:  RuleBoundary,
		},
		"first_break_at_earliest_minute_accepted": {
			candidate: Candidate{Kind: models.BreakFirst, StartMin: 10 * 60, EndMin: 10*60 + 15},
		},
		"break_ending_exactly_at_buffer_accepted": {
			candidate: Candidate{Kind: models.BreakFirst, StartMin: 15*60 + 45, EndMin: 16 * 60},
		},
		"duplicate_kind_rejected": {
			candidate: Candidate{Kind: models.BreakFirst, StartMin: 12 * 60, EndMin: 12*60 + 15},
			existing:  []models.Break{booked(models.BreakFirst, 10*60, 10*60+15)},
			wantRule:  RuleDuplicate,
		},
		"second_without_first_rejected": {
			candidate: Candidate{Kind: models.BreakSecond, StartMin: 12 * 60, EndMin: 12*60 + 30},
			wantRule:  RuleSequence,
		},
		"third_without_second_rejected": {
			candidate: Candidate{Kind: models.BreakThird, StartMin: 15 * 60, EndMin: 15*60 + 15},
			existing:  []models.Break{booked(models.BreakFirst, 10*60, 10*60+15)},
			wantRule:  RuleSequence,
		},
		"second_too_close_to_first_rejected": {
			// First ends 10:15; 12:00 start is a 105 minute gap, below 120.
			candidate: Candidate{Kind: models.BreakSecond, StartMin: 12 * 60, EndMin: 12*60 + 30},
			existing:  []models.Break{booked(models.BreakFirst, 10*60, 10*60+15)},
			wantRule:  RuleGap,
		},
		"second_with_sufficient_gap_accepted": {
			// First ends 10:15; 12:20 start is a 125 minute gap from that end.
			candidate: Candidate{Kind: models.BreakSecond, StartMin: 12*60 + 20, EndMin: 12*60 + 50},
			existing:  []models.Break{booked(models.BreakFirst, 10*60, 10*60+15)},
		},
		"second_at_exact_minimum_gap_accepted": {
			// First ends 10:15; the gap rule is inclusive, 12:15 is exactly 120.
			candidate: Candidate{Kind: models.BreakSecond, StartMin: 12*60 + 15, EndMin: 12*60 + 45},
			existing:  []models.Break{booked(models.BreakFirst, 10*60, 10*60+15)},
		},
		"third_too_close_to_second_rejected": {
			// Second ends 12:50; 14:30 is a 100 minute gap, below 150.
			candidate: Candidate{Kind: models.BreakThird, StartMin: 14*60 + 30, EndMin: 14*60 + 45},
			existing: []models.Break{
				booked(models.BreakFirst, 10*60, 10*60+15),
				booked(models.BreakSecond, 12*60+20, 12*60+50),
			},
			wantRule: RuleGap,
		},
		"third_gap_to_first_checked_independently": {
			// Second gap holds (150+) but first ended 10:15 and 270 minutes
			// later is 14:45, so a 14:40 start must still be rejected.
			candidate: Candidate{Kind: models.BreakThird, StartMin: 14*60 + 40, EndMin: 14*60 + 55},
			existing: []models.Break{
				booked(models.BreakFirst, 10*60, 10*60+15),
				booked(models.BreakSecond, 11*60+30, 12*60),
			},
			wantRule: RuleGap,
		},
		"third_with_both_gaps_accepted": {
			// First ends 10:15 (+270 = 14:45), second ends 12:05 (+150 = 14:35).
			candidate: Candidate{Kind: models.BreakThird, StartMin: 14*60 + 45, EndMin: 15 * 60},
			existing: []models.Break{
				booked(models.BreakFirst, 10*60, 10*60+15),
				booked(models.BreakSecond, 11*60+35, 12*60+5),
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := Validate(p, tc.candidate, shiftStart, shiftEnd, tc.existing)
			if tc.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ViolationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.wantRule, ve.Rule)
			assert.NotEmpty(t, ve.Reason)
		})
	}
}

func TestValidateBoundaryOverLongerShift(t *testing.T) {
	// Boundary rule uses the shift's own window, whatever its length.
	p := DefaultPolicy()
	err := Validate(p, Candidate{Kind: models.BreakFirst, StartMin: 7 * 60, EndMin: 7*60 + 15}, 6*60, 18*60, nil)
	assert.NoError(t, err)
}

func TestWindow(t *testing.T) {
	p := DefaultPolicy()

	t.Run("first_break_full_window", func(t *testing.T) {
		earliest, latest, err := Window(p, models.BreakFirst, shiftStart, shiftEnd, nil)
		require.NoError(t, err)
		assert.Equal(t, 10*60, earliest)
		// 17:00 - 60 - 15 = 15:45
		assert.Equal(t, 15*60+45, latest)
	})

	t.Run("second_window_pushed_by_gap", func(t *testing.T) {
		existing := []models.Break{booked(models.BreakFirst, 10*60, 10*60+15)}
		earliest, latest, err := Window(p, models.BreakSecond, shiftStart, shiftEnd, existing)
		require.NoError(t, err)
		// First ends 10:15 + 120 = 12:15.
		assert.Equal(t, 12*60+15, earliest)
		// 17:00 - 60 - 30 = 15:30.
		assert.Equal(t, 15*60+30, latest)
	})

	t.Run("third_window_uses_strictest_gap", func(t *testing.T) {
		existing := []models.Break{
			booked(models.BreakFirst, 10*60, 10*60+15),
			booked(models.BreakSecond, 12*60+15, 12*60+45),
		}
		earliest, latest, err := Window(p, models.BreakThird, shiftStart, shiftEnd, existing)
		require.NoError(t, err)
		// max(second end 12:45 + 150 = 15:15, first end 10:15 + 270 = 14:45).
		assert.Equal(t, 15*60+15, earliest)
		assert.Equal(t, 15*60+45, latest)
	})

	t.Run("no_available_slot", func(t *testing.T) {
		// A late second break leaves no legal third start.
		existing := []models.Break{
			booked(models.BreakFirst, 10*60, 10*60+15),
			booked(models.BreakSecond, 14*60, 14*60+30),
		}
		_, _, err := Window(p, models.BreakThird, shiftStart, shiftEnd, existing)
		assert.ErrorIs(t, err, ErrNoAvailableSlot)
	})

	t.Run("missing_precondition_is_sequence_violation", func(t *testing.T) {
		_, _, err := Window(p, models.BreakThird, shiftStart, shiftEnd, nil)
		var ve *ViolationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, RuleSequence, ve.Rule)
	})

	t.Run("already_booked_kind", func(t *testing.T) {
		existing := []models.Break{booked(models.BreakFirst, 10*60, 10*60+15)}
		_, _, err := Window(p, models.BreakFirst, shiftStart, shiftEnd, existing)
		var ve *ViolationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, RuleDuplicate, ve.Rule)
	})
}

func TestDefaultPolicyDurations(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 15, p.Duration(models.BreakFirst))
	assert.Equal(t, 30, p.Duration(models.BreakSecond))
	assert.Equal(t, 15, p.Duration(models.BreakThird))
}
