package rules

import (
	"fmt"

	"github.com/arnavshah/break-scheduler-api-go/pkg/models"
)

// Rule codes carried by ViolationError, usable as metric labels.
const (
	RuleBoundary  = "boundary"
	RuleDuplicate = "duplicate"
	RuleSequence  = "sequence"
	RuleGap       = "gap"
)

// ViolationError reports which booking rule a candidate break failed.
type ViolationError struct {
	Rule   string
	Reason string
}

func (e *ViolationError) Error() string {
	return e.Reason
}

func violation(rule, format string, args ...any) *ViolationError {
	return &ViolationError{Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

// ErrNoAvailableSlot indicates the shift has no legal start minute left for
// the requested break kind. It is distinct from a rule violation: nothing
// about the request is wrong, the window is simply exhausted.
var ErrNoAvailableSlot = fmt.Errorf("no available slot for this break")

// Gap is a minimum spacing requirement: a candidate of kind Kind must start at
// least Min minutes after the end of the booked break of kind After.
type Gap struct {
	Kind  models.BreakKind
	After models.BreakKind
	Min   int
}

// Policy holds the break sequencing constants. Callers normally use
// DefaultPolicy; the struct exists so thresholds stay data, not literals.
type Policy struct {
	// BoundaryBuffer keeps breaks out of the first and last minutes of a shift.
	BoundaryBuffer int
	// Durations is the nominal length per kind, used when a request has no
	// explicit end time and when deriving legal windows.
	Durations map[models.BreakKind]int
	// Precondition maps a kind to the kind that must already be booked.
	Precondition map[models.BreakKind]models.BreakKind
	// Gaps are all minimum spacing requirements; every matching entry must hold.
	Gaps []Gap
}

// DefaultPolicy returns the current company break policy: a 15 minute first
// break, a 30 minute second break and a 15 minute third break, each at least
// an hour inside the shift, with 2h / 2.5h / 4.5h spacing.
func DefaultPolicy() Policy {
	return Policy{
		BoundaryBuffer: 60,
		Durations: map[models.BreakKind]int{
			models.BreakFirst:  15,
			models.BreakSecond: 30,
			models.BreakThird:  15,
		},
		Precondition: map[models.BreakKind]models.BreakKind{
			models.BreakSecond: models.BreakFirst,
			models.BreakThird:  models.BreakSecond,
		},
		Gaps: []Gap{
			{Kind: models.BreakSecond, After: models.BreakFirst, Min: 120},
			{Kind: models.BreakThird, After: models.BreakSecond, Min: 150},
			{Kind: models.BreakThird, After: models.BreakFirst, Min: 270},
		},
	}
}

// Duration returns the nominal duration for a kind.
func (p Policy) Duration(kind models.BreakKind) int {
	return p.Durations[kind]
}

// Candidate is a break being validated, in minutes since midnight.
type Candidate struct {
	Kind     models.BreakKind
	StartMin int
	EndMin   int
}

// byKind indexes booked breaks by kind; duplicates cannot occur upstream.
func byKind(existing []models.Break) map[models.BreakKind]models.Break {
	m := make(map[models.BreakKind]models.Break, len(existing))
	for _, b := range existing {
		m[b.Kind] = b
	}
	return m
}

// Validate checks a candidate break against the shift window and the breaks
// already booked on that shift. The first failing rule wins: shift boundary,
// then duplicate kind, then sequence precondition, then minimum gaps.
func Validate(p Policy, c Candidate, shiftStart, shiftEnd int, existing []models.Break) error {
	if c.StartMin < shiftStart+p.BoundaryBuffer {
		return violation(RuleBoundary, "breaks are not allowed in the first hour of the shift")
	}
	if c.EndMin > shiftEnd-p.BoundaryBuffer {
		return violation(RuleBoundary, "breaks are not allowed in the last hour of the shift")
	}

	booked := byKind(existing)

	if _, ok := booked[c.Kind]; ok {
		return violation(RuleDuplicate, "a %s break is already booked for this shift", c.Kind)
	}

	if required, ok := p.Precondition[c.Kind]; ok {
		if _, taken := booked[required]; !taken {
			return violation(RuleSequence, "you must take the %s break (%d min) before the %s break",
				required, p.Duration(required), c.Kind)
		}
	}

	for _, g := range p.Gaps {
		if g.Kind != c.Kind {
			continue
		}
		prior, ok := booked[g.After]
		if !ok {
			continue
		}
		if c.StartMin-prior.EndMin < g.Min {
			return violation(RuleGap, "there must be at least %s between the %s and %s break",
				formatGap(g.Min), g.After, g.Kind)
		}
	}

	return nil
}

// Window computes the earliest and latest legal start minute for a break of
// the given kind. A missing prerequisite break surfaces as a sequence
// violation; an empty range surfaces as ErrNoAvailableSlot.
func Window(p Policy, kind models.BreakKind, shiftStart, shiftEnd int, existing []models.Break) (earliest, latest int, err error) {
	booked := byKind(existing)

	if _, ok := booked[kind]; ok {
		return 0, 0, violation(RuleDuplicate, "a %s break is already booked for this shift", kind)
	}
	if required, ok := p.Precondition[kind]; ok {
		if _, taken := booked[required]; !taken {
			return 0, 0, violation(RuleSequence, "you must take the %s break (%d min) before the %s break",
				required, p.Duration(required), kind)
		}
	}

	earliest = shiftStart + p.BoundaryBuffer
	for _, g := range p.Gaps {
		if g.Kind != kind {
			continue
		}
		if prior, ok := booked[g.After]; ok {
			if min := prior.EndMin + g.Min; min > earliest {
				earliest = min
			}
		}
	}

	latest = shiftEnd - p.BoundaryBuffer - p.Duration(kind)
	if earliest > latest {
		return 0, 0, ErrNoAvailableSlot
	}
	return earliest, latest, nil
}

func formatGap(minutes int) string {
	if minutes%60 == 0 {
		return fmt.Sprintf("%d hours", minutes/60)
	}
	return fmt.Sprintf("%.1f hours", float64(minutes)/60)
}
