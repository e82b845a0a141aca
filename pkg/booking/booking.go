package booking

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arnavshah/break-scheduler-api-go/pkg/metrics"
	"github.com/arnavshah/break-scheduler-api-go/pkg/models"
	"github.com/arnavshah/break-scheduler-api-go/pkg/rules"
	"github.com/arnavshah/break-scheduler-api-go/pkg/timeutil"
)

var (
	// ErrShiftNotFound means the requested shift does not exist.
	ErrShiftNotFound = errors.New("shift not found")
	// ErrDepartmentNotFound means the shift references a missing department.
	ErrDepartmentNotFound = errors.New("department not found")
	// ErrForbidden means the requester does not own the shift.
	ErrForbidden = errors.New("not authorized to book breaks for this shift")
	// ErrCapacityExceeded means the department's concurrent break ceiling is
	// reached for the requested window.
	ErrCapacityExceeded = errors.New("maximum concurrent breaks reached for this time slot")
	// ErrConflict means the storage layer rejected the insert, either because
	// a break of the same kind landed first or capacity was oversold.
	ErrConflict = errors.New("break conflicts with an existing booking")
)

// Repository is the storage surface the engine consumes. Lookups return
// (nil, nil) when the record is absent; only infrastructure failures return
// a non-nil error.
type Repository interface {
	GetShift(id uint) (*models.Shift, error)
	GetBreaksForShift(shiftID uint) ([]models.Break, error)
	GetDepartment(id uint) (*models.Department, error)
	// CountOverlappingBreaks counts breaks in the department on the date whose
	// [start,end) interval overlaps [startMin,endMin), restricted to statuses.
	CountOverlappingBreaks(departmentID uint, date string, startMin, endMin int, statuses []models.BreakStatus) (int, error)
	// InsertBreak persists a new break, failing with ErrConflict if a break of
	// the same kind already exists for the shift.
	InsertBreak(b *models.Break) error
}

// Service composes the rule validator and the capacity allocator against a
// repository. Booking requests for the same department are serialized so the
// capacity check and the insert act as one unit.
type Service struct {
	repo   Repository
	policy rules.Policy

	mu        sync.Mutex
	deptLocks map[uint]*sync.Mutex
}

// NewService creates a booking service using the given repository and policy.
func NewService(repo Repository, policy rules.Policy) *Service {
	return &Service{
		repo:      repo,
		policy:    policy,
		deptLocks: make(map[uint]*sync.Mutex),
	}
}

// Policy exposes the active break policy, mainly for handlers rendering it.
func (s *Service) Policy() rules.Policy {
	return s.policy
}

// lockDepartment returns the serialization point for a department, creating
// it on first use. Locks are never removed; the set of departments is small.
func (s *Service) lockDepartment(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.deptLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.deptLocks[id] = l
	}
	return l
}

// countOccupying is the single counting path shared by availability previews
// and bookings, so the two can never diverge.
func (s *Service) countOccupying(departmentID uint, date string, startMin, endMin int) (int, error) {
	count, err := s.repo.CountOverlappingBreaks(departmentID, date, startMin, endMin, models.OccupyingStatuses)
	if err != nil {
		return 0, err
	}
	metrics.ConcurrentBreaksObserved.Observe(float64(count))
	return count, nil
}

// CheckAvailability reports whether the department has a free break slot for
// the given window on the given date. Read-only; no lock is taken.
func (s *Service) CheckAvailability(departmentID uint, startTime, endTime, date string) (*models.AvailabilityReport, error) {
	startMin, endMin, err := parseWindow(startTime, endTime)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		// Same guard as booking, so the preview and the booking path agree
		// on invalid windows.
		return nil, fmt.Errorf("%w: window end %q is not after start %q",
			timeutil.ErrMalformedTime, endTime, startTime)
	}

	dept, err := s.repo.GetDepartment(departmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}

	count, err := s.countOccupying(departmentID, date, startMin, endMin)
	if err != nil {
		return nil, err
	}

	metrics.AvailabilityChecksTotal.Inc()
	remaining := dept.MaxConcurrentBreaks - count
	if remaining < 0 {
		remaining = 0
	}
	return &models.AvailabilityReport{
		Available: count < dept.MaxConcurrentBreaks,
		Current:   count,
		Max:       dept.MaxConcurrentBreaks,
		Remaining: remaining,
	}, nil
}

// BreakWindow computes the legal start range for a break kind on a shift,
// for the booking UI. Ownership is enforced the same way as booking.
func (s *Service) BreakWindow(shiftID uint, userID string, kind models.BreakKind) (*models.BreakWindow, error) {
	shift, err := s.repo.GetShift(shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, ErrShiftNotFound
	}
	if shift.UserID != userID {
		return nil, ErrForbidden
	}

	shiftStart, shiftEnd, err := parseWindow(shift.StartTime, shift.EndTime)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBreaksForShift(shiftID)
	if err != nil {
		return nil, err
	}

	earliest, latest, err := rules.Window(s.policy, kind, shiftStart, shiftEnd, existing)
	if err != nil {
		return nil, err
	}
	return &models.BreakWindow{
		Kind:            kind,
		EarliestStart:   timeutil.FromMinutes(earliest),
		LatestStart:     timeutil.FromMinutes(latest),
		DurationMinutes: s.policy.Duration(kind),
	}, nil
}

// BookBreak runs the full booking state machine and persists the break on
// success. The capacity check and insert run under the department lock, so at
// most maxConcurrentBreaks bookings can ever pass for overlapping windows.
func (s *Service) BookBreak(req models.BookingRequest) (*models.Break, error) {
	started := time.Now()
	br, err := s.bookBreak(req)
	metrics.BookingDurationSeconds.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.BookingRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}
	metrics.BookingsTotal.Inc()
	return br, nil
}

func (s *Service) bookBreak(req models.BookingRequest) (*models.Break, error) {
	startMin, err := timeutil.ToMinutes(req.StartTime)
	if err != nil {
		return nil, err
	}

	endMin := startMin + s.policy.Duration(req.Kind)
	if req.EndTime != "" {
		endMin, err = timeutil.ToMinutes(req.EndTime)
		if err != nil {
			return nil, err
		}
	}
	if endMin <= startMin {
		// Same-day windows only; midnight wraparound is not a supported
		// shift model.
		return nil, fmt.Errorf("%w: break end %q is not after start %q",
			timeutil.ErrMalformedTime, req.EndTime, req.StartTime)
	}

	shift, err := s.repo.GetShift(req.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, ErrShiftNotFound
	}
	if shift.UserID != req.UserID {
		return nil, ErrForbidden
	}

	shiftStart, shiftEnd, err := parseWindow(shift.StartTime, shift.EndTime)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetBreaksForShift(req.ShiftID)
	if err != nil {
		return nil, err
	}

	candidate := rules.Candidate{Kind: req.Kind, StartMin: startMin, EndMin: endMin}
	if err := rules.Validate(s.policy, candidate, shiftStart, shiftEnd, existing); err != nil {
		return nil, err
	}

	dept, err := s.repo.GetDepartment(shift.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrDepartmentNotFound
	}

	lock := s.lockDepartment(dept.ID)
	lock.Lock()
	defer lock.Unlock()

	count, err := s.countOccupying(dept.ID, shift.Date, startMin, endMin)
	if err != nil {
		return nil, err
	}
	if count >= dept.MaxConcurrentBreaks {
		return nil, ErrCapacityExceeded
	}

	br := &models.Break{
		ShiftID:   shift.ID,
		UserID:    shift.UserID,
		Kind:      req.Kind,
		StartTime: timeutil.FromMinutes(startMin),
		EndTime:   timeutil.FromMinutes(endMin),
		StartMin:  startMin,
		EndMin:    endMin,
		Status:    models.StatusScheduled,
	}
	if err := s.repo.InsertBreak(br); err != nil {
		return nil, err
	}
	return br, nil
}

func parseWindow(startTime, endTime string) (startMin, endMin int, err error) {
	startMin, err = timeutil.ToMinutes(startTime)
	if err != nil {
		return 0, 0, err
	}
	endMin, err = timeutil.ToMinutes(endTime)
	if err != nil {
		return 0, 0, err
	}
	return startMin, endMin, nil
}

// rejectionReason maps booking errors onto stable metric labels.
func rejectionReason(err error) string {
	var ve *rules.ViolationError
	switch {
	case errors.As(err, &ve):
		return ve.Rule
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrShiftNotFound), errors.Is(err, ErrDepartmentNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, timeutil.ErrMalformedTime):
		return "malformed_time"
	default:
		return "storage_error"
	}
}
