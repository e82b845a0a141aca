package booking

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/break-scheduler-api-go/pkg/models"
	"github.com/arnavshah/break-scheduler-api-go/pkg/rules"
	"github.com/arnavshah/break-scheduler-api-go/pkg/timeutil"
)

// fakeRepo is an in-memory Repository with the same conflict semantics as the
// database implementation.
type fakeRepo struct {
	mu          sync.Mutex
	shifts      map[uint]models.Shift
	departments map[uint]models.Department
	breaks      []models.Break
	nextID      uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		shifts:      make(map[uint]models.Shift),
		departments: make(map[uint]models.Department),
		nextID:      1,
	}
}

func (r *fakeRepo) GetShift(id uint) (*models.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeRepo) GetBreaksForShift(shiftID uint) ([]models.Break, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Break
	for _, b := range r.breaks {
		if b.ShiftID == shiftID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetDepartment(id uint) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.departments[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *fakeRepo) CountOverlappingBreaks(departmentID uint, date string, startMin, endMin int, statuses []models.BreakStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, b := range r.breaks {
		shift, ok := r.shifts[b.ShiftID]
		if !ok || shift.DepartmentID != departmentID || shift.Date != date {
			continue
		}
		if b.StartMin >= endMin || b.EndMin <= startMin {
			continue
		}
		for _, s := range statuses {
			if b.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeRepo) InsertBreak(b *models.Break) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.breaks {
		if existing.ShiftID == b.ShiftID && existing.Kind == b.Kind {
			return ErrConflict
		}
	}
	b.ID = r.nextID
	r.nextID++
	r.breaks = append(r.breaks, *b)
	return nil
}

const testDate = "2026-03-02"

func (r *fakeRepo) addShift(id uint, userID string, deptID uint) {
	r.shifts[id] = models.Shift{
		ID: id, UserID: userID, DepartmentID: deptID,
		Date: testDate, StartTime: "09:00:00", EndTime: "17:00:00",
	}
}

func newTestService(maxConcurrent int) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	repo.departments[1] = models.Department{ID: 1, Name: "Chat", MaxConcurrentBreaks: maxConcurrent}
	return NewService(repo, rules.DefaultPolicy()), repo
}

func TestBookBreakHappyPath(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	br, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartTime: "10:00", EndTime: "10:15",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, br.Status)
	assert.Equal(t, "10:00:00", br.StartTime)
	assert.Equal(t, "10:15:00", br.EndTime)
	assert.NotZero(t, br.ID)
}

func TestBookBreakDefaultEndTime(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	// Second break defaults to 30 minutes once a first break exists.
	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst, StartTime: "10:00",
	})
	require.NoError(t, err)

	br, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakSecond, StartTime: "12:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "13:00:00", br.EndTime)
}

func TestBookBreakShiftNotFound(t *testing.T) {
	svc, _ := newTestService(5)
	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 99, UserID: "emp-1", Kind: models.BreakFirst, StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestBookBreakForbidden(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "someone-else", Kind: models.BreakFirst, StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookBreakDepartmentNotFound(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 7) // department 7 does not exist

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst, StartTime: "10:00",
	})
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestBookBreakRuleViolation(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartTime: "09:00", EndTime: "09:15",
	})
	var ve *rules.ViolationError
	assert.ErrorAs(t, err, &ve)
}

func TestBookBreakRejectsInvertedWindow(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartTime: "12:00", EndTime: "11:00",
	})
	assert.Error(t, err)
}

func TestBookBreakDuplicateKindConflict(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	// Insert behind the validator's back, as a racing writer would.
	require.NoError(t, repo.InsertBreak(&models.Break{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartMin: 10 * 60, EndMin: 10*60 + 15, Status: models.StatusScheduled,
	}))

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst, StartTime: "11:00",
	})
	// The validator sees the existing break and reports the duplicate rule.
	var ve *rules.ViolationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, rules.RuleDuplicate, ve.Rule)
}

func TestCapacityCeiling(t *testing.T) {
	// Department ceiling 2; breaks at 12:00-12:15 and 12:05-12:20 in distinct
	// shifts; a third overlapping request is rejected, a disjoint one accepted.
	svc, repo := newTestService(2)
	repo.addShift(1, "emp-1", 1)
	repo.addShift(2, "emp-2", 1)
	repo.addShift(3, "emp-3", 1)

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartTime: "12:00", EndTime: "12:15",
	})
	require.NoError(t, err)
	_, err = svc.BookBreak(models.BookingRequest{
		ShiftID: 2, UserID: "emp-2", Kind: models.BreakFirst,
		StartTime: "12:05", EndTime: "12:20",
	})
	require.NoError(t, err)

	_, err = svc.BookBreak(models.BookingRequest{
		ShiftID: 3, UserID: "emp-3", Kind: models.BreakFirst,
		StartTime: "12:10", EndTime: "12:25",
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = svc.BookBreak(models.BookingRequest{
		ShiftID: 3, UserID: "emp-3", Kind: models.BreakFirst,
		StartTime: "13:00", EndTime: "13:15",
	})
	assert.NoError(t, err)
}

func TestTouchingWindowsDoNotOverlap(t *testing.T) {
	// [12:00,12:15) and [12:15,12:30) share an endpoint but not a minute.
	svc, repo := newTestService(1)
	repo.addShift(1, "emp-1", 1)
	repo.addShift(2, "emp-2", 1)

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartTime: "12:00", EndTime: "12:15",
	})
	require.NoError(t, err)

	_, err = svc.BookBreak(models.BookingRequest{
		ShiftID: 2, UserID: "emp-2", Kind: models.BreakFirst,
		StartTime: "12:15", EndTime: "12:30",
	})
	assert.NoError(t, err)
}

func TestCancelledBreaksDoNotOccupyCapacity(t *testing.T) {
	svc, repo := newTestService(1)
	repo.addShift(1, "emp-1", 1)
	repo.addShift(2, "emp-2", 1)

	require.NoError(t, repo.InsertBreak(&models.Break{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartMin: 12 * 60, EndMin: 12*60 + 15, Status: models.StatusCancelled,
	}))

	report, err := svc.CheckAvailability(1, "12:00", "12:15", testDate)
	require.NoError(t, err)
	assert.True(t, report.Available)
	assert.Equal(t, 0, report.Current)
}

func TestAvailabilityAgreesWithBooking(t *testing.T) {
	svc, repo := newTestService(1)
	repo.addShift(1, "emp-1", 1)
	repo.addShift(2, "emp-2", 1)

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartTime: "12:00", EndTime: "12:15",
	})
	require.NoError(t, err)

	report, err := svc.CheckAvailability(1, "12:10", "12:25", testDate)
	require.NoError(t, err)
	assert.False(t, report.Available)
	assert.Equal(t, 1, report.Current)
	assert.Equal(t, 1, report.Max)
	assert.Equal(t, 0, report.Remaining)

	// An unavailable preview implies the booking path rejects the same window.
	_, err = svc.BookBreak(models.BookingRequest{
		ShiftID: 2, UserID: "emp-2", Kind: models.BreakFirst,
		StartTime: "12:10", EndTime: "12:25",
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestAvailabilityIdempotent(t *testing.T) {
	svc, repo := newTestService(3)
	repo.addShift(1, "emp-1", 1)

	_, err := svc.BookBreak(models.BookingRequest{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartTime: "12:00", EndTime: "12:15",
	})
	require.NoError(t, err)

	first, err := svc.CheckAvailability(1, "12:00", "12:15", testDate)
	require.NoError(t, err)
	second, err := svc.CheckAvailability(1, "12:00", "12:15", testDate)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckAvailabilityRejectsInvertedWindow(t *testing.T) {
	// The preview must refuse the same windows booking refuses, not report
	// a vacuously free slot.
	svc, _ := newTestService(1)

	_, err := svc.CheckAvailability(1, "12:00", "11:00", testDate)
	assert.ErrorIs(t, err, timeutil.ErrMalformedTime)

	_, err = svc.CheckAvailability(1, "12:00", "12:00", testDate)
	assert.ErrorIs(t, err, timeutil.ErrMalformedTime)
}

func TestCheckAvailabilityDepartmentNotFound(t *testing.T) {
	svc, _ := newTestService(1)
	_, err := svc.CheckAvailability(42, "12:00", "12:15", testDate)
	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}

func TestBreakWindow(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	window, err := svc.BreakWindow(1, "emp-1", models.BreakFirst)
	require.NoError(t, err)
	assert.Equal(t, "10:00:00", window.EarliestStart)
	assert.Equal(t, "15:45:00", window.LatestStart)
	assert.Equal(t, 15, window.DurationMinutes)

	_, err = svc.BreakWindow(1, "intruder", models.BreakFirst)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.BreakWindow(9, "emp-1", models.BreakFirst)
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestBreakWindowNoSlot(t *testing.T) {
	svc, repo := newTestService(5)
	repo.addShift(1, "emp-1", 1)

	require.NoError(t, repo.InsertBreak(&models.Break{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakFirst,
		StartMin: 10 * 60, EndMin: 10*60 + 15, Status: models.StatusScheduled,
	}))
	require.NoError(t, repo.InsertBreak(&models.Break{
		ShiftID: 1, UserID: "emp-1", Kind: models.BreakSecond,
		StartMin: 14 * 60, EndMin: 14*60 + 30, Status: models.StatusScheduled,
	}))

	_, err := svc.BreakWindow(1, "emp-1", models.BreakThird)
	assert.ErrorIs(t, err, rules.ErrNoAvailableSlot)
}

func TestConcurrentBookingsRespectCeiling(t *testing.T) {
	const ceiling = 3
	const contenders = ceiling + 5

	svc, repo := newTestService(ceiling)
	userIDs := make([]string, contenders)
	for i := 0; i < contenders; i++ {
		userIDs[i] = string(rune('a' + i))
		repo.addShift(uint(i+1), userIDs[i], 1)
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.BookBreak(models.BookingRequest{
				ShiftID: uint(i + 1), UserID: userIDs[i], Kind: models.BreakFirst,
				StartTime: "12:00", EndTime: "12:15",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, ErrCapacityExceeded) && !errors.Is(err, ErrConflict) {
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	assert.Equal(t, ceiling, successes, "exactly the ceiling may book overlapping breaks")

	count, err := repo.CountOverlappingBreaks(1, testDate, 12*60, 12*60+15, models.OccupyingStatuses)
	require.NoError(t, err)
	assert.Equal(t, ceiling, count)
}
