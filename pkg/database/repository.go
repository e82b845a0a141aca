package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/arnavshah/break-scheduler-api-go/pkg/booking"
	"github.com/arnavshah/break-scheduler-api-go/pkg/models"
)

// Repository implements booking.Repository on top of gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps a gorm connection in the engine's repository interface.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetShift returns the shift or (nil, nil) when absent.
func (r *Repository) GetShift(id uint) (*models.Shift, error) {
	var row Shift
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load shift %d: %w", id, err)
	}
	return &models.Shift{
		ID:           row.ID,
		UserID:       row.UserID,
		DepartmentID: row.DepartmentID,
		Date:         row.Date,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
	}, nil
}

// GetBreaksForShift returns every break booked on the shift.
func (r *Repository) GetBreaksForShift(shiftID uint) ([]models.Break, error) {
	var rows []Break
	if err := r.db.Where("shift_id = ?", shiftID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load breaks for shift %d: %w", shiftID, err)
	}
	breaks := make([]models.Break, 0, len(rows))
	for _, row := range rows {
		breaks = append(breaks, toModelBreak(row))
	}
	return breaks, nil
}

// GetDepartment returns the department or (nil, nil) when absent.
func (r *Repository) GetDepartment(id uint) (*models.Department, error) {
	var row Department
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load department %d: %w", id, err)
	}
	return &models.Department{
		ID:                  row.ID,
		Name:                row.Name,
		NameAr:              row.NameAr,
		MaxConcurrentBreaks: row.MaxConcurrentBreaks,
		Is24Hours:           row.Is24Hours,
	}, nil
}

// CountOverlappingBreaks counts breaks across all of the department's shifts
// on the date whose [start,end) window overlaps the candidate window.
// Half-open overlap: [a,b) and [c,d) overlap iff a < d AND c < b.
func (r *Repository) CountOverlappingBreaks(departmentID uint, date string, startMin, endMin int, statuses []models.BreakStatus) (int, error) {
	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	var count int64
	err := r.db.Model(&Break{}).
		Joins("JOIN shifts ON shifts.id = breaks.shift_id").
		Where("shifts.department_id = ? AND shifts.date = ?", departmentID, date).
		Where("breaks.start_min < ? AND breaks.end_min > ?", endMin, startMin).
		Where("breaks.status IN ?", statusStrings).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count overlapping breaks: %w", err)
	}
	return int(count), nil
}

// InsertBreak persists a new break. A duplicate (shift, kind) pair trips the
// unique index and is reported as booking.ErrConflict.
func (r *Repository) InsertBreak(b *models.Break) error {
	row := Break{
		ShiftID:   b.ShiftID,
		BreakKind: string(b.Kind),
		UserID:    b.UserID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		StartMin:  b.StartMin,
		EndMin:    b.EndMin,
		Status:    string(b.Status),
	}
	if err := r.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return booking.ErrConflict
		}
		return fmt.Errorf("insert break: %w", err)
	}
	b.ID = row.ID
	return nil
}

func toModelBreak(row Break) models.Break {
	return models.Break{
		ID:        row.ID,
		ShiftID:   row.ShiftID,
		UserID:    row.UserID,
		Kind:      models.BreakKind(row.BreakKind),
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		StartMin:  row.StartMin,
		EndMin:    row.EndMin,
		Status:    models.BreakStatus(row.Status),
	}
}
