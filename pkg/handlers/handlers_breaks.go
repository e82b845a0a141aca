package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/break-scheduler-api-go/pkg/database"
	"github.com/arnavshah/break-scheduler-api-go/pkg/models"
)

// BookBreak books a break on one of the caller's shifts
func (h *Handler) BookBreak(c *gin.Context) {
	var req struct {
		ShiftID   uint   `json:"shift_id"`
		BreakKind string `json:"break_kind"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, err := models.ParseBreakKind(req.BreakKind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_break_kind"})
		return
	}

	br, err := h.Booking.BookBreak(models.BookingRequest{
		ShiftID:   req.ShiftID,
		UserID:    c.GetString("userID"),
		Kind:      kind,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, br)
}

// CheckAvailability previews whether a department has a free break slot
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req struct {
		DepartmentID uint   `json:"department_id"`
		StartTime    string `json:"start_time"`
		EndTime      string `json:"end_time"`
		Date         string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.Booking.CheckAvailability(req.DepartmentID, req.StartTime, req.EndTime, req.Date)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// BreakWindow returns the legal start range for a break kind on a shift.
// An exhausted window reports available=false rather than an error, so the
// booking UI can render the state directly.
func (h *Handler) BreakWindow(c *gin.Context) {
	shiftID, err := strconv.ParseUint(c.Query("shift_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shift_id is required"})
		return
	}
	kind, err := models.ParseBreakKind(c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_break_kind"})
		return
	}

	window, err := h.Booking.BreakWindow(uint(shiftID), c.GetString("userID"), kind)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": true, "window": window})
}

// ListShiftBreaks returns every break booked on a shift
func (h *Handler) ListShiftBreaks(c *gin.Context) {
	shiftID, err := strconv.ParseUint(c.Param("shiftId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shift id"})
		return
	}

	var breaks []database.Break
	if err := h.DB.Where("shift_id = ?", shiftID).Order("start_min").Find(&breaks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch breaks"})
		return
	}
	c.JSON(http.StatusOK, breaks)
}

// MyBreaks returns the caller's breaks for a date
func (h *Handler) MyBreaks(c *gin.Context) {
	userID := c.GetString("userID")
	date := queryDate(c)

	var shiftIDs []uint
	if err := h.DB.Model(&database.Shift{}).
		Where("user_id = ? AND date = ?", userID, date).
		Pluck("id", &shiftIDs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch breaks"})
		return
	}

	breaks := []database.Break{}
	if len(shiftIDs) > 0 {
		if err := h.DB.Where("shift_id IN ?", shiftIDs).Order("start_min").Find(&breaks).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch breaks"})
			return
		}
	}
	c.JSON(http.StatusOK, breaks)
}

// statusTransitions are the allowed break lifecycle moves.
var statusTransitions = map[models.BreakStatus][]models.BreakStatus{
	models.StatusScheduled:  {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted},
}

func transitionAllowed(from, to models.BreakStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateBreak moves a break through its lifecycle
func (h *Handler) UpdateBreak(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var br database.Break
	if err := h.DB.First(&br, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Break not found"})
		return
	}
	if br.UserID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this break"})
		return
	}

	to := models.BreakStatus(req.Status)
	if !transitionAllowed(models.BreakStatus(br.Status), to) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cannot move break from " + br.Status + " to " + req.Status,
			"code":  "invalid_transition",
		})
		return
	}

	if err := h.DB.Model(&br).Update("status", string(to)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update break"})
		return
	}
	c.JSON(http.StatusOK, br)
}

// DeleteBreak removes a break entirely, freeing its kind for rebooking
func (h *Handler) DeleteBreak(c *gin.Context) {
	id := c.Param("id")

	var br database.Break
	if err := h.DB.First(&br, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Break not found"})
		return
	}
	if br.UserID != c.GetString("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this break"})
		return
	}

	if err := h.DB.Delete(&br).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete break"})
		return
	}
	c.Status(http.StatusNoContent)
}
