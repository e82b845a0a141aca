package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/break-scheduler-api-go/pkg/database"
	"github.com/arnavshah/break-scheduler-api-go/pkg/timeutil"
)

// CreateShift ingests a shift from the roster integration
func (h *Handler) CreateShift(c *gin.Context) {
	var req struct {
		UserID       string `json:"user_id"`
		DepartmentID uint   `json:"department_id"`
		Date         string `json:"date"`
		StartTime    string `json:"start_time"`
		EndTime      string `json:"end_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" || req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and date are required"})
		return
	}

	startMin, err := timeutil.ToMinutes(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "malformed_time"})
		return
	}
	endMin, err := timeutil.ToMinutes(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "malformed_time"})
		return
	}
	if endMin <= startMin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var department database.Department
	if err := h.DB.First(&department, req.DepartmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}

	shift := database.Shift{
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		Date:         req.Date,
		StartTime:    timeutil.FromMinutes(startMin),
		EndTime:      timeutil.FromMinutes(endMin),
	}
	if err := h.DB.Create(&shift).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shift"})
		return
	}

	h.RecordUsage(c, 1)
	c.JSON(http.StatusCreated, shift)
}

// MyShifts returns the caller's shifts for a date
func (h *Handler) MyShifts(c *gin.Context) {
	var shifts []database.Shift
	if err := h.DB.Where("user_id = ? AND date = ?", c.GetString("userID"), queryDate(c)).
		Find(&shifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shifts"})
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// DepartmentShifts returns a department's shifts for a date
func (h *Handler) DepartmentShifts(c *gin.Context) {
	departmentID, err := strconv.ParseUint(c.Param("departmentId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid department id"})
		return
	}

	var shifts []database.Shift
	if err := h.DB.Where("department_id = ? AND date = ?", departmentID, queryDate(c)).
		Find(&shifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shifts"})
		return
	}
	c.JSON(http.StatusOK, shifts)
}

// Seed creates the initial departments and a test shift for the caller.
// Development helper; a no-op once departments exist.
func (h *Handler) Seed(c *gin.Context) {
	var count int64
	h.DB.Model(&database.Department{}).Count(&count)
	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Database already has data"})
		return
	}

	chat := database.Department{Name: "Chat", NameAr: "الدردشة", MaxConcurrentBreaks: 5, Is24Hours: true}
	if err := h.DB.Create(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed departments"})
		return
	}
	h.DB.Create(&database.Department{Name: "SMS", NameAr: "الرسائل", MaxConcurrentBreaks: 3})
	h.DB.Create(&database.Department{Name: "MNP", NameAr: "نقل الأرقام", MaxConcurrentBreaks: 2})

	shift := database.Shift{
		UserID:       c.GetString("userID"),
		DepartmentID: chat.ID,
		Date:         time.Now().Format("2006-01-02"),
		StartTime:    "09:00:00",
		EndTime:      "17:00:00",
	}
	if err := h.DB.Create(&shift).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed test shift"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Database seeded successfully with departments and a test shift"})
}
