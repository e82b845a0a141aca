package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/break-scheduler-api-go/pkg/database"
)

// ListDepartments returns all departments
func (h *Handler) ListDepartments(c *gin.Context) {
	var departments []database.Department
	if err := h.DB.Find(&departments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch departments"})
		return
	}
	c.JSON(http.StatusOK, departments)
}

// GetDepartment returns one department
func (h *Handler) GetDepartment(c *gin.Context) {
	var department database.Department
	if err := h.DB.First(&department, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}
	c.JSON(http.StatusOK, department)
}

// CreateDepartment creates a department
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req struct {
		Name                string `json:"name"`
		NameAr              string `json:"name_ar"`
		MaxConcurrentBreaks int    `json:"max_concurrent_breaks"`
		Is24Hours           bool   `json:"is_24_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if req.MaxConcurrentBreaks <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_concurrent_breaks must be positive"})
		return
	}

	department := database.Department{
		Name:                req.Name,
		NameAr:              req.NameAr,
		MaxConcurrentBreaks: req.MaxConcurrentBreaks,
		Is24Hours:           req.Is24Hours,
	}
	if err := h.DB.Create(&department).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create department"})
		return
	}
	c.JSON(http.StatusCreated, department)
}

// UpdateDepartment patches department configuration
func (h *Handler) UpdateDepartment(c *gin.Context) {
	var department database.Department
	if err := h.DB.First(&department, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}

	var req struct {
		Name                *string `json:"name"`
		NameAr              *string `json:"name_ar"`
		MaxConcurrentBreaks *int    `json:"max_concurrent_breaks"`
		Is24Hours           *bool   `json:"is_24_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.NameAr != nil {
		updates["name_ar"] = *req.NameAr
	}
	if req.MaxConcurrentBreaks != nil {
		if *req.MaxConcurrentBreaks <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_concurrent_breaks must be positive"})
			return
		}
		updates["max_concurrent_breaks"] = *req.MaxConcurrentBreaks
	}
	if req.Is24Hours != nil {
		updates["is_24_hours"] = *req.Is24Hours
	}

	if err := h.DB.Model(&department).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update department"})
		return
	}
	c.JSON(http.StatusOK, department)
}

// DeleteDepartment removes a department
func (h *Handler) DeleteDepartment(c *gin.Context) {
	if err := h.DB.Delete(&database.Department{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete department"})
		return
	}
	c.Status(http.StatusNoContent)
}
