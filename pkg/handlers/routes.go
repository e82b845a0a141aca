package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arnavshah/break-scheduler-api-go/pkg/metrics"
)

// Register attaches every route to the engine. Shared by the server binary
// and the serverless entry point so the two route tables cannot drift.
func Register(r *gin.Engine, h *Handler) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Break Scheduler API",
			"version": "1.2.0",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	r.POST("/auth/login", h.Login)

	// Admin endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware(), h.AdminMiddleware())
	{
		admin.GET("/departments", h.ListDepartments)
		admin.POST("/departments", h.CreateDepartment)
		admin.GET("/departments/:id", h.GetDepartment)
		admin.PATCH("/departments/:id", h.UpdateDepartment)
		admin.DELETE("/departments/:id", h.DeleteDepartment)

		admin.POST("/users", h.CreateUser)
		admin.GET("/users", h.ListUsers)

		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Employee endpoints
	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/auth/user", h.CurrentUser)

		api.GET("/departments", h.ListDepartments)
		api.GET("/departments/:id", h.GetDepartment)

		api.GET("/shifts/my-shifts", h.MyShifts)
		api.GET("/shifts/department/:departmentId", h.DepartmentShifts)

		api.POST("/breaks", h.BookBreak)
		api.GET("/breaks/my-breaks", h.MyBreaks)
		api.GET("/breaks/shift/:shiftId", h.ListShiftBreaks)
		api.GET("/breaks/windows", h.BreakWindow)
		api.POST("/breaks/check-availability", h.CheckAvailability)
		api.PATCH("/breaks/:id", h.UpdateBreak)
		api.DELETE("/breaks/:id", h.DeleteBreak)

		api.POST("/seed", h.Seed)
	}

	// Roster integration endpoints (HMAC API keys)
	integration := r.Group("/integration")
	integration.Use(h.APIKeyMiddleware())
	{
		integration.POST("/shifts", h.CreateShift)
		integration.GET("/usage", h.GetMyUsage)
	}
}
