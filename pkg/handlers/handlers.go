package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arnavshah/break-scheduler-api-go/pkg/auth"
	"github.com/arnavshah/break-scheduler-api-go/pkg/booking"
	"github.com/arnavshah/break-scheduler-api-go/pkg/database"
	"github.com/arnavshah/break-scheduler-api-go/pkg/rules"
	"github.com/arnavshah/break-scheduler-api-go/pkg/timeutil"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB      *gorm.DB
	Booking *booking.Service
}

// NewHandler wires the booking engine against the database repository.
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:      db,
		Booking: booking.NewService(database.NewRepository(db), rules.DefaultPolicy()),
	}
}

// AuthMiddleware verifies the JWT token and stores the caller's identity
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// AdminMiddleware requires an authenticated admin. Must run after AuthMiddleware.
func (h *Handler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != auth.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key used by roster integrations
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		integration, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      integration,
			RateLimit: 10000,
		})

		c.Set("apiKey", &apiKey)
		c.Set("integration", integration)
		c.Next()
	}
}

// writeBookingError maps engine errors onto HTTP responses. Every rejection
// carries a machine-readable code alongside the human-readable message.
func writeBookingError(c *gin.Context, err error) {
	var ve *rules.ViolationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Reason, "code": "rule_violation", "rule": ve.Rule})
	case errors.Is(err, timeutil.ErrMalformedTime):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "malformed_time"})
	case errors.Is(err, booking.ErrShiftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Shift not found", "code": "shift_not_found"})
	case errors.Is(err, booking.ErrDepartmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found", "code": "department_not_found"})
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "forbidden"})
	case errors.Is(err, booking.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "capacity_exceeded"})
	case errors.Is(err, booking.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "conflict"})
	case errors.Is(err, rules.ErrNoAvailableSlot):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "no_available_slot"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "code": "internal"})
	}
}

// queryDate reads the ?date= query parameter, defaulting to today.
func queryDate(c *gin.Context) string {
	if d := c.Query("date"); d != "" {
		return d
	}
	return time.Now().Format("2006-01-02")
}
