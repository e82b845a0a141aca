package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// User represents the users table. Admins manage departments and keys,
// employees book breaks on their own shifts.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:employee" json:"role"`
	DepartmentID *uint     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Department represents the departments table
type Department struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"unique;not null" json:"name"`
	NameAr              string    `json:"name_ar"`
	MaxConcurrentBreaks int       `gorm:"not null;default:2" json:"max_concurrent_breaks"`
	Is24Hours           bool      `gorm:"not null;default:false" json:"is_24_hours"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Shift represents the shifts table. Date is "YYYY-MM-DD", times "HH:MM:SS".
type Shift struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index;not null" json:"user_id"`
	DepartmentID uint      `gorm:"index;not null" json:"department_id"`
	Date         string    `gorm:"index;not null" json:"date"`
	StartTime    string    `gorm:"not null" json:"start_time"`
	EndTime      string    `gorm:"not null" json:"end_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// Break represents the breaks table. The (shift_id, break_kind) unique index
// is the storage-level safety net behind the orchestrator's duplicate check.
// Minute offsets are stored alongside the wall-clock strings so the overlap
// query compares integers, not strings.
type Break struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ShiftID   uint      `gorm:"uniqueIndex:idx_shift_kind;not null" json:"shift_id"`
	BreakKind string    `gorm:"uniqueIndex:idx_shift_kind;not null" json:"break_kind"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	StartTime string    `gorm:"not null" json:"start_time"`
	EndTime   string    `gorm:"not null" json:"end_time"`
	StartMin  int       `gorm:"index;not null" json:"-"`
	EndMin    int       `gorm:"index;not null" json:"-"`
	Status    string    `gorm:"not null;default:scheduled" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// APIKey represents the api_keys table, used by roster integrations that
// push shifts into the system.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	ShiftsCreated int    `gorm:"default:0" json:"shifts_created"`
}

// InitDB initializes the database connection and migrates the schema
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "breaks.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(&User{}, &Department{}, &Shift{}, &Break{}, &APIKey{}, &APIUsage{})

	return db
}
