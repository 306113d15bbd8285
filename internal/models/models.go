package models

import "time"

const (
	RoleStudent = 0
	RoleFaculty = 1
)

type User struct {
	UserID       uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string `gorm:"not null"`
	Role         int    `gorm:"not null"` // 0=student, 1=faculty
	Department   string
	OtpVerified  bool `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

type Student struct {
	StudentID string `gorm:"primaryKey;size:32"` // university-assigned
	UserID    uint   `gorm:"uniqueIndex;not null"`
}

type Faculty struct {
	FacultyID string `gorm:"primaryKey;size:32"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
}

type Classroom struct {
	ClassID uint   `gorm:"primaryKey"`
	Name    string `gorm:"not null"`
}

// Enrollment links a student to a classroom. Inserts are idempotent.
type Enrollment struct {
	StudentID   string `gorm:"primaryKey;size:32"`
	ClassroomID uint   `gorm:"primaryKey"`
}

// Teaching links a faculty to a classroom they teach.
type Teaching struct {
	FacultyID   string `gorm:"primaryKey;size:32"`
	ClassroomID uint   `gorm:"primaryKey"`
}

type Course struct {
	CourseID   uint   `gorm:"primaryKey"`
	CourseCode string `gorm:"not null;index"` // stored as <studentID>_<code>
	Title      string `gorm:"not null"`
	UserID     uint   `gorm:"not null;index"` // owning student-role user
}

type AssessmentGroup struct {
	GroupID    uint   `gorm:"primaryKey"`
	CourseID   uint   `gorm:"not null;index"`
	Name       string `gorm:"not null"`
	DropLowest int    `gorm:"not null;default:0"`
}

type Mark struct {
	MarkID         uint   `gorm:"primaryKey"`
	AssessmentName string `gorm:"not null"`
	ObtainedMarks  float64
	TotalMarks     float64
	CreatedAt      time.Time
}

// MarkAttribution ties a mark to its (course, student, group) context.
// At most one mark exists per (course, student, group, assessment name).
type MarkAttribution struct {
	MarkID    uint   `gorm:"primaryKey"`
	CourseID  uint   `gorm:"not null;index"`
	StudentID string `gorm:"not null;size:32;index"`
	GroupID   uint   `gorm:"not null;index"`
}

type Event struct {
	EventID      uint      `gorm:"primaryKey"`
	DateTime     time.Time `gorm:"not null;index"`
	Title        string    `gorm:"not null"`
	ResourceLink string
	UserID       uint `gorm:"not null;index"`
}

// EventClassroomLink marks an event as created for a classroom by a faculty.
// An event with no link is personal.
type EventClassroomLink struct {
	EventID     uint   `gorm:"primaryKey"`
	FacultyID   string `gorm:"not null;size:32;index"`
	ClassroomID uint   `gorm:"not null;index"`
}

type Resource struct {
	ResourceID uint   `gorm:"primaryKey"`
	Title      string `gorm:"not null"`
	FileLink   string `gorm:"not null"`
}

type ResourceUploadLink struct {
	ResourceID  uint   `gorm:"primaryKey"`
	FacultyID   string `gorm:"not null;size:32;index"`
	ClassroomID uint   `gorm:"not null;index"`
}

// OtpChallenge is a single-use verification code. Only the most recently
// issued challenge for a user (highest otp_id) is checkable.
type OtpChallenge struct {
	OtpID     uint `gorm:"primaryKey"`
	Code      int  `gorm:"not null"`
	Used      bool `gorm:"not null;default:false"`
	ExpiresAt time.Time
	UserID    uint `gorm:"not null;index"`
}
