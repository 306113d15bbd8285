package db

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

const otpTTL = 10 * time.Minute

// Profile is what a verified login hands back to the session layer.
type Profile struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       int    `json:"role"`
	Department string `json:"department"`
}

// LoginResult is either a full profile or a pending-OTP marker carrying the
// user id, never both.
type LoginResult struct {
	RequiresOtp bool     `json:"requires_otp"`
	UserID      uint     `json:"user_id"`
	Profile     *Profile `json:"profile,omitempty"`
}

func makeOtp() int {
	// 6 digits, crypto-grade
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return 0
	}
	return int(n.Int64()) + 100000
}

// Signup atomically creates the user, its role child row and one OTP
// challenge. The returned code is handed to the notification sink by the
// caller; it is never logged.
func (s *Store) Signup(ctx context.Context, email, password, name string, role int, universityID, department string) (userID uint, otp int, err error) {
	if email == "" || password == "" || name == "" || universityID == "" {
		return 0, 0, ErrValidationFailed
	}
	if role != models.RoleStudent && role != models.RoleFaculty {
		return 0, 0, ErrValidationFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, 0, err
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateIdentity
		}
		if err := tx.Model(&models.Student{}).Where("student_id = ?", universityID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateIdentity
		}
		if err := tx.Model(&models.Faculty{}).Where("faculty_id = ?", universityID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateIdentity
		}

		user := models.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         name,
			Role:         role,
			Department:   department,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if role == models.RoleStudent {
			if err := tx.Create(&models.Student{StudentID: universityID, UserID: user.UserID}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&models.Faculty{FacultyID: universityID, UserID: user.UserID}).Error; err != nil {
				return err
			}
		}

		otp = makeOtp()
		challenge := models.OtpChallenge{
			Code:      otp,
			ExpiresAt: time.Now().Add(otpTTL),
			UserID:    user.UserID,
		}
		if err := tx.Create(&challenge).Error; err != nil {
			return err
		}

		userID = user.UserID
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return userID, otp, nil
}

// Login checks the credential. An unverified account always comes back as
// pending OTP, no matter how it got there; a verified one yields the profile.
func (s *Store) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredential
	}

	if !user.OtpVerified {
		return &LoginResult{RequiresOtp: true, UserID: user.UserID}, nil
	}

	return &LoginResult{
		UserID: user.UserID,
		Profile: &Profile{
			UserID:     user.UserID,
			Email:      user.Email,
			Name:       user.Name,
			Role:       user.Role,
			Department: user.Department,
		},
	}, nil
}

// VerifyOtp consumes the most recently issued challenge matching the code.
// Success flips otp_verified permanently; a replayed or expired code fails
// with no state change.
func (s *Store) VerifyOtp(ctx context.Context, userID uint, code int) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		// Only the latest issued challenge is checkable; earlier ones are
		// dead the moment a new one exists.
		var ch models.OtpChallenge
		err := tx.Where("user_id = ?", userID).Order("otp_id DESC").First(&ch).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOtpInvalidOrExpired
		}
		if err != nil {
			return err
		}

		if ch.Code != code || ch.Used || time.Now().After(ch.ExpiresAt) {
			return ErrOtpInvalidOrExpired
		}

		if err := tx.Model(&models.OtpChallenge{}).Where("otp_id = ?", ch.OtpID).Update("used", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("user_id = ?", userID).Update("otp_verified", true).Error
	})
}

// GetUser returns the profile for an id. Used by /user/me.
func (s *Store) GetUser(ctx context.Context, userID uint) (*Profile, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:     user.UserID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
	}, nil
}

// studentID resolves the caller's student id inside tx, or "" when the user
// has no student row.
func studentID(tx *gorm.DB, userID uint) string {
	var st models.Student
	if err := tx.Where("user_id = ?", userID).First(&st).Error; err != nil {
		return ""
	}
	return st.StudentID
}

func facultyID(tx *gorm.DB, userID uint) string {
	var fa models.Faculty
	if err := tx.Where("user_id = ?", userID).First(&fa).Error; err != nil {
		return ""
	}
	return fa.FacultyID
}

// teaches reports whether the faculty id has a teaching link to the
// classroom. Authorization predicates are re-derived from relations on every
// call, never taken from the client.
func teaches(tx *gorm.DB, facultyID string, classID uint) bool {
	if facultyID == "" {
		return false
	}
	var n int64
	tx.Model(&models.Teaching{}).
		Where("faculty_id = ? AND classroom_id = ?", facultyID, classID).
		Count(&n)
	return n > 0
}

func enrolled(tx *gorm.DB, studentID string, classID uint) bool {
	if studentID == "" {
		return false
	}
	var n int64
	tx.Model(&models.Enrollment{}).
		Where("student_id = ? AND classroom_id = ?", studentID, classID).
		Count(&n)
	return n > 0
}

func ownsCourse(tx *gorm.DB, userID, courseID uint) bool {
	var n int64
	tx.Model(&models.Course{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&n)
	return n > 0
}
