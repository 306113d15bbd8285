package db

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	s, err := New(sqlite.Open(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// seedStudent inserts a verified student-role user directly, skipping the
// signup path so tests not about auth stay fast.
func seedStudent(t *testing.T, s *Store, email, studentID string) uint {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Student " + studentID,
		Role:         models.RoleStudent,
		OtpVerified:  true,
	}
	require.NoError(t, s.db.Create(&user).Error)
	require.NoError(t, s.db.Create(&models.Student{StudentID: studentID, UserID: user.UserID}).Error)
	return user.UserID
}

func seedFaculty(t *testing.T, s *Store, email, facultyID string) uint {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Faculty " + facultyID,
		Role:         models.RoleFaculty,
		OtpVerified:  true,
	}
	require.NoError(t, s.db.Create(&user).Error)
	require.NoError(t, s.db.Create(&models.Faculty{FacultyID: facultyID, UserID: user.UserID}).Error)
	return user.UserID
}

func seedClassroom(t *testing.T, s *Store, name string) uint {
	t.Helper()
	room := models.Classroom{Name: name}
	require.NoError(t, s.db.Create(&room).Error)
	return room.ClassID
}

func seedCourse(t *testing.T, s *Store, userID uint, code, title string) uint {
	t.Helper()
	id, err := s.CreateCourse(context.Background(), userID, code, title)
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, s *Store, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func at(day int, hour int) time.Time {
	return time.Date(2025, 10, day, hour, 0, 0, 0, time.UTC)
}
