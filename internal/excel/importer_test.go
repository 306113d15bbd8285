package excel

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

func newImportStore(t *testing.T) (*db.Store, uint, uint) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	store, err := db.New(sqlite.Open(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	userID, _, err := store.Signup(ctx, "a@x.com", "hunter22", "Ayesha", models.RoleStudent, "21101001", "CSE")
	require.NoError(t, err)
	courseID, err := store.CreateCourse(ctx, userID, "CSE370", "Database Systems")
	require.NoError(t, err)
	return store, userID, courseID
}

func sheetBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, cell))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportMarks(t *testing.T) {
	store, userID, courseID := newImportStore(t)
	ctx := context.Background()

	quizzes, err := store.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 1)
	require.NoError(t, err)
	_, err = store.CreateAssessmentGroup(ctx, userID, courseID, "Finals", 0)
	require.NoError(t, err)

	buf := sheetBytes(t, [][]interface{}{
		{"Group", "Assessment", "Obtained", "Total"},
		{"Quizzes", "Quiz 1", 8, 10},
		{"Quizzes", "Quiz 2", 6.5, 10},
		{"Finals", "Final", 45, 50},
		{"Homework", "HW 1", 9, 10},  // no such group
		{"Quizzes", "Quiz 3", 5, 0},  // invalid total
		{"Quizzes", "", 5, 10},       // missing assessment name
		{"Quizzes", "Quiz 1", 9, 10}, // upserts over the first row
	})

	n, err := ImportMarks(ctx, store, userID, courseID, buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	marks, err := store.ListMarks(ctx, userID, courseID)
	require.NoError(t, err)
	require.Len(t, marks, 3)

	var quiz1 *db.MarkInfo
	for i := range marks {
		if marks[i].AssessmentName == "Quiz 1" && marks[i].GroupID == quizzes {
			quiz1 = &marks[i]
		}
	}
	require.NotNil(t, quiz1)
	assert.InDelta(t, 9, quiz1.ObtainedMarks, 0.001)
}

func TestImportMarksRejectsForeignCourse(t *testing.T) {
	store, userID, courseID := newImportStore(t)
	ctx := context.Background()

	_, err := store.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 0)
	require.NoError(t, err)

	otherID, _, err := store.Signup(ctx, "b@x.com", "hunter22", "Badal", models.RoleStudent, "21101002", "CSE")
	require.NoError(t, err)

	buf := sheetBytes(t, [][]interface{}{
		{"Quizzes", "Quiz 1", 8, 10},
	})
	n, err := ImportMarks(ctx, store, otherID, courseID, buf)
	assert.ErrorIs(t, err, db.ErrUnauthorized)
	assert.Zero(t, n)
}

func TestImportMarksBadFile(t *testing.T) {
	store, userID, courseID := newImportStore(t)
	_, err := ImportMarks(context.Background(), store, userID, courseID, bytes.NewBufferString("not an xlsx"))
	assert.Error(t, err)
}
