package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

func TestCreateCourseNamespacesCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedStudent(t, s, "a@x.com", "21101001")

	courseID := seedCourse(t, s, userID, "CSE370", "Database Systems")

	var course models.Course
	require.NoError(t, s.db.First(&course, "course_id = ?", courseID).Error)
	assert.Equal(t, "21101001_CSE370", course.CourseCode)

	// same code for the same owner is rejected
	_, err := s.CreateCourse(ctx, userID, "CSE370", "Again")
	assert.ErrorIs(t, err, ErrValidationFailed)

	// but another student can use it
	other := seedStudent(t, s, "b@x.com", "21101002")
	_, err = s.CreateCourse(ctx, other, "CSE370", "Database Systems")
	assert.NoError(t, err)
}

func TestCreateCourseRequiresStudent(t *testing.T) {
	s := newTestStore(t)
	facultyUser := seedFaculty(t, s, "f@x.com", "FAC01")

	_, err := s.CreateCourse(context.Background(), facultyUser, "CSE370", "DB")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeleteCourseCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedStudent(t, s, "a@x.com", "21101001")
	courseID := seedCourse(t, s, userID, "CSE370", "DB")

	quizzes, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 1)
	require.NoError(t, err)
	assignments, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Assignments", 0)
	require.NoError(t, err)

	require.NoError(t, s.UpsertMark(ctx, userID, courseID, quizzes, "Quiz 1", 8, 10))
	require.NoError(t, s.UpsertMark(ctx, userID, courseID, quizzes, "Quiz 2", 9, 10))
	require.NoError(t, s.UpsertMark(ctx, userID, courseID, assignments, "A1", 18, 20))

	// a stranger cannot delete it
	stranger := seedStudent(t, s, "b@x.com", "21101002")
	assert.ErrorIs(t, s.DeleteCourse(ctx, stranger, courseID), ErrUnauthorized)

	require.NoError(t, s.DeleteCourse(ctx, userID, courseID))

	assert.EqualValues(t, 0, countRows(t, s, &models.Course{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.AssessmentGroup{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.Mark{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.MarkAttribution{}))
}

func TestDeleteCourseNotFound(t *testing.T) {
	s := newTestStore(t)
	userID := seedStudent(t, s, "a@x.com", "21101001")
	assert.ErrorIs(t, s.DeleteCourse(context.Background(), userID, 9999), ErrNotFound)
}

func TestDeleteAssessmentGroupScopedToGroup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedStudent(t, s, "a@x.com", "21101001")
	courseID := seedCourse(t, s, userID, "CSE370", "DB")

	quizzes, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 1)
	require.NoError(t, err)
	assignments, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Assignments", 0)
	require.NoError(t, err)

	require.NoError(t, s.UpsertMark(ctx, userID, courseID, quizzes, "Quiz 1", 8, 10))
	require.NoError(t, s.UpsertMark(ctx, userID, courseID, assignments, "A1", 18, 20))

	stranger := seedStudent(t, s, "b@x.com", "21101002")
	assert.ErrorIs(t, s.DeleteAssessmentGroup(ctx, stranger, quizzes), ErrUnauthorized)

	require.NoError(t, s.DeleteAssessmentGroup(ctx, userID, quizzes))

	// the other group's mark survives
	assert.EqualValues(t, 1, countRows(t, s, &models.Mark{}))
	assert.EqualValues(t, 1, countRows(t, s, &models.AssessmentGroup{}))
}

func TestUpsertMarkNaturalKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedStudent(t, s, "a@x.com", "21101001")
	courseID := seedCourse(t, s, userID, "CSE370", "DB")
	groupID, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 0)
	require.NoError(t, err)

	require.NoError(t, s.UpsertMark(ctx, userID, courseID, groupID, "Quiz 1", 5, 10))
	require.NoError(t, s.UpsertMark(ctx, userID, courseID, groupID, "Quiz 1", 9, 10))

	assert.EqualValues(t, 1, countRows(t, s, &models.Mark{}))

	var mark models.Mark
	require.NoError(t, s.db.First(&mark).Error)
	assert.Equal(t, 9.0, mark.ObtainedMarks)
	assert.Equal(t, 10.0, mark.TotalMarks)

	// a different assessment name is a new row
	require.NoError(t, s.UpsertMark(ctx, userID, courseID, groupID, "Quiz 2", 7, 10))
	assert.EqualValues(t, 2, countRows(t, s, &models.Mark{}))
}

func TestUpsertMarkValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedStudent(t, s, "a@x.com", "21101001")
	courseID := seedCourse(t, s, userID, "CSE370", "DB")
	groupID, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 0)
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpsertMark(ctx, userID, courseID, groupID, "Quiz 1", 5, 0), ErrValidationFailed)
	assert.ErrorIs(t, s.UpsertMark(ctx, userID, courseID, groupID, "Quiz 1", 5, -10), ErrValidationFailed)
	assert.ErrorIs(t, s.UpsertMark(ctx, userID, courseID, groupID, "", 5, 10), ErrValidationFailed)

	// group must belong to the course
	otherCourse := seedCourse(t, s, userID, "CSE371", "Other")
	assert.ErrorIs(t, s.UpsertMark(ctx, userID, otherCourse, groupID, "Quiz 1", 5, 10), ErrNotFound)
}

func TestDeleteMarkOwnershipChain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedStudent(t, s, "a@x.com", "21101001")
	courseID := seedCourse(t, s, userID, "CSE370", "DB")
	groupID, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 0)
	require.NoError(t, err)
	require.NoError(t, s.UpsertMark(ctx, userID, courseID, groupID, "Quiz 1", 5, 10))

	var mark models.Mark
	require.NoError(t, s.db.First(&mark).Error)

	stranger := seedStudent(t, s, "b@x.com", "21101002")
	assert.ErrorIs(t, s.DeleteMark(ctx, stranger, mark.MarkID), ErrUnauthorized)
	assert.ErrorIs(t, s.DeleteMark(ctx, userID, 9999), ErrNotFound)

	require.NoError(t, s.DeleteMark(ctx, userID, mark.MarkID))
	assert.EqualValues(t, 0, countRows(t, s, &models.Mark{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.MarkAttribution{}))
}

func TestListMarksOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := seedStudent(t, s, "a@x.com", "21101001")
	courseID := seedCourse(t, s, userID, "CSE370", "DB")

	quizzes, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Quizzes", 0)
	require.NoError(t, err)
	assignments, err := s.CreateAssessmentGroup(ctx, userID, courseID, "Assignments", 0)
	require.NoError(t, err)

	require.NoError(t, s.UpsertMark(ctx, userID, courseID, quizzes, "Quiz 1", 5, 10))
	require.NoError(t, s.UpsertMark(ctx, userID, courseID, assignments, "A1", 18, 20))

	marks, err := s.ListMarks(ctx, userID, courseID)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, "Assignments", marks[0].GroupName)
	assert.Equal(t, "Quizzes", marks[1].GroupName)
}
