package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

func TestCreateClassroomLinksFaculty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	facultyUser := seedFaculty(t, s, "f@x.com", "FAC01")

	classID, err := s.CreateClassroom(ctx, facultyUser, "CSE370 Section 1")
	require.NoError(t, err)

	assert.EqualValues(t, 1, countRows(t, s, &models.Teaching{}))

	rooms, err := s.ListTeachingAssignments(ctx, facultyUser)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, classID, rooms[0].ClassID)

	// students cannot create classrooms
	studentUser := seedStudent(t, s, "a@x.com", "21101001")
	_, err = s.CreateClassroom(ctx, studentUser, "Nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDeleteClassroomRequiresTeachingLink(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedFaculty(t, s, "f@x.com", "FAC01")
	outsider := seedFaculty(t, s, "g@x.com", "FAC02")

	classID, err := s.CreateClassroom(ctx, owner, "CSE370")
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteClassroom(ctx, outsider, classID), ErrUnauthorized)
	assert.ErrorIs(t, s.DeleteClassroom(ctx, owner, 9999), ErrNotFound)
	require.NoError(t, s.DeleteClassroom(ctx, owner, classID))
	assert.EqualValues(t, 0, countRows(t, s, &models.Classroom{}))
}

func TestDeleteClassroomCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	facultyUser := seedFaculty(t, s, "f@x.com", "FAC01")
	studentUser := seedStudent(t, s, "a@x.com", "21101001")

	classID, err := s.CreateClassroom(ctx, facultyUser, "CSE370")
	require.NoError(t, err)
	require.NoError(t, s.EnrollStudent(ctx, studentUser, classID))

	_, err = s.AddClassEvent(ctx, facultyUser, classID, at(10, 9), "Midterm", "")
	require.NoError(t, err)
	_, err = s.AddResource(ctx, facultyUser, classID, "Slides", "http://files/slides.pdf")
	require.NoError(t, err)

	// an unrelated personal event must survive the cascade
	_, err = s.AddPersonalEvent(ctx, studentUser, at(11, 9), "Study", "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteClassroom(ctx, facultyUser, classID))

	assert.EqualValues(t, 0, countRows(t, s, &models.Enrollment{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.Teaching{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.EventClassroomLink{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.Resource{}))
	assert.EqualValues(t, 0, countRows(t, s, &models.ResourceUploadLink{}))
	assert.EqualValues(t, 1, countRows(t, s, &models.Event{}))
}

func TestEnrollIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	studentUser := seedStudent(t, s, "a@x.com", "21101001")
	classID := seedClassroom(t, s, "CSE370")

	require.NoError(t, s.EnrollStudent(ctx, studentUser, classID))
	require.NoError(t, s.EnrollStudent(ctx, studentUser, classID))
	assert.EqualValues(t, 1, countRows(t, s, &models.Enrollment{}))

	assert.ErrorIs(t, s.EnrollStudent(ctx, studentUser, 9999), ErrNotFound)

	facultyUser := seedFaculty(t, s, "f@x.com", "FAC01")
	assert.ErrorIs(t, s.EnrollStudent(ctx, facultyUser, classID), ErrUnauthorized)
}

func TestAssignTeachingIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	facultyUser := seedFaculty(t, s, "f@x.com", "FAC01")
	classID := seedClassroom(t, s, "CSE370")

	require.NoError(t, s.AssignTeaching(ctx, facultyUser, classID))
	require.NoError(t, s.AssignTeaching(ctx, facultyUser, classID))
	assert.EqualValues(t, 1, countRows(t, s, &models.Teaching{}))
}

func TestResourceVisibility(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	facultyUser := seedFaculty(t, s, "f@x.com", "FAC01")
	enrolledStudent := seedStudent(t, s, "a@x.com", "21101001")
	outsider := seedStudent(t, s, "b@x.com", "21101002")

	classID, err := s.CreateClassroom(ctx, facultyUser, "CSE370")
	require.NoError(t, err)
	require.NoError(t, s.EnrollStudent(ctx, enrolledStudent, classID))

	_, err = s.AddResource(ctx, facultyUser, classID, "Slides", "http://files/slides.pdf")
	require.NoError(t, err)

	res, err := s.ListClassroomResources(ctx, enrolledStudent, classID)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = s.ListClassroomResources(ctx, facultyUser, classID)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	_, err = s.ListClassroomResources(ctx, outsider, classID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAddResourceRequiresTeaching(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	teaching := seedFaculty(t, s, "f@x.com", "FAC01")
	other := seedFaculty(t, s, "g@x.com", "FAC02")

	classID, err := s.CreateClassroom(ctx, teaching, "CSE370")
	require.NoError(t, err)

	_, err = s.AddResource(ctx, other, classID, "Slides", "http://files/slides.pdf")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 0, countRows(t, s, &models.Resource{}))
}
