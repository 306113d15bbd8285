package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/auth"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/config"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/excel"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/resources"
)

// Server is thin field-binding glue: handlers bind, call the store and map
// the failure taxonomy to statuses. No business rules live here.
type Server struct {
	cfg   *config.Config
	store *db.Store
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted"})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, db.ErrValidationFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid input"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// GetMe godoc
// @Summary      Current profile
// @Tags         user
// @Produce      json
// @Success      200 {object} db.Profile
// @Security     BearerAuth
// @Router       /user/me [get]
func (s *Server) GetMe(c *gin.Context) {
	profile, err := s.store.GetUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, profile)
}

// GetActivity godoc
// @Summary      Days since the caller's most recent event
// @Tags         user
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /user/activity [get]
func (s *Server) GetActivity(c *gin.Context) {
	days, err := s.store.DaysSinceLastActivity(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"days_since_last_activity": days})
}

// GetGeneralResources godoc
// @Summary      External course resources
// @Description  Read-only listing from the resources directory
// @Tags         resources
// @Produce      json
// @Success      200 {array} resources.Course
// @Router       /resources/general [get]
func (s *Server) GetGeneralResources(c *gin.Context) {
	c.JSON(200, resources.Load(s.cfg.ResourcesDir))
}

// ---- Classrooms ----

type CreateClassroomRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListClassrooms godoc
// @Summary      All classrooms
// @Tags         classrooms
// @Produce      json
// @Success      200 {array} db.ClassroomInfo
// @Security     BearerAuth
// @Router       /classrooms [get]
func (s *Server) ListClassrooms(c *gin.Context) {
	rooms, err := s.store.ListAllClassrooms(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, rooms)
}

// CreateClassroom godoc
// @Summary      Create a classroom (faculty)
// @Tags         classrooms
// @Accept       json
// @Produce      json
// @Param        body body CreateClassroomRequest true "Classroom"
// @Success      201 {object} map[string]uint
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /classrooms [post]
func (s *Server) CreateClassroom(c *gin.Context) {
	var req CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, err := s.store.CreateClassroom(c.Request.Context(), auth.UserID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"class_id": id})
}

// DeleteClassroom godoc
// @Summary      Delete a classroom (teaching faculty only)
// @Tags         classrooms
// @Produce      json
// @Param        id path int true "Classroom id"
// @Success      200 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /classrooms/{id} [delete]
func (s *Server) DeleteClassroom(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteClassroom(c.Request.Context(), auth.UserID(c), classID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Classroom deleted"})
}

// ListEnrolled godoc
// @Summary      Classrooms the caller is enrolled in
// @Tags         classrooms
// @Produce      json
// @Success      200 {array} db.ClassroomInfo
// @Security     BearerAuth
// @Router       /my/classrooms [get]
func (s *Server) ListEnrolled(c *gin.Context) {
	rooms, err := s.store.ListEnrolledClassrooms(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, rooms)
}

// ListTeaching godoc
// @Summary      Classrooms the caller teaches
// @Tags         classrooms
// @Produce      json
// @Success      200 {array} db.ClassroomInfo
// @Security     BearerAuth
// @Router       /my/teaching [get]
func (s *Server) ListTeaching(c *gin.Context) {
	rooms, err := s.store.ListTeachingAssignments(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, rooms)
}

// Enroll godoc
// @Summary      Enroll the calling student
// @Tags         classrooms
// @Produce      json
// @Param        id path int true "Classroom id"
// @Success      200 {object} map[string]string
// @Security     BearerAuth
// @Router       /classrooms/{id}/enroll [post]
func (s *Server) Enroll(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.EnrollStudent(c.Request.Context(), auth.UserID(c), classID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Enrolled"})
}

// Teach godoc
// @Summary      Link the calling faculty as teacher
// @Tags         classrooms
// @Produce      json
// @Param        id path int true "Classroom id"
// @Success      200 {object} map[string]string
// @Security     BearerAuth
// @Router       /classrooms/{id}/teach [post]
func (s *Server) Teach(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.AssignTeaching(c.Request.Context(), auth.UserID(c), classID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Assigned"})
}

// ---- Resources ----

type AddResourceRequest struct {
	Title    string `json:"title" binding:"required"`
	FileLink string `json:"file_link" binding:"required"`
}

// ListResources godoc
// @Summary      Classroom resources (enrolled or teaching only)
// @Tags         resources
// @Produce      json
// @Param        id path int true "Classroom id"
// @Success      200 {array} db.ResourceInfo
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /classrooms/{id}/resources [get]
func (s *Server) ListResources(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := s.store.ListClassroomResources(c.Request.Context(), auth.UserID(c), classID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, res)
}

// AddResource godoc
// @Summary      Upload a resource to a taught classroom
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        id path int true "Classroom id"
// @Param        body body AddResourceRequest true "Resource"
// @Success      201 {object} map[string]uint
// @Security     BearerAuth
// @Router       /classrooms/{id}/resources [post]
func (s *Server) AddResource(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, err := s.store.AddResource(c.Request.Context(), auth.UserID(c), classID, req.Title, req.FileLink)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"resource_id": id})
}

// ---- Events & calendar ----

type AddEventRequest struct {
	DateTime     time.Time `json:"date_time" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	ResourceLink string    `json:"resource_link"`
}

// AddPersonalEvent godoc
// @Summary      Create a personal event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        body body AddEventRequest true "Event"
// @Success      201 {object} map[string]uint
// @Security     BearerAuth
// @Router       /events [post]
func (s *Server) AddPersonalEvent(c *gin.Context) {
	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, err := s.store.AddPersonalEvent(c.Request.Context(), auth.UserID(c), req.DateTime, req.Title, req.ResourceLink)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event_id": id})
}

// AddClassEvent godoc
// @Summary      Create a classroom event (teaching faculty only)
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        id path int true "Classroom id"
// @Param        body body AddEventRequest true "Event"
// @Success      201 {object} map[string]uint
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /classrooms/{id}/events [post]
func (s *Server) AddClassEvent(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, err := s.store.AddClassEvent(c.Request.Context(), auth.UserID(c), classID, req.DateTime, req.Title, req.ResourceLink)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event_id": id})
}

// ListClassEvents godoc
// @Summary      Events of a classroom
// @Tags         events
// @Produce      json
// @Param        id path int true "Classroom id"
// @Success      200 {array} db.EventInfo
// @Security     BearerAuth
// @Router       /classrooms/{id}/events [get]
func (s *Server) ListClassEvents(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	events, err := s.store.ListClassroomEvents(c.Request.Context(), classID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, events)
}

// DeletePersonalEvent godoc
// @Summary      Delete an owned personal event
// @Tags         events
// @Produce      json
// @Param        id path int true "Event id"
// @Success      200 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /events/{id} [delete]
func (s *Server) DeletePersonalEvent(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePersonalEvent(c.Request.Context(), auth.UserID(c), eventID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Event deleted"})
}

// DeleteClassEvent godoc
// @Summary      Delete a classroom event created by the caller
// @Tags         events
// @Produce      json
// @Param        id path int true "Event id"
// @Success      200 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Security     BearerAuth
// @Router       /class-events/{id} [delete]
func (s *Server) DeleteClassEvent(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteClassEvent(c.Request.Context(), auth.UserID(c), eventID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Event deleted"})
}

// GetCalendar godoc
// @Summary      Merged personal calendar
// @Description  Personal events plus events of enrolled and taught classrooms, by date
// @Tags         events
// @Produce      json
// @Success      200 {array} db.CalendarEntry
// @Security     BearerAuth
// @Router       /calendar [get]
func (s *Server) GetCalendar(c *gin.Context) {
	entries, err := s.store.ListPersonalCalendar(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, entries)
}

// ---- Courses, groups & marks ----

type CreateCourseRequest struct {
	CourseCode string `json:"course_code" binding:"required"`
	Title      string `json:"title" binding:"required"`
}

type CreateGroupRequest struct {
	Name       string `json:"name" binding:"required"`
	DropLowest int    `json:"drop_lowest"`
}

type UpsertMarkRequest struct {
	GroupID        uint    `json:"group_id" binding:"required"`
	AssessmentName string  `json:"assessment_name" binding:"required"`
	ObtainedMarks  float64 `json:"obtained_marks"`
	TotalMarks     float64 `json:"total_marks" binding:"required"`
}

// ListCourses godoc
// @Summary      Courses owned by the caller
// @Tags         courses
// @Produce      json
// @Success      200 {array} db.CourseInfo
// @Security     BearerAuth
// @Router       /courses [get]
func (s *Server) ListCourses(c *gin.Context) {
	courses, err := s.store.ListMyCourses(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, courses)
}

// CreateCourse godoc
// @Summary      Create a course (student)
// @Tags         courses
// @Accept       json
// @Produce      json
// @Param        body body CreateCourseRequest true "Course"
// @Success      201 {object} map[string]uint
// @Security     BearerAuth
// @Router       /courses [post]
func (s *Server) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, err := s.store.CreateCourse(c.Request.Context(), auth.UserID(c), req.CourseCode, req.Title)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course_id": id})
}

// DeleteCourse godoc
// @Summary      Delete an owned course and everything under it
// @Tags         courses
// @Produce      json
// @Param        id path int true "Course id"
// @Success      200 {object} map[string]string
// @Security     BearerAuth
// @Router       /courses/{id} [delete]
func (s *Server) DeleteCourse(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteCourse(c.Request.Context(), auth.UserID(c), courseID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Course deleted"})
}

// ListGroups godoc
// @Summary      Assessment groups of a course
// @Tags         courses
// @Produce      json
// @Param        id path int true "Course id"
// @Success      200 {array} db.GroupInfo
// @Security     BearerAuth
// @Router       /courses/{id}/groups [get]
func (s *Server) ListGroups(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	groups, err := s.store.ListAssessmentGroups(c.Request.Context(), courseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, groups)
}

// CreateGroup godoc
// @Summary      Add an assessment group to an owned course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Param        id path int true "Course id"
// @Param        body body CreateGroupRequest true "Group"
// @Success      201 {object} map[string]uint
// @Security     BearerAuth
// @Router       /courses/{id}/groups [post]
func (s *Server) CreateGroup(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	id, err := s.store.CreateAssessmentGroup(c.Request.Context(), auth.UserID(c), courseID, req.Name, req.DropLowest)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group_id": id})
}

// DeleteGroup godoc
// @Summary      Delete an assessment group and its marks
// @Tags         courses
// @Produce      json
// @Param        id path int true "Group id"
// @Success      200 {object} map[string]string
// @Security     BearerAuth
// @Router       /groups/{id} [delete]
func (s *Server) DeleteGroup(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteAssessmentGroup(c.Request.Context(), auth.UserID(c), groupID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Group deleted"})
}

// ListMarks godoc
// @Summary      Marks of the caller for a course
// @Tags         marks
// @Produce      json
// @Param        id path int true "Course id"
// @Success      200 {array} db.MarkInfo
// @Security     BearerAuth
// @Router       /courses/{id}/marks [get]
func (s *Server) ListMarks(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	marks, err := s.store.ListMarks(c.Request.Context(), auth.UserID(c), courseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, marks)
}

// UpsertMark godoc
// @Summary      Record a mark (overwrites the same assessment name)
// @Tags         marks
// @Accept       json
// @Produce      json
// @Param        id path int true "Course id"
// @Param        body body UpsertMarkRequest true "Mark"
// @Success      200 {object} map[string]string
// @Failure      422 {object} map[string]string
// @Security     BearerAuth
// @Router       /courses/{id}/marks [post]
func (s *Server) UpsertMark(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpsertMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	err := s.store.UpsertMark(c.Request.Context(), auth.UserID(c), courseID, req.GroupID, req.AssessmentName, req.ObtainedMarks, req.TotalMarks)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Mark saved"})
}

// ImportMarks godoc
// @Summary      Bulk import marks from a spreadsheet
// @Description  Multipart upload; rows are (group name, assessment, obtained, total)
// @Tags         marks
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     int  true "Course id"
// @Param        file formData file true "xlsx file"
// @Success      200 {object} map[string]int
// @Security     BearerAuth
// @Router       /courses/{id}/marks/import [post]
func (s *Server) ImportMarks(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return
	}
	defer file.Close()

	imported, err := excel.ImportMarks(c.Request.Context(), s.store, auth.UserID(c), courseID, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"imported": imported})
}

// DeleteMark godoc
// @Summary      Delete a mark owned through its course
// @Tags         marks
// @Produce      json
// @Param        id path int true "Mark id"
// @Success      200 {object} map[string]string
// @Security     BearerAuth
// @Router       /marks/{id} [delete]
func (s *Server) DeleteMark(c *gin.Context) {
	markID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteMark(c.Request.Context(), auth.UserID(c), markID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Mark deleted"})
}

// GroupAverage godoc
// @Summary      Drop-lowest average for one group
// @Tags         marks
// @Produce      json
// @Param        id  path int true "Course id"
// @Param        gid path int true "Group id"
// @Success      200 {object} map[string]float64
// @Security     BearerAuth
// @Router       /courses/{id}/groups/{gid}/average [get]
func (s *Server) GroupAverage(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	groupID, ok := pathID(c, "gid")
	if !ok {
		return
	}
	avg, err := s.store.GroupAveragePercent(c.Request.Context(), auth.UserID(c), courseID, groupID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"average_percent": avg})
}

// CourseAverage godoc
// @Summary      Unweighted mean of the course's group averages
// @Tags         marks
// @Produce      json
// @Param        id path int true "Course id"
// @Success      200 {object} map[string]float64
// @Security     BearerAuth
// @Router       /courses/{id}/average [get]
func (s *Server) CourseAverage(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	avg, err := s.store.CourseOverallAverage(c.Request.Context(), auth.UserID(c), courseID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(200, gin.H{"overall_average": avg})
}
