package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

type CourseInfo struct {
	CourseID   uint   `json:"course_id"`
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
}

type GroupInfo struct {
	GroupID    uint   `json:"group_id"`
	Name       string `json:"name"`
	DropLowest int    `json:"drop_lowest"`
}

type MarkInfo struct {
	MarkID         uint      `json:"mark_id"`
	GroupID        uint      `json:"group_id"`
	GroupName      string    `json:"group_name"`
	AssessmentName string    `json:"assessment_name"`
	ObtainedMarks  float64   `json:"obtained_marks"`
	TotalMarks     float64   `json:"total_marks"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateCourse creates a course owned by the acting student. The stored code
// is namespaced by the student id, so uniqueness is per owner, not global.
func (s *Store) CreateCourse(ctx context.Context, userID uint, code, title string) (uint, error) {
	if code == "" || title == "" {
		return 0, ErrValidationFailed
	}
	var courseID uint
	err := s.tx(ctx, func(tx *gorm.DB) error {
		sid := studentID(tx, userID)
		if sid == "" {
			return ErrUnauthorized
		}
		namespaced := sid + "_" + code
		var n int64
		if err := tx.Model(&models.Course{}).
			Where("course_code = ? AND user_id = ?", namespaced, userID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrValidationFailed
		}
		course := models.Course{CourseCode: namespaced, Title: title, UserID: userID}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		courseID = course.CourseID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return courseID, nil
}

// DeleteCourse removes an owned course along with its assessment groups,
// mark attributions and marks. No orphans survive.
func (s *Store) DeleteCourse(ctx context.Context, userID, courseID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.Where("course_id = ?", courseID).First(&course).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if course.UserID != userID {
			return ErrUnauthorized
		}
		if err := deleteCourseMarks(tx, courseID); err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", courseID).Delete(&models.AssessmentGroup{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, "course_id = ?", courseID).Error
	})
}

func deleteCourseMarks(tx *gorm.DB, courseID uint) error {
	var markIDs []uint
	if err := tx.Model(&models.MarkAttribution{}).
		Where("course_id = ?", courseID).
		Pluck("mark_id", &markIDs).Error; err != nil {
		return err
	}
	if len(markIDs) == 0 {
		return nil
	}
	if err := tx.Where("mark_id IN ?", markIDs).Delete(&models.MarkAttribution{}).Error; err != nil {
		return err
	}
	return tx.Where("mark_id IN ?", markIDs).Delete(&models.Mark{}).Error
}

// CreateAssessmentGroup adds a group to an owned course.
func (s *Store) CreateAssessmentGroup(ctx context.Context, userID, courseID uint, name string, dropLowest int) (uint, error) {
	if name == "" || dropLowest < 0 {
		return 0, ErrValidationFailed
	}
	var groupID uint
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if !ownsCourse(tx, userID, courseID) {
			return ErrUnauthorized
		}
		group := models.AssessmentGroup{CourseID: courseID, Name: name, DropLowest: dropLowest}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		groupID = group.GroupID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return groupID, nil
}

// DeleteAssessmentGroup removes a group and every mark linked to it, if the
// group's course belongs to the caller.
func (s *Store) DeleteAssessmentGroup(ctx context.Context, userID, groupID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		var group models.AssessmentGroup
		if err := tx.Where("group_id = ?", groupID).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !ownsCourse(tx, userID, group.CourseID) {
			return ErrUnauthorized
		}

		var markIDs []uint
		if err := tx.Model(&models.MarkAttribution{}).
			Where("group_id = ?", groupID).
			Pluck("mark_id", &markIDs).Error; err != nil {
			return err
		}
		if len(markIDs) > 0 {
			if err := tx.Where("mark_id IN ?", markIDs).Delete(&models.MarkAttribution{}).Error; err != nil {
				return err
			}
			if err := tx.Where("mark_id IN ?", markIDs).Delete(&models.Mark{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.AssessmentGroup{}, "group_id = ?", groupID).Error
	})
}

// UpsertMark records a score for (course, caller, group, assessment name).
// A second write with the same natural key overwrites instead of duplicating.
func (s *Store) UpsertMark(ctx context.Context, userID, courseID, groupID uint, assessmentName string, obtained, total float64) error {
	if assessmentName == "" || total <= 0 || obtained < 0 {
		return ErrValidationFailed
	}
	return s.tx(ctx, func(tx *gorm.DB) error {
		if !ownsCourse(tx, userID, courseID) {
			return ErrUnauthorized
		}
		var group models.AssessmentGroup
		err := tx.Where("group_id = ? AND course_id = ?", groupID, courseID).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		sid := studentID(tx, userID)
		if sid == "" {
			return ErrUnauthorized
		}

		var existing models.Mark
		err = tx.Model(&models.Mark{}).
			Joins("JOIN mark_attributions g ON g.mark_id = marks.mark_id").
			Where("g.course_id = ? AND g.student_id = ? AND g.group_id = ? AND marks.assessment_name = ?",
				courseID, sid, groupID, assessmentName).
			First(&existing).Error
		switch {
		case err == nil:
			return tx.Model(&models.Mark{}).
				Where("mark_id = ?", existing.MarkID).
				Updates(map[string]interface{}{"obtained_marks": obtained, "total_marks": total}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			mark := models.Mark{AssessmentName: assessmentName, ObtainedMarks: obtained, TotalMarks: total}
			if err := tx.Create(&mark).Error; err != nil {
				return err
			}
			return tx.Create(&models.MarkAttribution{
				MarkID:    mark.MarkID,
				CourseID:  courseID,
				StudentID: sid,
				GroupID:   groupID,
			}).Error
		default:
			return err
		}
	})
}

// DeleteMark is permitted when the mark's attribution chain resolves to a
// course owned by the caller.
func (s *Store) DeleteMark(ctx context.Context, userID, markID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		var attr models.MarkAttribution
		if err := tx.Where("mark_id = ?", markID).First(&attr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !ownsCourse(tx, userID, attr.CourseID) {
			return ErrUnauthorized
		}
		if err := tx.Where("mark_id = ?", markID).Delete(&models.MarkAttribution{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Mark{}, "mark_id = ?", markID).Error
	})
}

// ListMyCourses lists courses owned by the caller, ordered by code.
func (s *Store) ListMyCourses(ctx context.Context, userID uint) ([]CourseInfo, error) {
	var out []CourseInfo
	err := s.db.WithContext(ctx).Model(&models.Course{}).
		Select("course_id, course_code, title").
		Where("user_id = ?", userID).
		Order("course_code").
		Scan(&out).Error
	return out, err
}

// ListAssessmentGroups lists a course's groups ordered by name.
func (s *Store) ListAssessmentGroups(ctx context.Context, courseID uint) ([]GroupInfo, error) {
	var out []GroupInfo
	err := s.db.WithContext(ctx).Model(&models.AssessmentGroup{}).
		Select("group_id, name, drop_lowest").
		Where("course_id = ?", courseID).
		Order("name").
		Scan(&out).Error
	return out, err
}

// ListMarks lists the caller's marks for a course, grouped by assessment
// group name then insertion time.
func (s *Store) ListMarks(ctx context.Context, userID, courseID uint) ([]MarkInfo, error) {
	var out []MarkInfo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		sid := studentID(tx, userID)
		if sid == "" {
			return nil
		}
		return tx.Model(&models.Mark{}).
			Select("marks.mark_id, g.group_id, ag.name AS group_name, marks.assessment_name, marks.obtained_marks, marks.total_marks, marks.created_at").
			Joins("JOIN mark_attributions g ON g.mark_id = marks.mark_id").
			Joins("JOIN assessment_groups ag ON ag.group_id = g.group_id").
			Where("g.course_id = ? AND g.student_id = ?", courseID, sid).
			Order("ag.name, marks.created_at").
			Scan(&out).Error
	})
	return out, err
}

// GroupByName resolves a group id by its name within a course. The
// spreadsheet importer keys rows by group name.
func (s *Store) GroupByName(ctx context.Context, courseID uint, name string) (uint, error) {
	var group models.AssessmentGroup
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND name = ?", courseID, name).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return group.GroupID, nil
}
