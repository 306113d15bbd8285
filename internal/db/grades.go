package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/grades"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

// GroupAveragePercent computes the caller's drop-lowest average for one
// assessment group. A group that does not exist under the course yields 0.
func (s *Store) GroupAveragePercent(ctx context.Context, userID, courseID, groupID uint) (float64, error) {
	var avg float64
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var group models.AssessmentGroup
		err := tx.Where("group_id = ? AND course_id = ?", groupID, courseID).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			avg = 0
			return nil
		}
		if err != nil {
			return err
		}

		sid := studentID(tx, userID)
		scores, err := loadScores(tx, courseID, sid, groupID)
		if err != nil {
			return err
		}
		avg = grades.GroupAverage(group.DropLowest, scores)
		return nil
	})
	return avg, err
}

// CourseOverallAverage is the unweighted mean of every group average in the
// course for the caller.
func (s *Store) CourseOverallAverage(ctx context.Context, userID, courseID uint) (float64, error) {
	var avg float64
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var groups []models.AssessmentGroup
		if err := tx.Where("course_id = ?", courseID).Find(&groups).Error; err != nil {
			return err
		}
		if len(groups) == 0 {
			avg = 0
			return nil
		}

		sid := studentID(tx, userID)
		perGroup := make([]float64, 0, len(groups))
		for _, g := range groups {
			scores, err := loadScores(tx, courseID, sid, g.GroupID)
			if err != nil {
				return err
			}
			perGroup = append(perGroup, grades.GroupAverage(g.DropLowest, scores))
		}
		avg = grades.Mean(perGroup)
		return nil
	})
	return avg, err
}

func loadScores(tx *gorm.DB, courseID uint, studentID string, groupID uint) ([]grades.Score, error) {
	if studentID == "" {
		return nil, nil
	}
	var rows []struct {
		ObtainedMarks float64
		TotalMarks    float64
	}
	err := tx.Model(&models.Mark{}).
		Select("marks.obtained_marks, marks.total_marks").
		Joins("JOIN mark_attributions g ON g.mark_id = marks.mark_id").
		Where("g.course_id = ? AND g.student_id = ? AND g.group_id = ?", courseID, studentID, groupID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	scores := make([]grades.Score, len(rows))
	for i, r := range rows {
		scores[i] = grades.Score{Obtained: r.ObtainedMarks, Total: r.TotalMarks}
	}
	return scores, nil
}
