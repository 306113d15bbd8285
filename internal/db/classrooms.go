package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

type ClassroomInfo struct {
	ClassID uint   `json:"class_id"`
	Name    string `json:"name"`
}

type ResourceInfo struct {
	ResourceID uint   `json:"resource_id"`
	Title      string `json:"title"`
	FileLink   string `json:"file_link"`
}

// CreateClassroom creates a classroom and links the acting faculty as its
// teacher in the same transaction.
func (s *Store) CreateClassroom(ctx context.Context, userID uint, name string) (uint, error) {
	if name == "" {
		return 0, ErrValidationFailed
	}
	var classID uint
	err := s.tx(ctx, func(tx *gorm.DB) error {
		fid := facultyID(tx, userID)
		if fid == "" {
			return ErrUnauthorized
		}
		room := models.Classroom{Name: name}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Teaching{FacultyID: fid, ClassroomID: room.ClassID}).Error; err != nil {
			return err
		}
		classID = room.ClassID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return classID, nil
}

// DeleteClassroom is permitted only for a teaching faculty and cascades to
// enrollments, teachings, classroom events and uploaded resources.
func (s *Store) DeleteClassroom(ctx context.Context, userID, classID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		var room models.Classroom
		if err := tx.Where("class_id = ?", classID).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		fid := facultyID(tx, userID)
		if !teaches(tx, fid, classID) {
			return ErrUnauthorized
		}

		var eventIDs []uint
		if err := tx.Model(&models.EventClassroomLink{}).
			Where("classroom_id = ?", classID).
			Pluck("event_id", &eventIDs).Error; err != nil {
			return err
		}
		if len(eventIDs) > 0 {
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.EventClassroomLink{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id IN ?", eventIDs).Delete(&models.Event{}).Error; err != nil {
				return err
			}
		}

		var resourceIDs []uint
		if err := tx.Model(&models.ResourceUploadLink{}).
			Where("classroom_id = ?", classID).
			Pluck("resource_id", &resourceIDs).Error; err != nil {
			return err
		}
		if len(resourceIDs) > 0 {
			if err := tx.Where("resource_id IN ?", resourceIDs).Delete(&models.ResourceUploadLink{}).Error; err != nil {
				return err
			}
			if err := tx.Where("resource_id IN ?", resourceIDs).Delete(&models.Resource{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("classroom_id = ?", classID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("classroom_id = ?", classID).Delete(&models.Teaching{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Classroom{}, "class_id = ?", classID).Error
	})
}

// EnrollStudent enrolls the acting student. Re-enrolling is a no-op.
func (s *Store) EnrollStudent(ctx context.Context, userID, classID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		sid := studentID(tx, userID)
		if sid == "" {
			return ErrUnauthorized
		}
		if err := classroomExists(tx, classID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Enrollment{StudentID: sid, ClassroomID: classID}).Error
	})
}

// AssignTeaching links the acting faculty to a classroom. Idempotent.
func (s *Store) AssignTeaching(ctx context.Context, userID, classID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		fid := facultyID(tx, userID)
		if fid == "" {
			return ErrUnauthorized
		}
		if err := classroomExists(tx, classID); err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Teaching{FacultyID: fid, ClassroomID: classID}).Error
	})
}

func classroomExists(tx *gorm.DB, classID uint) error {
	var n int64
	if err := tx.Model(&models.Classroom{}).Where("class_id = ?", classID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddResource uploads a resource to a classroom the acting faculty teaches.
func (s *Store) AddResource(ctx context.Context, userID, classID uint, title, fileLink string) (uint, error) {
	if title == "" || fileLink == "" {
		return 0, ErrValidationFailed
	}
	var resourceID uint
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := classroomExists(tx, classID); err != nil {
			return err
		}
		fid := facultyID(tx, userID)
		if !teaches(tx, fid, classID) {
			return ErrUnauthorized
		}
		res := models.Resource{Title: title, FileLink: fileLink}
		if err := tx.Create(&res).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.ResourceUploadLink{
			ResourceID:  res.ResourceID,
			FacultyID:   fid,
			ClassroomID: classID,
		}).Error; err != nil {
			return err
		}
		resourceID = res.ResourceID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return resourceID, nil
}

// ListClassroomResources is visible to enrolled students and teaching
// faculty of the classroom only.
func (s *Store) ListClassroomResources(ctx context.Context, userID, classID uint) ([]ResourceInfo, error) {
	var out []ResourceInfo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := classroomExists(tx, classID); err != nil {
			return err
		}
		if !enrolled(tx, studentID(tx, userID), classID) && !teaches(tx, facultyID(tx, userID), classID) {
			return ErrUnauthorized
		}
		return tx.Model(&models.Resource{}).
			Select("resources.resource_id, resources.title, resources.file_link").
			Joins("JOIN resource_upload_links u ON u.resource_id = resources.resource_id").
			Where("u.classroom_id = ?", classID).
			Order("resources.resource_id DESC").
			Scan(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAllClassrooms lists every classroom, for the enrollment picker.
func (s *Store) ListAllClassrooms(ctx context.Context) ([]ClassroomInfo, error) {
	var out []ClassroomInfo
	err := s.db.WithContext(ctx).Model(&models.Classroom{}).
		Select("class_id, name").
		Order("name").
		Scan(&out).Error
	return out, err
}

// ListEnrolledClassrooms lists classrooms the acting student is enrolled in.
func (s *Store) ListEnrolledClassrooms(ctx context.Context, userID uint) ([]ClassroomInfo, error) {
	var out []ClassroomInfo
	err := s.tx(ctx, func(tx *gorm.DB) error {
		sid := studentID(tx, userID)
		if sid == "" {
			return nil // not a student: empty, not an error
		}
		return tx.Model(&models.Classroom{}).
			Select("classrooms.class_id, classrooms.name").
			Joins("JOIN enrollments en ON en.classroom_id = classrooms.class_id").
			Where("en.student_id = ?", sid).
			Order("classrooms.name").
			Scan(&out).Error
	})
	return out, err
}

// ListTeachingAssignments lists classrooms the acting faculty teaches.
func (s *Store) ListTeachingAssignments(ctx context.Context, userID uint) ([]ClassroomInfo, error) {
	var out []ClassroomInfo
	err := s.db.WithContext(ctx).Model(&models.Classroom{}).
		Select("classrooms.class_id, classrooms.name").
		Joins("JOIN teachings t ON t.classroom_id = classrooms.class_id").
		Joins("JOIN faculties f ON f.faculty_id = t.faculty_id").
		Where("f.user_id = ?", userID).
		Order("classrooms.name").
		Scan(&out).Error
	return out, err
}
