package db

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

// Event kinds for calendar entries. A classroom entry always carries the
// classroom and creating faculty; a personal one never does.
const (
	EventKindPersonal  = "personal"
	EventKindClassroom = "classroom"
)

type EventInfo struct {
	EventID      uint      `json:"event_id"`
	DateTime     time.Time `json:"date_time"`
	Title        string    `json:"title"`
	ResourceLink string    `json:"resource_link,omitempty"`
}

type CalendarEntry struct {
	EventID      uint      `json:"event_id"`
	DateTime     time.Time `json:"date_time"`
	Title        string    `json:"title"`
	ResourceLink string    `json:"resource_link,omitempty"`
	Kind         string    `json:"kind"`
	ClassroomID  *uint     `json:"classroom_id,omitempty"`
	FacultyID    *string   `json:"faculty_id,omitempty"`
}

// Reminder is one notification row for the daily reminder job. A user linked
// to the same event through several roles shows up once per role.
type Reminder struct {
	Title          string    `json:"title"`
	DateTime       time.Time `json:"date_time"`
	RecipientName  string    `json:"recipient_name"`
	RecipientEmail string    `json:"recipient_email"`
}

// AddPersonalEvent creates an event owned by the caller with no classroom
// link.
func (s *Store) AddPersonalEvent(ctx context.Context, userID uint, dateTime time.Time, title, resourceLink string) (uint, error) {
	if title == "" || dateTime.IsZero() {
		return 0, ErrValidationFailed
	}
	event := models.Event{DateTime: dateTime, Title: title, ResourceLink: resourceLink, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return 0, err
	}
	return event.EventID, nil
}

// AddClassEvent creates an event for a classroom the acting faculty teaches.
// A missing teaching link is a typed authorization failure, not a silent
// zero id.
func (s *Store) AddClassEvent(ctx context.Context, userID, classID uint, dateTime time.Time, title, resourceLink string) (uint, error) {
	if title == "" || dateTime.IsZero() {
		return 0, ErrValidationFailed
	}
	var eventID uint
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := classroomExists(tx, classID); err != nil {
			return err
		}
		fid := facultyID(tx, userID)
		if !teaches(tx, fid, classID) {
			return ErrUnauthorized
		}
		event := models.Event{DateTime: dateTime, Title: title, ResourceLink: resourceLink, UserID: userID}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.EventClassroomLink{
			EventID:     event.EventID,
			FacultyID:   fid,
			ClassroomID: classID,
		}).Error; err != nil {
			return err
		}
		eventID = event.EventID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return eventID, nil
}

// DeletePersonalEvent deletes an owned, unlinked event. A classroom event
// cannot be removed through the personal path.
func (s *Store) DeletePersonalEvent(ctx context.Context, userID, eventID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("event_id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if event.UserID != userID {
			return ErrUnauthorized
		}
		var n int64
		if err := tx.Model(&models.EventClassroomLink{}).Where("event_id = ?", eventID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUnauthorized
		}
		return tx.Delete(&models.Event{}, "event_id = ?", eventID).Error
	})
}

// DeleteClassEvent deletes a classroom event whose creation link points at
// the caller's faculty id.
func (s *Store) DeleteClassEvent(ctx context.Context, userID, eventID uint) error {
	return s.tx(ctx, func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Where("event_id = ?", eventID).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		fid := facultyID(tx, userID)
		if fid == "" {
			return ErrUnauthorized
		}
		var n int64
		if err := tx.Model(&models.EventClassroomLink{}).
			Where("event_id = ? AND faculty_id = ?", eventID, fid).
			Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrUnauthorized
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventClassroomLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, "event_id = ?", eventID).Error
	})
}

// ListClassroomEvents lists a classroom's events by date ascending.
func (s *Store) ListClassroomEvents(ctx context.Context, classID uint) ([]EventInfo, error) {
	var out []EventInfo
	err := s.db.WithContext(ctx).Model(&models.Event{}).
		Select("events.event_id, events.date_time, events.title, events.resource_link").
		Joins("JOIN event_classroom_links c ON c.event_id = events.event_id").
		Where("c.classroom_id = ?", classID).
		Order("events.date_time ASC").
		Scan(&out).Error
	return out, err
}

// ListPersonalCalendar merges the three event sources a user can reach:
// events they own that are not classroom-linked, events of classrooms they
// are enrolled in, and events of classrooms they teach. Sorted by date-time.
func (s *Store) ListPersonalCalendar(ctx context.Context, userID uint) ([]CalendarEntry, error) {
	var out []CalendarEntry
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var viaEnrollment []CalendarEntry
		if err := tx.Model(&models.Event{}).
			Select("events.event_id, events.date_time, events.title, events.resource_link, c.classroom_id, c.faculty_id").
			Joins("JOIN event_classroom_links c ON c.event_id = events.event_id").
			Joins("JOIN enrollments en ON en.classroom_id = c.classroom_id").
			Joins("JOIN students s ON s.student_id = en.student_id").
			Where("s.user_id = ?", userID).
			Scan(&viaEnrollment).Error; err != nil {
			return err
		}

		var viaTeaching []CalendarEntry
		if err := tx.Model(&models.Event{}).
			Select("events.event_id, events.date_time, events.title, events.resource_link, c.classroom_id, c.faculty_id").
			Joins("JOIN event_classroom_links c ON c.event_id = events.event_id").
			Joins("JOIN faculties f ON f.faculty_id = c.faculty_id").
			Where("f.user_id = ?", userID).
			Scan(&viaTeaching).Error; err != nil {
			return err
		}

		var personal []CalendarEntry
		if err := tx.Model(&models.Event{}).
			Select("events.event_id, events.date_time, events.title, events.resource_link").
			Where("events.user_id = ?", userID).
			Where("events.event_id NOT IN (?)", tx.Model(&models.EventClassroomLink{}).Select("event_id")).
			Scan(&personal).Error; err != nil {
			return err
		}

		for i := range viaEnrollment {
			viaEnrollment[i].Kind = EventKindClassroom
		}
		for i := range viaTeaching {
			viaTeaching[i].Kind = EventKindClassroom
		}
		for i := range personal {
			personal[i].Kind = EventKindPersonal
		}

		out = append(out, viaEnrollment...)
		out = append(out, viaTeaching...)
		out = append(out, personal...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

// RemindersForDate returns one row per (event, recipient, role link) for
// events falling on the target date: personal owners, enrolled students and
// teaching faculty. Duplicates across roles are intentional.
func (s *Store) RemindersForDate(ctx context.Context, target time.Time) ([]Reminder, error) {
	dayStart := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, target.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out []Reminder
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var personal []Reminder
		if err := tx.Model(&models.Event{}).
			Select("events.title, events.date_time, u.name AS recipient_name, u.email AS recipient_email").
			Joins("JOIN users u ON u.user_id = events.user_id").
			Where("events.date_time >= ? AND events.date_time < ?", dayStart, dayEnd).
			Where("events.event_id NOT IN (?)", tx.Model(&models.EventClassroomLink{}).Select("event_id")).
			Scan(&personal).Error; err != nil {
			return err
		}

		var students []Reminder
		if err := tx.Model(&models.Event{}).
			Select("events.title, events.date_time, u.name AS recipient_name, u.email AS recipient_email").
			Joins("JOIN event_classroom_links c ON c.event_id = events.event_id").
			Joins("JOIN enrollments ei ON ei.classroom_id = c.classroom_id").
			Joins("JOIN students s ON s.student_id = ei.student_id").
			Joins("JOIN users u ON u.user_id = s.user_id").
			Where("events.date_time >= ? AND events.date_time < ?", dayStart, dayEnd).
			Scan(&students).Error; err != nil {
			return err
		}

		var faculty []Reminder
		if err := tx.Model(&models.Event{}).
			Select("events.title, events.date_time, u.name AS recipient_name, u.email AS recipient_email").
			Joins("JOIN event_classroom_links c ON c.event_id = events.event_id").
			Joins("JOIN teachings t ON t.classroom_id = c.classroom_id").
			Joins("JOIN faculties f ON f.faculty_id = t.faculty_id").
			Joins("JOIN users u ON u.user_id = f.user_id").
			Where("events.date_time >= ? AND events.date_time < ?", dayStart, dayEnd).
			Scan(&faculty).Error; err != nil {
			return err
		}

		out = append(out, personal...)
		out = append(out, students...)
		out = append(out, faculty...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DaysSinceLastActivity reports whole days since the newest event reachable
// by the user through any calendar source, or nil when there is none.
func (s *Store) DaysSinceLastActivity(ctx context.Context, userID uint) (*int, error) {
	entries, err := s.ListPersonalCalendar(ctx, userID)
	if err != nil {
		return nil, err
	}
	// ListPersonalCalendar excludes classroom-linked events the user owns but
	// neither attends nor teaches; owned events count as activity regardless.
	var owned []models.Event
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, err
	}

	var last time.Time
	for _, e := range entries {
		if e.DateTime.After(last) {
			last = e.DateTime
		}
	}
	for _, e := range owned {
		if e.DateTime.After(last) {
			last = e.DateTime
		}
	}
	if last.IsZero() {
		return nil, nil
	}
	days := int(time.Since(last).Hours() / 24)
	return &days, nil
}
