// Package reminder implements the daily reminder fan-out: for each notice
// window, query who has events on the target date and mail them. The same
// person gets one mail per role link; that duplication is intentional.
package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/mail"
)

type window struct {
	daysAhead int
	label     string
}

var windows = []window{
	{14, "in 2 weeks"},
	{7, "in 1 week"},
	{1, "tomorrow"},
}

// Run performs one full reminder pass relative to today.
func Run(ctx context.Context, store *db.Store, sender mail.Sender, today time.Time) error {
	log.Printf("--- Starting reminder check at %s ---", time.Now().Format(time.RFC3339))
	for _, w := range windows {
		target := today.AddDate(0, 0, w.daysAhead)
		rows, err := store.RemindersForDate(ctx, target)
		if err != nil {
			return fmt.Errorf("reminders for %s: %w", target.Format("2006-01-02"), err)
		}
		for _, r := range rows {
			subject, body := reminderBody(r, w.label)
			sender.Send(r.RecipientEmail, subject, body)
		}
		log.Printf("✅ Sent %d reminders for %s (%s)", len(rows), target.Format("2006-01-02"), w.label)
	}
	return nil
}

func reminderBody(r db.Reminder, noticePeriod string) (subject, body string) {
	subject = "Upcoming Event Reminder: " + r.Title
	body = fmt.Sprintf(`Hi %s,

This is a reminder that you have an upcoming event:

Event: %s
Date: %s
Time: %s

This event is scheduled for %s.

Regards,
BRACU Routine App`,
		r.RecipientName,
		r.Title,
		r.DateTime.Format("Monday, January 02, 2006"),
		r.DateTime.Format("03:04 PM"),
		noticePeriod,
	)
	return subject, body
}
