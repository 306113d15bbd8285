package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/mail"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/reminder"
)

// StartJobs schedules the daily reminder pass. The job only reads through
// the query layer and writes through the mail sink; it shares no state with
// the interactive path beyond the database.
func StartJobs(store *db.Store, sender mail.Sender) *cron.Cron {
	c := cron.New()

	c.AddFunc("@daily", func() {
		log.Println("Running daily reminder job...")
		if err := reminder.Run(context.Background(), store, sender, time.Now()); err != nil {
			log.Println("❌ Reminder job failed:", err)
		}
	})

	c.Start()
	return c
}
