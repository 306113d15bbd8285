// One-shot reminder pass, meant to be run from an external scheduler when
// the in-server cron is not wanted.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/config"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/mail"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/reminder"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system env")
	}

	cfg := config.Load()

	store, err := db.Open(cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer store.Close()

	var sender mail.Sender
	if cfg.SendGridAPIKey != "" {
		sender = mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.AppName, cfg.MailFrom)
	} else {
		sender = mail.NewConsoleSender()
	}

	if err := reminder.Run(context.Background(), store, sender, time.Now()); err != nil {
		log.Fatalf("reminder pass failed: %v", err)
	}
}
