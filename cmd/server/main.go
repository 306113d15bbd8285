package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/api"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/auth"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/config"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/cron"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/mail"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using system env")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	store, err := db.Open(cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer store.Close()

	var sender mail.Sender
	if cfg.SendGridAPIKey != "" {
		sender = mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.AppName, cfg.MailFrom)
	} else {
		log.Println("⚠️ No SENDGRID_API_KEY, mail goes to the console")
		sender = mail.NewConsoleSender()
	}

	authSvc := auth.NewService(store, sender, cfg.JWTSecret)
	r := api.SetupRouter(cfg, store, authSvc)

	// Daily reminder job
	cron.StartJobs(store, sender)

	log.Println("Server running on", cfg.HTTPAddr)
	r.Run(cfg.HTTPAddr)
}
