package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/morphius-ai/outreach-engine/internal/infra/mail"
)

// Sends one real outreach email through the configured SMTP account.
// Run from the repo root so templates/outreach.html resolves:
//
//	go run ./sample/test-smtp-send you@example.com
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	if len(os.Args) < 2 {
		log.Fatal("usage: test-smtp-send <recipient>")
	}
	recipient := os.Args[1]

	for _, key := range []string{"MAIL_HOST", "MAIL_USER", "MAIL_PASS"} {
		if os.Getenv(key) == "" {
			log.Fatalf("%s must be set in .env", key)
		}
	}

	port := 587
	if v := os.Getenv("MAIL_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("MAIL_PORT must be an integer, got %q", v)
		}
		port = p
	}

	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = os.Getenv("MAIL_USER")
	}

	sender := mail.NewEmailSender(os.Getenv("MAIL_HOST"), port, os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"), from)
	sender.FromName = "Morphius AI"
	sender.ContactURL = "https://www.morphius.in/contact"
	sender.UnsubscribeBaseURL = "http://localhost:8080"

	fmt.Printf("sending test outreach email\n")
	fmt.Printf("   host: %s:%d\n", os.Getenv("MAIL_HOST"), port)
	fmt.Printf("   from: %s\n", from)
	fmt.Printf("   to:   %s\n\n", recipient)

	if err := sender.SendOutreach(context.Background(), recipient, "Test Recipient", "SMTP smoke test"); err != nil {
		log.Fatalf("send failed: %v", err)
	}

	fmt.Println("sent. Check the inbox (and the spam folder).")
}
