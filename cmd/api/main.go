package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/morphius-ai/outreach-engine/internal/infra/calendar"
	"github.com/morphius-ai/outreach-engine/internal/infra/database"
	"github.com/morphius-ai/outreach-engine/internal/infra/http/handlers"
	"github.com/morphius-ai/outreach-engine/internal/infra/http/middleware"
	"github.com/morphius-ai/outreach-engine/internal/infra/llm"
	"github.com/morphius-ai/outreach-engine/internal/infra/mail"
	"github.com/morphius-ai/outreach-engine/internal/infra/mailbox"
	"github.com/morphius-ai/outreach-engine/internal/infra/queue"
	"github.com/morphius-ai/outreach-engine/internal/infra/worker"
	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

func main() {
	godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	db, err := database.NewDBConnection(requireEnv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	leadRepo := database.NewLeadRepository(db)
	eventRepo := database.NewEventRepository(db)
	meetingRepo := database.NewMeetingRepository(db)

	// Outbound mail. Missing SMTP credentials are an operator error, not
	// something to discover after the first failed dispatch.
	sender := mail.NewEmailSender(
		requireEnv("MAIL_HOST"),
		getEnvInt("MAIL_PORT", 587),
		requireEnv("MAIL_USER"),
		requireEnv("MAIL_PASS"),
		getEnv("MAIL_FROM", os.Getenv("MAIL_USER")),
	)
	sender.FromName = getEnv("SENDER_NAME", "Morphius AI")
	sender.ContactURL = getEnv("CONTACT_URL", "https://www.morphius.in/contact")
	sender.UnsubscribeBaseURL = getEnv("PUBLIC_BASE_URL", "http://localhost:8080")

	// Campaign queue
	rabbitMQ, err := queue.NewRabbitMQ(
		getEnv("RABBITMQ_USER", "user"),
		getEnv("RABBITMQ_PASS", "password"),
		getEnv("RABBITMQ_HOST", "localhost"),
		getEnv("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

	campaignWorker := queue.NewWorker(rabbitMQ.Ch, sender, leadRepo, eventRepo)
	go campaignWorker.Start(queue.QueueName)

	// Lifecycle engine
	classifier := llm.NewClassifier(
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_MODEL"),
	)
	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("WARNING: OPENAI_API_KEY unset, every reply will classify as UNKNOWN")
	}

	engineCfg := usecase.EngineConfig{
		GracePeriodMinutes:  getEnvInt("GRACE_PERIOD_MINUTES", usecase.DefaultGracePeriodMinutes),
		MaxFollowUps:        getEnvInt("MAX_FOLLOW_UPS", usecase.DefaultMaxFollowUps),
		UnsubscribeKeywords: splitList(os.Getenv("UNSUBSCRIBE_KEYWORDS")),
		BookingURL:          getEnv("BOOKING_URL", sender.UnsubscribeBaseURL+"/bookings"),
		ServicesURL:         getEnv("SERVICES_URL", "https://www.morphius.in/services"),
		SenderName:          sender.FromName,
		CampaignSubject:     getEnv("CAMPAIGN_SUBJECT", usecase.DefaultCampaignSubject),
	}

	engine := usecase.NewOutreachEngine(leadRepo, eventRepo, classifier, sender, usecase.RealClock{}, engineCfg)

	cycleWorker := worker.NewCycleWorker(engine, time.Duration(getEnvInt("CYCLE_INTERVAL_MINUTES", 5))*time.Minute)
	go cycleWorker.Start(ctx)

	// Reply poller (optional: skip when no IMAP account is configured)
	if os.Getenv("IMAP_HOST") != "" {
		inbox := mailbox.NewClient(
			os.Getenv("IMAP_HOST"),
			getEnvInt("IMAP_PORT", 993),
			getEnv("IMAP_USER", os.Getenv("MAIL_USER")),
			getEnv("IMAP_PASS", os.Getenv("MAIL_PASS")),
		)
		ingest := usecase.NewIngestRepliesUseCase(leadRepo, eventRepo)
		mailboxWorker := worker.NewMailboxWorker(inbox, ingest, time.Duration(getEnvInt("MAILBOX_POLL_MINUTES", 2))*time.Minute)
		go mailboxWorker.Start(ctx)
	} else {
		log.Println("IMAP_HOST unset, reply polling disabled")
	}

	// Meeting booking (optional: needs Google Calendar credentials)
	var bookingUC *usecase.BookMeetingUseCase
	calClient, err := calendar.NewClient(
		ctx,
		getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		getEnv("ORGANIZER_EMAIL", os.Getenv("MAIL_USER")),
		calendar.DefaultSlotConfig(),
	)
	if err != nil {
		log.Printf("calendar disabled: %v", err)
	} else {
		bookingUC = usecase.NewBookMeetingUseCase(leadRepo, eventRepo, meetingRepo, calClient, usecase.RealClock{})
	}

	// Use cases behind HTTP
	campaignUC := usecase.NewRunCampaignUseCase(leadRepo, producer, engineCfg.CampaignSubject)
	unsubscribeUC := usecase.NewUnsubscribeUseCase(leadRepo, eventRepo, usecase.RealClock{})

	// Handlers
	campaignHandler := handlers.NewCampaignHandler(campaignUC)
	unsubscribeHandler := handlers.NewUnsubscribeHandler(unsubscribeUC)
	engineHandler := handlers.NewEngineHandler(engine)
	bookingHandler := handlers.NewBookingHandler(bookingUC)
	leadHandler := handlers.NewLeadHandler(leadRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/unsubscribe", unsubscribeHandler.Handle)
	r.Post("/campaigns", campaignHandler.Handle)
	r.Post("/engine/run", engineHandler.HandleRun)
	r.Get("/bookings/slots", bookingHandler.HandleSlots)
	r.Post("/bookings", bookingHandler.HandleBook)
	r.Post("/leads", leadHandler.CaptureLead)
	r.Get("/leads", leadHandler.ListActive)

	port := ":" + getEnv("PORT", "8080")
	log.Printf("outreach engine listening on %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatal(err)
	}
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("%s is required", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
