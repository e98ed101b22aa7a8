package mail

type OutreachEmailData struct {
	Name            string
	SenderName      string
	ContactLink     string
	UnsubscribeLink string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string

	FromAddress        string
	FromName           string
	ContactURL         string
	UnsubscribeBaseURL string
}
