package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/morphius-ai/outreach-engine/internal/infra/http/middleware"
)

type UnsubscribeService interface {
	Execute(ctx context.Context, email string) (alreadyUnsubscribed bool, err error)
}

// UnsubscribeHandler serves the public unsubscribe link embedded in
// every outbound email. Plain HTML, no auth: the link must just work.
type UnsubscribeHandler struct {
	service UnsubscribeService
}

func NewUnsubscribeHandler(service UnsubscribeService) *UnsubscribeHandler {
	return &UnsubscribeHandler{service: service}
}

func (h *UnsubscribeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "<h2>Invalid unsubscribe request.</h2>")
		return
	}

	already, err := h.service.Execute(r.Context(), email)
	if err != nil {
		log.Printf("unsubscribe: %s: %v", email, err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "<h2>Something went wrong. Please try again later.</h2>")
		return
	}

	message := fmt.Sprintf("%s has been unsubscribed successfully.", email)
	if already {
		message = fmt.Sprintf("%s was already unsubscribed.", email)
	} else {
		middleware.RecordUnsubscribe("link")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<h2>%s</h2><p>Thank you for updating your preferences.</p>", message)
}
