package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/morphius-ai/outreach-engine/internal/usecase"
)

const systemPrompt = "You classify replies to a cold outreach email. " +
	"Answer with exactly one word: positive if the sender is interested in talking, " +
	"negative if they decline, neutral otherwise."

// Classifier calls an OpenAI-compatible chat completions endpoint. It
// never returns an error: anything that goes wrong degrades to UNKNOWN
// so one bad call cannot poison an engine cycle.
type Classifier struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClassifier(apiKey, baseURL, model string) *Classifier {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Classifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) usecase.Sentiment {
	sentiment, err := c.classify(ctx, text)
	if err != nil {
		log.Printf("classifier: falling back to UNKNOWN: %v", err)
		return usecase.SentimentUnknown
	}
	return sentiment
}

func (c *Classifier) classify(ctx context.Context, text string) (usecase.Sentiment, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0,
		MaxTokens:   3,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completions API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("completions API status %d", resp.StatusCode)
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("completions API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("completions API returned no choices")
	}

	return parseSentiment(response.Choices[0].Message.Content), nil
}

func parseSentiment(answer string) usecase.Sentiment {
	switch strings.ToLower(strings.TrimSpace(strings.Trim(answer, "."))) {
	case "positive":
		return usecase.SentimentPositive
	case "negative":
		return usecase.SentimentNegative
	case "neutral":
		return usecase.SentimentNeutral
	default:
		return usecase.SentimentUnknown
	}
}
