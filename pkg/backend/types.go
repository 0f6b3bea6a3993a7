package backend

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoSource is returned by Ingest when no knowledge source is given.
var ErrNoSource = errors.New("must provide at least one source (PDF, CSV, or URL)")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// Upload is a file sent as a multipart part.
type Upload struct {
	Filename string
	Content  io.Reader
}

// IngestRequest creates a bot from any combination of knowledge sources.
type IngestRequest struct {
	Name string
	File *Upload // PDF document
	URL  string
	CSV  *Upload
}

// IngestResponse acknowledges a bot whose sources are processed in the background.
type IngestResponse struct {
	Status  string `json:"status"`
	Chunks  int    `json:"chunks"`
	BotID   string `json:"bot_id"`
	Message string `json:"message,omitempty"`
}

// Bot is a stored chatbot.
type Bot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Tone      string `json:"tone"`
	UseCase   string `json:"use_case"`
	CreatedAt string `json:"created_at"`
}

// Stats summarizes a user's usage.
type Stats struct {
	TotalBots          int `json:"total_bots"`
	TotalMessages      int `json:"total_messages"`
	TotalConversations int `json:"total_conversations"`
}

type chatRequest struct {
	BotID    string `json:"bot_id"`
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}
