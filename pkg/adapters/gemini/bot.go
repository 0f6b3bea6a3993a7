package gemini

import (
	"fmt"
	"strings"
	"time"
)

// SourceStatus tracks knowledge source processing.
type SourceStatus string

const (
	SourcePending    SourceStatus = "pending"
	SourceProcessing SourceStatus = "processing"
	SourceReady      SourceStatus = "ready"
	SourceError      SourceStatus = "error"
)

// DataSource is one piece of bot knowledge.
type DataSource struct {
	Name    string       `json:"name" yaml:"name"`
	Type    string       `json:"type,omitempty" yaml:"type,omitempty"` // url, pdf, text
	Content string       `json:"content" yaml:"content"`
	Status  SourceStatus `json:"status" yaml:"status"`
}

// BotConfig describes the chatbot being previewed.
type BotConfig struct {
	Name        string       `json:"name" yaml:"name"`
	Tone        string       `json:"tone" yaml:"tone"`
	UseCase     string       `json:"use_case" yaml:"use_case"`
	DataSources []DataSource `json:"data_sources" yaml:"data_sources"`
}

// Role of a chat participant.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of the conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// BuildSystemInstruction renders the instruction that scopes the model to the
// bot's persona and its ready knowledge sources.
func BuildSystemInstruction(cfg BotConfig, now time.Time) string {
	var kb []string
	for _, ds := range cfg.DataSources {
		if ds.Status == SourceReady {
			kb = append(kb, fmt.Sprintf("[Source: %s]\n%s", ds.Name, ds.Content))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI Chatbot named %q.\n", cfg.Name)
	fmt.Fprintf(&b, "Your Tone: %s.\n", cfg.Tone)
	fmt.Fprintf(&b, "Your Primary Use Case: %s.\n\n", cfg.UseCase)
	b.WriteString("Your knowledge is strictly limited to the following data sources provided by the owner.\n")
	b.WriteString("If a user asks something not contained in this knowledge base, politely explain that you don't have that information and offer to escalate to a human if applicable.\n")
	b.WriteString("Do not hallucinate or make up facts.\n\n")
	b.WriteString("Knowledge Base:\n")
	b.WriteString(strings.Join(kb, "\n\n"))
	fmt.Fprintf(&b, "\n\nCurrent Date: %s\n", now.Format("2006-01-02"))
	return b.String()
}
