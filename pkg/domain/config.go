package domain

import (
	"fmt"
	"strings"
)

// Config field keys shared with the execution backend's node data.
const (
	FieldLabel             = "label"
	FieldInitialPrompt     = "initialPrompt"
	FieldSystemInstruction = "systemInstruction"
	FieldPromptTemplate    = "promptTemplate"
	FieldServerCommand     = "serverCommand"
	FieldReceiverEmail     = "receiverEmail"
)

// InputPlaceholder is substituted with the upstream output in agent prompt templates.
const InputPlaceholder = "{input}"

// Config is the kind-specific payload of a Node.
// Every field is a string keyed by its wire name.
type Config interface {
	Kind() NodeKind
	// Keys lists the fields of this kind in display order.
	Keys() []string
	Get(key string) (string, bool)
	// Set assigns a field. Unknown keys return ErrUnknownField and leave the config untouched.
	Set(key, value string) error
	Clone() Config
}

// InputConfig configures the workflow entry point.
type InputConfig struct {
	Label         string `json:"label" yaml:"label" mapstructure:"label"`
	InitialPrompt string `json:"initialPrompt" yaml:"initialPrompt" mapstructure:"initialPrompt"`
}

func (c *InputConfig) Kind() NodeKind { return KindInput }
func (c *InputConfig) Keys() []string { return []string{FieldLabel, FieldInitialPrompt} }
func (c *InputConfig) Clone() Config  { cp := *c; return &cp }

func (c *InputConfig) Get(key string) (string, bool) {
	switch key {
	case FieldLabel:
		return c.Label, true
	case FieldInitialPrompt:
		return c.InitialPrompt, true
	}
	return "", false
}

func (c *InputConfig) Set(key, value string) error {
	switch key {
	case FieldLabel:
		c.Label = value
	case FieldInitialPrompt:
		c.InitialPrompt = value
	default:
		return unknownField(c, key)
	}
	return nil
}

// AgentConfig configures an LLM step.
type AgentConfig struct {
	Label             string `json:"label" yaml:"label" mapstructure:"label"`
	SystemInstruction string `json:"systemInstruction" yaml:"systemInstruction" mapstructure:"systemInstruction"`
	PromptTemplate    string `json:"promptTemplate" yaml:"promptTemplate" mapstructure:"promptTemplate"`
}

func (c *AgentConfig) Kind() NodeKind { return KindAgent }
func (c *AgentConfig) Clone() Config  { cp := *c; return &cp }

func (c *AgentConfig) Keys() []string {
	return []string{FieldLabel, FieldSystemInstruction, FieldPromptTemplate}
}

func (c *AgentConfig) Get(key string) (string, bool) {
	switch key {
	case FieldLabel:
		return c.Label, true
	case FieldSystemInstruction:
		return c.SystemInstruction, true
	case FieldPromptTemplate:
		return c.PromptTemplate, true
	}
	return "", false
}

func (c *AgentConfig) Set(key, value string) error {
	switch key {
	case FieldLabel:
		c.Label = value
	case FieldSystemInstruction:
		c.SystemInstruction = value
	case FieldPromptTemplate:
		c.PromptTemplate = value
	default:
		return unknownField(c, key)
	}
	return nil
}

// Render builds the prompt sent for this agent given the upstream output.
// A template without the placeholder gets the input appended.
func (c *AgentConfig) Render(input string) string {
	if c.PromptTemplate == "" {
		return input
	}
	if strings.Contains(c.PromptTemplate, InputPlaceholder) {
		return strings.ReplaceAll(c.PromptTemplate, InputPlaceholder, input)
	}
	if input == "" {
		return c.PromptTemplate
	}
	return c.PromptTemplate + "\n\nInput: " + input
}

// ToolConfig configures a built-in capability.
type ToolConfig struct {
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

func (c *ToolConfig) Kind() NodeKind { return KindTool }
func (c *ToolConfig) Keys() []string { return []string{FieldLabel} }
func (c *ToolConfig) Clone() Config  { cp := *c; return &cp }

func (c *ToolConfig) Get(key string) (string, bool) {
	if key == FieldLabel {
		return c.Label, true
	}
	return "", false
}

func (c *ToolConfig) Set(key, value string) error {
	if key != FieldLabel {
		return unknownField(c, key)
	}
	c.Label = value
	return nil
}

// ExternalConnectorConfig configures a step served by an external tool server.
type ExternalConnectorConfig struct {
	Label         string `json:"label" yaml:"label" mapstructure:"label"`
	ServerCommand string `json:"serverCommand" yaml:"serverCommand" mapstructure:"serverCommand"`
}

func (c *ExternalConnectorConfig) Kind() NodeKind { return KindExternalConnector }
func (c *ExternalConnectorConfig) Keys() []string { return []string{FieldLabel, FieldServerCommand} }
func (c *ExternalConnectorConfig) Clone() Config  { cp := *c; return &cp }

func (c *ExternalConnectorConfig) Get(key string) (string, bool) {
	switch key {
	case FieldLabel:
		return c.Label, true
	case FieldServerCommand:
		return c.ServerCommand, true
	}
	return "", false
}

func (c *ExternalConnectorConfig) Set(key, value string) error {
	switch key {
	case FieldLabel:
		c.Label = value
	case FieldServerCommand:
		c.ServerCommand = value
	default:
		return unknownField(c, key)
	}
	return nil
}

// EmailActionConfig configures an email delivery step.
type EmailActionConfig struct {
	Label         string `json:"label" yaml:"label" mapstructure:"label"`
	ReceiverEmail string `json:"receiverEmail" yaml:"receiverEmail" mapstructure:"receiverEmail"`
}

func (c *EmailActionConfig) Kind() NodeKind { return KindEmailAction }
func (c *EmailActionConfig) Keys() []string { return []string{FieldLabel, FieldReceiverEmail} }
func (c *EmailActionConfig) Clone() Config  { cp := *c; return &cp }

func (c *EmailActionConfig) Get(key string) (string, bool) {
	switch key {
	case FieldLabel:
		return c.Label, true
	case FieldReceiverEmail:
		return c.ReceiverEmail, true
	}
	return "", false
}

func (c *EmailActionConfig) Set(key, value string) error {
	switch key {
	case FieldLabel:
		c.Label = value
	case FieldReceiverEmail:
		c.ReceiverEmail = value
	default:
		return unknownField(c, key)
	}
	return nil
}

func unknownField(c Config, key string) error {
	return fmt.Errorf("%w: %q is not a %s field", ErrUnknownField, key, c.Kind())
}

// NewConfig returns an empty config for the given kind.
func NewConfig(kind NodeKind) (Config, error) {
	switch kind {
	case KindInput:
		return &InputConfig{}, nil
	case KindAgent:
		return &AgentConfig{}, nil
	case KindTool:
		return &ToolConfig{}, nil
	case KindExternalConnector:
		return &ExternalConnectorConfig{}, nil
	case KindEmailAction:
		return &EmailActionConfig{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// DefaultConfig returns the configuration a freshly placed node of the given kind starts with.
func DefaultConfig(kind NodeKind) (Config, error) {
	switch kind {
	case KindInput:
		return &InputConfig{Label: "Start / User Input", InitialPrompt: "Start here..."}, nil
	case KindAgent:
		return &AgentConfig{
			Label:             "Smart Agent",
			SystemInstruction: "You are a helpful assistant.",
			PromptTemplate:    InputPlaceholder,
		}, nil
	case KindTool:
		return &ToolConfig{Label: "Web Search"}, nil
	case KindExternalConnector:
		return &ExternalConnectorConfig{Label: "MCP Server"}, nil
	case KindEmailAction:
		return &EmailActionConfig{Label: "Email Sender"}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Fields flattens a config into a key/value map.
func Fields(c Config) map[string]string {
	if c == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(c.Keys()))
	for _, k := range c.Keys() {
		v, _ := c.Get(k)
		out[k] = v
	}
	return out
}

// ConfigFromFields builds a config of the given kind from a flat map.
// Keys that do not belong to the kind are reported as ErrUnknownField.
func ConfigFromFields(kind NodeKind, fields map[string]string) (Config, error) {
	c, err := NewConfig(kind)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		if err := c.Set(k, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}
