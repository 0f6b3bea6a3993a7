package schema

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "email").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values with an optional rune limit.
type StringType struct {
	maxLen int
}

func (t *StringType) Name() string {
	if t.maxLen > 0 {
		return fmt.Sprintf("string(%d)", t.maxLen)
	}
	return "string"
}

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if t.maxLen > 0 && utf8.RuneCountInString(s) > t.maxLen {
		return fmt.Errorf("longer than %d characters", t.maxLen)
	}
	return nil
}

// EmailType validates a single RFC 5322 address.
type EmailType struct{}

func (t *EmailType) Name() string { return "email" }

func (t *EmailType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return fmt.Errorf("invalid email address")
	}
	// Display names are not accepted, only the bare address.
	if addr.Address != strings.TrimSpace(s) {
		return fmt.Errorf("expected a bare address like name@example.com")
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// TemplateType validates prompt templates. Only the listed placeholders may appear.
type TemplateType struct {
	allowed []string
}

func (t *TemplateType) Name() string { return "template" }

func (t *TemplateType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if !t.allows(m[1]) {
			return fmt.Errorf("unknown placeholder {%s}", m[1])
		}
	}
	return nil
}

func (t *TemplateType) allows(name string) bool {
	for _, a := range t.allowed {
		if a == name {
			return true
		}
	}
	return false
}

// CommandType validates a single-line command invocation.
type CommandType struct{}

func (t *CommandType) Name() string { return "command" }

func (t *CommandType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("must be a single line without control characters")
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Text creates a string type validator limited to maxLen runes.
func Text(maxLen int) Type { return &StringType{maxLen: maxLen} }

// Email creates an email address validator.
func Email() Type { return &EmailType{} }

// Template creates a prompt template validator accepting the given placeholder names.
func Template(placeholders ...string) Type { return &TemplateType{allowed: placeholders} }

// Command creates a command line validator.
func Command() Type { return &CommandType{} }

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}
