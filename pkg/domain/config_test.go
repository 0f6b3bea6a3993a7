package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want NodeKind
	}{
		{"input", KindInput},
		{"Agent", KindAgent},
		{" tool ", KindTool},
		{"mcp", KindExternalConnector},
		{"email", KindEmailAction},
		{"llm", KindAgent},
		{"search", KindTool},
		{"default", KindAgent},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("webhook")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestConfig_SetUnknownFieldLeavesConfigUntouched(t *testing.T) {
	c := &AgentConfig{Label: "Researcher", SystemInstruction: "be terse"}

	err := c.Set("temperature", "0.2")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, &AgentConfig{Label: "Researcher", SystemInstruction: "be terse"}, c)
}

func TestConfig_KeysMatchGet(t *testing.T) {
	for _, k := range Kinds() {
		c, err := DefaultConfig(k)
		require.NoError(t, err)
		assert.Equal(t, k, c.Kind())
		for _, key := range c.Keys() {
			_, ok := c.Get(key)
			assert.True(t, ok, "%s.%s", k, key)
		}
		_, ok := c.Get("nope")
		assert.False(t, ok)
	}
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	orig := &EmailActionConfig{Label: "Mail", ReceiverEmail: "a@example.com"}
	cp := orig.Clone()
	require.NoError(t, cp.Set(FieldReceiverEmail, "b@example.com"))

	assert.Equal(t, "a@example.com", orig.ReceiverEmail)
}

func TestConfigFromFields(t *testing.T) {
	c, err := ConfigFromFields(KindInput, map[string]string{
		FieldLabel:         "Start",
		FieldInitialPrompt: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, &InputConfig{Label: "Start", InitialPrompt: "hello"}, c)

	_, err = ConfigFromFields(KindTool, map[string]string{FieldReceiverEmail: "x"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ConfigFromFields("bogus", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestAgentConfig_Render(t *testing.T) {
	tests := []struct {
		name     string
		template string
		input    string
		want     string
	}{
		{"placeholder", "Summarize: {input}", "news", "Summarize: news"},
		{"repeated placeholder", "{input} / {input}", "x", "x / x"},
		{"empty template", "", "raw", "raw"},
		{"no placeholder", "Write a haiku", "spring", "Write a haiku\n\nInput: spring"},
		{"no placeholder no input", "Write a haiku", "", "Write a haiku"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AgentConfig{PromptTemplate: tt.template}
			assert.Equal(t, tt.want, c.Render(tt.input))
		})
	}
}

func TestNode_CloneSharesNoConfig(t *testing.T) {
	n := Node{ID: "a", Kind: KindTool, Config: &ToolConfig{Label: "Search"}}
	cp := n.Clone()
	require.NoError(t, cp.Config.Set(FieldLabel, "Other"))

	assert.Equal(t, "Search", n.Label())
	assert.Equal(t, "Other", cp.Label())
}
