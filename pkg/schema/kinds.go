package schema

import (
	"strings"

	"github.com/aretw0/botcraft/pkg/domain"
)

const maxLabelLen = 120

var label = Field{Type: Text(maxLabelLen), Required: true}

var kindSchemas = map[domain.NodeKind]Schema{
	domain.KindInput: {
		domain.FieldLabel:         label,
		domain.FieldInitialPrompt: {Type: String()},
	},
	domain.KindAgent: {
		domain.FieldLabel:             label,
		domain.FieldSystemInstruction: {Type: String()},
		domain.FieldPromptTemplate:    {Type: Template(strings.Trim(domain.InputPlaceholder, "{}"))},
	},
	domain.KindTool: {
		domain.FieldLabel: label,
	},
	domain.KindExternalConnector: {
		domain.FieldLabel:         label,
		domain.FieldServerCommand: {Type: Command(), Required: true},
	},
	domain.KindEmailAction: {
		domain.FieldLabel:         label,
		domain.FieldReceiverEmail: {Type: Email(), Required: true},
	},
}

// For returns the schema of a node kind. Unknown kinds get an empty schema.
func For(kind domain.NodeKind) Schema {
	return kindSchemas[kind]
}
