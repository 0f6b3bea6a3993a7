// Package gemini adapts Google's Gemini API as the generation provider used to
// preview a chatbot: it builds the bot's system instruction from its
// configuration and knowledge sources, then runs a chat completion.
package gemini
