package chat

import (
	"strings"

	errs "github.com/chatkurd/chatkurd/internal/errors"
	"github.com/chatkurd/chatkurd/internal/gemini"
)

// Part is one text fragment of an incoming message.
type Part struct {
	Text string `json:"text"`
}

// IncomingMessage is one turn in the request body's messages or history arrays.
type IncomingMessage struct {
	Role    string `json:"role"`
	Parts   []Part `json:"parts"`
	ID      string `json:"id,omitempty"`
	ReplyTo string `json:"replyTo,omitempty"`
}

func (m IncomingMessage) text() string {
	if len(m.Parts) == 1 {
		return m.Parts[0].Text
	}

	var b strings.Builder
	for _, p := range m.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// ChatRequest is the POST /api/chat body. Two wire shapes are accepted:
// the current one (messages) and the legacy one (history plus message).
type ChatRequest struct {
	Message              string            `json:"message,omitempty"`
	Messages             []IncomingMessage `json:"messages,omitempty"`
	History              []IncomingMessage `json:"history,omitempty"`
	Character            string            `json:"character,omitempty"`
	CharacterName        string            `json:"characterName,omitempty"`
	CharacterPersonality string            `json:"characterPersonality,omitempty"`
	Language             string            `json:"language,omitempty"`
	Stream               bool              `json:"stream,omitempty"`
	ReplyToMessageID     string            `json:"replyToMessageId,omitempty"`
	ReplyToContent       string            `json:"replyToContent,omitempty"`
}

// Conversation is the canonical form both wire shapes normalize into
// immediately after parsing: prior turns with coerced roles, plus the
// current user message. All downstream logic operates on this shape only.
type Conversation struct {
	Prior   []gemini.Turn
	Current string
}

// normalize converts either wire shape into a Conversation. Any role other
// than "user" is coerced to the model role. When the current message is not
// given separately, the trailing user turn of the array is treated as it.
// Fails when neither a message nor a non-empty turn array is present.
func (r *ChatRequest) normalize() (Conversation, error) {
	source := r.Messages
	if len(source) == 0 {
		source = r.History
	}

	if r.Message == "" && len(source) == 0 {
		return Conversation{}, errs.NewValidationError("message is required", nil)
	}

	turns := make([]gemini.Turn, 0, len(source))
	for _, m := range source {
		role := gemini.RoleModel
		if m.Role == gemini.RoleUser {
			role = gemini.RoleUser
		}
		turns = append(turns, gemini.Turn{Role: role, Text: m.text()})
	}

	if r.Message != "" {
		return Conversation{Prior: turns, Current: r.Message}, nil
	}

	if last := turns[len(turns)-1]; last.Role == gemini.RoleUser {
		return Conversation{Prior: turns[:len(turns)-1], Current: last.Text}, nil
	}

	// Turn array without a trailing user turn: nothing to answer yet.
	return Conversation{Prior: turns}, nil
}
