package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chatkurd/chatkurd/internal/config"
	errs "github.com/chatkurd/chatkurd/internal/errors"
	"github.com/chatkurd/chatkurd/internal/gemini"
	"github.com/chatkurd/chatkurd/internal/persona"
	"github.com/chatkurd/chatkurd/internal/prompt"
)

// Handler serves POST /api/chat: it normalizes the request, resolves the
// persona, assembles the model prompt and returns the generated reply.
type Handler struct {
	log     *slog.Logger
	catalog *persona.Catalog
	invoker gemini.Generator
	cfg     config.ChatConfig
}

func NewHandler(log *slog.Logger, catalog *persona.Catalog, invoker gemini.Generator, cfg config.ChatConfig) *Handler {
	return &Handler{
		log:     log.With("component", "chat_handler"),
		catalog: catalog,
		invoker: invoker,
		cfg:     cfg,
	}
}

// chatResponse is the wire shape of every /api/chat response. Success
// bodies carry only reply; error bodies carry message and, when a
// user-facing string exists for the failure, a localized reply.
type chatResponse struct {
	Message string `json:"message,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

// halt is a terminal pipeline outcome: the response to send instead of
// continuing to the next step.
type halt struct {
	status int
	body   chatResponse
}

// state carries one request through the pipeline.
type state struct {
	req     ChatRequest
	msgs    userMessages
	conv    Conversation
	persona persona.Persona
	turns   []gemini.Turn
	reply   string
}

type step struct {
	name string
	run  func(ctx context.Context, st *state) *halt
}

func (h *Handler) pipeline() []step {
	return []step{
		{name: "normalize_request", run: h.stepNormalize},
		{name: "resolve_persona", run: h.stepResolvePersona},
		{name: "passcode_gate", run: h.stepPasscodeGate},
		{name: "assemble_turns", run: h.stepAssembleTurns},
		{name: "generate", run: h.stepGenerate},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.ErrorContext(ctx, "failed to decode request body", "error", err)
		h.writeJSON(ctx, w, http.StatusInternalServerError, chatResponse{Message: "Failed to process request"})
		return
	}

	if req.Stream {
		h.log.DebugContext(ctx, "streaming requested but not supported, using single response")
	}

	st := &state{req: req, msgs: messagesFor(req.Language)}
	for _, s := range h.pipeline() {
		if outcome := s.run(ctx, st); outcome != nil {
			h.log.DebugContext(ctx, "request halted", "step", s.name, "status", outcome.status)
			h.writeJSON(ctx, w, outcome.status, outcome.body)
			return
		}
	}

	h.writeJSON(ctx, w, http.StatusOK, chatResponse{Reply: st.reply})
}

func (h *Handler) stepNormalize(ctx context.Context, st *state) *halt {
	if st.req.Character == "" {
		st.req.Character = h.cfg.ReservedPersonaID
	}

	conv, err := st.req.normalize()
	if err != nil {
		return &halt{
			status: http.StatusBadRequest,
			body:   chatResponse{Message: st.msgs.MessageRequired, Reply: st.msgs.MessageRequired},
		}
	}

	st.conv = conv
	return nil
}

func (h *Handler) stepResolvePersona(ctx context.Context, st *state) *halt {
	if p, ok := h.catalog.Lookup(st.req.Character); ok {
		st.persona = p
		return nil
	}

	if st.req.CharacterName == "" || st.req.CharacterPersonality == "" {
		h.log.DebugContext(ctx, "unknown persona requested", "character", st.req.Character)
		return &halt{
			status: http.StatusNotFound,
			body:   chatResponse{Message: "Character not found", Reply: st.msgs.PersonaNotFound},
		}
	}

	p, err := persona.NewAdHoc(st.req.CharacterName, st.req.CharacterPersonality)
	if err != nil {
		// Rejected input is never logged, only its size.
		h.log.WarnContext(ctx, "ad-hoc persona rejected",
			"name_length", len(st.req.CharacterName),
			"personality_length", len(st.req.CharacterPersonality),
			"error", err)

		msg := st.msgs.InvalidPersonality
		var fieldErr *persona.FieldError
		if errors.As(err, &fieldErr) && fieldErr.Field == persona.FieldName {
			msg = st.msgs.InvalidName
		}
		return &halt{
			status: http.StatusBadRequest,
			body:   chatResponse{Message: msg, Reply: msg},
		}
	}

	st.persona = p
	return nil
}

func (h *Handler) stepPasscodeGate(ctx context.Context, st *state) *halt {
	if st.persona.AdHoc || !strings.EqualFold(st.persona.ID, h.cfg.ReservedPersonaID) {
		return nil
	}

	if strings.Contains(st.conv.Current, h.cfg.Passcode) {
		return nil
	}
	for _, t := range st.conv.Prior {
		if strings.Contains(t.Text, h.cfg.Passcode) {
			return nil
		}
	}

	// The gate is a conversational prompt, not an error.
	h.log.DebugContext(ctx, "passcode gate engaged", "persona", st.persona.ID)
	return &halt{
		status: http.StatusOK,
		body:   chatResponse{Reply: st.msgs.PasscodePrompt},
	}
}

func (h *Handler) stepAssembleTurns(ctx context.Context, st *state) *halt {
	current := strings.TrimSpace(st.conv.Current)
	if current == "" {
		return &halt{
			status: http.StatusBadRequest,
			body:   chatResponse{Message: st.msgs.MessageRequired, Reply: st.msgs.EmptyMessage},
		}
	}

	language := st.req.Language
	if language != prompt.LanguageKurdish {
		language = prompt.LanguageEnglish
	}

	instruction := prompt.Assemble(prompt.Input{
		Personality: st.persona.Personality,
		Language:    language,
		ReplyTo:     st.req.ReplyToContent,
	})

	if st.req.ReplyToContent != "" {
		current = fmt.Sprintf("(Replying to: %q) %s", st.req.ReplyToContent, current)
	}

	turns := make([]gemini.Turn, 0, len(st.conv.Prior)+2)
	turns = append(turns, gemini.Turn{Role: gemini.RoleUser, Text: instruction})
	turns = append(turns, st.conv.Prior...)
	turns = append(turns, gemini.Turn{Role: gemini.RoleUser, Text: current})

	st.turns = turns
	return nil
}

func (h *Handler) stepGenerate(ctx context.Context, st *state) *halt {
	reply, err := h.invoker.Generate(ctx, st.turns)
	if err != nil {
		h.log.ErrorContext(ctx, "generation failed", "error", err, "code", errs.Code(err))
		return &halt{
			status: http.StatusInternalServerError,
			body:   chatResponse{Message: "Failed to process request", Reply: st.msgs.GenerationFailed},
		}
	}

	if strings.TrimSpace(reply) == "" {
		h.log.ErrorContext(ctx, "generation returned empty reply", "persona", st.persona.ID)
		return &halt{
			status: http.StatusInternalServerError,
			body:   chatResponse{Message: "Empty response from model", Reply: st.msgs.GenerationFailed},
		}
	}

	st.reply = reply
	return nil
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body chatResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
