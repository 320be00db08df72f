package gemini

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	errs "github.com/chatkurd/chatkurd/internal/errors"
	"github.com/chatkurd/chatkurd/internal/prompt"
)

// Canned localized replies synthesized when both API clients fail. End users
// never see provider error text.
const (
	englishApology = "Sorry, I'm unable to respond right now. Please try again in a little while."
	kurdishApology = "ببورە، لە ئێستادا ناتوانم وەڵام بدەمەوە. تکایە دواتر هەوڵ بدەرەوە."
)

// Generator is the single-shot generation surface the request handler depends on.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}

// Fallback calls the primary client and, on any failure, retries once with
// the secondary client. When both fail, the failure is absorbed: Generate
// returns a localized apology instead of an error. Precondition violations
// are the exception; they surface as validation errors and are never masked,
// since masking one would hide a caller bug as an API outage.
type Fallback struct {
	primary   Client
	secondary Client
	log       *slog.Logger
}

// NewFallback creates the fallback invoker over two independently
// credentialed clients.
func NewFallback(primary, secondary Client, log *slog.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		log:       log.With("component", "gemini_fallback"),
	}
}

// checkTurns fails fast before any network call: the conversation must be
// non-empty, contain at least one user turn, and the last user turn must have
// non-empty text.
func checkTurns(turns []Turn) error {
	if len(turns) == 0 {
		return errs.NewValidationError("conversation is empty", nil)
	}

	lastUser := -1
	for i, t := range turns {
		if t.Role == RoleUser {
			lastUser = i
		}
	}
	if lastUser == -1 {
		return errs.NewValidationError("conversation has no user turn", nil)
	}
	if strings.TrimSpace(turns[lastUser].Text) == "" {
		return errs.NewValidationError("last user turn is empty", nil)
	}

	return nil
}

// apologyFor picks the apology language by inspecting the assembled prompt
// (the first turn) for the Kurdish language directive.
func apologyFor(turns []Turn) string {
	if len(turns) > 0 && strings.Contains(turns[0].Text, prompt.KurdishDirective) {
		return kurdishApology
	}
	return englishApology
}

// Generate performs a single-shot generation with primary-then-secondary
// fallback.
func (f *Fallback) Generate(ctx context.Context, turns []Turn) (string, error) {
	if err := checkTurns(turns); err != nil {
		return "", err
	}

	reply, primaryErr := f.primary.Generate(ctx, turns)
	if primaryErr == nil {
		return reply, nil
	}
	f.log.WarnContext(ctx, "Primary Gemini client failed, trying secondary", "error", primaryErr)

	reply, secondaryErr := f.secondary.Generate(ctx, turns)
	if secondaryErr == nil {
		return reply, nil
	}

	combined := multierror.Append(primaryErr, secondaryErr)
	f.log.ErrorContext(ctx, "Both Gemini clients failed, synthesizing apology", "error", combined)

	return apologyFor(turns), nil
}

// GenerateStream is the streaming counterpart. The secondary client is only
// tried when the primary fails before delivering any chunk; a mid-stream
// failure after delivery ends the stream. When both clients fail outright,
// the apology is delivered as a single chunk.
func (f *Fallback) GenerateStream(ctx context.Context, turns []Turn) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := checkTurns(turns); err != nil {
			yield("", err)
			return
		}

		delivered, primaryErr := relay(f.primary.GenerateStream(ctx, turns), yield)
		if primaryErr == nil {
			return
		}
		if delivered {
			f.log.ErrorContext(ctx, "Primary stream failed mid-response", "error", primaryErr)
			return
		}
		f.log.WarnContext(ctx, "Primary Gemini client failed, trying secondary", "error", primaryErr)

		delivered, secondaryErr := relay(f.secondary.GenerateStream(ctx, turns), yield)
		if secondaryErr == nil {
			return
		}
		if delivered {
			f.log.ErrorContext(ctx, "Secondary stream failed mid-response", "error", secondaryErr)
			return
		}

		combined := multierror.Append(primaryErr, secondaryErr)
		f.log.ErrorContext(ctx, "Both Gemini clients failed, synthesizing apology", "error", combined)

		yield(apologyFor(turns), nil)
	}
}

func relay(stream iter.Seq2[string, error], yield func(string, error) bool) (bool, error) {
	delivered := false
	for chunk, err := range stream {
		if err != nil {
			return delivered, err
		}
		if !yield(chunk, nil) {
			return true, nil
		}
		delivered = true
	}
	return delivered, nil
}
