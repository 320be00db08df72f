package gemini_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"testing"

	errs "github.com/chatkurd/chatkurd/internal/errors"
	"github.com/chatkurd/chatkurd/internal/gemini"
	"github.com/chatkurd/chatkurd/internal/prompt"
)

type fakeClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeClient) Generate(_ context.Context, _ []gemini.Turn) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) GenerateStream(_ context.Context, _ []gemini.Turn) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f.calls++
		if f.err != nil {
			yield("", f.err)
			return
		}
		yield(f.reply, nil)
	}
}

func (f *fakeClient) Ping(_ context.Context) error {
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userTurns(texts ...string) []gemini.Turn {
	turns := make([]gemini.Turn, 0, len(texts))
	for _, t := range texts {
		turns = append(turns, gemini.Turn{Role: gemini.RoleUser, Text: t})
	}
	return turns
}

func TestFallback_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &fakeClient{reply: "Hi there!"}
	secondary := &fakeClient{reply: "should not be used"}
	f := gemini.NewFallback(primary, secondary, discardLogger())

	reply, err := f.Generate(context.Background(), userTurns("Hello"))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if reply != "Hi there!" {
		t.Errorf("reply = %q, want %q", reply, "Hi there!")
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestFallback_SecondaryAfterPrimaryFailure(t *testing.T) {
	t.Parallel()

	primary := &fakeClient{err: errors.New("quota exceeded")}
	secondary := &fakeClient{reply: "backup reply"}
	f := gemini.NewFallback(primary, secondary, discardLogger())

	reply, err := f.Generate(context.Background(), userTurns("Hello"))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if reply != "backup reply" {
		t.Errorf("reply = %q, want %q", reply, "backup reply")
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("calls = primary %d, secondary %d; want 1 and 1", primary.calls, secondary.calls)
	}
}

func TestFallback_BothFailSynthesizesApology(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		firstTurn  string
		wantEnglish bool
	}{
		{
			name:        "English directive",
			firstTurn:   "You are Dilan.\n\n" + prompt.EnglishDirective,
			wantEnglish: true,
		},
		{
			name:        "Kurdish directive",
			firstTurn:   "You are Dilan.\n\n" + prompt.KurdishDirective,
			wantEnglish: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			primary := &fakeClient{err: errors.New("primary down")}
			secondary := &fakeClient{err: errors.New("secondary down")}
			f := gemini.NewFallback(primary, secondary, discardLogger())

			reply, err := f.Generate(context.Background(), userTurns(tc.firstTurn, "Hello"))
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if reply == "" {
				t.Fatal("expected synthesized apology, got empty reply")
			}

			isEnglish := strings.HasPrefix(reply, "Sorry")
			if isEnglish != tc.wantEnglish {
				t.Errorf("apology = %q, wantEnglish = %v", reply, tc.wantEnglish)
			}
		})
	}
}

func TestFallback_PreconditionsNotMasked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		turns []gemini.Turn
	}{
		{name: "Empty conversation", turns: nil},
		{
			name: "No user turn",
			turns: []gemini.Turn{
				{Role: gemini.RoleModel, Text: "hello"},
			},
		},
		{
			name: "Empty last user turn",
			turns: []gemini.Turn{
				{Role: gemini.RoleUser, Text: "first"},
				{Role: gemini.RoleModel, Text: "reply"},
				{Role: gemini.RoleUser, Text: "   "},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			primary := &fakeClient{reply: "never"}
			secondary := &fakeClient{reply: "never"}
			f := gemini.NewFallback(primary, secondary, discardLogger())

			_, err := f.Generate(context.Background(), tc.turns)
			if err == nil {
				t.Fatal("expected precondition error, got nil")
			}
			if errs.Code(err) != errs.CodeValidation {
				t.Errorf("error code = %s, want %s", errs.Code(err), errs.CodeValidation)
			}
			if primary.calls != 0 || secondary.calls != 0 {
				t.Errorf("clients called on precondition failure: primary %d, secondary %d", primary.calls, secondary.calls)
			}
		})
	}
}

func TestFallback_GenerateStream(t *testing.T) {
	t.Parallel()

	primary := &fakeClient{err: errors.New("primary down")}
	secondary := &fakeClient{err: errors.New("secondary down")}
	f := gemini.NewFallback(primary, secondary, discardLogger())

	turns := userTurns("You are Dilan.\n\n"+prompt.KurdishDirective, "Hello")

	var chunks []string
	for chunk, err := range f.GenerateStream(context.Background(), turns) {
		if err != nil {
			t.Fatalf("stream returned error: %v", err)
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 1 {
		t.Fatalf("chunks = %v, want single apology chunk", chunks)
	}
	if !strings.Contains(chunks[0], "ببورە") {
		t.Errorf("apology chunk = %q, want Kurdish apology", chunks[0])
	}
}
