// Package gemini implements integration with Google's Gemini API.
// It provides the generation clients and the primary/secondary fallback
// invoker used by the chat request handler.
package gemini

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/chatkurd/chatkurd/internal/config"
)

// Roles accepted in conversation turns. Anything that is not a user turn is
// coerced to the model role before the API call.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message in the conversation sent upstream: a role and its text.
type Turn struct {
	Role string
	Text string
}

// Client defines the generation operations backed by one API credential.
type Client interface {
	// Generate performs a single-shot generation over the conversation turns.
	Generate(ctx context.Context, turns []Turn) (string, error)

	// GenerateStream yields incremental response chunks.
	GenerateStream(ctx context.Context, turns []Turn) iter.Seq2[string, error]

	// Ping verifies the credential without generating text.
	Ping(ctx context.Context) error
}

type sdkClient struct {
	genaiClient    *genai.Client
	log            *slog.Logger
	contentConfig  *genai.GenerateContentConfig
	modelName      string
	attemptTimeout time.Duration
}

// NewClient creates a Gemini client bound to one API key. Clients are
// long-lived and read-only after construction; the handler receives them as
// injected dependencies so tests can substitute fakes.
func NewClient(ctx context.Context, apiKey, name string, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	topP := cfg.TopP
	topK := cfg.TopK

	contentCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: cfg.MaxOutputTokens,
		Temperature:     &temperature,
		TopP:            &topP,
		TopK:            &topK,

		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}

	logger := log.With("component", "gemini_client", "client", name)
	logger.Info("Gemini client initialized", "model", cfg.Model)

	return &sdkClient{
		genaiClient:    gi,
		log:            logger,
		contentConfig:  contentCfg,
		modelName:      cfg.Model,
		attemptTimeout: cfg.AttemptTimeout,
	}, nil
}

func toContents(turns []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role != RoleUser {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	return contents
}

func (c *sdkClient) Generate(ctx context.Context, turns []Turn) (string, error) {
	c.log.DebugContext(ctx, "Generating reply", "turn_count", len(turns))

	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, toContents(turns), c.contentConfig)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return c.extractTextFromResponse(ctx, resp)
}

func (c *sdkClient) GenerateStream(ctx context.Context, turns []Turn) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		c.log.DebugContext(ctx, "Generating streaming reply", "turn_count", len(turns))

		ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		for resp, err := range c.genaiClient.Models.GenerateContentStream(ctx, c.modelName, toContents(turns), c.contentConfig) {
			if err != nil {
				yield("", fmt.Errorf("gemini streaming call failed: %w", err))
				return
			}

			chunk := resp.Text()
			if chunk == "" {
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// Ping counts tokens for a trivial prompt. It exercises the credential and
// endpoint without consuming generation quota.
func (c *sdkClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText("ping", genai.RoleUser)}
	if _, err := c.genaiClient.Models.CountTokens(ctx, c.modelName, contents, nil); err != nil {
		return fmt.Errorf("gemini ping failed: %w", err)
	}
	return nil
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("generation blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("generation returned no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if text == "" {
		c.log.WarnContext(ctx, "Gemini response text is empty")
		return "", fmt.Errorf("generation returned empty text")
	}

	return text, nil
}
