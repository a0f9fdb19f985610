package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// FallbackNote is used when note generation fails.
const FallbackNote = "Merci de votre confiance !"

// Assistant wraps the chat completion API behind the text operations the
// editor exposes. Every operation is a single best-effort attempt, no retry,
// no backoff; failures degrade to a usable fallback value and never
// propagate.
type Assistant struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewAssistant builds an assistant from the environment: OPENAI_API_KEY,
// optional OPENAI_MODEL and OPENAI_BASE_URL.
func NewAssistant(log zerolog.Logger) *Assistant {
	cfg := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	return NewAssistantWithClient(openai.NewClientWithConfig(cfg), model, log)
}

// NewAssistantWithClient injects an explicit client; tests use this with a
// stub server.
func NewAssistantWithClient(client *openai.Client, model string, log zerolog.Logger) *Assistant {
	return &Assistant{
		client: client,
		model:  model,
		log:    log.With().Str("component", "assistant").Logger(),
	}
}

func (a *Assistant) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ImproveDescription rewrites a line item description in a concise, formal
// register. The input comes back unchanged on any failure.
func (a *Assistant) ImproveDescription(ctx context.Context, text string) string {
	prompt := fmt.Sprintf(
		"Améliore cette description d'item pour une facture professionnelle d'auto-entrepreneur. Sois concis et formel : %q",
		text)
	out, err := a.complete(ctx, prompt)
	if err != nil || out == "" {
		a.log.Warn().Err(err).Msg("description improvement failed, keeping input")
		return text
	}
	return out
}

// GenerateClosingNote produces a short thank-you line addressed to the given
// client, falling back to a fixed string on failure.
func (a *Assistant) GenerateClosingNote(ctx context.Context, clientName string) string {
	if strings.TrimSpace(clientName) == "" {
		clientName = "notre client"
	}
	prompt := fmt.Sprintf(
		"Génère un court message de remerciement (maximum 2 phrases) pour une facture adressée à %s. Le ton doit être professionnel et chaleureux.",
		clientName)
	out, err := a.complete(ctx, prompt)
	if err != nil || out == "" {
		a.log.Warn().Err(err).Msg("closing note generation failed, using fallback")
		return FallbackNote
	}
	return out
}
