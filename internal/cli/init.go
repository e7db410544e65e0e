package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/gemini-video-analyzer/internal/auth"
	"github.com/fpang/gemini-video-analyzer/internal/chat"
)

// InitGeminiClient creates a Gemini client and validates the key against
// model. An empty apiKey falls back to auth.GetAPIKey. Exits fatally on
// failure.
func InitGeminiClient(ctx context.Context, apiKey, model string) *genai.Client {
	if apiKey == "" {
		key, err := auth.GetAPIKey()
		if err != nil {
			HandleValidationError(err)
		}
		apiKey = key
	}

	client, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}
	log.Debug().Msg("Gemini client initialized")

	if err := auth.ValidateAPIKey(ctx, client.Models, model); err != nil {
		HandleValidationError(err)
	}
	log.Info().Str("model", model).Msg("API key validation complete")

	return client
}
