package usecases

import (
	"context"
	"errors"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/abelzeko/angler-bot/internal/integration/openai"
	"github.com/rs/zerolog/log"
)

// QueryHelpHint is returned for free text when no interpreter is configured
const QueryHelpHint = "I only understand commands right now. Use /help to see what I can do."

// HandleNaturalLanguageQuery interprets a user's free-text query using the AI service
// and returns an appropriate response string
func (uc *AnglerUseCase) HandleNaturalLanguageQuery(ctx context.Context, userID, query string) (string, error) {
	if uc.interpreter == nil {
		return QueryHelpHint, nil
	}
	log.Info().Str("user", userID).Str("query", query).Msg("Interpreting natural language query")

	names, err := uc.LocationNames()
	if err != nil {
		log.Error().Err(err).Msg("Error fetching saved locations")
		return "Sorry, I couldn't fetch the list of fishing spots right now.", nil
	}

	agentResp, err := uc.interpreter.InterpretUserQuery(ctx, query, names)
	if err != nil {
		log.Error().Err(err).Msg("Error interpreting user query via OpenAI")
		return "Sorry, I'm having trouble understanding right now. Please try again later or use /help.", nil
	}

	log.Info().
		Str("command", agentResp.CommandName).
		Str("location", agentResp.LocationName).
		Str("clarity", agentResp.WaterClarity).
		Msg("Agent response")

	switch agentResp.CommandName {
	case openai.CommandGetWeather, openai.CommandGetTide, openai.CommandGetRecommendations:
		if agentResp.LocationName == "" {
			// Agent understood the intent but not the spot, it usually asks which one
			return agentResp.UserMessage, nil
		}
		body, err := uc.answerForLocation(ctx, userID, agentResp)
		if err != nil {
			return withPrefix(agentResp.UserMessage, UserMessage(err)), nil
		}
		return withPrefix(agentResp.UserMessage, body), nil

	case openai.CommandGeneralQuery:
		return agentResp.UserMessage, nil

	default:
		log.Warn().Str("command", agentResp.CommandName).Msg("Agent returned unexpected command")
		return "I'm not sure how to respond to that. You can use /help for commands.", nil
	}
}

func (uc *AnglerUseCase) answerForLocation(ctx context.Context, userID string, resp *openai.AgentResponse) (string, error) {
	loc, err := uc.FindLocation(resp.LocationName)
	if err != nil {
		return "", err
	}

	switch resp.CommandName {
	case openai.CommandGetWeather:
		weather, err := uc.GetWeather(ctx, loc)
		if err != nil {
			return "", err
		}
		return FormatWeather(loc, weather), nil

	case openai.CommandGetTide:
		tide, err := uc.GetTide(ctx, loc)
		if err != nil {
			return "", err
		}
		return FormatTide(loc, tide), nil

	default:
		in := ConditionInputs{}
		if entities.IsValidClarity(resp.WaterClarity) {
			in.WaterClarity = resp.WaterClarity
		}
		report, err := uc.GetRecommendations(ctx, loc, userID, in, 0)
		if err != nil {
			return "", err
		}
		return FormatRecommendations(report), nil
	}
}

// UserMessage turns an error into text that can be shown to an angler
func UserMessage(err error) string {
	var verr *entities.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, entities.ErrNoTideStation):
		return "This spot has no tide station, so there is no tide data."
	case errors.Is(err, entities.ErrGeocoderUnavailable):
		return "I can't look up places by name right now. Please send coordinates instead."
	case errors.Is(err, entities.ErrNotFound):
		return "I couldn't find that. Use /locations to see your saved spots."
	case errors.Is(err, ErrUpstream):
		return "A remote service is unavailable right now and nothing is cached yet. Please try again later."
	default:
		return "Something went wrong, please try again later."
	}
}

func withPrefix(prefix, body string) string {
	if prefix == "" {
		return body
	}
	return prefix + "\n\n" + body
}
