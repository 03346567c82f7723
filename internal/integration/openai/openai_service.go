package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// Commands the agent may choose
const (
	CommandGetWeather         = "GetWeather"
	CommandGetTide            = "GetTide"
	CommandGetRecommendations = "GetRecommendations"
	CommandGeneralQuery       = "GeneralQuery"
)

// AgentResponse defines the structured output from the OpenAI agent.
type AgentResponse struct {
	CommandName  string `json:"command_name" jsonschema_description:"The command to execute: GetWeather, GetTide, GetRecommendations or GeneralQuery"`
	LocationName string `json:"location_name" jsonschema_description:"The saved fishing spot the user asks about, copied exactly from the list, or empty"`
	WaterClarity string `json:"water_clarity" jsonschema_description:"clear, stained or murky if the user described the water, otherwise empty"`
	UserMessage  string `json:"user_message" jsonschema_description:"A message to show back to the user in their original language"`
}

// OpenAIService defines the interface for interacting with the OpenAI agent.
type OpenAIService interface {
	InterpretUserQuery(ctx context.Context, userMessage string, knownLocations []string) (*AgentResponse, error)
}

// openAIServiceImpl implements the OpenAIService interface.
type openAIServiceImpl struct {
	client openai.Client
	schema interface{}
	model  openai.ChatModel
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewOpenAIService creates and initializes a new OpenAIService.
// Extra request options (base URL, HTTP client) are passed to the client.
func NewOpenAIService(apiKey, model string, opts ...option.RequestOption) (OpenAIService, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is not set")
	}
	chatModel := openai.ChatModel(model)
	if model == "" {
		chatModel = openai.ChatModelGPT4o
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	schema := GenerateSchema[AgentResponse]()

	return &openAIServiceImpl{
		client: client,
		schema: schema,
		model:  chatModel,
	}, nil
}

// InterpretUserQuery sends a message to the OpenAI agent and returns the structured response.
func (s *openAIServiceImpl) InterpretUserQuery(ctx context.Context, userMessage string, knownLocations []string) (*AgentResponse, error) {
	systemPrompt := fmt.Sprintf(`You are a seasoned fishing guide who answers anglers in a direct, friendly tone.

Your job is to work out what the angler wants from a fishing assistant that knows the weather, the tide and which gear to bring for their saved fishing spots.

Requirements:
- Reply in the same language the user used.
- Keep user_message to one or two sentences.

Saved fishing spots: %s

Behavior:
1. If the user asks about the weather, wind, rain or temperature at a spot: command_name = "%s".
2. If the user asks about the tide, high water or low water at a spot: command_name = "%s".
3. If the user asks what to use, which lure, bait, line or rod, or what to bring: command_name = "%s".
   If they describe the water (clear, muddy, coloured) set water_clarity to clear, stained or murky.
4. Otherwise (greetings, small talk, general fishing questions): command_name = "%s" and answer in user_message.

For 1-3 copy the spot name exactly from the list into location_name. If the spot is missing or unclear leave it empty and ask which spot in user_message.

Output **strictly** in JSON.`,
		strings.Join(knownLocations, ", "),
		CommandGetWeather, CommandGetTide, CommandGetRecommendations, CommandGeneralQuery)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "agent_response",
		Description: openai.String("Structured response containing command, location name, water clarity and user message"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		ResponseFormat: respFormat,
		Model:          s.model,
	})

	if err != nil {
		return nil, fmt.Errorf("error calling OpenAI API: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, errors.New("received empty response from OpenAI")
	}

	var agentResp AgentResponse
	err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &agentResp)
	if err != nil {
		log.Error().Err(err).Str("raw", chat.Choices[0].Message.Content).Msg("Failed to unmarshal OpenAI response")
		return nil, fmt.Errorf("error unmarshalling OpenAI response: %w", err)
	}

	return &agentResp, nil
}
