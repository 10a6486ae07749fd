package intent

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/WilliamZhang9/Call2Map/session"
)

const openAIModel = openai.GPT4oMini

// openAIInstruction extends the shared instruction with the JSON contract,
// since this provider answers in JSON mode rather than native tool calls.
const openAIInstruction = systemInstruction + `

Respond with a single JSON object, nothing else.
To trigger an action: {"action": "search_places"|"get_reservation_info"|"send_message", "arguments": {...}}
  search_places takes {"query": ..., "location": ...}
  get_reservation_info takes {"place_name": ..., "location": ...}
  send_message takes {"message": ...}
To answer directly: {"reply": "what to say to the caller"}`

// OpenAIExtractor runs extraction through the OpenAI Chat Completions API
// in JSON mode.
type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor creates an OpenAI-backed extractor.
func NewOpenAIExtractor(apiKey string) *OpenAIExtractor {
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  openAIModel,
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, utterance string, history []session.Turn, knownLocation string) (Result, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: openAIInstruction},
	}

	turns := history
	if n := len(turns); n > 0 && turns[n-1].Role == session.RoleUser && turns[n-1].Text == utterance {
		turns = turns[:n-1]
	}
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Role == session.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}

	message := utterance
	if knownLocation != "" {
		message = fmt.Sprintf("[Caller's location: %s]\n%s", knownLocation, utterance)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		MaxTokens:   150,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("openai returned no choices")
	}

	return parseModelOutput(resp.Choices[0].Message.Content), nil
}
