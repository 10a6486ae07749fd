package intent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"github.com/WilliamZhang9/Call2Map/session"
)

const geminiModel = "gemini-2.0-flash"

// GeminiExtractor runs extraction through the Gemini API with native
// function calling.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates and connects the Gemini client.
func NewGeminiExtractor(ctx context.Context, apiKey string) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiExtractor{client: client, model: geminiModel}, nil
}

// Extract sends the bounded history plus the current utterance and maps the
// response to a function call or a direct reply.
func (e *GeminiExtractor) Extract(ctx context.Context, utterance string, history []session.Turn, knownLocation string) (Result, error) {
	contents := historyContents(history, utterance)

	// The current utterance goes last, with the established location
	// prefixed as context the model can rely on.
	message := utterance
	if knownLocation != "" {
		message = fmt.Sprintf("[Caller's location: %s]\n%s", knownLocation, utterance)
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: message}},
	})

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Tools:           buildTools(),
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 150,
	})
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			fc := part.FunctionCall
			log.Printf("🔧 Gemini function call: %s", fc.Name)
			kind := Kind(fc.Name)
			if !knownKind(kind) {
				// An unknown tool name is malformed output; fall
				// back to whatever text the model produced.
				continue
			}
			args := make(map[string]string, len(fc.Args))
			for k, v := range fc.Args {
				args[k] = argString(v)
			}
			return Result{Action: &ActionRequest{Kind: kind, Args: args}}, nil
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	return Result{Reply: strings.TrimSpace(text.String())}, nil
}

// historyContents converts prior turns to Gemini contents, skipping the
// trailing user entry when it duplicates the current utterance.
func historyContents(history []session.Turn, utterance string) []*genai.Content {
	turns := history
	if n := len(turns); n > 0 && turns[n-1].Role == session.RoleUser && turns[n-1].Text == utterance {
		turns = turns[:n-1]
	}

	contents := make([]*genai.Content, 0, len(turns)+1)
	for _, t := range turns {
		role := genai.RoleUser
		if t.Role == session.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}
	return contents
}
