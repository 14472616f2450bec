// ABOUTME: LLM completion port and its Google GenAI implementation
// ABOUTME: The advisor talks to Completer so tests can substitute a canned model
package chat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var ErrNoCompleter = errors.New("no language model configured (set llm.api_key)")

// Message is one turn of a conversation. Role is "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	System      string
	History     []Message
	Message     string
	MaxTokens   int
	Temperature float64
}

// Completer produces a single model reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// GenAICompleter generates replies with Google's Gemini API.
type GenAICompleter struct {
	client *genai.Client
	model  string
}

func NewGenAICompleter(ctx context.Context, apiKey, model string) (*GenAICompleter, error) {
	if apiKey == "" {
		return nil, ErrNoCompleter
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAICompleter{client: client, model: model}, nil
}

func (g *GenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		contents = append(contents, genai.NewContentFromText(m.Content, roleOf(m.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		Temperature:     genai.Ptr(float32(req.Temperature)),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

func roleOf(role string) genai.Role {
	switch role {
	case "assistant", "model":
		return genai.RoleModel
	}
	return genai.RoleUser
}
