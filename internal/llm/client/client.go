package client

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"docloom/internal/agents"
	"docloom/internal/llm/parse"
)

const defaultClaudeMaxTokens = 8192

// LLMClient wraps a provider chat model behind the two invocation shapes the
// agents need: plain text completion and JSON-structured evaluation.
type LLMClient struct {
	chatModel model.BaseChatModel
	provider  string
}

type OpenAIModelOptions struct {
	Model string
}

type ClaudeModelOptions struct {
	Model     string
	MaxTokens int
}

type GeminiModelOptions struct {
	Model string
}

func NewOpenAIClient(ctx context.Context, key string, opts OpenAIModelOptions) (*LLMClient, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: key,
		Model:  opts.Model,
	})
	if err != nil {
		log.Printf("Error creating OpenAI client: %v", err)
		return nil, err
	}
	return &LLMClient{chatModel: chatModel, provider: "openai"}, nil
}

func NewClaudeClient(ctx context.Context, key string, opts ClaudeModelOptions) (*LLMClient, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultClaudeMaxTokens
	}
	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    key,
		Model:     opts.Model,
		MaxTokens: maxTokens,
	})
	if err != nil {
		log.Printf("Error creating Claude client: %v", err)
		return nil, err
	}
	return &LLMClient{chatModel: chatModel, provider: "anthropic"}, nil
}

func NewGeminiClient(ctx context.Context, key string, opts GeminiModelOptions) (*LLMClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Printf("Error creating Gemini client: %v", err)
		return nil, err
	}
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: genaiClient,
		Model:  opts.Model,
	})
	if err != nil {
		log.Printf("Error creating Gemini chat model: %v", err)
		return nil, err
	}
	return &LLMClient{chatModel: chatModel, provider: "gemini"}, nil
}

func (c *LLMClient) Provider() string {
	return c.provider
}

// Invoke sends a single user prompt and returns the assistant text.
func (c *LLMClient) Invoke(ctx context.Context, prompt string) (string, error) {
	msg, err := c.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%s generate failed: %w", c.provider, err)
	}
	if msg == nil || msg.Content == "" {
		return "", fmt.Errorf("%s returned an empty response", c.provider)
	}
	return msg.Content, nil
}

// InvokeStructured asks for a JSON evaluation and parses it, tolerating the
// fenced code blocks chat models like to wrap JSON in.
func (c *LLMClient) InvokeStructured(ctx context.Context, prompt string) (*agents.Evaluation, error) {
	raw, err := c.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}
	var eval agents.Evaluation
	if err := parse.ExtractJSON(raw, &eval); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation response: %w", err)
	}
	if eval.Score < 0 || eval.Score > 100 {
		return nil, fmt.Errorf("evaluation score %d out of range", eval.Score)
	}
	return &eval, nil
}
