package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

const (
	defaultChatTimeout      = 30 * time.Second
	analyticTemperature     = 0.0
	conversationTemperature = 0.7
	chatMaxTokens           = 500
	chatSystemPrompt        = "You are a helpful and friendly AI assistant. Answer clearly and concisely."
	entitiesSystemPrompt    = `Extract named entities. Reply with a JSON array only, each item {"text": string, "type": "PER"|"ORG"|"LOC"|"MISC"}.`
	sentimentSystemPrompt   = `Classify the sentiment. Reply with JSON only: {"label": "POSITIVE"|"NEGATIVE"|"NEUTRAL", "score": number between 0 and 1}.`
	generationSystemPrompt  = "Continue the user's text naturally."
	translationSystemPrompt = "Translate the user's text into %s. Reply with the translation only."
)

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if targetLang == "" {
		targetLang = "French"
	}
	msgs := []openai.ChatCompletionMessageParamUnion{
		systemMessage(fmt.Sprintf(translationSystemPrompt, targetLang)),
		userMessage(text),
	}
	return c.complete(ctx, msgs, analyticTemperature, 0)
}

func (c *OpenAIClient) ExtractEntities(ctx context.Context, text string) ([]Entity, error) {
	out, err := c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		systemMessage(entitiesSystemPrompt),
		userMessage(text),
	}, analyticTemperature, 0)
	if err != nil {
		return nil, err
	}
	return parseEntities(out)
}

func (c *OpenAIClient) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	out, err := c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		systemMessage(sentimentSystemPrompt),
		userMessage(text),
	}, analyticTemperature, 0)
	if err != nil {
		return Sentiment{}, err
	}
	return parseSentiment(out)
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		systemMessage(generationSystemPrompt),
		userMessage(prompt),
	}, conversationTemperature, 0)
}

func (c *OpenAIClient) Chat(ctx context.Context, history []Message, input string) (string, error) {
	return c.complete(ctx, buildTranscript(history, input), conversationTemperature, chatMaxTokens)
}

func (c *OpenAIClient) complete(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion, temperature float64, maxTokens int64) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultChatTimeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    msgs,
		Temperature: openai.Float(temperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(maxTokens)
	}
	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildTranscript prepends the system prompt and appends the new user turn.
func buildTranscript(history []Message, input string) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, systemMessage(chatSystemPrompt))
	for _, m := range history {
		if m.Role == RoleAssistant {
			msgs = append(msgs, assistantMessage(m.Content))
		} else {
			msgs = append(msgs, userMessage(m.Content))
		}
	}
	return append(msgs, userMessage(input))
}

func systemMessage(s string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfSystem: &openai.ChatCompletionSystemMessageParam{
			Content: openai.ChatCompletionSystemMessageParamContentUnion{OfString: openai.String(s)},
		},
	}
}

func userMessage(s string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(s)},
		},
	}
}

func assistantMessage(s string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfAssistant: &openai.ChatCompletionAssistantMessageParam{
			Content: openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(s)},
		},
	}
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func parseEntities(content string) ([]Entity, error) {
	var entities []Entity
	if err := json.Unmarshal([]byte(stripFences(content)), &entities); err != nil {
		return nil, fmt.Errorf("openai: decode entities: %w", err)
	}
	if entities == nil {
		entities = []Entity{}
	}
	return entities, nil
}

func parseSentiment(content string) (Sentiment, error) {
	var s Sentiment
	if err := json.Unmarshal([]byte(stripFences(content)), &s); err != nil {
		return Sentiment{}, fmt.Errorf("openai: decode sentiment: %w", err)
	}
	s.Label = strings.ToUpper(strings.TrimSpace(s.Label))
	if s.Label == "" {
		return Sentiment{}, fmt.Errorf("openai: sentiment label missing")
	}
	if s.Score < 0 {
		s.Score = 0
	} else if s.Score > 1 {
		s.Score = 1
	}
	return s, nil
}
