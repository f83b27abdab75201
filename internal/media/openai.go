package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultMediaTimeout = 120 * time.Second
	visionMaxTokens     = 500
)

// Models names the remote models used by OpenAIStudio.
type Models struct {
	Vision     string
	Image      string
	Transcribe string
}

// OpenAIStudio calls the OpenAI images, vision and audio endpoints.
type OpenAIStudio struct {
	models Models
	client *openai.Client
}

func NewOpenAIStudio(apiKey string, models Models, opts ...option.RequestOption) (*OpenAIStudio, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if models.Vision == "" {
		models.Vision = "gpt-4o"
	}
	if models.Image == "" {
		models.Image = "dall-e-3"
	}
	if models.Transcribe == "" {
		models.Transcribe = "whisper-1"
	}
	cli := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIStudio{models: models, client: &cli}, nil
}

func (s *OpenAIStudio) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	if size == "" {
		size = ImageSizes[0]
	}
	if !slices.Contains(ImageSizes, size) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSize, size)
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultMediaTimeout)
	defer cancel()

	resp, err := s.client.Images.Generate(reqCtx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(s.models.Image),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(size),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai: no image returned")
	}
	return base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
}

func (s *OpenAIStudio) DescribeImage(ctx context.Context, png []byte, mode AnalysisMode) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultMediaTimeout)
	defer cancel()

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	resp, err := s.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.models.Vision),
		Messages: []openai.ChatCompletionMessageParamUnion{{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(PromptFor(mode)),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
					},
				},
			},
		}},
		MaxTokens: openai.Int(visionMaxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *OpenAIStudio) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.mp3"
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultMediaTimeout)
	defer cancel()

	resp, err := s.client.Audio.Transcriptions.New(reqCtx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), filename, "application/octet-stream"),
		Model: openai.AudioModel(s.models.Transcribe),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
