package media

import (
	"context"
	"errors"
)

// ErrUnsupportedSize is returned for image sizes the generator does not offer.
var ErrUnsupportedSize = errors.New("media: unsupported image size")

// AnalysisMode selects the instruction sent along with an image.
type AnalysisMode string

const (
	ModeGeneral   AnalysisMode = "general"
	ModeObjects   AnalysisMode = "objects"
	ModeText      AnalysisMode = "text"
	ModeDetailed  AnalysisMode = "detailed"
	ModeArtistic  AnalysisMode = "artistic"
	ModeTechnical AnalysisMode = "technical"
)

var analysisPrompts = map[AnalysisMode]string{
	ModeGeneral:   "Describe this image in detail. What do you see?",
	ModeObjects:   "Identify and list every object visible in this image. Be precise and methodical.",
	ModeText:      "Is there any text in this image? If so, transcribe it and explain its context.",
	ModeDetailed:  "Give a complete analysis of this image: objects, people, colours, composition, style, mood, any text, and anything else notable.",
	ModeArtistic:  "Analyse this image artistically: composition, colours, style, technique, emotion conveyed.",
	ModeTechnical: "Analyse the technical aspects of this image: quality, lighting, perspective, focus.",
}

// Valid reports whether m names a known analysis mode.
func (m AnalysisMode) Valid() bool {
	_, ok := analysisPrompts[m]
	return ok
}

// PromptFor returns the instruction for mode, falling back to ModeGeneral.
func PromptFor(mode AnalysisMode) string {
	if p, ok := analysisPrompts[mode]; ok {
		return p
	}
	return analysisPrompts[ModeGeneral]
}

// ImageSizes lists the sizes accepted by GenerateImage.
var ImageSizes = []string{"1024x1024", "1792x1024", "1024x1792"}

// Studio exposes the remote image and audio capabilities.
type Studio interface {
	// GenerateImage returns PNG bytes for prompt.
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, error)
	// DescribeImage analyses a PNG image.
	DescribeImage(ctx context.Context, png []byte, mode AnalysisMode) (string, error)
	// Transcribe converts speech audio to text.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
