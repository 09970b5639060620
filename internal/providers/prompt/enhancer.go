// Package prompt expands short user prompts into detailed generation
// prompts. The OpenAI enhancer backs the chatgpt utility model; Static is
// its offline fallback.
package prompt

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	staticProviderName = "static"
	openAIProviderName = "openai"
)

// Target is the kind of media the enhanced prompt is written for.
type Target string

const (
	TargetImage Target = "image"
	TargetVideo Target = "video"
)

type Request struct {
	Prompt string
	Target Target
	Locale string
	APIKey string
}

type Response struct {
	Prompt   string   `json:"prompt"`
	Keywords []string `json:"keywords"`
	Provider string   `json:"provider"`
	// FallbackReason is set when the static enhancer answered instead of
	// the configured provider.
	FallbackReason string `json:"fallbackReason,omitempty"`
}

// Fallback reports whether the response came from the static enhancer.
func (r Response) Fallback() bool {
	return r.Provider == staticProviderName
}

type Enhancer interface {
	Enhance(ctx context.Context, req Request) (Response, error)
}

// Static appends fixed style modifiers. It never fails.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

var staticSuffix = map[Target]string{
	TargetImage: "highly detailed, professional lighting, sharp focus, balanced composition",
	TargetVideo: "smooth camera motion, cinematic lighting, natural movement, stable framing",
}

func (s *Static) Enhance(_ context.Context, req Request) (Response, error) {
	base := strings.TrimRight(strings.TrimSpace(req.Prompt), ".,; ")
	suffix, ok := staticSuffix[req.Target]
	if !ok {
		suffix = staticSuffix[TargetImage]
	}
	enhanced := suffix
	if base != "" {
		enhanced = base + ", " + suffix
	}
	return Response{
		Prompt:   enhanced,
		Keywords: keywordsFrom(base, req.Locale),
		Provider: staticProviderName,
	}, nil
}

// keywordsFrom lower-cases the longer words of text using locale's casing
// rules.
func keywordsFrom(text, locale string) []string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.Und
	}
	lower := cases.Lower(tag)
	var words []string
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == '\n' || r == '\t'
	}) {
		if len([]rune(w)) > 3 {
			words = append(words, lower.String(w))
		}
	}
	return normalizeKeywords(words, "")
}

var _ Enhancer = (*Static)(nil)
