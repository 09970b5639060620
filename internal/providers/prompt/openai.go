package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"genstudio/internal/infra"
	"genstudio/internal/providers/httpx"
)

type OpenAIOptions struct {
	Model          string
	BaseURL        string
	Organization   string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	Fallback       Enhancer
	OnFallback     func(reason string, err error)
	OnWarning      func(reason, detail string)
}

// OpenAI enhances prompts with the chat completions API. The API key comes
// with each request so platform and user keys share one enhancer.
type OpenAI struct {
	call         httpx.Caller
	model        string
	baseURL      string
	organization string
	fallback     Enhancer
	onFallback   func(reason string, err error)
}

const openAIDefaultTimeout = 15 * time.Second

const defaultOpenAIModel = "gpt-4o-mini"

var openAIModelCanonical = map[string]string{
	"gpt-3.5-turbo": "gpt-3.5-turbo",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
}

var openAIModelAliases = map[string]string{
	"gpt-3.5":      "gpt-3.5-turbo",
	"gpt3.5":       "gpt-3.5-turbo",
	"gpt-35-turbo": "gpt-3.5-turbo",
	"gpt4o-mini":   "gpt-4o-mini",
	"gpt4omini":    "gpt-4o-mini",
	"gpt4o":        "gpt-4o",
	"chatgpt":      "gpt-4o-mini",
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	modelInput := strings.TrimSpace(opts.Model)
	model, reason := normalizeOpenAIModel(modelInput)
	if reason != "" && opts.OnWarning != nil {
		opts.OnWarning("model_"+reason, fmt.Sprintf("requested=%s resolved=%s", coalesce(modelInput, defaultOpenAIModel), model))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = openAIDefaultTimeout
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStatic()
	}
	return &OpenAI{
		call:         httpx.NewCaller(opts.HTTPClient, opts.Logger, timeout),
		model:        model,
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		fallback:     fallback,
		onFallback:   opts.OnFallback,
	}
}

// Enhance never fails on provider errors: it answers from the fallback and
// records the reason instead.
func (o *OpenAI) Enhance(ctx context.Context, req Request) (Response, error) {
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		return o.useFallback(ctx, req, "missing_api_key", nil)
	}
	payload := openAIChatRequest{
		Model:          o.model,
		Temperature:    0.6,
		ResponseFormat: &openAIFormat{Type: "json_object"},
		Messages: []openAIMessage{
			{Role: "system", Content: "You are a prompt engineer for image and video generation models. Respond only with valid JSON."},
			{Role: "user", Content: buildEnhanceInstruction(req)},
		},
	}
	header := http.Header{"Authorization": []string{"Bearer " + key}}
	if o.organization != "" {
		header.Set("OpenAI-Organization", o.organization)
	}
	var out openAIChatResponse
	if err := o.call.JSON(ctx, openAIProviderName, http.MethodPost, o.baseURL+"/chat/completions", header, payload, &out); err != nil {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		var httpErr *httpx.Error
		if errors.As(err, &httpErr) {
			return o.useFallback(ctx, req, fmt.Sprintf("http_%d", httpErr.Status), err)
		}
		return o.useFallback(ctx, req, "http_request", err)
	}
	if len(out.Choices) == 0 {
		return o.useFallback(ctx, req, "empty_choices", errors.New("no choices"))
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return o.useFallback(ctx, req, "empty_response", errors.New("empty response"))
	}
	parsed, err := parseModelPayload[modelEnhancePayload](text)
	if err != nil {
		return o.useFallback(ctx, req, "parse_payload", err)
	}
	if strings.TrimSpace(parsed.Prompt) == "" {
		return o.useFallback(ctx, req, "empty_prompt", errors.New("payload has no prompt"))
	}
	return Response{
		Prompt:   strings.TrimSpace(parsed.Prompt),
		Keywords: normalizeKeywords(parsed.Keywords, ""),
		Provider: openAIProviderName,
	}, nil
}

func (o *OpenAI) useFallback(ctx context.Context, req Request, reason string, cause error) (Response, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	o.call.Logger.Warn().Err(cause).Str("reason", reason).Msg("prompt: using fallback enhancer")
	res, err := o.fallback.Enhance(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if res.Provider == "" {
		res.Provider = staticProviderName
	}
	res.FallbackReason = reason
	return res, nil
}

func normalizeOpenAIModel(name string) (string, string) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultOpenAIModel, ""
	}
	normalized := strings.ToLower(trimmed)
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if canonical, ok := openAIModelCanonical[normalized]; ok {
		return canonical, ""
	}
	if alias, ok := openAIModelAliases[normalized]; ok {
		return alias, "alias"
	}
	return defaultOpenAIModel, "defaulted"
}

var _ Enhancer = (*OpenAI)(nil)
