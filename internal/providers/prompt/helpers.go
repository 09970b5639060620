package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const maxKeywords = 8

type modelEnhancePayload struct {
	Prompt   string   `json:"prompt"`
	Keywords []string `json:"keywords"`
}

func buildEnhanceInstruction(req Request) string {
	target := req.Target
	if target == "" {
		target = TargetImage
	}
	locale := coalesce(req.Locale, "en")
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Rewrite the following idea into a single detailed %s generation prompt. Respond strictly with JSON matching this schema: ", target)
	sb.WriteString(`{"prompt":string,"keywords":string[]}`)
	fmt.Fprintf(sb, ". Keep the subject unchanged, describe style, lighting and composition, and stay under 120 words. Write keywords in locale '%s'. Idea: %q", locale, strings.TrimSpace(req.Prompt))
	return sb.String()
}

func normalizeKeywords(keywords []string, fallback string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		kwLower := strings.ToLower(kw)
		if _, ok := seen[kwLower]; ok {
			continue
		}
		seen[kwLower] = struct{}{}
		result = append(result, kw)
		if len(result) == maxKeywords {
			break
		}
	}
	if len(result) == 0 && fallback != "" {
		result = []string{fallback}
	}
	return result
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
