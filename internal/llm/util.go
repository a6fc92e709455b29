package llm

import "strings"

// StripCodeFence removes a surrounding ``` fence, with or without a language
// tag, from a model reply. Text without a leading fence is only trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// The language tag runs to the end of the first line.
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[ ") {
		text = text[nl+1:]
	}
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the first JSON object embedded in text. A
// balanced object is preferred; if the braces never balance, the span from
// the first '{' to the last '}' is returned. Returns "" when there is none.
func ExtractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	if obj := balancedObject(text[start:]); obj != "" {
		return obj
	}
	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

// balancedObject returns the prefix of text, which starts with '{', up to the
// matching '}'. Braces inside JSON strings are ignored.
func balancedObject(text string) string {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
