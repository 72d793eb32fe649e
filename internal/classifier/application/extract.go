package application

import (
	"encoding/json"
	"strings"

	"github.com/felixgeelhaar/synapse/internal/classifier/domain"
)

// ExtractClassification parses model output. The first balanced {...} span
// wins; when it does not decode, the whole trimmed text is tried. The result
// must carry both category_slug and entry_type.
func ExtractClassification(text string) (domain.Classification, error) {
	if span, ok := firstObjectSpan(text); ok {
		if c, err := decodeClassification(span); err == nil {
			return c, nil
		}
	}
	if c, err := decodeClassification(strings.TrimSpace(text)); err == nil {
		return c, nil
	}
	return nil, domain.ErrParse
}

func decodeClassification(raw string) (domain.Classification, error) {
	var c domain.Classification
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	if c == nil || !c.HasRequiredKeys() {
		return nil, domain.ErrParse
	}
	return c, nil
}

// firstObjectSpan returns the text from the first '{' to its matching '}',
// ignoring braces inside JSON strings. An unterminated object falls back to
// the last '}' in the text.
func firstObjectSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
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
				return text[start : i+1], true
			}
		}
	}

	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}
