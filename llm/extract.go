package llm

import "strings"

// ExtractJSON isolates the JSON object inside raw model output.
//
// Providers wrap their JSON in Markdown fences or prose, and sometimes stop
// mid-object when they hit the token limit. ExtractJSON strips a leading fence
// (with or without a closing one), then returns the first balanced {...}
// object, ignoring braces inside string literals. When the object never
// closes it returns everything from the opening brace to the last closing
// brace, or the text unchanged if there is none. It never fails: deciding
// whether the result is usable is left to ParseCards.
func ExtractJSON(text string) string {
	text = stripFence(strings.TrimSpace(text))

	start := strings.IndexByte(text, '{')
	if start == -1 {
		return text
	}

	inString := false
	escaped := false
	depth := 0
	objStart := -1

	// Byte scanning is safe for UTF-8: none of the delimiters below can
	// appear inside a multi-byte sequence.
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
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && objStart != -1 {
					return text[objStart : i+1]
				}
			}
		}
	}

	// Unbalanced, most likely truncated output.
	end := strings.LastIndexByte(text, '}')
	if objStart != -1 && end > objStart {
		return text[objStart : end+1]
	}
	return text
}

// stripFence drops an opening ``` line and, if present, a closing one.
func stripFence(text string) string {
	if !strings.HasPrefix(text, codeFence) {
		return text
	}

	lines := strings.Split(text, "\n")[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), codeFence) {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
