package llm

import "strings"

// CleanJSONBlock strips a markdown code fence around a JSON reply. Models add
// one even in JSON mode.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if nl := strings.Index(text, "\n"); nl >= 0 {
		lang := strings.TrimSpace(text[:nl])
		if !strings.ContainsAny(lang, " {[") {
			text = text[nl+1:]
		}
	}
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}
