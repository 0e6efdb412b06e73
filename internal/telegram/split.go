package telegram

import "strings"

// DefaultMaxMessageLength is the Bot API limit for one text message.
const DefaultMaxMessageLength = 4096

var splitSeparators = []string{"\n\n", "\n", ". "}

// splitMessage cuts text into chunks of at most max characters, preferring a
// blank line, then a newline, then a sentence end, then a hard cut. Chunk text
// is kept as-is, separators stay at the end of the chunk they close.
// Whitespace-only chunks are dropped since the Bot API rejects them.
func splitMessage(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxMessageLength
	}
	var parts []string
	add := func(chunk string) {
		if strings.TrimSpace(chunk) != "" {
			parts = append(parts, chunk)
		}
	}
	rest := []rune(text)
	for len(rest) > max {
		window := string(rest[:max])
		cut := -1
		for _, sep := range splitSeparators {
			if i := strings.LastIndex(window, sep); i > 0 {
				cut = len([]rune(window[:i+len(sep)]))
				break
			}
		}
		if cut <= 0 {
			cut = max
		}
		add(string(rest[:cut]))
		rest = rest[cut:]
	}
	add(string(rest))
	return parts
}
