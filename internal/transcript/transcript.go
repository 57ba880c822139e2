// Package transcript converts a note's text into role-tagged turns and back.
//
// Turns are separated by horizontal rules made of three or more underscores.
// Editors that auto-format markdown sometimes insert spaces between the
// underscores, so "_ _ _" separates turns just like "___" does.
package transcript

import (
	"regexp"
	"strings"

	"notechat/internal/llm"
)

// AssistantMarker tags a segment as written by the model.
const AssistantMarker = "ai::"

var (
	separatorPattern = regexp.MustCompile(`(?:_[ \t\r\n\f\v]*){3,}`)
	// Single-line assistant segments lose the marker and its label.
	inlineLabelPattern = regexp.MustCompile(`ai::\S*\s*`)
)

// Parse splits text into turns in document order. Blank segments are dropped,
// so whitespace-only input yields no turns.
func Parse(text string) []llm.Message {
	segments := separatorPattern.Split(text, -1)
	turns := make([]llm.Message, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		turns = append(turns, parseSegment(segment))
	}
	return turns
}

func parseSegment(segment string) llm.Message {
	idx := strings.Index(segment, AssistantMarker)
	if idx < 0 {
		return llm.UserMessage(segment)
	}
	rest := segment[idx:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		return llm.AssistantMessage(strings.TrimSpace(rest[nl+1:]))
	}
	loc := inlineLabelPattern.FindStringIndex(segment)
	stripped := segment[:loc[0]] + segment[loc[1]:]
	return llm.AssistantMessage(strings.TrimSpace(stripped))
}

// Format renders a reply as an assistant block that can be appended to a
// note. The trailing rule opens an empty slot for the next user turn.
func Format(label, reply string) string {
	var b strings.Builder
	b.WriteString("\n\n___\n\n")
	b.WriteString(AssistantMarker)
	b.WriteString(strings.TrimSpace(label))
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(reply))
	b.WriteString("\n\n___\n\n")
	return b.String()
}
