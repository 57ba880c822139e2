// Package diff describes note mutations as line diffs.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Summary counts changed lines and keeps the full line list for rendering.
type Summary struct {
	Added     int    `json:"added"`
	Removed   int    `json:"removed"`
	Lines     []Line `json:"lines,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

const MaxDiffLines = 5000

// Lines diffs before and after line by line.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// Summarize diffs before and after. Inputs larger than maxLines combined are
// not diffed and come back Truncated.
func Summarize(before, after string, maxLines int) Summary {
	if maxLines <= 0 {
		maxLines = MaxDiffLines
	}
	if lineCount(before)+lineCount(after) > maxLines {
		return Summary{Truncated: true}
	}
	summary := Summary{Lines: Lines(before, after)}
	for _, line := range summary.Lines {
		switch line.Type {
		case LineAdded:
			summary.Added++
		case LineRemoved:
			summary.Removed++
		}
	}
	return summary
}

// String is the short "+N -M" form.
func (s Summary) String() string {
	if s.Truncated {
		return "(diff too large)"
	}
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// Render prints changed lines with +/- markers and at most context unchanged
// lines around each change.
func (s Summary) Render(context int) string {
	if s.Truncated {
		return s.String() + "\n"
	}
	keep := make([]bool, len(s.Lines))
	for i, line := range s.Lines {
		if line.Type == LineContext {
			continue
		}
		for j := max(0, i-context); j <= min(len(s.Lines)-1, i+context); j++ {
			keep[j] = true
		}
	}
	var b strings.Builder
	skipped := false
	for i, line := range s.Lines {
		if !keep[i] {
			skipped = true
			continue
		}
		if skipped && b.Len() > 0 {
			b.WriteString("  ...\n")
		}
		skipped = false
		switch line.Type {
		case LineAdded:
			b.WriteString("+ ")
		case LineRemoved:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(line.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func lineCount(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, "\n") + 1
}
