package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SplitFrontmatter separates a leading YAML block delimited by "---" lines
// from the note body. Scalar values are returned as strings; null values
// are omitted.
func SplitFrontmatter(text string) (map[string]string, string, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return map[string]string{}, text, nil
	}
	rest := normalized[len("---\n"):]
	end := -1
	bodyStart := 0
	if strings.HasPrefix(rest, "---\n") || rest == "---" {
		end = 0
		bodyStart = len("---")
	} else if idx := strings.Index(rest, "\n---\n"); idx >= 0 {
		end = idx
		bodyStart = idx + len("\n---")
	} else if strings.HasSuffix(rest, "\n---") {
		end = len(rest) - len("\n---")
		bodyStart = len(rest)
	}
	if end < 0 {
		return map[string]string{}, text, nil
	}
	body := strings.TrimPrefix(rest[bodyStart:], "\n")

	raw := map[string]any{}
	if err := yaml.Unmarshal([]byte(rest[:end]), &raw); err != nil {
		return map[string]string{}, body, errors.Wrap(err, "parse frontmatter")
	}
	meta := make(map[string]string, len(raw))
	for key, value := range raw {
		switch typed := value.(type) {
		case nil:
		case string:
			meta[key] = typed
		case map[string]any, []any:
		default:
			meta[key] = fmt.Sprint(typed)
		}
	}
	return meta, body, nil
}

// Frontmatter reads a document and returns its metadata.
func (v *Vault) Frontmatter(ctx context.Context, doc Document) (map[string]string, error) {
	text, err := v.Read(ctx, doc)
	if err != nil {
		return nil, err
	}
	meta, _, err := SplitFrontmatter(text)
	return meta, err
}
