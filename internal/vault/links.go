package vault

import (
	"context"
	"net/url"
	"path"
	"sort"
	"strings"
)

// Resolve maps a link target, as written inside from, onto an existing
// document. Lookup order: relative to from's folder, relative to the vault
// root, then the shortest vault path ending in the target. Targets without an
// extension are tried as markdown notes first.
func (v *Vault) Resolve(ctx context.Context, linkPath string, from Document) (Document, bool) {
	if ctx.Err() != nil {
		return Document{}, false
	}
	target := normalizeLinkPath(linkPath)
	if target == "" {
		return Document{}, false
	}
	names := []string{target}
	if path.Ext(target) == "" {
		names = []string{target + ".md", target}
	}

	var candidates []string
	if !strings.HasPrefix(target, "/") && from.Parent != "" {
		for _, name := range names {
			candidates = append(candidates, path.Join(from.Parent, name))
		}
	}
	candidates = append(candidates, names...)
	for _, candidate := range candidates {
		if doc, err := v.Document(ctx, candidate); err == nil {
			return doc, true
		}
	}

	var matches []string
	_ = v.walk(func(rel string) {
		for _, name := range names {
			trimmed := strings.TrimPrefix(name, "/")
			if rel == trimmed || strings.HasSuffix(rel, "/"+trimmed) {
				matches = append(matches, rel)
				return
			}
		}
	})
	if len(matches) == 0 {
		return Document{}, false
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) < len(matches[j])
		}
		return matches[i] < matches[j]
	})
	return newDocument(matches[0]), true
}

func normalizeLinkPath(linkPath string) string {
	target := strings.TrimSpace(linkPath)
	if strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
		target = strings.TrimSpace(target[1 : len(target)-1])
	}
	if strings.Contains(target, "://") || strings.HasPrefix(strings.ToLower(target), "mailto:") {
		return ""
	}
	if idx := strings.IndexAny(target, "#^"); idx >= 0 {
		target = target[:idx]
	}
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}
	lead := strings.HasPrefix(target, "/")
	target = path.Clean(target)
	if target == "." || target == "/" {
		return ""
	}
	if lead && !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return target
}
