package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	v, root := openVault(t)
	writeFile(t, root, "notes/chat.md", "")
	writeFile(t, root, "notes/Alpha.md", "local alpha")
	writeFile(t, root, "Alpha.md", "root alpha")
	writeFile(t, root, "deep/nested/Beta.md", "beta")
	writeFile(t, root, "other/deeper/Beta.md", "beta 2")
	writeFile(t, root, "My Note.md", "spaced")
	writeFile(t, root, "data.csv", "a,b")
	writeFile(t, root, ".obsidian/Hidden.md", "hidden")

	ctx := context.Background()
	from, err := v.Document(ctx, "notes/chat.md")
	require.NoError(t, err)

	cases := []struct {
		link string
		want string
		ok   bool
	}{
		{"Alpha", "notes/Alpha.md", true},
		{"/Alpha", "Alpha.md", true},
		{"Alpha.md", "notes/Alpha.md", true},
		{"Alpha#Heading", "notes/Alpha.md", true},
		{"Beta", "deep/nested/Beta.md", true},
		{"nested/Beta", "deep/nested/Beta.md", true},
		{"My%20Note.md", "My Note.md", true},
		{"<My Note.md>", "My Note.md", true},
		{"data.csv", "data.csv", true},
		{"Ghost", "", false},
		{"Hidden", "", false},
		{"https://example.com/Alpha", "", false},
		{"#only-heading", "", false},
		{"../../etc/passwd", "", false},
	}
	for _, tc := range cases {
		doc, ok := v.Resolve(ctx, tc.link, from)
		assert.Equal(t, tc.ok, ok, "link %q", tc.link)
		if tc.ok {
			assert.Equal(t, tc.want, doc.Path, "link %q", tc.link)
		}
	}
}

func TestResolveFromRootDocument(t *testing.T) {
	v, root := openVault(t)
	writeFile(t, root, "chat.md", "")
	writeFile(t, root, "Gamma.md", "g")
	ctx := context.Background()
	from, err := v.Document(ctx, "chat.md")
	require.NoError(t, err)

	doc, ok := v.Resolve(ctx, "Gamma", from)
	require.True(t, ok)
	assert.Equal(t, "Gamma.md", doc.Path)
}
