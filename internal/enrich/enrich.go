// Package enrich pulls the content of linked and sibling notes into a
// conversation before it is sent to a model.
package enrich

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"notechat/internal/llm"
	"notechat/internal/vault"
)

// DefaultProjectPrefix marks notes whose whole folder is shared as context.
const DefaultProjectPrefix = "Project - "

const maxConcurrentReads = 4

var (
	wikiLinkPattern   = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|[^\[\]]*)?\]\]`)
	inlineLinkPattern = regexp.MustCompile(`\[[^\[\]]*\]\(([^()]+)\)`)
)

// Store is the subset of the document store the enricher reads from.
type Store interface {
	Read(ctx context.Context, doc vault.Document) (string, error)
	ListChildren(ctx context.Context, collection string) ([]vault.Document, error)
	Resolve(ctx context.Context, linkPath string, from vault.Document) (vault.Document, bool)
}

type Enricher struct {
	store         Store
	projectPrefix string
	logger        zerolog.Logger
}

type Option func(*Enricher)

func WithProjectPrefix(prefix string) Option {
	return func(e *Enricher) {
		if prefix != "" {
			e.projectPrefix = prefix
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

func New(store Store, opts ...Option) *Enricher {
	e := &Enricher{
		store:         store,
		projectPrefix: DefaultProjectPrefix,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Conversation builds the message list for one dispatch: a title turn,
// the sibling context turn for project notes, then the parsed turns with
// user turns expanded.
func (e *Enricher) Conversation(ctx context.Context, doc vault.Document, turns []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(turns)+2)
	out = append(out, llm.UserMessage("Title: "+doc.Basename))
	if e.IsProject(doc) {
		if siblings := e.SiblingContext(ctx, doc); siblings != "" {
			out = append(out, llm.UserMessage(siblings))
		}
	}
	for _, turn := range turns {
		if turn.Role == llm.RoleUser {
			turn = e.Expand(ctx, turn, doc)
		}
		out = append(out, turn)
	}
	return out
}

func (e *Enricher) IsProject(doc vault.Document) bool {
	return strings.HasPrefix(doc.Basename, e.projectPrefix)
}

// SiblingContext concatenates every other text document in doc's folder.
// Siblings that cannot be read are skipped.
func (e *Enricher) SiblingContext(ctx context.Context, doc vault.Document) string {
	children, err := e.store.ListChildren(ctx, doc.Parent)
	if err != nil {
		e.logger.Warn().Err(err).Str("collection", doc.Parent).Msg("enrich.list_siblings_failed")
		return ""
	}
	siblings := make([]vault.Document, 0, len(children))
	for _, child := range children {
		if child.Path == doc.Path || child.Name() == doc.Name() || !child.IsText() {
			continue
		}
		siblings = append(siblings, child)
	}

	blocks := make([]string, len(siblings))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentReads)
	for i, sibling := range siblings {
		i, sibling := i, sibling
		group.Go(func() error {
			content, err := e.store.Read(groupCtx, sibling)
			if err != nil {
				e.logger.Warn().Err(err).Str("path", sibling.Path).Msg("enrich.read_sibling_failed")
				return nil
			}
			blocks[i] = wrapNote(sibling.Basename, content)
			return nil
		})
	}
	_ = group.Wait()

	parts := blocks[:0]
	for _, block := range blocks {
		if block != "" {
			parts = append(parts, block)
		}
	}
	return strings.Join(parts, "\n")
}

// Expand appends the content of every note referenced from turn. Wiki links
// are handled first, then inline markdown links; both are matched against
// the original content.
func (e *Enricher) Expand(ctx context.Context, turn llm.Message, doc vault.Document) llm.Message {
	original := turn.Content
	var b strings.Builder
	b.WriteString(original)
	for _, target := range linkTargets(original) {
		linked, ok := e.store.Resolve(ctx, target, doc)
		if !ok || !linked.IsText() {
			continue
		}
		content, err := e.store.Read(ctx, linked)
		if err != nil {
			e.logger.Debug().Err(err).Str("path", linked.Path).Msg("enrich.read_link_failed")
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(wrapNote(linked.Basename, content))
	}
	turn.Content = b.String()
	return turn
}

func linkTargets(content string) []string {
	var targets []string
	for _, match := range wikiLinkPattern.FindAllStringSubmatch(content, -1) {
		targets = append(targets, strings.TrimSpace(match[1]))
	}
	for _, match := range inlineLinkPattern.FindAllStringSubmatch(content, -1) {
		if target := strings.TrimSpace(match[1]); target != "" {
			targets = append(targets, target)
		}
	}
	return targets
}

func wrapNote(name, content string) string {
	return fmt.Sprintf("<existing-note name=%q>\n%s\n</existing-note>", name, content)
}
