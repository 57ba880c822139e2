// Package directive applies the note-writing instructions a model embeds in
// its reply and rewrites each one into a wiki link.
package directive

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"notechat/internal/diff"
	"notechat/internal/vault"
)

// Grammar: <create-note name="X">BODY</create-note>, case-sensitive, body
// matched lazily across lines.
var pattern = regexp.MustCompile(`<create-note name="([^"]+)">([\s\S]*?)</create-note>`)

const noteExtension = ".md"

type Directive struct {
	Target string `json:"target"`
	Body   string `json:"body"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// Raw is the directive as it appears in reply.
func (d Directive) Raw(reply string) string {
	return reply[d.Start:d.End]
}

// DirectiveMutationError reports a create or append that failed for one
// directive. The reply keeps that directive verbatim.
type DirectiveMutationError struct {
	Target string
	Path   string
	Err    error
}

func (e *DirectiveMutationError) Error() string {
	return fmt.Sprintf("note %q (%s): %v", e.Target, e.Path, e.Err)
}

func (e *DirectiveMutationError) Unwrap() error { return e.Err }

type Result struct {
	Directive Directive    `json:"directive"`
	Path      string       `json:"path"`
	Created   bool         `json:"created"`
	Diff      diff.Summary `json:"diff"`
	Err       error        `json:"-"`
}

// Store is the subset of the note store directives write through.
type Store interface {
	Document(ctx context.Context, rel string) (vault.Document, error)
	Exists(ctx context.Context, rel string) (bool, error)
	Read(ctx context.Context, doc vault.Document) (string, error)
	Create(ctx context.Context, rel, text string) (vault.Document, error)
	Append(ctx context.Context, doc vault.Document, text string) error
}

type Processor struct {
	store  Store
	logger zerolog.Logger
}

type Option func(*Processor)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

func New(store Store, opts ...Option) *Processor {
	p := &Processor{store: store, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Find returns every directive in reply, left to right, without overlap.
func Find(reply string) []Directive {
	matches := pattern.FindAllStringSubmatchIndex(reply, -1)
	directives := make([]Directive, 0, len(matches))
	for _, m := range matches {
		directives = append(directives, Directive{
			Target: reply[m[2]:m[3]],
			Body:   reply[m[4]:m[5]],
			Start:  m[0],
			End:    m[1],
		})
	}
	return directives
}

// TargetPath places name beside doc. Notes in the vault root get a bare file
// name.
func TargetPath(doc vault.Document, name string) string {
	file := name + noteExtension
	if doc.Parent == "" {
		return file
	}
	return path.Join(doc.Parent, file)
}

// Process applies every directive in reply, in order, and returns the reply
// with each successful directive replaced by [[name]]. Failed directives stay
// in the text and carry a *DirectiveMutationError in their Result. Repeated
// runs append again.
func (p *Processor) Process(ctx context.Context, reply string, doc vault.Document) (string, []Result) {
	directives := Find(reply)
	if len(directives) == 0 {
		return reply, nil
	}
	results := make([]Result, 0, len(directives))
	var out strings.Builder
	last := 0
	for _, d := range directives {
		result := p.apply(ctx, d, doc)
		results = append(results, result)

		out.WriteString(reply[last:d.Start])
		if result.Err != nil {
			out.WriteString(d.Raw(reply))
		} else {
			out.WriteString("[[" + d.Target + "]]")
		}
		last = d.End
	}
	out.WriteString(reply[last:])
	return out.String(), results
}

func (p *Processor) apply(ctx context.Context, d Directive, doc vault.Document) Result {
	target := TargetPath(doc, d.Target)
	result := Result{Directive: d, Path: target}
	fail := func(err error) Result {
		result.Err = &DirectiveMutationError{Target: d.Target, Path: target, Err: err}
		p.logger.Warn().Str("target", target).Err(err).Msg("directive.failed")
		return result
	}

	exists, err := p.store.Exists(ctx, target)
	if err != nil {
		return fail(err)
	}
	if !exists {
		if _, err := p.store.Create(ctx, target, d.Body); err != nil {
			return fail(err)
		}
		result.Created = true
		result.Diff = diff.Summarize("", d.Body, 0)
		p.logger.Debug().Str("target", target).Int("bytes", len(d.Body)).Msg("directive.created")
		return result
	}

	existing, err := p.store.Document(ctx, target)
	if err != nil {
		return fail(err)
	}
	before, err := p.store.Read(ctx, existing)
	if err != nil {
		return fail(err)
	}
	addition := "\n" + d.Body
	if err := p.store.Append(ctx, existing, addition); err != nil {
		return fail(err)
	}
	result.Diff = diff.Summarize(before, before+addition, 0)
	p.logger.Debug().Str("target", target).Int("bytes", len(addition)).Msg("directive.appended")
	return result
}
