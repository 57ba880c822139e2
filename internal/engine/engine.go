// Package engine runs the note conversation pipeline: read the note, parse it
// into turns, enrich them, dispatch to a provider, apply directives in the
// reply and append the reply to the note.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"notechat/internal/directive"
	"notechat/internal/enrich"
	"notechat/internal/gateway"
	"notechat/internal/llm"
	"notechat/internal/settings"
	"notechat/internal/transcript"
	"notechat/internal/vault"
)

const (
	EngineVersion = "0.1.0"
	APIVersion    = "1"
)

// NotifyMethod is the method name every notification is sent under.
const NotifyMethod = "Notify"

const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notifier receives fire-and-forget status updates for a person.
type Notifier func(method string, params any)

// Notice is the payload of a Notify notification.
type Notice struct {
	RunID   string `json:"run_id,omitempty"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

// Store is everything the pipeline reads from and writes to besides the
// note being answered.
type Store interface {
	enrich.Store
	directive.Store
}

// Surface is the editable buffer of the note being answered.
type Surface interface {
	CurrentText(ctx context.Context) (string, error)
	AppendAtEnd(ctx context.Context, text string) error
}

type Config struct {
	Store    Store
	Surfaces func(doc vault.Document) Surface
	Settings *settings.Settings
	Keys     gateway.KeySource
}

type Engine struct {
	store      Store
	surfaces   func(vault.Document) Surface
	settings   *settings.Settings
	keys       gateway.KeySource
	gateway    *gateway.Gateway
	enricher   *enrich.Enricher
	directives *directive.Processor
	notify     Notifier
	logger     zerolog.Logger
	newRunID   func() string
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithGateway(g *gateway.Gateway) Option {
	return func(e *Engine) {
		if g != nil {
			e.gateway = g
		}
	}
}

func WithNotifier(notify Notifier) Option {
	return func(e *Engine) {
		e.notify = notify
	}
}

func WithRunIDs(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newRunID = fn
		}
	}
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Store == nil {
		return nil, errors.New("engine: store is required")
	}
	if cfg.Surfaces == nil {
		return nil, errors.New("engine: surfaces are required")
	}
	if cfg.Settings == nil {
		return nil, errors.New("engine: settings are required")
	}
	e := &Engine{
		store:    cfg.Store,
		surfaces: cfg.Surfaces,
		settings: cfg.Settings,
		keys:     cfg.Keys,
		logger:   zerolog.Nop(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gateway == nil {
		e.gateway = gateway.New(cfg.Settings, gateway.WithLogger(e.logger.With().Str("component", "gateway").Logger()))
	}
	e.enricher = enrich.New(cfg.Store,
		enrich.WithProjectPrefix(cfg.Settings.ProjectPrefix),
		enrich.WithLogger(e.logger.With().Str("component", "enrich").Logger()),
	)
	e.directives = directive.New(cfg.Store,
		directive.WithLogger(e.logger.With().Str("component", "directive").Logger()),
	)
	e.logger.Debug().
		Str("provider", cfg.Settings.Provider).
		Str("project_prefix", cfg.Settings.ProjectPrefix).
		Dur("request_timeout", cfg.Settings.RequestTimeout).
		Msg("engine.init")
	return e, nil
}

func (e *Engine) SetNotifier(notify Notifier) {
	e.notify = notify
}

func (e *Engine) Gateway() *gateway.Gateway {
	return e.gateway
}

type RunRequest struct {
	Path      string            `json:"path"`
	Overrides gateway.Overrides `json:"overrides"`
}

type RunResult struct {
	RunID      string             `json:"run_id"`
	Path       string             `json:"path"`
	Provider   string             `json:"provider"`
	Model      string             `json:"model"`
	Turns      int                `json:"turns"`
	Reply      string             `json:"reply"`
	Appended   string             `json:"appended"`
	Directives []directive.Result `json:"directives,omitempty"`
}

// Run answers the note at req.Path. Nothing is appended when the note is
// empty or the provider call fails. Directive failures are reported but do
// not stop the reply from being appended.
func (e *Engine) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	runID := e.newRunID()
	logger := e.logger.With().Str("run_id", runID).Str("path", req.Path).Logger()
	result := RunResult{RunID: runID, Path: req.Path}
	fail := func(err error) (RunResult, error) {
		info := ErrorInfo(err)
		logger.Warn().Str("error_code", info.ErrorCode).Err(err).Msg("engine.run_failed")
		e.emit(Notice{RunID: runID, Message: info.Message(), Level: LevelError})
		return result, err
	}
	logger.Info().Msg("engine.run_started")

	doc, err := e.store.Document(ctx, req.Path)
	if err != nil {
		return fail(errors.Wrap(err, "open note"))
	}
	surface := e.surfaces(doc)
	text, err := surface.CurrentText(ctx)
	if err != nil {
		return fail(errors.Wrap(err, "read note"))
	}
	if strings.TrimSpace(text) == "" {
		return fail(&EmptyInputError{Path: doc.Path})
	}

	meta, turns := e.parse(text, logger)
	result.Turns = len(turns)
	if len(turns) == 0 {
		return fail(&EmptyInputError{Path: doc.Path})
	}

	conversation := e.enricher.Conversation(ctx, doc, turns)
	resolved, err := gateway.Resolve(e.settings, e.keys, meta, req.Overrides)
	if err != nil {
		return fail(errors.Wrap(err, "load credentials"))
	}
	result.Provider = resolved.Spec.ID
	result.Model = resolved.Spec.Model

	e.emit(Notice{
		RunID:   runID,
		Message: fmt.Sprintf("Asking %s (%s)...", gateway.ProviderName(resolved.Spec.ID), resolved.Spec.Model),
		Level:   LevelInfo,
	})
	logger.Debug().
		Str("provider", resolved.Spec.ID).
		Str("model", resolved.Spec.Model).
		Int("turns", len(turns)).
		Int("messages", len(conversation)).
		Msg("engine.dispatch")
	reply, err := e.gateway.Dispatch(ctx, conversation, resolved)
	if err != nil {
		return fail(err)
	}

	final, results := e.directives.Process(ctx, reply, doc)
	result.Reply = final
	result.Directives = results
	for _, r := range results {
		if r.Err != nil {
			e.emit(Notice{RunID: runID, Message: fmt.Sprintf("Could not write %s: %v", r.Path, r.Err), Level: LevelWarning})
		}
	}

	block := transcript.Format(resolved.Spec.Model, final)
	if err := surface.AppendAtEnd(ctx, block); err != nil {
		return fail(&AppendError{Path: doc.Path, Err: err})
	}
	result.Appended = block
	logger.Info().
		Int("reply_chars", len(final)).
		Int("directives", len(results)).
		Msg("engine.run_finished")
	e.emit(Notice{RunID: runID, Message: fmt.Sprintf("%s replied.", gateway.ProviderName(resolved.Spec.ID)), Level: LevelSuccess})
	return result, nil
}

type ParseResult struct {
	Path         string            `json:"path"`
	Metadata     map[string]string `json:"metadata"`
	Turns        []llm.Message     `json:"turns"`
	Conversation []llm.Message     `json:"conversation,omitempty"`
}

// Parse shows what Run would send without contacting a provider. With
// enriched set the title, sibling and link context is included.
func (e *Engine) Parse(ctx context.Context, path string, enriched bool) (ParseResult, error) {
	doc, err := e.store.Document(ctx, path)
	if err != nil {
		return ParseResult{}, errors.Wrap(err, "open note")
	}
	text, err := e.surfaces(doc).CurrentText(ctx)
	if err != nil {
		return ParseResult{}, errors.Wrap(err, "read note")
	}
	meta, turns := e.parse(text, e.logger)
	result := ParseResult{Path: doc.Path, Metadata: meta, Turns: turns}
	if enriched && len(turns) > 0 {
		result.Conversation = e.enricher.Conversation(ctx, doc, turns)
	}
	return result, nil
}

// parse never fails: malformed frontmatter is logged and the remaining text
// is parsed as is.
func (e *Engine) parse(text string, logger zerolog.Logger) (map[string]string, []llm.Message) {
	meta, body, err := vault.SplitFrontmatter(text)
	if err != nil {
		logger.Warn().Err(err).Msg("engine.frontmatter_invalid")
	}
	return meta, transcript.Parse(body)
}

func (e *Engine) emit(notice Notice) {
	if e.notify == nil {
		return
	}
	e.notify(NotifyMethod, notice)
}
