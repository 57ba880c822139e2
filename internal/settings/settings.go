// Package settings holds the process-wide configuration: the active provider,
// per-provider model and endpoint, the default system instruction and the
// project naming prefix.
package settings

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidBaseURL is returned for a base_url the egress policy would block.
var ErrInvalidBaseURL = errors.New("base_url must be https with a host name")

const schemaVersion = 1

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	DefaultProvider      = ProviderOpenAI
	DefaultProjectPrefix = "Project - "
	DefaultSystem        = "You are a helpful assistant embedded in a note-taking app. " +
		"To create a new note, or add to an existing one, reply with " +
		`<create-note name="Note name">note body</create-note>.`
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderGemini:    "gemini-2.5-flash",
}

// ProviderIDs lists the known providers in display order.
func ProviderIDs() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini}
}

// DefaultModel returns the built-in model for providerID, or "" when unknown.
func DefaultModel(providerID string) string {
	return defaultModels[providerID]
}

type ProviderSettings struct {
	Model string `yaml:"model"`
	// BaseURL replaces the vendor endpoint. It must be https and name a host;
	// plain http and IP addresses are refused by the egress policy.
	BaseURL string `yaml:"base_url,omitempty"`
}

type Settings struct {
	SchemaVersion     int                         `yaml:"schema_version"`
	Provider          string                      `yaml:"provider"`
	SystemInstruction string                      `yaml:"system_instruction"`
	ProjectPrefix     string                      `yaml:"project_prefix"`
	RequestTimeout    time.Duration               `yaml:"request_timeout,omitempty"`
	Providers         map[string]ProviderSettings `yaml:"providers"`
}

// ProviderModel returns the configured model for providerID, falling back to
// the built-in default.
func (s *Settings) ProviderModel(providerID string) string {
	if entry, ok := s.Providers[providerID]; ok && strings.TrimSpace(entry.Model) != "" {
		return strings.TrimSpace(entry.Model)
	}
	return DefaultModel(providerID)
}

func (s *Settings) ProviderBaseURL(providerID string) string {
	return strings.TrimSpace(s.Providers[providerID].BaseURL)
}

// Validate checks every configured provider base_url.
func (s *Settings) Validate() error {
	for _, providerID := range ProviderIDs() {
		if err := ValidateBaseURL(s.ProviderBaseURL(providerID)); err != nil {
			return errors.Wrapf(err, "providers.%s", providerID)
		}
	}
	return nil
}

// ValidateBaseURL accepts "" (the vendor default) or an https URL whose host
// is a name rather than an IP address.
func ValidateBaseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrapf(ErrInvalidBaseURL, "%q", raw)
	}
	host := u.Hostname()
	if u.Scheme != "https" || host == "" || net.ParseIP(host) != nil {
		return errors.Wrapf(ErrInvalidBaseURL, "%q", raw)
	}
	return nil
}

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, err
	}
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	backfillSettings(&settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	backfillSettings(settings)
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Update(fn func(*Settings)) (*Settings, error) {
	settings, err := s.Load()
	if err != nil {
		return nil, err
	}
	fn(settings)
	return settings, s.Save(settings)
}

// ApplyEnv layers NOTECHAT_PROVIDER and NOTECHAT_SYSTEM over settings. A
// NOTECHAT_SYSTEM value starting with "+++" is kept verbatim so the gateway
// can append it to the configured default.
func ApplyEnv(settings *Settings, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if value, ok := lookup("NOTECHAT_PROVIDER"); ok && strings.TrimSpace(value) != "" {
		settings.Provider = strings.ToLower(strings.TrimSpace(value))
	}
	if value, ok := lookup("NOTECHAT_SYSTEM"); ok && value != "" {
		if rest, found := strings.CutPrefix(value, "+++"); found {
			settings.SystemInstruction = joinInstructions(settings.SystemInstruction, rest)
		} else {
			settings.SystemInstruction = value
		}
	}
}

func joinInstructions(base, extra string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimSpace(extra)
	}
	return base + "\n\n" + strings.TrimSpace(extra)
}

func defaultSettings() *Settings {
	settings := &Settings{}
	backfillSettings(settings)
	return settings
}

func backfillSettings(settings *Settings) {
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = schemaVersion
	}
	settings.Provider = strings.ToLower(strings.TrimSpace(settings.Provider))
	if settings.Provider == "" {
		settings.Provider = DefaultProvider
	}
	if settings.SystemInstruction == "" {
		settings.SystemInstruction = DefaultSystem
	}
	if settings.ProjectPrefix == "" {
		settings.ProjectPrefix = DefaultProjectPrefix
	}
	if settings.RequestTimeout < 0 {
		settings.RequestTimeout = 0
	}
	if settings.Providers == nil {
		settings.Providers = map[string]ProviderSettings{}
	}
	for _, providerID := range ProviderIDs() {
		backfillProvider(settings.Providers, providerID)
	}
}

func backfillProvider(providers map[string]ProviderSettings, providerID string) {
	entry := providers[providerID]
	if strings.TrimSpace(entry.Model) == "" {
		entry.Model = DefaultModel(providerID)
	}
	providers[providerID] = entry
}
