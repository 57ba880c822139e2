package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"notechat/internal/appdirs"
	"notechat/internal/engine"
	"notechat/internal/envfile"
	"notechat/internal/envutil"
	"notechat/internal/gateway"
	"notechat/internal/logging"
	"notechat/internal/secrets"
	"notechat/internal/settings"
	"notechat/internal/vault"
)

type app struct {
	dataDir  string
	logs     logging.FileLogger
	logger   zerolog.Logger
	settings *settings.Settings
	store    *settings.Store
	secrets  *secrets.Store
	creds    *gateway.Credentials
	vault    *vault.Vault
}

type appKey struct{}

// loadApp wires configuration, credentials and logging for one command. The
// vault is opened only when needVault is set.
func loadApp(cmd *cobra.Command, needVault bool) (*app, error) {
	vaultDir, _ := cmd.Flags().GetString("vault")
	verbose, _ := cmd.Flags().GetBool("verbose")

	envResult := envfile.Load(vaultDir)
	dataDir, err := appdirs.DataDir()
	if err != nil {
		return nil, errors.Wrap(err, "locate data dir")
	}
	logs, logErr := logging.NewFileLogger(dataDir, envutil.Bool("NOTECHAT_DEBUG"))
	if verbose {
		logs = logs.WithConsole(os.Stderr)
	}
	logger := logs.Logger.With().Str("component", "cli").Str("command", cmd.Name()).Logger()
	if logs.Path != "" {
		logger.Info().Str("path", logs.Path).Msg("cli.logging_enabled")
	}
	if logErr != nil {
		logger.Warn().Err(logErr).Msg("cli.log_setup_failed")
	}
	if envResult.Loaded {
		logger.Debug().Str("path", envResult.Path).Int("keys", envResult.Keys).Msg("cli.env_loaded")
	}
	if envResult.Err != nil {
		logger.Warn().Str("path", envResult.Path).Err(envResult.Err).Msg("cli.env_load_failed")
	}

	store := settings.NewStore(appdirs.ConfigPath(dataDir))
	cfg, err := store.Load()
	if err != nil {
		_ = logs.Close()
		return nil, errors.Wrapf(err, "load %s", store.Path())
	}
	settings.ApplyEnv(cfg, nil)

	secretStore := secrets.NewStore(appdirs.SecretsPath(dataDir), appdirs.MasterKeyPath(dataDir))
	a := &app{
		dataDir:  dataDir,
		logs:     logs,
		logger:   logger,
		settings: cfg,
		store:    store,
		secrets:  secretStore,
		creds:    gateway.NewCredentials(nil, secretStore),
	}
	if needVault {
		v, err := vault.Open(vaultDir)
		if err != nil {
			_ = logs.Close()
			return nil, err
		}
		a.vault = v
	}
	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
	return a, nil
}

func closeApp(cmd *cobra.Command) {
	if cmd.Context() == nil {
		return
	}
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok && a.logs.Close != nil {
		_ = a.logs.Close()
	}
}

func (a *app) engine(notify engine.Notifier) (*engine.Engine, error) {
	opts := []engine.Option{
		engine.WithLogger(a.logs.Logger.With().Str("component", "engine").Logger()),
		engine.WithNotifier(notify),
	}
	if envutil.Bool("NOTECHAT_FAKE_PROVIDER") {
		opts = append(opts, engine.WithFakeProviders())
	}
	v := a.vault
	return engine.New(engine.Config{
		Store:    v,
		Surfaces: func(doc vault.Document) engine.Surface { return v.Surface(doc) },
		Settings: a.settings,
		Keys:     a.creds,
	}, opts...)
}

// notePath accepts a path relative to the working directory or an absolute
// path and returns it relative to the vault.
func (a *app) notePath(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	return a.vault.Rel(abs)
}
