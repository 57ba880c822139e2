package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"notechat/internal/engine"
	"notechat/internal/envutil"
	"notechat/internal/gateway"
	"notechat/internal/settings"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys",
	}
	cmd.AddCommand(newKeysSetCmd(), newKeysClearCmd(), newKeysCheckCmd())
	return cmd
}

func newKeysSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider> [key]",
		Short: "Store an API key in the encrypted secrets file",
		Long:  "Stores the key for a provider. When the key is omitted it is read from stdin.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			providerID := strings.ToLower(args[0])
			key := ""
			if len(args) == 2 {
				key = args[1]
			} else {
				key, err = readKey(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(key) == "" {
				return errors.New("key is empty")
			}
			if err := a.secrets.SetProviderKey(providerID, strings.TrimSpace(key)); err != nil {
				return err
			}
			a.logger.Info().Str("provider_id", providerID).Msg("cli.key_saved")
			successColor.Fprintf(cmd.ErrOrStderr(), "✓ Saved key for %s\n", gateway.ProviderName(providerID))
			return nil
		},
	}
}

func newKeysClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			providerID := strings.ToLower(args[0])
			if err := a.secrets.ClearProviderKey(providerID); err != nil {
				return err
			}
			a.logger.Info().Str("provider_id", providerID).Msg("cli.key_cleared")
			successColor.Fprintf(cmd.ErrOrStderr(), "✓ Cleared key for %s\n", gateway.ProviderName(providerID))
			return nil
		},
	}
}

type keyStatus struct {
	ProviderID string `json:"provider_id"`
	Source     string `json:"source"`
	Valid      bool   `json:"valid"`
	Message    string `json:"message,omitempty"`
}

func newKeysCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [provider]",
		Short: "Report where each key comes from and whether the provider accepts it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			ids := settings.ProviderIDs()
			if len(args) == 1 {
				ids = []string{strings.ToLower(args[0])}
			}
			gwLogger := a.logs.Logger.With().Str("component", "gateway").Logger()
			gw := gateway.New(a.settings, gateway.WithLogger(gwLogger))
			if envutil.Bool("NOTECHAT_FAKE_PROVIDER") {
				gw = engine.FakeGateway(gwLogger)
			}
			statuses := make([]keyStatus, 0, len(ids))
			for _, id := range ids {
				status := keyStatus{ProviderID: id}
				key, from, err := a.creds.Source(id)
				switch {
				case err != nil:
					status.Message = err.Error()
				case key == "":
					status.Source = "none"
					status.Message = "not configured"
				default:
					status.Source = from
					if err := gw.ValidateKey(cmd.Context(), id, key); err != nil {
						status.Message = engine.ErrorInfo(err).Message()
					} else {
						status.Valid = true
					}
				}
				statuses = append(statuses, status)
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), statuses)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tSOURCE\tSTATUS")
			for _, s := range statuses {
				state := "ok"
				if !s.Valid {
					state = s.Message
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.ProviderID, s.Source, state)
			}
			return w.Flush()
		},
	}
}

func readKey(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "read key from stdin")
	}
	return strings.TrimSpace(line), nil
}
