package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"notechat/internal/engine"
	"notechat/internal/gateway"
	"notechat/internal/settings"
)

func newRunCmd() *cobra.Command {
	var (
		provider string
		model    string
		system   string
		showDiff bool
	)
	cmd := &cobra.Command{
		Use:   "run <note>",
		Short: "Send the note's conversation to a model and append the reply",
		Long: fmt.Sprintf(`Reads the note, splits it into turns at separator lines, asks the
configured provider and appends the reply to the end of the note.

The note title and every linked note are sent as context. When the note name
starts with the project prefix (project_prefix in config.yaml, default %q),
every other note in the same folder is sent as well.`, settings.DefaultProjectPrefix),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, true)
			if err != nil {
				return err
			}
			asJSON := jsonOutput(cmd)
			eng, err := a.engine(consoleNotifier(os.Stderr, asJSON))
			if err != nil {
				return err
			}
			path, err := a.notePath(args[0])
			if err != nil {
				return err
			}
			result, err := eng.Run(cmd.Context(), engine.RunRequest{
				Path:      path,
				Overrides: gateway.Overrides{Provider: provider, Model: model, System: system},
			})
			if err != nil {
				if asJSON {
					_ = printJSON(cmd.OutOrStdout(), map[string]any{"error": engine.ErrorInfo(err)})
				}
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			for _, r := range result.Directives {
				if r.Err != nil {
					continue
				}
				action := "appended to"
				if r.Created {
					action = "created"
				}
				fmt.Fprintf(out, "%s %s (%s)\n", action, r.Path, r.Diff)
				if showDiff {
					fmt.Fprint(out, r.Diff.Render(2))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider for this run (openai, anthropic, gemini)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model for this run")
	cmd.Flags().StringVar(&system, "system", "", "System instruction for this run; a leading +++ appends to the default")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show the change made to each note a directive touched")
	return cmd
}
