package main

import (
	"encoding/json"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"notechat/internal/engine"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func jsonOutput(cmd *cobra.Command) bool {
	enabled, _ := cmd.Flags().GetBool("json")
	return enabled
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// consoleNotifier prints engine notices to stderr. It is silent in JSON mode
// so stdout stays parseable and stderr stays quiet.
func consoleNotifier(w io.Writer, quiet bool) engine.Notifier {
	return func(method string, params any) {
		if quiet || method != engine.NotifyMethod {
			return
		}
		notice, ok := params.(engine.Notice)
		if !ok {
			return
		}
		switch notice.Level {
		case engine.LevelSuccess:
			successColor.Fprintf(w, "✓ %s\n", notice.Message)
		case engine.LevelWarning:
			warnColor.Fprintf(w, "! %s\n", notice.Message)
		case engine.LevelError:
			errorColor.Fprintf(w, "✗ %s\n", notice.Message)
		default:
			infoColor.Fprintf(w, "%s\n", notice.Message)
		}
	}
}
