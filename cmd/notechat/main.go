package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"notechat/internal/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notechat",
		Short:         "Hold a conversation with a language model inside a plain-text note",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			closeApp(cmd)
			return nil
		},
	}
	root.PersistentFlags().String("vault", ".", "Root folder of the notes")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log to stderr as well as the debug log file")
	root.PersistentFlags().Bool("json", false, "Print machine-readable JSON")

	root.AddCommand(
		newRunCmd(),
		newParseCmd(),
		newModelsCmd(),
		newKeysCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	root.SetErr(os.Stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the notechat version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notechat %s (api %s)\n", engine.EngineVersion, engine.APIVersion)
		},
	}
}
