package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newParseCmd() *cobra.Command {
	var enriched bool
	cmd := &cobra.Command{
		Use:   "parse <note>",
		Short: "Show the turns a run would send, without contacting a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, true)
			if err != nil {
				return err
			}
			eng, err := a.engine(nil)
			if err != nil {
				return err
			}
			path, err := a.notePath(args[0])
			if err != nil {
				return err
			}
			result, err := eng.Parse(cmd.Context(), path, enriched)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			keys := make([]string, 0, len(result.Metadata))
			for key := range result.Metadata {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(out, "%s: %s\n", key, result.Metadata[key])
			}
			turns := result.Turns
			if enriched {
				turns = result.Conversation
			}
			for i, turn := range turns {
				infoColor.Fprintf(out, "[%d] %s\n", i+1, turn.Role)
				fmt.Fprintln(out, strings.TrimRight(turn.Content, "\n"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&enriched, "enriched", false, "Include the title, sibling and linked-note context")
	return cmd
}
