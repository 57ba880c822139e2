package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"notechat/internal/gateway"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models each provider offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, false)
			if err != nil {
				return err
			}
			models := gateway.Models()
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), models)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODEL\tNAME\tCONTEXT\tACTIVE")
			for _, m := range models {
				active := ""
				if m.ProviderID == a.settings.Provider && gateway.ModelName(m.ModelID) == a.settings.ProviderModel(m.ProviderID) {
					active = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", m.ProviderID, gateway.ModelName(m.ModelID), m.DisplayName, m.ContextTokens, active)
			}
			return w.Flush()
		},
	}
}
