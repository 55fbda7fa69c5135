package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/config"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/types"
)

func policiesCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Print the category policy table in effect",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			table, err := types.LoadPolicyTable(cfg.PolicyFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(map[string]interface{}{"policies": table.Policies()})
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "CATEGORY\tMAX\tVERIFIER\tDECISION")
			for _, p := range table.Policies() {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", p.Category, p.MaxPoints, p.Verifier, p.Decision)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the table as a policy file")
	return cmd
}
