package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List capability sets and the remote servers they declare",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := cfg.LoadCatalog()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, set := range catalog.Sets {
			fmt.Fprintf(out, "%s: %s\n", set.Name, set.Description)
			caps, err := catalog.Resolve(set.Name)
			if err != nil {
				return err
			}
			for _, c := range caps {
				fmt.Fprintf(out, "  - %s: %s (%s)\n", c.Name, c.Description, c.URL)
			}
		}
		fmt.Fprintf(out, "\ndocument capability: %s\n", cfg.DocumentCapability)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}
