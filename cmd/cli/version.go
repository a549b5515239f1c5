package main

import "github.com/spf13/cobra"

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			c.printJSON(map[string]string{"version": version, "buildDate": buildDate})
		},
	}
}
