package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/icons"
)

// iconsCmd lists the built-in icon names so annotation authors can see
// what the image annotation will match without digging through source.
var iconsCmd = &cobra.Command{
	Use:   "icons",
	Short: "List the built-in application icon mappings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, name := range icons.Known() {
			image, _ := icons.Lookup(name)
			fmt.Fprintf(out, "%-20s %s\n", name, image)
		}
	},
}

func init() {
	rootCmd.AddCommand(iconsCmd)
}
