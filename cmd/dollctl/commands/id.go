package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dollpublish/dollpublish/internal/idgen"
)

var idCount int

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print generated document identifiers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if idCount < 1 {
			return fmt.Errorf("--count must be at least 1")
		}
		for i := 0; i < idCount; i++ {
			fmt.Fprintln(cmd.OutOrStdout(), idgen.Generate())
		}
		return nil
	},
}

func init() {
	idCmd.Flags().IntVarP(&idCount, "count", "n", 1, "number of identifiers")
	rootCmd.AddCommand(idCmd)
}
