package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the last recorded garage door status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gs, err := getClient().GetStatus(cmd.Context())
		if err != nil {
			return err
		}
		if gs == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "UNKNOWN")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), gs.Status)
		return nil
	},
}
