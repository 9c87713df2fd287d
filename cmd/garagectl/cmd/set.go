package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/status"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Record a new garage door status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("status")
		s, ok := status.Decode(strings.ToUpper(raw))
		if !ok {
			return errors.Wrapf(status.ErrInvalidStatus, "%q, want OPEN or CLOSED", raw)
		}
		return getClient().SetStatus(cmd.Context(), s)
	},
}

func init() {
	setCmd.Flags().String("status", "", "OPEN or CLOSED")
	setCmd.MarkFlagRequired("status")
}
