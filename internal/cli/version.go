package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/academy/pkg/academy"
)

const modulePath = "github.com/mesh-intelligence/academy"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the academy version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return printJSON(cmd, map[string]string{"version": academy.Version, "module": modulePath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "academy v%s\nmodule: %s\n", academy.Version, modulePath)
			return nil
		},
	}
}
