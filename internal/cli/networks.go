package cli

import (
	"github.com/coderi421/adkit/service"
	"github.com/spf13/cobra"
)

func NewNetworksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the networks the access token can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.client()
			if err != nil {
				return err
			}
			networks, err := service.Networks(c.WithNetwork("")).GetAllNetworks(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "networks", err)
			}
			rows := make([][]string, 0, len(networks))
			for _, n := range networks {
				rows = append(rows, []string{n.NetworkCode, n.DisplayName})
			}
			if networks == nil {
				networks = []service.Network{}
			}
			return newPrinter(rootOpts.Format, cmd.OutOrStdout()).
				table(networks, []string{"CODE", "NAME"}, rows)
		},
	}
}
