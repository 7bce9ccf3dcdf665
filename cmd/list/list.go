package list

import (
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command and its subcommands
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions, clouds, and detectors",
		Long: `List the Azure subscriptions visible to the logged-in account, the clouds
registered with the Azure CLI, and the portal-creation detectors this tool
can run.`,
	}

	cmd.AddCommand(newSubscriptionsCmd())
	cmd.AddCommand(newCloudsCmd())
	cmd.AddCommand(newDetectorsCmd())

	return cmd
}
