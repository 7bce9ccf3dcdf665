package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickscan/internal/azure"
)

// newSubscriptionsCmd creates the subscriptions subcommand
func newSubscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List Azure subscriptions",
		Long:  `List every subscription visible to the account logged into the Azure CLI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			subs, err := azure.ListSubscriptions(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list subscriptions: %w", err)
			}

			if len(subs) == 0 {
				fmt.Println("No subscriptions found")
				return nil
			}

			fmt.Printf("Found %d subscriptions:\n\n", len(subs))
			for _, sub := range subs {
				marker := " "
				if sub.IsDefault {
					marker = "*"
				}
				fmt.Printf("%s %s (%s)", marker, sub.Name, sub.ID)
				if sub.State != "" {
					fmt.Printf(" [%s]", sub.State)
				}
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}
