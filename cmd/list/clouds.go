package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickscan/internal/azure"
)

// newCloudsCmd creates the clouds subcommand
func newCloudsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clouds",
		Short: "List Azure clouds",
		Long:  `List the clouds registered with the local Azure CLI configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			clouds, err := azure.ListClouds()
			if err != nil {
				return fmt.Errorf("failed to list clouds: %w", err)
			}

			current, err := azure.CurrentCloud()
			if err != nil {
				return fmt.Errorf("failed to determine current cloud: %w", err)
			}

			fmt.Printf("Found %d clouds:\n\n", len(clouds))
			for _, cloud := range clouds {
				marker := " "
				if cloud == current {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, cloud)
			}

			return nil
		},
	}

	return cmd
}
