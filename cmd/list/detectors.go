package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"clickscan/internal/detect"
)

// newDetectorsCmd creates the detectors subcommand
func newDetectorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detectors",
		Short: "List portal-creation detectors",
		Long:  `List the registered detectors in the order they are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			detectors := detect.DefaultRegistry.Detectors()
			if len(detectors) == 0 {
				fmt.Println("No detectors registered")
				return nil
			}

			fmt.Printf("Found %d detectors:\n\n", len(detectors))
			for _, d := range detectors {
				fmt.Printf("  %d. %s (--detectors %s)\n", d.Priority(), d.Label(), d.ArgumentName())
			}

			return nil
		},
	}

	return cmd
}
