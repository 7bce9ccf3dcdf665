package init

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clickscan/internal/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Long: `Write the default configuration file to ~/.clickscan/config.yaml.
An existing file is left untouched unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(configPath); err == nil && !force {
				fmt.Printf("Config file already exists at %s (use --force to overwrite)\n", configPath)
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
				return fmt.Errorf("error creating config directory: %w", err)
			}
			if err := os.WriteFile(configPath, []byte(config.DefaultConfigContent), 0644); err != nil {
				return fmt.Errorf("error writing config file: %w", err)
			}

			fmt.Printf("Wrote default config to %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
