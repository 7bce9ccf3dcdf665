package cmd

import (
	"strings"

	initCmd "clickscan/cmd/init"
	"clickscan/cmd/list"
	"clickscan/cmd/scan"
	"clickscan/cmd/version"
	"clickscan/internal/config"
	"clickscan/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	var (
		logLevel   string
		configFile string
	)

	// Initialize config
	if err := config.InitConfig(); err != nil {
		return err
	}

	rootCmd := &cobra.Command{
		Use:   "clickscan",
		Short: "ClickScan - detect portal-created Azure resources",
		Long: `ClickScan inspects Azure resource metadata through the Azure CLI and flags
resources that look like they were created manually in the portal instead of
through infrastructure-as-code automation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Set config file if specified
			if configFile != "" {
				if err := config.SetConfigFile(configFile); err != nil {
					return err
				}
			}

			// Configure logging based on flags and config
			logFormat := logging.Text
			if config.Config.LogFormat == "json" || viper.GetString("app.log_format") == "json" {
				logFormat = logging.JSON
			}

			if logLevel == "" {
				logLevel = viper.GetString("app.log_level")
			}
			var level logging.Level
			switch strings.ToUpper(logLevel) {
			case "DEBUG":
				level = logging.DEBUG
			case "INFO":
				level = logging.INFO
			case "WARN":
				level = logging.WARN
			case "ERROR":
				level = logging.ERROR
			default:
				level = logging.INFO
			}

			logging.Configure(logging.LogConfig{
				Level:  level,
				Format: logFormat,
			})

			// Resolve the Azure CLI location
			if config.Config.AzBinary == "" || config.Config.AzBinary == "az" {
				if binary := viper.GetString("azure.binary"); binary != "" {
					config.Config.AzBinary = binary
				}
			}
			if config.Config.AzConfigDir == "" {
				config.Config.AzConfigDir = viper.GetString("azure.config_dir")
			}

			config.LogConfigurationSources(level == logging.DEBUG, cmd)
			return nil
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&config.Config.AzBinary, "az-binary", "az", "Azure CLI binary (full path or name resolved on PATH)")
	rootCmd.PersistentFlags().StringVar(&config.Config.AzConfigDir, "az-config-dir", "", "Azure CLI config directory (default: AZURE_CONFIG_DIR or ~/.azure)")
	rootCmd.PersistentFlags().StringVar(&config.Config.LogFormat, "log-format", "text", "Log output format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Set logging level (DEBUG, INFO, WARN, ERROR)")

	// Add commands
	rootCmd.AddCommand(scan.NewScanCmd())
	rootCmd.AddCommand(list.NewListCmd())
	rootCmd.AddCommand(initCmd.NewInitCmd())
	rootCmd.AddCommand(version.NewVersionCmd())

	return rootCmd.Execute()
}
