package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clickscan/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// parameterSource tracks where each parameter value came from
type parameterSource struct {
	Key    string
	Value  interface{}
	Source string
}

// getParameterSource determines where a parameter value came from (config file, env var, flag, or default)
func getParameterSource(key string, cmd *cobra.Command) parameterSource {
	flagValue := viper.Get(key)
	envKey := "CLICKSCAN_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))

	// Map config keys to flag names
	flagNames := map[string]string{
		"azure.binary":                "az-binary",
		"azure.config_dir":            "az-config-dir",
		"app.log_format":              "log-format",
		"app.log_level":               "log-level",
		"scan.detectors":              "detectors",
		"scan.automation_tags":        "automation-tags",
		"scan.output":                 "output",
		"scan.provisioning_heuristic": "provisioning-heuristic",
	}

	// Get the flag name from the map, or convert the key if not found
	flagName := flagNames[key]
	if flagName == "" {
		flagName = strings.Replace(key, ".", "-", -1)
	}

	// Check if flag was set on command line - check both local and persistent flags
	if cmd != nil {
		if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
			return parameterSource{key, flagValue, "command line flag"}
		}

		// Walk up the command chain checking persistent flags
		current := cmd
		for current != nil {
			if f := current.PersistentFlags().Lookup(flagName); f != nil && f.Changed {
				return parameterSource{key, flagValue, "command line flag"}
			}
			current = current.Parent()
		}
	}

	// Check if value is set by environment variable
	if _, exists := os.LookupEnv(envKey); exists {
		return parameterSource{key, flagValue, "environment variable"}
	}

	// Check if value is set in config file
	if viper.GetViper().InConfig(key) {
		return parameterSource{key, flagValue, "config file"}
	}

	// Value is using default
	return parameterSource{key, flagValue, "default value"}
}

// LogConfigurationSources logs the source of each configuration parameter
func LogConfigurationSources(shouldLog bool, cmd *cobra.Command) {
	if !shouldLog {
		return
	}

	logging.Debug("Configuration parameter sources:", nil)

	params := []string{
		"azure.binary",
		"azure.config_dir",
		"app.log_format",
		"app.log_level",
		"scan.detectors",
		"scan.automation_tags",
		"scan.output",
		"scan.provisioning_heuristic",
	}

	for _, param := range params {
		source := getParameterSource(param, cmd)
		logging.Debug(fmt.Sprintf("  %s = %v (from %s)", source.Key, source.Value, source.Source), nil)
	}
}

// InitConfig initializes the Viper configuration
func InitConfig() error {
	// Set config name and type
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config search paths
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".clickscan"))
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("CLICKSCAN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Set defaults for all configuration values
	viper.SetDefault("azure.binary", "az")
	viper.SetDefault("azure.config_dir", "")
	viper.SetDefault("app.log_format", "text")
	viper.SetDefault("app.log_level", "INFO")
	viper.SetDefault("scan.detectors", "")
	viper.SetDefault("scan.automation_tags", "")
	viper.SetDefault("scan.output", "")
	viper.SetDefault("scan.provisioning_heuristic", true)

	// Try to read config file but don't error if not found
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error if it's not a missing config file
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// SetConfigFile sets a custom config file path and reloads the configuration
func SetConfigFile(configFile string) error {
	viper.SetConfigFile(configFile)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the path the default config file is written to
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".clickscan", "config.yaml"), nil
}

// DefaultConfigContent is the config file written by `clickscan init`
const DefaultConfigContent = `# ClickScan Configuration File

# Azure CLI Configuration
azure:
  binary: az  # Azure CLI binary (full path or name resolved on PATH)
  config_dir: ""  # Azure CLI config directory (default: AZURE_CONFIG_DIR or ~/.azure)

# Application Configuration
app:
  log_format: text  # Log output format (text or json)
  log_level: INFO  # Set logging level (DEBUG, INFO, WARN, ERROR)

# Scan Command Configuration
scan:
  detectors: ""  # Comma-separated list of detectors to run (default: all)
  automation_tags: ""  # Extra automation tag markers, comma-separated
  output: ""  # CSV export path (default: console only)
  provisioning_heuristic: true  # Best-effort provisioning-state check
`

// CreateDefaultConfig creates a default config file if it doesn't exist
func CreateDefaultConfig() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(DefaultConfigContent), 0644); err != nil {
			return fmt.Errorf("error writing default config file: %w", err)
		}
	}

	return nil
}
