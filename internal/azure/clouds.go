package azure

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clickscan/internal/config"

	"gopkg.in/ini.v1"
)

// builtinClouds are the clouds every Azure CLI installation knows about
var builtinClouds = []string{
	"AzureCloud",
	"AzureChinaCloud",
	"AzureUSGovernment",
}

// ConfigDir returns the Azure CLI configuration directory, honoring the
// tool config and the AZURE_CONFIG_DIR environment variable
func ConfigDir() string {
	if config.Config.AzConfigDir != "" {
		return config.Config.AzConfigDir
	}
	if dir := os.Getenv("AZURE_CONFIG_DIR"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".azure"
	}
	return filepath.Join(homeDir, ".azure")
}

// ListClouds returns the clouds registered with the Azure CLI: the built-in
// clouds plus any custom ones found in clouds.config
func ListClouds() ([]string, error) {
	clouds := make(map[string]struct{})
	for _, name := range builtinClouds {
		clouds[name] = struct{}{}
	}

	cloudsPath := filepath.Join(ConfigDir(), "clouds.config")
	if _, err := os.Stat(cloudsPath); err == nil {
		cloudsFile, err := ini.Load(cloudsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load clouds config: %w", err)
		}

		for _, section := range cloudsFile.Sections() {
			if section.Name() != "DEFAULT" && section.Name() != ini.DefaultSection {
				clouds[section.Name()] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(clouds))
	for cloud := range clouds {
		result = append(result, cloud)
	}
	sort.Strings(result)

	return result, nil
}

// CurrentCloud returns the cloud the Azure CLI is currently targeting,
// read from the [cloud] section of its config file
func CurrentCloud() (string, error) {
	configPath := filepath.Join(ConfigDir(), "config")
	if _, err := os.Stat(configPath); err != nil {
		return "AzureCloud", nil
	}

	configFile, err := ini.Load(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load azure cli config: %w", err)
	}

	name := strings.TrimSpace(configFile.Section("cloud").Key("name").String())
	if name == "" {
		return "AzureCloud", nil
	}
	return name, nil
}

// IsValidCloud checks if a cloud name is registered
func IsValidCloud(cloud string) bool {
	clouds, err := ListClouds()
	if err != nil {
		return false
	}

	for _, c := range clouds {
		if c == cloud {
			return true
		}
	}

	return false
}
