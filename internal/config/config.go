package config

// GlobalConfig holds the global configuration for the application
type GlobalConfig struct {
	// AzBinary is the Azure CLI binary to invoke
	AzBinary string

	// AzConfigDir is the Azure CLI configuration directory
	AzConfigDir string

	// LogFormat is the format for logging
	LogFormat string
}

// Config is the global configuration instance
var Config = &GlobalConfig{
	AzBinary: "az", // Resolved on PATH unless overridden
}
