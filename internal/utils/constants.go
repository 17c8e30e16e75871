package utils

// Configuration file locations.
const (
	// GlobalConfigDirectoryName is the directory under the user's home that holds global configuration.
	GlobalConfigDirectoryName = ".clidoc"
	// GlobalConfigFileName is the global configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// LocalConfigFileName is the project configuration file looked up in the working directory.
	LocalConfigFileName = ".clidoc.yaml"
	// ConfigFileType is the viper configuration type for both files.
	ConfigFileType = "yaml"
)

const (
	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage is logged when the root command returns an error.
	ApplicationExecutionFailedMessage = "application execution failed"
)

// GitDirectoryName is the name of the Git repository directory.
const GitDirectoryName = ".git"
