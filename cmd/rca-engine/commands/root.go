package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arclight-labs/rca-engine/internal/logging"
)

const Version = "0.1.0"

var (
	logLevelFlags []string
	configPath    string
)

var rootCmd = &cobra.Command{
	Use:   "rca-engine",
	Short: "AI-assisted root cause analysis for AWS serverless incidents",
	Long: `rca-engine investigates a reported incident against a fixed AWS
serverless blast radius - Lambda, API Gateway, Step Functions, SQS, SNS,
EventBridge, DynamoDB, RDS - and produces a structured root cause report
from three narrowly scoped LLM calls over deterministically collected
evidence.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level evidence=debug --log-level discovery=warn")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to an optional YAML config file layered under environment variables")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(investigateCmd)
	rootCmd.AddCommand(mcpCmd)
}

// HandleError prints the error and exits non-zero. Used for unrecoverable
// startup failures: bad flags, missing credentials, invalid config.
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

// setupLog initializes the logging system with the parsed --log-level flags.
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses --log-level flags of the form "debug" (sets the
// default level) or "package.name=debug" (sets a per-package override).
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			result["default"] = flag
			continue
		}
		parts := strings.SplitN(flag, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}

	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %v", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

func validateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error, fatal)", level)
	}
	return nil
}
