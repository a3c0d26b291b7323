package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"saafetch/pkg/config"
	"saafetch/pkg/ui"
)

const defaultConfigPath = ".saafetch.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage saafetch configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (SAAFETCH_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a file",
	Long: `Write the default configuration with all available options.

The file is created in the current directory as '.saafetch.yaml'
unless a different path is given with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

Values of the Authorization and Cookie headers are masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Adjust the output directory and concurrency to taste")
	fmt.Println("2. Run 'saafetch config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'saafetch range <start> <end>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	flags, err := commandLineFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	displayCfg := *cfg
	displayCfg.Archive.Headers = maskHeaders(cfg.Archive.Headers)

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (SAAFETCH_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Println("4. Default values")
	return nil
}

func maskHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return headers
	}
	masked := make(map[string]string, len(headers))
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization", "cookie":
			v = "***"
		}
		masked[k] = v
	}
	return masked
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed")
		// Validate joins its errors; print one per line
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("  - %s\n", line)
		}
		return errors.New("invalid configuration")
	}

	var warnings []string
	if cfg.Download.ConcurrentDownloads == 0 {
		warnings = append(warnings, "concurrent_downloads is 0: every scan of a batch gets its own worker")
	}
	if cfg.Download.MaxPrepareAttempts == 0 {
		warnings = append(warnings, "max_prepare_attempts is 0: scans that never become available block their batch")
	}
	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Archive: %s\n", cfg.Archive.BaseURL)
	fmt.Printf("  Store: %s\n", storeSummary(cfg.Output))
	fmt.Printf("  Concurrent downloads: %d\n", cfg.Download.ConcurrentDownloads)
	fmt.Printf("  Prepare delay: %s\n", cfg.Download.PrepareDelay)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max retries: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}

func storeSummary(out config.OutputConfig) string {
	if out.Store == config.StoreBlob {
		return "blob " + out.BucketURL
	}
	return "fs " + out.BaseDirectory
}
