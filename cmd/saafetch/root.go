package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"saafetch/pkg/batch"
	"saafetch/pkg/config"
	"saafetch/pkg/logger"
	"saafetch/pkg/storage"
	"saafetch/pkg/ui"
)

var (
	// Version information
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile         string
	logLevel           string
	concurrent         int
	prepareDelay       string
	maxPrepareAttempts int
	noSkip             bool
	rateLimit          int
	storeKind          string
	bucketURL          string
	strictPadding      bool
	notifications      bool
	verbose            bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "saafetch",
	Short: "Download high resolution scans from the Amsterdam city archive",
	Long: `saafetch downloads high resolution scans from the Stadsarchief Amsterdam.

Scans are addressed by identifiers such as KLAC01462000001. A batch is either
a range of identifiers or an inventory listing exported from the archive's
index browser. Scans the archive has not prepared yet are queued for
preparation and fetched once they become available.

Features:
  - Concurrent downloads with a configurable worker count
  - Already downloaded scans are skipped, so batches can be rerun
  - Optional request rate limit and transient error retry
  - Local directory or bucket storage
  - Desktop notifications when a batch completes`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Parent() != configCmd {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Red(err.Error()))
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (default is ./.saafetch.yaml or $HOME/.config/saafetch/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.IntVar(&concurrent, "concurrent", 8, "number of concurrent downloads (0 = one per scan)")
	pf.StringVar(&prepareDelay, "prepare-delay", "10s", "pause after asking the archive to prepare a scan")
	pf.IntVar(&maxPrepareAttempts, "max-prepare-attempts", 0, "give up on a scan after this many preparation requests (0 = never)")
	pf.BoolVar(&noSkip, "no-skip", false, "download scans even if they already exist")
	pf.IntVar(&rateLimit, "rate-limit", 0, "archive requests per minute (0 = unlimited)")
	pf.StringVar(&storeKind, "store", config.StoreFilesystem, "artifact store: fs or blob")
	pf.StringVar(&bucketURL, "bucket-url", "", "bucket URL for the blob store (file:///path, mem://)")
	pf.BoolVar(&strictPadding, "strict-padding", false, "keep the zero padding of the range endpoints")
	pf.BoolVar(&notifications, "notifications", false, "send a desktop notification when a batch completes")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print one line per scan instead of a progress bar")

	rootCmd.SetVersionTemplate(`saafetch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// commandLineFlags collects the flags the user set explicitly
func commandLineFlags(cmd *cobra.Command) (map[string]interface{}, error) {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("log-level") {
		flags["log-level"] = logLevel
	}
	if changed("concurrent") {
		flags["concurrent-downloads"] = concurrent
	}
	if changed("prepare-delay") {
		d, err := parseDuration(prepareDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid --prepare-delay: %w", err)
		}
		flags["prepare-delay"] = d
	}
	if changed("max-prepare-attempts") {
		flags["max-prepare-attempts"] = maxPrepareAttempts
	}
	if noSkip {
		flags["no-skip"] = true
	}
	if changed("rate-limit") {
		flags["requests-per-minute"] = rateLimit
	}
	if changed("store") {
		flags["store"] = storeKind
	}
	if changed("bucket-url") {
		flags["bucket-url"] = bucketURL
	}
	if strictPadding {
		flags["strict-padding"] = true
	}
	if changed("notifications") {
		flags["notifications-enabled"] = notifications
	}
	return flags, nil
}

// newRunner loads the configuration, sets up logging and opens the store.
// The returned cleanup closes the store.
func newRunner(ctx context.Context, cmd *cobra.Command, extra map[string]interface{}) (*batch.Runner, *config.Config, func(), error) {
	flags, err := commandLineFlags(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	for k, v := range extra {
		flags[k] = v
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("saafetch starting")

	store, err := storage.Open(ctx, cfg.Output)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}

	runner := batch.New(cfg, store, log, batch.WithProgress(os.Stdout, verbose))
	return runner, cfg, cleanup, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// reportSummary prints the batch result line
func reportSummary(s batch.Summary) {
	if s.OK() {
		ui.PrintSuccess(s.String())
		return
	}
	ui.PrintWarning(s.String())
}
