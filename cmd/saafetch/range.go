package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"saafetch/pkg/batch"
	"saafetch/pkg/ui"
)

var rangeDest string

// rangeCmd represents the range command
var rangeCmd = &cobra.Command{
	Use:   "range <start> <end>",
	Short: "Download every scan between two identifiers",
	Long: `Download every scan from <start> to <end>, both included.

The identifiers share a prefix followed by a scan number, as shown in the
archive's index browser. Scan numbers are zero padded to the width of the
end number; use --strict-padding to keep the padding of the endpoints.`,
	Example: `  # Download scans 1 to 79 of inventory 30 into ./30
  saafetch range KLAC01462000001 KLAC01462000079 --dest 30

  # Slow down and give up on scans that stay unavailable
  saafetch range KLAC01462000001 KLAC01462000079 --rate-limit 30 --max-prepare-attempts 20`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runRange,
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().StringVarP(&rangeDest, "dest", "d", "", "destination directory (default: output.base_directory, \"downloads\")")
}

func runRange(cmd *cobra.Command, args []string) error {
	start, end := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])

	ctx, stop := signalContext(cmd)
	defer stop()

	runner, cfg, cleanup, err := newRunner(ctx, cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	dest := rangeDest
	if dest == "" {
		dest = cfg.Output.BaseDirectory
	}
	ui.PrintInfo("Range", fmt.Sprintf("%s .. %s", start, end))
	ui.PrintInfo("Destination", dest)

	results, err := runner.RunRange(ctx, start, end, dest)
	if err != nil {
		return err
	}

	reportSummary(batch.Summarize(results))
	return nil
}

// parseDuration accepts Go durations and plain seconds
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
