package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"saafetch/pkg/batch"
	"saafetch/pkg/listing"
	"saafetch/pkg/ui"
)

var listingRoot string

// listingCmd represents the listing command
var listingCmd = &cobra.Command{
	Use:   "listing <file>",
	Short: "Download every scan of an inventory listing",
	Long: `Download the scans named in an inventory listing.

A listing is the text file the archive's index browser offers for an
inventory, e.g. https://archief.amsterdam/view/archive/inv/data76-81-199.txt.
Every line describes one group of scans; the scans of a group are stored in
a directory named after the group, under --root.`,
	Example: `  saafetch listing 30398.txt
  saafetch listing 30398.txt --root ./scans --concurrent 4`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runListing,
}

func init() {
	rootCmd.AddCommand(listingCmd)
	listingCmd.Flags().StringVar(&listingRoot, "root", "", "directory the group directories are created in (default: output.listing_root)")
}

func runListing(cmd *cobra.Command, args []string) error {
	entries, err := listing.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to parse listing: %w", err)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	extra := map[string]interface{}{}
	if listingRoot != "" {
		extra["listing-root"] = listingRoot
	}

	runner, _, cleanup, err := newRunner(ctx, cmd, extra)
	if err != nil {
		return err
	}
	defer cleanup()

	groups := make(map[string]struct{})
	for _, e := range entries {
		groups[e.Group] = struct{}{}
	}
	ui.PrintInfo("Listing", args[0])
	ui.PrintInfo("Scans", fmt.Sprintf("%d in %d groups", len(entries), len(groups)))

	results := runner.RunListing(ctx, entries)
	reportSummary(batch.Summarize(results))
	return nil
}
