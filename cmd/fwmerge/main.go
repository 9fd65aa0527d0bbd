package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	buildDirFlag  string
	outputFlag    string
	flashSizeFlag string
	manifestFlag  string
	layoutFlag    string
	builtinFlag   bool
	hexFlag       string
	verboseFlag   bool
	quietFlag     bool
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fwmerge",
		Short: "Merge ESP32 build artifacts into a single flash image",
		Long: `fwmerge combines the bootloader, partition table, application and data
partitions of an ESP-IDF build into one flash image that can be written at
offset 0x0 by any flashing tool.

Partition offsets come from the build manifest (flasher_args.json) when it
exists, otherwise from the built-in speaker board table. Unused flash is
filled with 0xFF.`,
		Args:         cobra.NoArgs,
		RunE:         runMerge,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose (debug) logging")
	addMergeFlags(rootCmd)

	// Merge command
	mergeCmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge build artifacts into a flash image",
		Long: `Merge build artifacts into a flash image.

Missing artifacts are skipped and reported. An artifact that does not fit in
the flash, or that overlaps another one, aborts the merge and no output file
is written.`,
		Args: cobra.NoArgs,
		RunE: runMerge,
	}
	addMergeFlags(mergeCmd)

	// Layout command
	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the resolved partition layout",
		Long:  "Resolve the partition layout and show where each artifact would be placed, without writing an image.",
		Args:  cobra.NoArgs,
		RunE:  runLayout,
	}
	addSourceFlags(layoutCmd)

	// Version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "fwmerge %s\n", version)
			fmt.Fprintf(w, "  commit: %s\n", commit)
			fmt.Fprintf(w, "  built:  %s\n", date)
		},
	}

	rootCmd.AddCommand(mergeCmd, layoutCmd, versionCmd)

	return rootCmd
}

// addSourceFlags registers the flags that choose the partition source.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&buildDirFlag, "build-dir", "d", "build", "Build directory")
	cmd.Flags().StringVar(&manifestFlag, "manifest", "", "Build manifest (default: <build-dir>/flasher_args.json if present)")
	cmd.Flags().StringVar(&layoutFlag, "layout", "", "YAML partition layout file")
	cmd.Flags().BoolVar(&builtinFlag, "builtin", false, "Use the built-in partition table")
	cmd.MarkFlagsMutuallyExclusive("manifest", "layout", "builtin")
}

func addMergeFlags(cmd *cobra.Command) {
	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "merged_firmware.bin", "Output image")
	cmd.Flags().StringVarP(&flashSizeFlag, "flash-size", "s", "16MB", "Flash size (bytes, hex, or with K/M suffix)")
	cmd.Flags().StringVar(&hexFlag, "hex", "", "Also write the merged partitions as Intel HEX to this file")
	cmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Do not show a progress bar")
}
