package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bigbag/fwmerge/internal/flash"
	"github.com/bigbag/fwmerge/internal/image"
	"github.com/bigbag/fwmerge/internal/logging"
	"github.com/bigbag/fwmerge/internal/partition"
)

func newLogger() *zap.SugaredLogger {
	if verboseFlag {
		return logging.Development()
	}
	return logging.Console()
}

func sourceOptions() partition.Options {
	return partition.Options{
		ManifestPath: manifestFlag,
		LayoutPath:   layoutFlag,
		ForceBuiltin: builtinFlag,
	}
}

// samePath reports whether a and b name the same file once made absolute.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := newLogger()
	defer log.Sync()

	capacity, err := flash.ParseSize(flashSizeFlag)
	if err != nil {
		return fmt.Errorf("invalid --flash-size: %w", err)
	}

	if hexFlag != "" {
		same, err := samePath(hexFlag, outputFlag)
		if err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
		if same {
			return fmt.Errorf("--hex and --output must be different files: %s", outputFlag)
		}
	}

	if err := image.CheckBuildDir(buildDirFlag); err != nil {
		return err
	}

	src, table, err := partition.Resolve(buildDirFlag, sourceOptions())
	if err != nil {
		return fmt.Errorf("failed to resolve partition layout: %w", err)
	}
	log.Debugw("resolved partition layout", "source", src.Kind().String(), "partitions", len(table))

	fmt.Fprintf(out, "Build directory: %s\n", buildDirFlag)
	fmt.Fprintf(out, "Layout: %s (%d partitions)\n", src.Describe(), len(table))
	fmt.Fprintf(out, "Flash size: %s\n", flash.FormatSize(capacity))

	a := image.New(log)

	var bar *progressbar.ProgressBar
	if !quietFlag {
		bar = progressbar.NewOptions(len(table),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("Merging"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100),
			progressbar.OptionClearOnFinish(),
		)
		a.SetProgressCallback(func(current, total int) {
			bar.Set(current)
		})
	}

	img, report, err := a.Assemble(table, buildDirFlag, capacity)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintln(out)
	sectors := 0
	for _, p := range report.Merged {
		n := flash.SectorCount(p.Size)
		sectors += n
		fmt.Fprintf(out, "Merged  0x%08X  %s (%d bytes, %d sectors)\n", p.Entry.Offset, p.Entry.Path, p.Size, n)
	}
	for _, p := range report.Skipped {
		fmt.Fprintf(out, "Skipped 0x%08X  %s (not found)\n", p.Entry.Offset, p.Entry.Path)
	}

	if err := img.WriteFile(outputFlag); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if hexFlag != "" {
		if err := img.WriteHexFile(hexFlag, report.Merged); err != nil {
			os.Remove(outputFlag)
			return fmt.Errorf("failed to write hex image: %w", err)
		}
	}

	fmt.Fprintln(out, "\nMerge complete!")
	fmt.Fprintf(out, "  Partitions: %d found, %d merged, %d skipped\n",
		report.Found(), len(report.Merged), len(report.Skipped))
	fmt.Fprintf(out, "  Data:       %d bytes in %d sectors\n", report.MergedBytes(), sectors)
	fmt.Fprintf(out, "  Output:     %s (%s)\n", outputFlag, flash.FormatSize(uint64(len(img.Data))))
	if hexFlag != "" {
		fmt.Fprintf(out, "  Hex:        %s\n", hexFlag)
	}

	return nil
}
