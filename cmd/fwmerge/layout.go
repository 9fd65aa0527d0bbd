package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bigbag/fwmerge/internal/partition"
)

func runLayout(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	src, table, err := partition.Resolve(buildDirFlag, sourceOptions())
	if err != nil {
		return fmt.Errorf("failed to resolve partition layout: %w", err)
	}

	fmt.Fprintf(out, "Layout: %s (%d partitions)\n\n", src.Describe(), len(table))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OFFSET\tEND\tNAME\tPATH")
	for _, e := range table.Sorted() {
		end := "missing"
		fi, err := os.Stat(filepath.Join(buildDirFlag, filepath.FromSlash(e.Path)))
		if err == nil && fi.Mode().IsRegular() {
			end = fmt.Sprintf("0x%08X", e.Offset+uint64(fi.Size()))
		}
		fmt.Fprintf(w, "0x%08X\t%s\t%s\t%s\n", e.Offset, end, e.DisplayName(), e.Path)
	}
	return w.Flush()
}
