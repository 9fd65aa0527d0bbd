package image

import (
	"github.com/bigbag/fwmerge/internal/partition"
)

// Placement is the outcome for one partition of a merge.
type Placement struct {
	Entry partition.Entry
	Path  string // artifact path on disk
	Size  int    // artifact size, zero when skipped
}

// End returns the first byte past the artifact.
func (p Placement) End() uint64 {
	return p.Entry.Offset + uint64(p.Size)
}

// Report summarizes a merge. Both lists are in ascending offset order.
type Report struct {
	Capacity uint64
	Merged   []Placement
	Skipped  []Placement
}

// Found returns the number of partitions in the resolved table.
func (r *Report) Found() int {
	return len(r.Merged) + len(r.Skipped)
}

// MergedBytes returns the number of artifact bytes copied into the image.
func (r *Report) MergedBytes() uint64 {
	var n uint64
	for _, p := range r.Merged {
		n += uint64(p.Size)
	}
	return n
}
