package image

import (
	"fmt"

	"github.com/bigbag/fwmerge/internal/partition"
)

// BuildDirMissingError indicates that the build directory does not exist.
type BuildDirMissingError struct {
	Dir string
}

func (e *BuildDirMissingError) Error() string {
	return fmt.Sprintf("build directory %s does not exist", e.Dir)
}

// OutOfRangeError indicates that an artifact does not fit below the flash
// capacity at its offset.
type OutOfRangeError struct {
	Entry    partition.Entry
	Size     int
	Capacity uint64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("partition %s at 0x%X (%d bytes) exceeds flash size 0x%X",
		e.Entry.Path, e.Entry.Offset, e.Size, e.Capacity)
}

// OverlapError indicates that two artifacts share flash bytes.
type OverlapError struct {
	First  Placement
	Second Placement
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("partition %s [0x%X-0x%X) overlaps %s [0x%X-0x%X)",
		e.Second.Entry.Path, e.Second.Entry.Offset, e.Second.End(),
		e.First.Entry.Path, e.First.Entry.Offset, e.First.End())
}

// IOError wraps a filesystem failure that aborts the merge.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
