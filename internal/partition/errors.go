package partition

import (
	"fmt"
)

// ManifestNotFoundError indicates that the build manifest does not exist.
type ManifestNotFoundError struct {
	Path string
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("build manifest %s not found: run the firmware build first", e.Path)
}

// ManifestMalformedError indicates that a manifest or layout file could not
// be turned into a partition table.
type ManifestMalformedError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ManifestMalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed manifest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed manifest %s: %s", e.Path, e.Reason)
}

func (e *ManifestMalformedError) Unwrap() error {
	return e.Err
}

// DuplicateOffsetError indicates that two partitions claim the same offset.
type DuplicateOffsetError struct {
	Offset uint64
	First  string
	Second string
}

func (e *DuplicateOffsetError) Error() string {
	return fmt.Sprintf("duplicate offset 0x%X: %s and %s", e.Offset, e.First, e.Second)
}
