package image

import (
	"errors"
	"strings"
	"testing"

	"github.com/bigbag/fwmerge/internal/partition"
)

func TestBuildDirMissingError(t *testing.T) {
	err := &BuildDirMissingError{Dir: "build"}
	if err.Error() != "build directory build does not exist" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestOutOfRangeError(t *testing.T) {
	err := &OutOfRangeError{
		Entry:    partition.Entry{Offset: 1020, Path: "big.bin"},
		Size:     10,
		Capacity: 1024,
	}
	errMsg := err.Error()

	for _, want := range []string{"big.bin", "0x3FC", "10 bytes", "0x400"} {
		if !strings.Contains(errMsg, want) {
			t.Errorf("error message should contain %q, got: %s", want, errMsg)
		}
	}
}

func TestOverlapError(t *testing.T) {
	err := &OverlapError{
		First:  Placement{Entry: partition.Entry{Offset: 0x0, Path: "a.bin"}, Size: 0x200},
		Second: Placement{Entry: partition.Entry{Offset: 0x100, Path: "b.bin"}, Size: 2},
	}
	errMsg := err.Error()

	for _, want := range []string{"b.bin [0x100-0x102)", "a.bin [0x0-0x200)", "overlaps"} {
		if !strings.Contains(errMsg, want) {
			t.Errorf("error message should contain %q, got: %s", want, errMsg)
		}
	}
}

func TestIOError(t *testing.T) {
	cause := errors.New("permission denied")
	err := &IOError{Op: "write", Path: "out.bin", Err: cause}

	if err.Error() != "write out.bin: permission denied" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Errorf("IOError should unwrap to its cause")
	}
}
