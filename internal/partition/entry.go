package partition

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Entry places one build artifact at a byte offset in flash.
type Entry struct {
	Offset uint64
	Path   string // slash-separated, relative to the build directory
	Name   string
}

// DisplayName returns the declared name, or the artifact's base name without
// its extension.
func (e Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	base := path.Base(e.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (e Entry) String() string {
	return fmt.Sprintf("%s at 0x%X", e.Path, e.Offset)
}

// Table is the resolved partition mapping. Its order is unspecified until
// Sort is called.
type Table []Entry

// Sort orders the table by ascending offset.
func (t Table) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Offset < t[j].Offset
	})
}

// Sorted returns a sorted copy of the table.
func (t Table) Sorted() Table {
	c := make(Table, len(t))
	copy(c, t)
	c.Sort()
	return c
}

// Validate reports every duplicated offset and every entry without a path.
func (t Table) Validate() error {
	var err error
	seen := make(map[uint64]Entry, len(t))
	for _, e := range t {
		if strings.TrimSpace(e.Path) == "" {
			err = multierr.Append(err, fmt.Errorf("partition at 0x%X has an empty path", e.Offset))
			continue
		}
		if prev, ok := seen[e.Offset]; ok {
			err = multierr.Append(err, &DuplicateOffsetError{Offset: e.Offset, First: prev.Path, Second: e.Path})
			continue
		}
		seen[e.Offset] = e
	}
	return err
}

// ParseOffset parses a hexadecimal flash offset. The 0x prefix is optional.
func ParseOffset(s string) (uint64, error) {
	str := strings.TrimSpace(s)
	if len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		str = str[2:]
	}
	if str == "" {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	off, err := strconv.ParseUint(str, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return off, nil
}
