package partition

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// LayoutFile reads a partition table from a YAML file:
//
//	partitions:
//	  - name: bootloader
//	    offset: 0x0
//	    path: bootloader/bootloader.bin
//
// Offsets are decimal or 0x-prefixed hexadecimal.
type LayoutFile struct {
	Path string
}

type layoutDoc struct {
	Partitions []layoutEntry `yaml:"partitions"`
}

type layoutEntry struct {
	Name   string       `yaml:"name"`
	Offset layoutOffset `yaml:"offset"`
	Path   string       `yaml:"path"`
}

type layoutOffset struct {
	value uint64
	set   bool
}

func (o *layoutOffset) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: offset must be a number", node.Line)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(node.Value), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid offset %q", node.Line, node.Value)
	}
	o.value, o.set = v, true
	return nil
}

// Kind reports KindLayout.
func (l *LayoutFile) Kind() Kind { return KindLayout }

// Describe names the layout file for the layout header.
func (l *LayoutFile) Describe() string { return "layout " + l.Path }

// Resolve reads and decodes the layout file.
func (l *LayoutFile) Resolve(string) (Table, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ManifestNotFoundError{Path: l.Path}
		}
		return nil, &ManifestMalformedError{Path: l.Path, Reason: "cannot read file", Err: err}
	}
	return decodeLayout(l.Path, data)
}

func decodeLayout(name string, data []byte) (Table, error) {
	var doc layoutDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ManifestMalformedError{Path: name, Reason: "invalid YAML", Err: err}
	}
	if len(doc.Partitions) == 0 {
		return nil, &ManifestMalformedError{Path: name, Reason: `missing or empty "partitions" list`}
	}

	table := make(Table, 0, len(doc.Partitions))
	var errs error
	for i, p := range doc.Partitions {
		if !p.Offset.set {
			errs = multierr.Append(errs, fmt.Errorf("partition %d (%s) has no offset", i, p.Path))
			continue
		}
		table = append(table, Entry{Offset: p.Offset.value, Path: p.Path, Name: p.Name})
	}
	if errs != nil {
		return nil, &ManifestMalformedError{Path: name, Reason: "incomplete partition", Err: errs}
	}

	if err := table.Validate(); err != nil {
		return nil, &ManifestMalformedError{Path: name, Reason: "invalid partition table", Err: err}
	}
	table.Sort()
	return table, nil
}
