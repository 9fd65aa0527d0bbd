package partition

import (
	"os"
	"path/filepath"

	"github.com/bigbag/fwmerge/embedded"
)

// Kind identifies where a partition table comes from.
type Kind int

const (
	// KindBuiltin is the table compiled into the binary.
	KindBuiltin Kind = iota
	// KindManifest is a flasher_args.json written by the firmware build.
	KindManifest
	// KindLayout is a user-supplied YAML layout file.
	KindLayout
)

func (k Kind) String() string {
	switch k {
	case KindBuiltin:
		return "built-in"
	case KindManifest:
		return "manifest"
	case KindLayout:
		return "layout"
	default:
		return "unknown"
	}
}

// Source produces a partition table for a build directory.
type Source interface {
	Kind() Kind
	Describe() string
	Resolve(buildDir string) (Table, error)
}

// Options control source selection.
type Options struct {
	ManifestPath string // explicit manifest, must exist
	LayoutPath   string // user layout file, takes precedence over everything
	ForceBuiltin bool
}

// Select picks the partition source for buildDir. Without explicit options
// the build manifest is used when present, and the built-in table otherwise.
func Select(buildDir string, opts Options) Source {
	switch {
	case opts.LayoutPath != "":
		return &LayoutFile{Path: opts.LayoutPath}
	case opts.ForceBuiltin:
		return Builtin{}
	case opts.ManifestPath != "":
		return &Manifest{Path: opts.ManifestPath}
	}

	manifest := filepath.Join(buildDir, DefaultManifestName)
	// Anything at the manifest path counts, so a directory or device there
	// surfaces as a malformed manifest instead of a silent built-in fallback.
	if _, err := os.Stat(manifest); err == nil {
		return &Manifest{Path: manifest}
	}
	return Builtin{}
}

// Resolve selects a source and resolves it in one step.
func Resolve(buildDir string, opts Options) (Source, Table, error) {
	src := Select(buildDir, opts)
	table, err := src.Resolve(buildDir)
	if err != nil {
		return src, nil, err
	}
	return src, table, nil
}

// Builtin is the compiled-in partition table.
type Builtin struct{}

// Kind reports KindBuiltin.
func (Builtin) Kind() Kind { return KindBuiltin }

// Describe names the source for the layout header.
func (Builtin) Describe() string { return "built-in table" }

// Resolve decodes the embedded layout. The build directory is not consulted.
func (Builtin) Resolve(string) (Table, error) {
	return decodeLayout("built-in layout", embedded.DefaultLayout())
}
